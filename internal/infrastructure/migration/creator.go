package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"
)

const versionLayout = "20060102150405"

var fileTemplate = template.Must(template.New("migration").Parse(`-- Migration: {{.Name}}{{if .Rollback}} (Rollback){{end}}
-- Created: {{.Created}}
{{- if .Description}}
-- Description: {{.Description}}
{{- end}}

`))

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9_]+`)
	separators       = regexp.MustCompile(`[\s\-_]+`)
	migrationFile    = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)
)

// MigrationFile is a created up/down pair.
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// Creator scaffolds migration file pairs in a directory.
type Creator struct {
	dir string
	now func() time.Time
}

// NewCreator returns a Creator writing into dir.
func NewCreator(dir string) *Creator {
	return &Creator{dir: dir, now: time.Now}
}

// Create writes an empty up/down pair versioned by the current UTC time.
func (c *Creator) Create(name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := c.now().UTC()
	version := now.Format(versionLayout)
	base := filepath.Join(c.dir, version+"_"+slug)
	mf := &MigrationFile{
		Version:  version,
		Name:     slug,
		UpPath:   base + ".up.sql",
		DownPath: base + ".down.sql",
	}

	data := struct {
		Name        string
		Description string
		Created     string
		Rollback    bool
	}{Name: slug, Description: description, Created: now.Format(time.RFC3339)}

	if err := writeNew(mf.UpPath, data); err != nil {
		return nil, err
	}
	data.Rollback = true
	if err := writeNew(mf.DownPath, data); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeNew(path string, data any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fileTemplate.Execute(f, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeName lowercases name and joins its words with underscores.
func sanitizeName(name string) string {
	s := separators.ReplaceAllString(strings.ToLower(name), "_")
	s = invalidNameChars.ReplaceAllString(s, "")
	return strings.Trim(s, "_")
}

// ListMigrations returns the names of the up migrations in fsys ordered by
// version, without the .up.sql suffix.
func ListMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		match := migrationFile.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil || match[3] != "up" {
			continue
		}
		names = append(names, match[1]+"_"+match[2])
	}
	sort.Strings(names)
	return names, nil
}
