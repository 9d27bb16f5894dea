package storage

import (
	"context"
	"sync"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/google/uuid"
)

// MemoryDocumentArchive keeps archived PDFs in memory. Use it for
// development and tests.
type MemoryDocumentArchive struct {
	mu      sync.RWMutex
	prefix  string
	objects map[string][]byte
}

// NewMemoryDocumentArchive creates an empty archive
func NewMemoryDocumentArchive(prefix string) *MemoryDocumentArchive {
	return &MemoryDocumentArchive{
		prefix:  prefix,
		objects: make(map[string][]byte),
	}
}

// Ensure MemoryDocumentArchive implements DocumentArchive
var _ fiscalsync.DocumentArchive = (*MemoryDocumentArchive)(nil)

// Save stores a copy of content under prefix/tenant/name
func (m *MemoryDocumentArchive) Save(_ context.Context, tenantID uuid.UUID, name string, content []byte) (string, error) {
	key, err := objectKey(m.prefix, tenantID, name)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), content...)
	return key, nil
}

// Get returns an archived document
func (m *MemoryDocumentArchive) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.objects[key]
	return content, ok
}
