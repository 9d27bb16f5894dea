package fiscalsync

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Payload is a JSON object sent to the provider.
type Payload map[string]any

// Fields holds local column assignments produced by an adapter.
type Fields map[string]any

// FieldRemoteID is the local column holding the provider id.
const FieldRemoteID = "remote_id"

// RemoteRecord is a JSON object returned by the provider.
type RemoteRecord map[string]any

// ID returns the provider id of the record as a string.
func (r RemoteRecord) ID() string {
	return r.String("id")
}

// String returns the value under key rendered as a string.
func (r RemoteRecord) String(key string) string {
	return stringify(r[key])
}

// Decimal returns the value under key as a decimal, zero when absent or
// unparsable.
func (r RemoteRecord) Decimal(key string) decimal.Decimal {
	s := r.String(key)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Int returns the value under key as an int, zero when absent.
func (r RemoteRecord) Int(key string) int {
	n, err := strconv.Atoi(r.String(key))
	if err != nil {
		return int(r.Decimal(key).IntPart())
	}
	return n
}

// Flag reports whether the value under key equals one of the provider's
// "on" spellings.
func (r RemoteRecord) Flag(key string) bool {
	switch strings.ToLower(r.String(key)) {
	case "on", "yes", "active", "true", "1":
		return true
	}
	return false
}

// Record returns the nested object under key, or nil.
func (r RemoteRecord) Record(key string) RemoteRecord {
	switch v := r[key].(type) {
	case RemoteRecord:
		return v
	case map[string]any:
		return RemoteRecord(v)
	}
	return nil
}

// Records returns the nested list of objects under key.
func (r RemoteRecord) Records(key string) []RemoteRecord {
	raw, ok := r[key].([]any)
	if !ok {
		if typed, ok := r[key].([]RemoteRecord); ok {
			return typed
		}
		return nil
	}
	out := make([]RemoteRecord, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, RemoteRecord(m))
		}
	}
	return out
}

// Sanitize returns a copy of p without its falsy top-level values. The
// provider rejects empty strings and nulls for most fields, so they are
// never sent.
func Sanitize(p Payload) Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		if IsFalsy(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// IsFalsy reports whether v is nil, false, zero, an empty string or an
// empty collection.
func IsFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case decimal.Decimal:
		return t.IsZero()
	case *decimal.Decimal:
		return t == nil || t.IsZero()
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.String:
		return rv.Len() == 0
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
