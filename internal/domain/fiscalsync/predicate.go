package fiscalsync

import "fmt"

// Operator is a comparison used by match predicates.
type Operator string

const (
	// OpEquals is exact equality.
	OpEquals Operator = "="
	// OpILike is case-insensitive equality.
	OpILike Operator = "=ilike"
)

// Predicate is a single field comparison used to find a local record that
// corresponds to a remote record.
type Predicate struct {
	Field    string
	Operator Operator
	Value    any
}

// Eq builds an equality predicate.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Operator: OpEquals, Value: value}
}

// ILike builds a case-insensitive equality predicate.
func ILike(field string, value any) Predicate {
	return Predicate{Field: field, Operator: OpILike, Value: value}
}

// IsEmpty reports whether the comparison value is empty. Empty predicates
// are skipped during matching.
func (p Predicate) IsEmpty() bool {
	return IsFalsy(p.Value)
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Field, p.Operator, p.Value)
}

// DefaultMatchPredicates matches on the remote id only.
func DefaultMatchPredicates(rec RemoteRecord) []Predicate {
	return []Predicate{Eq(FieldRemoteID, rec.ID())}
}
