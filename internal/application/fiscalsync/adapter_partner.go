package fiscalsync

import (
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
)

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

// CustomerAdapter maps customers to the provider's clients collection.
type CustomerAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.Customer]
}

// NewCustomerAdapter creates the customer adapter
func NewCustomerAdapter() *CustomerAdapter {
	return &CustomerAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.Customer]{Entity: "customers", Path: "clients/"}}
}

var (
	_ fiscalsync.Adapter[*fiscalsync.Customer]      = (*CustomerAdapter)(nil)
	_ fiscalsync.NaturalKeyed[*fiscalsync.Customer] = (*CustomerAdapter)(nil)
)

func (a *CustomerAdapter) ToCreatePayload(_ fiscalsync.SyncContext, c *fiscalsync.Customer) (fiscalsync.Payload, error) {
	return fiscalsync.Payload{
		"name":               c.Name,
		"fiscal_id":          c.FiscalID(),
		"external_reference": c.Ref,
		"address":            c.Street,
		"city":               c.City,
		"postalcode":         c.Zip,
		"phone":              c.Phone,
		"mobile":             c.Mobile,
		"email":              c.Email,
		"website":            c.Website,
		"country":            c.CountryCode,
		"notes":              c.Notes,
	}, nil
}

func (a *CustomerAdapter) ToUpdatePayload(sc fiscalsync.SyncContext, c *fiscalsync.Customer) (fiscalsync.Payload, error) {
	payload, _ := a.ToCreatePayload(sc, c)
	payload["status"] = "inactive"
	if c.Active {
		payload["status"] = "active"
	}
	return payload, nil
}

func (a *CustomerAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"name":         rec.String("name"),
		"vat":          rec.String("fiscal_id"),
		"ref":          rec.String("external_reference"),
		"street":       rec.String("address"),
		"city":         rec.String("city"),
		"zip":          rec.String("postalcode"),
		"phone":        rec.String("phone"),
		"mobile":       rec.String("mobile"),
		"email":        rec.String("email"),
		"website":      rec.String("website"),
		"country_code": rec.String("country"),
		"active":       rec.Flag("status"),
		"notes":        rec.String("notes"),
		"remote_id":    rec.ID(),
	}, nil
}

func (a *CustomerAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, c *fiscalsync.Customer, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	fields, _ := a.FromRemote(sc, rec)
	if c.IsLinked() {
		delete(fields, fiscalsync.FieldRemoteID)
	}
	return fields, nil
}

func (a *CustomerAdapter) MatchPredicates(rec fiscalsync.RemoteRecord) []fiscalsync.Predicate {
	return partnerPredicates(rec)
}

// DefaultOverride makes customer imports refresh matched records.
func (a *CustomerAdapter) DefaultOverride() bool { return true }

// HasNaturalKey reports whether the customer can be found again by tax id
// or reference.
func (a *CustomerAdapter) HasNaturalKey(c *fiscalsync.Customer) bool {
	return c.VAT != "" || c.Ref != ""
}

func (a *CustomerAdapter) InlinePayload(sc fiscalsync.SyncContext, c *fiscalsync.Customer) (fiscalsync.Payload, error) {
	return a.ToCreatePayload(sc, c)
}

// RoundTripFields lists the payload keys that read back unchanged.
func (a *CustomerAdapter) RoundTripFields() []string {
	return []string{"name", "fiscal_id", "external_reference", "address", "city", "postalcode", "email", "country"}
}

// ---------------------------------------------------------------------------
// Suppliers
// ---------------------------------------------------------------------------

// SupplierAdapter maps suppliers to the provider's suppliers collection.
type SupplierAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.Supplier]
}

// NewSupplierAdapter creates the supplier adapter
func NewSupplierAdapter() *SupplierAdapter {
	return &SupplierAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.Supplier]{Entity: "suppliers", Path: "suppliers/"}}
}

var (
	_ fiscalsync.Adapter[*fiscalsync.Supplier]      = (*SupplierAdapter)(nil)
	_ fiscalsync.NaturalKeyed[*fiscalsync.Supplier] = (*SupplierAdapter)(nil)
)

func (a *SupplierAdapter) ToCreatePayload(_ fiscalsync.SyncContext, s *fiscalsync.Supplier) (fiscalsync.Payload, error) {
	return fiscalsync.Payload{
		"name":       s.Name,
		"fiscal_id":  s.FiscalID(),
		"address":    s.Street,
		"city":       s.City,
		"postalcode": s.Zip,
		"phone":      s.Phone,
		"mobile":     s.Mobile,
		"email":      s.Email,
		"website":    s.Website,
		"country":    s.CountryCode,
	}, nil
}

func (a *SupplierAdapter) ToUpdatePayload(sc fiscalsync.SyncContext, s *fiscalsync.Supplier) (fiscalsync.Payload, error) {
	return a.ToCreatePayload(sc, s)
}

func (a *SupplierAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"name":         rec.String("name"),
		"vat":          rec.String("fiscal_id"),
		"street":       rec.String("address"),
		"city":         rec.String("city"),
		"zip":          rec.String("postalcode"),
		"phone":        rec.String("phone"),
		"mobile":       rec.String("mobile"),
		"email":        rec.String("email"),
		"website":      rec.String("website"),
		"country_code": rec.String("country"),
		"remote_id":    rec.ID(),
	}, nil
}

func (a *SupplierAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, s *fiscalsync.Supplier, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	fields, _ := a.FromRemote(sc, rec)
	if s.IsLinked() {
		delete(fields, fiscalsync.FieldRemoteID)
	}
	return fields, nil
}

func (a *SupplierAdapter) MatchPredicates(rec fiscalsync.RemoteRecord) []fiscalsync.Predicate {
	return partnerPredicates(rec)
}

// DefaultOverride makes supplier imports refresh matched records.
func (a *SupplierAdapter) DefaultOverride() bool { return true }

// HasNaturalKey is always true: the provider matches suppliers itself.
func (a *SupplierAdapter) HasNaturalKey(*fiscalsync.Supplier) bool { return true }

func (a *SupplierAdapter) InlinePayload(sc fiscalsync.SyncContext, s *fiscalsync.Supplier) (fiscalsync.Payload, error) {
	return a.ToCreatePayload(sc, s)
}

// RoundTripFields lists the payload keys that read back unchanged.
func (a *SupplierAdapter) RoundTripFields() []string {
	return []string{"name", "fiscal_id", "address", "city", "postalcode", "email", "country"}
}

// partnerPredicates tries the remote id, the bare tax id, the prefixed tax
// id, the name and finally the email.
func partnerPredicates(rec fiscalsync.RemoteRecord) []fiscalsync.Predicate {
	country := rec.String("country")
	vat := fiscalsync.StripCountryPrefix(rec.String("fiscal_id"), country)
	prefixed := ""
	if vat != "" {
		prefixed = country + vat
	}
	return []fiscalsync.Predicate{
		fiscalsync.Eq(fiscalsync.FieldRemoteID, rec.ID()),
		fiscalsync.Eq("vat", vat),
		fiscalsync.Eq("vat", prefixed),
		fiscalsync.ILike("name", rec.String("name")),
		fiscalsync.Eq("email", rec.String("email")),
	}
}
