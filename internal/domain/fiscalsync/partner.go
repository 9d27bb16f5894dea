package fiscalsync

import (
	"strings"

	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
)

// HomeCountry is the provider's home fiscal jurisdiction. Tax ids of
// partners from any other country are sent with a country prefix.
const HomeCountry = "PT"

// Customer is a local customer record linked to the provider's clients.
type Customer struct {
	shared.TenantEntity
	SyncState
	Name        string
	VAT         string
	Ref         string
	Street      string
	City        string
	Zip         string
	CountryCode string
	Phone       string
	Mobile      string
	Email       string
	Website     string
	Notes       string
	Active      bool
}

// NewCustomer creates an active customer.
func NewCustomer(tenantID uuid.UUID, name string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Active:       true,
	}, nil
}

// FiscalID returns the tax id as the provider expects it.
func (c *Customer) FiscalID() string {
	return prefixedVAT(c.VAT, c.CountryCode)
}

// Supplier is a local supplier record linked to the provider's suppliers.
type Supplier struct {
	shared.TenantEntity
	SyncState
	Name        string
	VAT         string
	Street      string
	City        string
	Zip         string
	CountryCode string
	Phone       string
	Mobile      string
	Email       string
	Website     string
}

// NewSupplier creates a supplier.
func NewSupplier(tenantID uuid.UUID, name string) (*Supplier, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	return &Supplier{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
	}, nil
}

// FiscalID returns the tax id as the provider expects it.
func (s *Supplier) FiscalID() string {
	return prefixedVAT(s.VAT, s.CountryCode)
}

func prefixedVAT(vat, country string) string {
	if vat == "" || country == "" || country == HomeCountry {
		return vat
	}
	if strings.HasPrefix(vat, country) {
		return vat
	}
	return country + vat
}

// StripCountryPrefix removes a leading country code from a provider tax id.
func StripCountryPrefix(fiscalID, country string) string {
	if country != "" && len(fiscalID) > 1 && strings.HasPrefix(fiscalID, country) {
		return fiscalID[len(country):]
	}
	return fiscalID
}
