package fiscalsync

import (
	"strings"

	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductKind is the local inventory behaviour of a product.
type ProductKind string

const (
	ProductKindStorable   ProductKind = "product"
	ProductKindConsumable ProductKind = "consu"
	ProductKindService    ProductKind = "service"
)

// Product is a local product linked to the provider's products.
type Product struct {
	shared.TenantEntity
	SyncState
	Code             string
	Barcode          string
	Name             string
	Kind             ProductKind
	SupplyPrice      decimal.Decimal
	GrossPrice       decimal.Decimal
	UnitRemoteID     string
	CategoryRemoteID string
	BrandRemoteID    string
	TaxCode          string
	TaxExemption     string
	TaxExemptionLaw  string
	Active           bool
}

// NewProduct creates an active consumable product.
func NewProduct(tenantID uuid.UUID, name string) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	return &Product{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Kind:         ProductKindConsumable,
		Active:       true,
	}, nil
}

// RemoteType returns the provider product type: P(roduct), S(ervice) or O(ther).
func (p *Product) RemoteType() string {
	switch p.Kind {
	case ProductKindStorable, ProductKindConsumable:
		return "P"
	case ProductKindService:
		return "S"
	}
	return "O"
}

// StockType returns the provider stock type.
func (p *Product) StockType() string {
	switch p.Kind {
	case ProductKindConsumable:
		return "P"
	case ProductKindService:
		return "S"
	}
	return "M"
}

// StockControl reports whether the provider should track stock.
func (p *Product) StockControl() int {
	if p.Kind == ProductKindStorable {
		return 1
	}
	return 0
}

// ProductKindFromRemote maps a provider type to a local kind.
func ProductKindFromRemote(remoteType string) ProductKind {
	if remoteType == "S" {
		return ProductKindService
	}
	return ProductKindConsumable
}

// Category is a provider product category.
type Category struct {
	shared.TenantEntity
	SyncState
	Title  string
	Active bool
}

// Unit is a provider unit of measure.
type Unit struct {
	shared.TenantEntity
	SyncState
	Title     string
	IsDefault bool
	Decimals  int
}

// Brand is a provider product brand.
type Brand struct {
	shared.TenantEntity
	SyncState
	Title  string
	Active bool
}

// PriceGroup is a provider price group.
type PriceGroup struct {
	shared.TenantEntity
	SyncState
	Title     string
	IsDefault bool
}

// OnOff renders a flag the way the provider expects it.
func OnOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
