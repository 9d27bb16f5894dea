package models

import (
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	SyncModel
	Code             string                 `gorm:"type:varchar(100);index"`
	Barcode          string                 `gorm:"type:varchar(100);index"`
	Name             string                 `gorm:"type:varchar(200);not null"`
	Kind             fiscalsync.ProductKind `gorm:"type:varchar(20);not null;default:'consu'"`
	SupplyPrice      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	GrossPrice       decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	UnitRemoteID     string                 `gorm:"type:varchar(64)"`
	CategoryRemoteID string                 `gorm:"type:varchar(64)"`
	BrandRemoteID    string                 `gorm:"type:varchar(64)"`
	TaxCode          string                 `gorm:"type:varchar(10)"`
	TaxExemption     string                 `gorm:"type:varchar(10)"`
	TaxExemptionLaw  string                 `gorm:"type:varchar(200)"`
	Active           bool                   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *fiscalsync.Product {
	return &fiscalsync.Product{
		TenantEntity:     m.ToTenantEntity(),
		SyncState:        m.ToSyncState(),
		Code:             m.Code,
		Barcode:          m.Barcode,
		Name:             m.Name,
		Kind:             m.Kind,
		SupplyPrice:      m.SupplyPrice,
		GrossPrice:       m.GrossPrice,
		UnitRemoteID:     m.UnitRemoteID,
		CategoryRemoteID: m.CategoryRemoteID,
		BrandRemoteID:    m.BrandRemoteID,
		TaxCode:          m.TaxCode,
		TaxExemption:     m.TaxExemption,
		TaxExemptionLaw:  m.TaxExemptionLaw,
		Active:           m.Active,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *fiscalsync.Product) {
	m.FromDomainSync(p.TenantEntity, p.SyncState)
	m.Code = p.Code
	m.Barcode = p.Barcode
	m.Name = p.Name
	m.Kind = p.Kind
	m.SupplyPrice = p.SupplyPrice
	m.GrossPrice = p.GrossPrice
	m.UnitRemoteID = p.UnitRemoteID
	m.CategoryRemoteID = p.CategoryRemoteID
	m.BrandRemoteID = p.BrandRemoteID
	m.TaxCode = p.TaxCode
	m.TaxExemption = p.TaxExemption
	m.TaxExemptionLaw = p.TaxExemptionLaw
	m.Active = p.Active
}

// CategoryModel is a provider product category.
type CategoryModel struct {
	SyncModel
	Title  string `gorm:"type:varchar(200);not null"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "product_categories"
}

func (m *CategoryModel) ToDomain() *fiscalsync.Category {
	return &fiscalsync.Category{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Title:        m.Title,
		Active:       m.Active,
	}
}

// UnitModel is a provider unit of measure.
type UnitModel struct {
	SyncModel
	Title     string `gorm:"type:varchar(100);not null"`
	IsDefault bool   `gorm:"not null;default:false"`
	Decimals  int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "product_units"
}

func (m *UnitModel) ToDomain() *fiscalsync.Unit {
	return &fiscalsync.Unit{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Title:        m.Title,
		IsDefault:    m.IsDefault,
		Decimals:     m.Decimals,
	}
}

// BrandModel is a provider product brand.
type BrandModel struct {
	SyncModel
	Title  string `gorm:"type:varchar(200);not null"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BrandModel) TableName() string {
	return "product_brands"
}

func (m *BrandModel) ToDomain() *fiscalsync.Brand {
	return &fiscalsync.Brand{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Title:        m.Title,
		Active:       m.Active,
	}
}

// PriceGroupModel is a provider price group.
type PriceGroupModel struct {
	SyncModel
	Title     string `gorm:"type:varchar(200);not null"`
	IsDefault bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PriceGroupModel) TableName() string {
	return "price_groups"
}

func (m *PriceGroupModel) ToDomain() *fiscalsync.PriceGroup {
	return &fiscalsync.PriceGroup{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Title:        m.Title,
		IsDefault:    m.IsDefault,
	}
}
