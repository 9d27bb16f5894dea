package models

import (
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	SyncModel
	Name        string `gorm:"type:varchar(200);not null"`
	VAT         string `gorm:"type:varchar(50);index"`
	Ref         string `gorm:"type:varchar(100)"`
	Street      string `gorm:"type:text"`
	City        string `gorm:"type:varchar(100)"`
	Zip         string `gorm:"type:varchar(20)"`
	CountryCode string `gorm:"type:varchar(2)"`
	Phone       string `gorm:"type:varchar(50)"`
	Mobile      string `gorm:"type:varchar(50)"`
	Email       string `gorm:"type:varchar(200);index"`
	Website     string `gorm:"type:varchar(200)"`
	Notes       string `gorm:"type:text"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *fiscalsync.Customer {
	return &fiscalsync.Customer{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Name:         m.Name,
		VAT:          m.VAT,
		Ref:          m.Ref,
		Street:       m.Street,
		City:         m.City,
		Zip:          m.Zip,
		CountryCode:  m.CountryCode,
		Phone:        m.Phone,
		Mobile:       m.Mobile,
		Email:        m.Email,
		Website:      m.Website,
		Notes:        m.Notes,
		Active:       m.Active,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *fiscalsync.Customer) {
	m.FromDomainSync(c.TenantEntity, c.SyncState)
	m.Name = c.Name
	m.VAT = c.VAT
	m.Ref = c.Ref
	m.Street = c.Street
	m.City = c.City
	m.Zip = c.Zip
	m.CountryCode = c.CountryCode
	m.Phone = c.Phone
	m.Mobile = c.Mobile
	m.Email = c.Email
	m.Website = c.Website
	m.Notes = c.Notes
	m.Active = c.Active
}

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	SyncModel
	Name        string `gorm:"type:varchar(200);not null"`
	VAT         string `gorm:"type:varchar(50);index"`
	Street      string `gorm:"type:text"`
	City        string `gorm:"type:varchar(100)"`
	Zip         string `gorm:"type:varchar(20)"`
	CountryCode string `gorm:"type:varchar(2)"`
	Phone       string `gorm:"type:varchar(50)"`
	Mobile      string `gorm:"type:varchar(50)"`
	Email       string `gorm:"type:varchar(200);index"`
	Website     string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *fiscalsync.Supplier {
	return &fiscalsync.Supplier{
		TenantEntity: m.ToTenantEntity(),
		SyncState:    m.ToSyncState(),
		Name:         m.Name,
		VAT:          m.VAT,
		Street:       m.Street,
		City:         m.City,
		Zip:          m.Zip,
		CountryCode:  m.CountryCode,
		Phone:        m.Phone,
		Mobile:       m.Mobile,
		Email:        m.Email,
		Website:      m.Website,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *fiscalsync.Supplier) {
	m.FromDomainSync(s.TenantEntity, s.SyncState)
	m.Name = s.Name
	m.VAT = s.VAT
	m.Street = s.Street
	m.City = s.City
	m.Zip = s.Zip
	m.CountryCode = s.CountryCode
	m.Phone = s.Phone
	m.Mobile = s.Mobile
	m.Email = s.Email
	m.Website = s.Website
}
