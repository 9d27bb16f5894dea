package models

import (
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the Document aggregate.
// Payments, settled invoices and the transport block are stored as JSON.
type DocumentModel struct {
	SyncModel
	Kind              fiscalsync.DocumentKind      `gorm:"type:varchar(30);not null"`
	DocumentType      string                       `gorm:"type:varchar(4);not null"`
	RegisterRemoteID  string                       `gorm:"type:varchar(64)"`
	Date              time.Time                    `gorm:"not null"`
	DueDate           *time.Time                   `gorm:"type:timestamp"`
	Notes             string                       `gorm:"type:text"`
	Reason            string                       `gorm:"type:varchar(50)"`
	ExternalReference string                       `gorm:"type:varchar(100)"`
	CustomerID        *uuid.UUID                   `gorm:"type:uuid;index"`
	SupplierID        *uuid.UUID                   `gorm:"type:uuid;index"`
	SelfPaid          bool                         `gorm:"not null;default:false"`
	Total             decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	Payments          []fiscalsync.DocumentPayment `gorm:"type:jsonb;serializer:json"`
	SettledInvoices   []string                     `gorm:"type:jsonb;serializer:json"`
	Movement          *fiscalsync.MovementOfGoods  `gorm:"type:jsonb;serializer:json"`
	Number            string                       `gorm:"type:varchar(60);index"`
	ArchiveKey        string                       `gorm:"type:varchar(255)"`
	Status            fiscalsync.DocumentStatus    `gorm:"type:varchar(30);not null;default:'DRAFT';index"`
	Lines             []DocumentLineModel          `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "fiscal_documents"
}

// ToDomain converts the persistence model to a domain Document.
func (m *DocumentModel) ToDomain() *fiscalsync.Document {
	doc := &fiscalsync.Document{
		TenantEntity:      m.ToTenantEntity(),
		SyncState:         m.ToSyncState(),
		Kind:              m.Kind,
		DocumentType:      m.DocumentType,
		RegisterRemoteID:  m.RegisterRemoteID,
		Date:              m.Date,
		DueDate:           m.DueDate,
		Notes:             m.Notes,
		Reason:            m.Reason,
		ExternalReference: m.ExternalReference,
		CustomerID:        m.CustomerID,
		SupplierID:        m.SupplierID,
		SelfPaid:          m.SelfPaid,
		Total:             m.Total,
		Payments:          m.Payments,
		SettledInvoices:   m.SettledInvoices,
		Movement:          m.Movement,
		Number:            m.Number,
		ArchiveKey:        m.ArchiveKey,
		Status:            m.Status,
	}
	doc.Lines = make([]fiscalsync.DocumentLine, len(m.Lines))
	for i := range m.Lines {
		doc.Lines[i] = m.Lines[i].ToDomain()
	}
	return doc
}

// FromDomain populates the persistence model, lines included.
func (m *DocumentModel) FromDomain(d *fiscalsync.Document) {
	m.FromDomainSync(d.TenantEntity, d.SyncState)
	m.Kind = d.Kind
	m.DocumentType = d.DocumentType
	m.RegisterRemoteID = d.RegisterRemoteID
	m.Date = d.Date
	m.DueDate = d.DueDate
	m.Notes = d.Notes
	m.Reason = d.Reason
	m.ExternalReference = d.ExternalReference
	m.CustomerID = d.CustomerID
	m.SupplierID = d.SupplierID
	m.SelfPaid = d.SelfPaid
	m.Total = d.Total
	m.Payments = d.Payments
	m.SettledInvoices = d.SettledInvoices
	m.Movement = d.Movement
	m.Number = d.Number
	m.ArchiveKey = d.ArchiveKey
	m.Status = d.Status
	m.Lines = make([]DocumentLineModel, len(d.Lines))
	for i, line := range d.Lines {
		m.Lines[i].FromDomain(d.ID, line)
	}
}

// DocumentLineModel is one item of a fiscal document.
type DocumentLineModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Sequence          int             `gorm:"not null"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title             string          `gorm:"type:varchar(255)"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PriceIncludesTax  bool            `gorm:"not null;default:false"`
	TaxRate           decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	Discount          decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	TaxCode           string          `gorm:"type:varchar(10)"`
	TaxExemption      string          `gorm:"type:varchar(10)"`
	TaxRegion         string          `gorm:"type:varchar(10)"`
	Text              string          `gorm:"type:text"`
	RefDocumentNumber string          `gorm:"type:varchar(60)"`
	RefDocumentRow    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "fiscal_document_lines"
}

func (m *DocumentLineModel) ToDomain() fiscalsync.DocumentLine {
	return fiscalsync.DocumentLine{
		ID:                m.ID,
		Sequence:          m.Sequence,
		ProductID:         m.ProductID,
		Title:             m.Title,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		PriceIncludesTax:  m.PriceIncludesTax,
		TaxRate:           m.TaxRate,
		Discount:          m.Discount,
		TaxCode:           m.TaxCode,
		TaxExemption:      m.TaxExemption,
		TaxRegion:         m.TaxRegion,
		Text:              m.Text,
		RefDocumentNumber: m.RefDocumentNumber,
		RefDocumentRow:    m.RefDocumentRow,
	}
}

func (m *DocumentLineModel) FromDomain(documentID uuid.UUID, l fiscalsync.DocumentLine) {
	m.ID = l.ID
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.DocumentID = documentID
	m.Sequence = l.Sequence
	m.ProductID = l.ProductID
	m.Title = l.Title
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.PriceIncludesTax = l.PriceIncludesTax
	m.TaxRate = l.TaxRate
	m.Discount = l.Discount
	m.TaxCode = l.TaxCode
	m.TaxExemption = l.TaxExemption
	m.TaxRegion = l.TaxRegion
	m.Text = l.Text
	m.RefDocumentNumber = l.RefDocumentNumber
	m.RefDocumentRow = l.RefDocumentRow
}
