package dto

import (
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentLineRequest is one line of a new document.
type DocumentLineRequest struct {
	ProductID         uuid.UUID       `json:"product_id" binding:"required"`
	Title             string          `json:"title" binding:"max=255"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	PriceIncludesTax  bool            `json:"price_includes_tax"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Discount          decimal.Decimal `json:"discount"`
	TaxCode           string          `json:"tax_code"`
	TaxExemption      string          `json:"tax_exemption"`
	TaxRegion         string          `json:"tax_region" binding:"omitempty,len=2"`
	Text              string          `json:"text"`
	RefDocumentNumber string          `json:"ref_document_number"`
	RefDocumentRow    int             `json:"ref_document_row" binding:"min=0"`
}

// CreateDocumentRequest creates a draft document.
type CreateDocumentRequest struct {
	Kind              string                       `json:"kind" binding:"required,oneof=invoice credit_note receipt sale_order stock_transport"`
	DocumentType      string                       `json:"document_type" binding:"max=2"`
	RegisterRemoteID  string                       `json:"register_remote_id"`
	Date              time.Time                    `json:"date"`
	DueDate           *time.Time                   `json:"due_date"`
	Notes             string                       `json:"notes"`
	Reason            string                       `json:"reason"`
	ExternalReference string                       `json:"external_reference" binding:"max=64"`
	CustomerID        *uuid.UUID                   `json:"customer_id"`
	SupplierID        *uuid.UUID                   `json:"supplier_id"`
	SelfPaid          bool                         `json:"self_paid"`
	Total             decimal.Decimal              `json:"total"`
	Lines             []DocumentLineRequest        `json:"lines" binding:"dive"`
	Payments          []fiscalsync.DocumentPayment `json:"payments"`
	SettledInvoices   []string                     `json:"settled_invoices"`
	Movement          *fiscalsync.MovementOfGoods  `json:"movement"`
}

// ToDomain builds the draft for tenantID.
func (r *CreateDocumentRequest) ToDomain(tenantID uuid.UUID) (*fiscalsync.Document, error) {
	lines := make([]fiscalsync.DocumentLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = fiscalsync.DocumentLine{
			ID:                uuid.New(),
			ProductID:         l.ProductID,
			Title:             l.Title,
			Quantity:          l.Quantity,
			UnitPrice:         l.UnitPrice,
			PriceIncludesTax:  l.PriceIncludesTax,
			TaxRate:           l.TaxRate,
			Discount:          l.Discount,
			TaxCode:           l.TaxCode,
			TaxExemption:      l.TaxExemption,
			TaxRegion:         l.TaxRegion,
			Text:              l.Text,
			RefDocumentNumber: l.RefDocumentNumber,
			RefDocumentRow:    l.RefDocumentRow,
		}
	}

	d, err := fiscalsync.NewDraft(tenantID, fiscalsync.DocumentKind(r.Kind), lines)
	if err != nil {
		return nil, err
	}
	d.DocumentType = r.DocumentType
	d.RegisterRemoteID = r.RegisterRemoteID
	d.Date = r.Date
	if d.Date.IsZero() {
		d.Date = time.Now()
	}
	d.DueDate = r.DueDate
	d.Notes = r.Notes
	d.Reason = r.Reason
	d.ExternalReference = r.ExternalReference
	d.CustomerID = r.CustomerID
	d.SupplierID = r.SupplierID
	d.SelfPaid = r.SelfPaid
	d.Total = r.Total
	d.Payments = r.Payments
	d.SettledInvoices = r.SettledInvoices
	d.Movement = r.Movement
	return d, nil
}

// DocumentLineResponse is one line of a document.
type DocumentLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	Sequence         int             `json:"sequence"`
	ProductID        uuid.UUID       `json:"product_id"`
	Title            string          `json:"title"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	PriceIncludesTax bool            `json:"price_includes_tax"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	Discount         decimal.Decimal `json:"discount"`
	TaxCode          string          `json:"tax_code,omitempty"`
	TaxRegion        string          `json:"tax_region,omitempty"`
}

// DocumentResponse is a fiscal document and its sync state.
type DocumentResponse struct {
	ID                uuid.UUID                    `json:"id"`
	Kind              string                       `json:"kind"`
	DocumentType      string                       `json:"document_type"`
	Status            string                       `json:"status"`
	RemoteID          string                       `json:"remote_id,omitempty"`
	Number            string                       `json:"number,omitempty"`
	RegisterRemoteID  string                       `json:"register_remote_id,omitempty"`
	Date              time.Time                    `json:"date"`
	DueDate           *time.Time                   `json:"due_date,omitempty"`
	ExternalReference string                       `json:"external_reference,omitempty"`
	CustomerID        *uuid.UUID                   `json:"customer_id,omitempty"`
	SupplierID        *uuid.UUID                   `json:"supplier_id,omitempty"`
	Total             decimal.Decimal              `json:"total"`
	Archived          bool                         `json:"archived"`
	Lines             []DocumentLineResponse       `json:"lines"`
	Payments          []fiscalsync.DocumentPayment `json:"payments,omitempty"`
	CreatedAt         time.Time                    `json:"created_at"`
	UpdatedAt         time.Time                    `json:"updated_at"`
}

// NewDocumentResponse converts a document.
func NewDocumentResponse(d *fiscalsync.Document) DocumentResponse {
	lines := make([]DocumentLineResponse, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = DocumentLineResponse{
			ID:               l.ID,
			Sequence:         l.Sequence,
			ProductID:        l.ProductID,
			Title:            l.Title,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			PriceIncludesTax: l.PriceIncludesTax,
			TaxRate:          l.TaxRate,
			Discount:         l.Discount,
			TaxCode:          l.TaxCode,
			TaxRegion:        l.TaxRegion,
		}
	}
	return DocumentResponse{
		ID:                d.ID,
		Kind:              string(d.Kind),
		DocumentType:      d.DocumentType,
		Status:            string(d.Status),
		RemoteID:          d.RemoteID(),
		Number:            d.Number,
		RegisterRemoteID:  d.RegisterRemoteID,
		Date:              d.Date,
		DueDate:           d.DueDate,
		ExternalReference: d.ExternalReference,
		CustomerID:        d.CustomerID,
		SupplierID:        d.SupplierID,
		Total:             d.Total,
		Archived:          d.ArchiveKey != "",
		Lines:             lines,
		Payments:          d.Payments,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
