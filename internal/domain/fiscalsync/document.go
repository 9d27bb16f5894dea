package fiscalsync

import (
	"context"
	"strings"
	"time"

	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind selects how a document is composed for the provider.
type DocumentKind string

const (
	DocumentKindInvoice        DocumentKind = "invoice"
	DocumentKindCreditNote     DocumentKind = "credit_note"
	DocumentKindReceipt        DocumentKind = "receipt"
	DocumentKindSaleOrder      DocumentKind = "sale_order"
	DocumentKindStockTransport DocumentKind = "stock_transport"
)

// IsValid returns true if the kind is known.
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindInvoice, DocumentKindCreditNote, DocumentKindReceipt,
		DocumentKindSaleOrder, DocumentKindStockTransport:
		return true
	}
	return false
}

// Provider document type codes.
const (
	DocTypeInvoice        = "FT"
	DocTypeInvoiceReceipt = "FR"
	DocTypeSimplified     = "FS"
	DocTypeCreditNote     = "NC"
	DocTypeReceipt        = "RG"
	DocTypeQuote          = "OT"
	DocTypeProforma       = "PF"
	DocTypeTransportGuide = "GT"
	DocTypeReturnGuide    = "GD"
)

// RemoteStatusCancelled is the provider status of a cancelled document.
const RemoteStatusCancelled = "A"

// Address is a postal address used on movement of goods.
type Address struct {
	Street      string `json:"street,omitempty"`
	Zip         string `json:"zip,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// MovementOfGoods holds the transport block of a stock transport document.
type MovementOfGoods struct {
	VehicleID string     `json:"vehicle_id,omitempty"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	IsGlobal  bool       `json:"is_global"`
	Load      Address    `json:"load"`
	Land      Address    `json:"land"`
}

// DocumentPayment is a payment attached to a document.
type DocumentPayment struct {
	MethodRemoteID string          `json:"method_remote_id"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
}

// DocumentLine is one item of a document.
type DocumentLine struct {
	ID               uuid.UUID
	Sequence         int
	ProductID        uuid.UUID
	Title            string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	PriceIncludesTax bool
	TaxRate          decimal.Decimal
	Discount         decimal.Decimal
	// TaxCode is the provider tax class already resolved by tax policy.
	TaxCode      string
	TaxExemption string
	// TaxRegion is the tax jurisdiction, "" meaning the home country.
	TaxRegion string
	// Text is free text printed under the line.
	Text              string
	RefDocumentNumber string
	RefDocumentRow    int
}

// GrossPrice returns the unit price including tax.
func (l DocumentLine) GrossPrice() decimal.Decimal {
	if l.PriceIncludesTax {
		return l.UnitPrice
	}
	factor := decimal.NewFromInt(1).Add(l.TaxRate.Div(decimal.NewFromInt(100)))
	return l.UnitPrice.Mul(factor)
}

// IsForeignTax reports whether the line is taxed outside the home country.
func (l DocumentLine) IsForeignTax() bool {
	return l.TaxRegion != "" && l.TaxRegion != HomeCountry
}

// CleanTitle strips the product reference the provider prints on its own.
func (l DocumentLine) CleanTitle(productCode string) string {
	if productCode == "" {
		return strings.TrimSpace(l.Title)
	}
	return strings.TrimSpace(strings.ReplaceAll(l.Title, "["+productCode+"]", ""))
}

// Document is a fiscal document issued through the provider.
type Document struct {
	shared.TenantEntity
	SyncState
	Kind              DocumentKind
	DocumentType      string
	RegisterRemoteID  string
	Date              time.Time
	DueDate           *time.Time
	Notes             string
	Reason            string
	ExternalReference string
	CustomerID        *uuid.UUID
	SupplierID        *uuid.UUID
	SelfPaid          bool
	Total             decimal.Decimal
	Lines             []DocumentLine
	Payments          []DocumentPayment
	SettledInvoices   []string
	Movement          *MovementOfGoods
	Number            string
	ArchiveKey        string
	Status            DocumentStatus
}

// NewDraft starts a document of the given kind. Lines are numbered in the
// order given.
func NewDraft(tenantID uuid.UUID, kind DocumentKind, lines []DocumentLine) (*Document, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown document kind "+string(kind))
	}
	d := &Document{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Kind:         kind,
		Status:       DocumentStatusDraft,
		Lines:        make([]DocumentLine, len(lines)),
	}
	for i, line := range lines {
		line.Sequence = i + 1
		d.Lines[i] = line
	}
	return d, nil
}

// UsesSupplier reports whether the document counterpart is a supplier.
func (d *Document) UsesSupplier() bool {
	return d.Kind == DocumentKindStockTransport && d.DocumentType == DocTypeReturnGuide
}

// EnsureSubmittable checks that the document was never sent.
func (d *Document) EnsureSubmittable() error {
	if d.IsLinked() || d.Status != DocumentStatusDraft {
		return NewIllegalStateError("Submit", "document "+d.ID.String()+" was already submitted", nil)
	}
	return nil
}

// Transition moves the document to next when allowed.
func (d *Document) Transition(next DocumentStatus) error {
	if !d.Status.CanTransitionTo(next) {
		return transitionError("Transition", d.Status, next)
	}
	d.Status = next
	d.Touch()
	return nil
}

// AssignRemote records the provider id and number of a submitted document.
func (d *Document) AssignRemote(remoteID, number string) error {
	if err := d.Transition(DocumentStatusRemoteIDAssigned); err != nil {
		return err
	}
	d.SetRemoteID(remoteID)
	d.Number = number
	return nil
}

// PDFName returns the archive file name of the certified PDF.
func (d *Document) PDFName() string {
	name := d.Number
	if name == "" {
		name = d.ID.String()
	}
	return strings.ReplaceAll(name, "/", "-") + ".pdf"
}

// DocumentRepository loads and saves documents with their lines.
type DocumentRepository interface {
	// FindByID returns shared.ErrNotFound when the document does not exist.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)
	// Insert stores a new draft with its lines.
	Insert(ctx context.Context, doc *Document) error
	// Save persists the header of the document: status, remote id, number
	// and archive key.
	Save(ctx context.Context, doc *Document) error
}
