package fiscalsync

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// documentCheck holds the fields a document needs before it may be sent.
type documentCheck struct {
	Kind            string                       `validate:"required,oneof=invoice credit_note receipt sale_order stock_transport"`
	DocumentType    string                       `validate:"required_unless=Kind receipt"`
	Register        string                       `validate:"required"`
	Date            time.Time                    `validate:"required"`
	Customer        *uuid.UUID                   `validate:"required_unless=Kind stock_transport"`
	Lines           []lineCheck                  `validate:"required_unless=Kind receipt,dive"`
	Payments        []fiscalsync.DocumentPayment `validate:"required_if=Kind receipt"`
	SettledInvoices []string                     `validate:"required_if=Kind receipt,dive,required"`
}

type lineCheck struct {
	Product  uuid.UUID `validate:"required"`
	Quantity float64   `validate:"gt=0"`
}

// DocumentService issues fiscal documents through the provider.
type DocumentService struct {
	docs      fiscalsync.DocumentRepository
	engine    *Engine[*fiscalsync.Document]
	adapter   *DocumentAdapter
	customers *Resolver[*fiscalsync.Customer]
	suppliers *Resolver[*fiscalsync.Supplier]
	products  *Resolver[*fiscalsync.Product]
	tx        fiscalsync.Transactor
	archive   fiscalsync.DocumentArchive
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService creates a DocumentService
func NewDocumentService(
	docs fiscalsync.DocumentRepository,
	engine *Engine[*fiscalsync.Document],
	customers *Engine[*fiscalsync.Customer],
	suppliers *Engine[*fiscalsync.Supplier],
	products *Engine[*fiscalsync.Product],
	tx fiscalsync.Transactor,
	archive fiscalsync.DocumentArchive,
	logger *zap.Logger,
) (*DocumentService, error) {
	adapter, ok := engine.Adapter().(*DocumentAdapter)
	if !ok {
		return nil, fmt.Errorf("%w: document engine needs a DocumentAdapter", fiscalsync.ErrNotImplemented)
	}
	customerResolver, err := NewResolver(customers)
	if err != nil {
		return nil, err
	}
	supplierResolver, err := NewResolver(suppliers)
	if err != nil {
		return nil, err
	}
	productResolver, err := NewResolver(products)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		docs:      docs,
		engine:    engine,
		adapter:   adapter,
		customers: customerResolver,
		suppliers: supplierResolver,
		products:  productResolver,
		tx:        tx,
		archive:   archive,
		validate:  validator.New(),
		logger:    logger.Named("documents"),
	}, nil
}

// CreateDraft stores a new document that has not been sent yet.
func (s *DocumentService) CreateDraft(ctx context.Context, sc fiscalsync.SyncContext, d *fiscalsync.Document) error {
	if d.TenantID != sc.TenantID {
		return fiscalsync.NewValidationError("document belongs to another tenant", nil)
	}
	if d.Status != fiscalsync.DocumentStatusDraft || d.IsLinked() {
		return fiscalsync.NewIllegalStateError("CreateDraft", "only drafts can be created", fiscalsync.ErrInvalidTransition)
	}
	if !d.Kind.IsValid() {
		return fiscalsync.NewValidationError("unknown document kind "+string(d.Kind), nil)
	}
	if err := s.docs.Insert(ctx, d); err != nil {
		return err
	}
	s.logger.Debug("Draft created", zap.String("document_id", d.ID.String()), zap.String("kind", string(d.Kind)))
	return nil
}

// Get returns a document of the tenant.
func (s *DocumentService) Get(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error) {
	return s.docs.FindByID(ctx, sc.TenantID, id)
}

// Submit sends a draft document to the provider. Customers created on the
// way are committed before the document itself is sent. Once the provider
// has assigned an id the document is committed again, so a failure while
// fetching ids back leaves it REMOTE_ID_ASSIGNED and Backfill can finish
// the job.
func (s *DocumentService) Submit(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fiscal_document", "submit",
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, id.String()),
	)
	defer span.End()

	var doc *fiscalsync.Document
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		d, err := s.docs.FindByID(ctx, sc.TenantID, id)
		if err != nil {
			return err
		}
		doc = d
		if err := d.EnsureSubmittable(); err != nil {
			return err
		}
		if err := s.check(d); err != nil {
			return err
		}

		refs, err := s.resolve(ctx, sc, d)
		if err != nil {
			return err
		}
		if err := d.Transition(fiscalsync.DocumentStatusReferencesResolved); err != nil {
			return err
		}

		payload, err := s.adapter.Compose(sc, d, refs)
		if err != nil {
			return s.reset(d, err)
		}
		if err := d.Transition(fiscalsync.DocumentStatusSubmitted); err != nil {
			return err
		}
		rec, err := s.engine.CreateWithPayload(ctx, sc, d, payload)
		if err != nil {
			return s.reset(d, err)
		}

		if err := d.AssignRemote(rec.ID(), rec.String("number")); err != nil {
			return err
		}
		s.store(ctx, d, rec.String("output"))
		if err := s.docs.Save(ctx, d); err != nil {
			return err
		}
		if err := s.tx.Checkpoint(ctx); err != nil {
			return err
		}
		s.logger.Info("Document issued",
			zap.String("document_id", d.ID.String()),
			zap.String("remote_id", d.RemoteID()),
			zap.String("number", d.Number),
		)

		return s.backfill(ctx, sc, d)
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	if doc != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrDocumentStatus, doc.Status.String())
	}
	return doc, err
}

// Backfill finishes a submission whose remote ids were not written back.
func (s *DocumentService) Backfill(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error) {
	var doc *fiscalsync.Document
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		d, err := s.docs.FindByID(ctx, sc.TenantID, id)
		if err != nil {
			return err
		}
		doc = d
		if d.Status != fiscalsync.DocumentStatusRemoteIDAssigned {
			return fiscalsync.NewIllegalStateError("Backfill", "document is "+d.Status.String(), fiscalsync.ErrInvalidTransition)
		}
		return s.backfill(ctx, sc, d)
	})
	return doc, err
}

// Cancel voids an issued document at the provider.
func (s *DocumentService) Cancel(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fiscal_document", "cancel",
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, id.String()),
	)
	defer span.End()

	d, err := s.docs.FindByID(ctx, sc.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !d.Status.CanTransitionTo(fiscalsync.DocumentStatusCancelled) {
		return d, fiscalsync.NewIllegalStateError("Cancel", "document is "+d.Status.String(), fiscalsync.ErrInvalidTransition)
	}
	if _, err := s.engine.Update(ctx, sc, d); err != nil {
		telemetry.RecordError(span, err)
		return d, err
	}
	if err := d.Transition(fiscalsync.DocumentStatusCancelled); err != nil {
		return d, err
	}
	if err := s.docs.Save(ctx, d); err != nil {
		return d, err
	}
	s.logger.Info("Document cancelled", zap.String("document_id", d.ID.String()), zap.String("remote_id", d.RemoteID()))
	return d, nil
}

// FetchPDF downloads the certified PDF of an issued document.
func (s *DocumentService) FetchPDF(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) ([]byte, string, error) {
	d, err := s.docs.FindByID(ctx, sc.TenantID, id)
	if err != nil {
		return nil, "", err
	}
	rec, err := s.engine.Read(ctx, sc, d)
	if err != nil {
		return nil, "", err
	}
	output := rec.String("output")
	if output == "" {
		return nil, "", fmt.Errorf("%w: no pdf output", fiscalsync.ErrUnexpectedResponse)
	}
	content, err := base64.StdEncoding.DecodeString(output)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", fiscalsync.ErrUnexpectedResponse, err)
	}
	return content, d.PDFName(), nil
}

// ---------------------------------------------------------------------------
// Steps
// ---------------------------------------------------------------------------

func (s *DocumentService) check(d *fiscalsync.Document) error {
	in := documentCheck{
		Kind:            string(d.Kind),
		DocumentType:    d.DocumentType,
		Register:        d.RegisterRemoteID,
		Date:            d.Date,
		Customer:        d.CustomerID,
		Payments:        d.Payments,
		SettledInvoices: d.SettledInvoices,
	}
	for _, l := range d.Lines {
		qty, _ := l.Quantity.Float64()
		in.Lines = append(in.Lines, lineCheck{Product: l.ProductID, Quantity: qty})
	}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fiscalsync.NewValidationError(fmt.Sprintf("document %s: %s failed on %s", d.ID, verrs[0].Namespace(), verrs[0].Tag()), err)
		}
		return fiscalsync.NewValidationError("document "+d.ID.String()+" is incomplete", err)
	}
	if d.UsesSupplier() && d.SupplierID == nil {
		return fiscalsync.NewValidationError("document "+d.ID.String()+": return guide needs a supplier", nil)
	}
	if d.Kind == fiscalsync.DocumentKindCreditNote {
		for _, l := range d.Lines {
			if l.RefDocumentNumber == "" || l.RefDocumentRow < 1 {
				return fiscalsync.NewValidationError("document "+d.ID.String()+": credit note line without refunded document row", nil)
			}
		}
	}
	return nil
}

func (s *DocumentService) resolve(ctx context.Context, sc fiscalsync.SyncContext, d *fiscalsync.Document) (DocumentReferences, error) {
	var refs DocumentReferences

	switch {
	case d.UsesSupplier():
		supplier, err := s.suppliers.Engine().Store().Get(ctx, sc.TenantID, *d.SupplierID)
		if err != nil {
			return refs, err
		}
		if refs.Supplier, err = s.suppliers.Resolve(ctx, sc, supplier); err != nil {
			return refs, err
		}
	case d.CustomerID != nil:
		customer, err := s.customers.Engine().Store().Get(ctx, sc.TenantID, *d.CustomerID)
		if err != nil {
			return refs, err
		}
		if refs.Customer, err = s.customers.Resolve(ctx, sc, customer); err != nil {
			return refs, err
		}
	}

	seen := make(map[uuid.UUID]LineReference)
	for _, line := range d.Lines {
		if ref, ok := seen[line.ProductID]; ok {
			refs.Lines = append(refs.Lines, ref)
			continue
		}
		product, err := s.products.Engine().Store().Get(ctx, sc.TenantID, line.ProductID)
		if err != nil {
			return refs, err
		}
		payload, err := s.products.Resolve(ctx, sc, product)
		if err != nil {
			return refs, err
		}
		ref := LineReference{Product: payload, ProductCode: product.Code}
		seen[line.ProductID] = ref
		refs.Lines = append(refs.Lines, ref)
	}
	return refs, nil
}

// reset puts a document that never reached the provider back to draft.
func (s *DocumentService) reset(d *fiscalsync.Document, cause error) error {
	if d.Status.CanTransitionTo(fiscalsync.DocumentStatusDraft) {
		_ = d.Transition(fiscalsync.DocumentStatusDraft)
	}
	return cause
}

// store archives the PDF returned with the created document. The document
// is already certified, so a failing archive is only logged.
func (s *DocumentService) store(ctx context.Context, d *fiscalsync.Document, output string) {
	if output == "" || s.archive == nil || d.ArchiveKey != "" {
		return
	}
	content, err := base64.StdEncoding.DecodeString(output)
	if err != nil {
		s.logger.Warn("Document pdf is not base64", zap.String("document_id", d.ID.String()), zap.Error(err))
		return
	}
	key, err := s.archive.Save(ctx, d.TenantID, d.PDFName(), content)
	if err != nil {
		s.logger.Warn("Failed to archive document pdf", zap.String("document_id", d.ID.String()), zap.Error(err))
		return
	}
	d.ArchiveKey = key
}

// backfill reads the issued document back and links the counterpart and
// the products the provider created inline.
func (s *DocumentService) backfill(ctx context.Context, sc fiscalsync.SyncContext, d *fiscalsync.Document) error {
	rec, err := s.engine.Read(ctx, sc, d)
	if err != nil {
		return err
	}

	if d.UsesSupplier() {
		if d.SupplierID != nil {
			// Return guides may come back with the counterpart under client.
			remoteID := rec.Record("supplier").ID()
			if remoteID == "" {
				remoteID = rec.Record("client").ID()
			}
			if err := link(ctx, sc, s.suppliers.Engine().Store(), *d.SupplierID, remoteID); err != nil {
				return err
			}
		}
	} else if d.CustomerID != nil {
		if err := link(ctx, sc, s.customers.Engine().Store(), *d.CustomerID, rec.Record("client").ID()); err != nil {
			return err
		}
	}

	items := rec.Records("items")
	for i, line := range d.Lines {
		if i >= len(items) {
			break
		}
		if err := link(ctx, sc, s.products.Engine().Store(), line.ProductID, items[i].ID()); err != nil {
			return err
		}
	}

	if err := d.Transition(fiscalsync.DocumentStatusBackfilled); err != nil {
		return err
	}
	return s.docs.Save(ctx, d)
}

// link stores remoteID on a local record that has none yet.
func link[E fiscalsync.Syncable](ctx context.Context, sc fiscalsync.SyncContext, store fiscalsync.Store[E], id uuid.UUID, remoteID string) error {
	if remoteID == "" {
		return nil
	}
	entity, err := store.Get(ctx, sc.TenantID, id)
	if err != nil {
		return err
	}
	if entity.RemoteID() != "" {
		return nil
	}
	entity.SetRemoteID(remoteID)
	_, err = store.Update(ctx, sc.TenantID, id, fiscalsync.Fields{fiscalsync.FieldRemoteID: remoteID})
	return err
}
