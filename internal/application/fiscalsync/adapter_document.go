package fiscalsync

import (
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
)

const dateLayout = "2006-01-02"

// documentLocation is the time zone the provider expects load and land
// times in.
var documentLocation = loadDocumentLocation()

func loadDocumentLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		return time.UTC
	}
	return loc
}

// LineReference is the resolved product of one document line.
type LineReference struct {
	Product     fiscalsync.Payload
	ProductCode string
}

// DocumentReferences holds the nested references of a document after
// resolution. Lines are in the same order as the document lines.
type DocumentReferences struct {
	Customer fiscalsync.Payload
	Supplier fiscalsync.Payload
	Lines    []LineReference
}

// DocumentAdapter composes fiscal documents. Creation needs resolved
// references and goes through Compose; documents are never imported.
type DocumentAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.Document]
}

// NewDocumentAdapter creates the document adapter
func NewDocumentAdapter() *DocumentAdapter {
	return &DocumentAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.Document]{Entity: "documents", Path: "documents/"}}
}

var (
	_ fiscalsync.Adapter[*fiscalsync.Document] = (*DocumentAdapter)(nil)
	_ fiscalsync.ReadParamsProvider            = (*DocumentAdapter)(nil)
)

// ToUpdatePayload cancels the document, the only change the provider
// accepts after issue.
func (a *DocumentAdapter) ToUpdatePayload(sc fiscalsync.SyncContext, _ *fiscalsync.Document) (fiscalsync.Payload, error) {
	return fiscalsync.Payload{"mode": sc.Mode(), "status": fiscalsync.RemoteStatusCancelled}, nil
}

// ReadParams asks for the certified PDF on every read.
func (a *DocumentAdapter) ReadParams(sc fiscalsync.SyncContext) url.Values {
	return url.Values{"mode": {sc.Mode()}, "output": {"pdf"}}
}

// Compose builds the creation payload of doc.
func (a *DocumentAdapter) Compose(sc fiscalsync.SyncContext, doc *fiscalsync.Document, refs DocumentReferences) (fiscalsync.Payload, error) {
	if len(refs.Lines) != len(doc.Lines) {
		return nil, fiscalsync.NewValidationError("document lines and resolved products differ", nil)
	}
	switch doc.Kind {
	case fiscalsync.DocumentKindInvoice, fiscalsync.DocumentKindCreditNote:
		return a.composeInvoice(sc, doc, refs), nil
	case fiscalsync.DocumentKindSaleOrder:
		return a.composeSaleOrder(sc, doc, refs), nil
	case fiscalsync.DocumentKindReceipt:
		return a.composeReceipt(sc, doc, refs), nil
	case fiscalsync.DocumentKindStockTransport:
		return a.composeTransport(sc, doc, refs), nil
	}
	return nil, fiscalsync.NewValidationError("unknown document kind "+string(doc.Kind), nil)
}

func (a *DocumentAdapter) header(sc fiscalsync.SyncContext, doc *fiscalsync.Document) fiscalsync.Payload {
	payload := fiscalsync.Payload{
		"register_id":        doc.RegisterRemoteID,
		"type":               doc.DocumentType,
		"date":               doc.Date.Format(dateLayout),
		"mode":               sc.Mode(),
		"notes":              doc.Notes,
		"external_reference": doc.ExternalReference,
		"output":             "pdf",
	}
	if doc.DueDate != nil {
		payload["date_due"] = doc.DueDate.Format(dateLayout)
	}
	return payload
}

func (a *DocumentAdapter) composeInvoice(sc fiscalsync.SyncContext, doc *fiscalsync.Document, refs DocumentReferences) fiscalsync.Payload {
	payload := a.header(sc, doc)
	payload["client"] = refs.Customer

	refund := doc.Kind == fiscalsync.DocumentKindCreditNote
	if refund {
		payload["type"] = fiscalsync.DocTypeCreditNote
		payload["notes"] = doc.Reason
	}
	if doc.SelfPaid && !refund {
		payload["payments"] = a.payments(doc, true)
	}

	items := make([]fiscalsync.Payload, 0, len(doc.Lines))
	for i, line := range doc.Lines {
		item := itemBase(refs.Lines[i], line)
		if refund {
			item["reference_document"] = fiscalsync.Payload{
				"document_number": line.RefDocumentNumber,
				"document_row":    line.RefDocumentRow,
			}
		} else {
			pricedItem(item, line, refs.Lines[i].ProductCode)
		}
		items = append(items, item)
	}
	payload["items"] = items
	return payload
}

func (a *DocumentAdapter) composeSaleOrder(sc fiscalsync.SyncContext, doc *fiscalsync.Document, refs DocumentReferences) fiscalsync.Payload {
	payload := a.header(sc, doc)
	payload["client"] = refs.Customer

	items := make([]fiscalsync.Payload, 0, len(doc.Lines))
	for i, line := range doc.Lines {
		item := itemBase(refs.Lines[i], line)
		pricedItem(item, line, refs.Lines[i].ProductCode)
		items = append(items, item)
	}
	payload["items"] = items
	return payload
}

func (a *DocumentAdapter) composeReceipt(sc fiscalsync.SyncContext, doc *fiscalsync.Document, refs DocumentReferences) fiscalsync.Payload {
	payload := a.header(sc, doc)
	delete(payload, "date_due")
	payload["type"] = fiscalsync.DocTypeReceipt
	payload["client"] = refs.Customer
	payload["payments"] = a.payments(doc, false)

	invoices := make([]fiscalsync.Payload, 0, len(doc.SettledInvoices))
	for _, number := range doc.SettledInvoices {
		invoices = append(invoices, fiscalsync.Payload{"document_number": number})
	}
	payload["invoices"] = invoices
	return payload
}

func (a *DocumentAdapter) composeTransport(sc fiscalsync.SyncContext, doc *fiscalsync.Document, refs DocumentReferences) fiscalsync.Payload {
	payload := a.header(sc, doc)
	delete(payload, "date_due")

	if mv := doc.Movement; mv != nil {
		start := mv.StartAt.In(documentLocation)
		land := fiscalsync.Payload{"is_global": yesNo(mv.IsGlobal)}
		if mv.EndAt != nil {
			end := mv.EndAt.In(documentLocation)
			land["date"] = end.Format(dateLayout)
			land["time"] = end.Format("15:04")
		}
		if !mv.IsGlobal {
			land["address"] = mv.Land.Street
			land["postalcode"] = mv.Land.Zip
			land["city"] = mv.Land.City
			land["country"] = mv.Land.CountryCode
		}
		payload["movement_of_goods"] = fiscalsync.Payload{
			"vehicle_id":  mv.VehicleID,
			"show_prices": "no",
			"loadpoint": fiscalsync.Payload{
				"date":       start.Format(dateLayout),
				"time":       start.Format("15:04"),
				"address":    mv.Load.Street,
				"postalcode": mv.Load.Zip,
				"city":       mv.Load.City,
				"country":    mv.Load.CountryCode,
			},
			"landpoint": land,
		}
	}

	if doc.UsesSupplier() {
		if refs.Supplier != nil {
			payload["supplier"] = refs.Supplier
		}
	} else if refs.Customer != nil {
		payload["client"] = refs.Customer
	}

	items := make([]fiscalsync.Payload, 0, len(doc.Lines))
	for i, line := range doc.Lines {
		item := itemBase(refs.Lines[i], line)
		item["title"] = line.Title
		items = append(items, item)
	}
	payload["items"] = items
	return payload
}

func (a *DocumentAdapter) payments(doc *fiscalsync.Document, withDue bool) []fiscalsync.Payload {
	out := make([]fiscalsync.Payload, 0, len(doc.Payments))
	for _, p := range doc.Payments {
		entry := fiscalsync.Payload{"id": p.MethodRemoteID, "amount": p.Amount}
		if withDue {
			due := doc.DueDate
			if p.DueDate != nil {
				due = p.DueDate
			}
			if due != nil {
				entry["date_due"] = due.Format(dateLayout)
			}
		}
		out = append(out, entry)
	}
	return out
}

// itemBase copies the resolved product reference and adds the quantity.
func itemBase(ref LineReference, line fiscalsync.DocumentLine) fiscalsync.Payload {
	item := make(fiscalsync.Payload, len(ref.Product)+4)
	for k, v := range ref.Product {
		item[k] = v
	}
	item["qty"] = line.Quantity
	return item
}

// pricedItem adds the title, the gross price and the tax of a sold line.
func pricedItem(item fiscalsync.Payload, line fiscalsync.DocumentLine, productCode string) {
	item["title"] = line.CleanTitle(productCode)
	item["gross_price"] = line.GrossPrice()
	item["discount_percentage"] = line.Discount

	if line.IsForeignTax() {
		delete(item, "tax_id")
		code := "ISE"
		if !line.TaxRate.IsZero() {
			code = "NOR"
		}
		item["tax_custom"] = fiscalsync.Payload{
			"country": line.TaxRegion,
			"rate":    line.TaxRate,
			"code":    code,
			"type":    "IVA",
		}
	} else {
		item["tax_id"] = line.TaxCode
		if line.TaxCode == "ISE" {
			item["tax_exemption"] = line.TaxExemption
		}
	}
	if line.Text != "" {
		item["text"] = line.Text
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
