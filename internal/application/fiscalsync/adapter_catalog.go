package fiscalsync

import (
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
)

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// ProductAdapter maps products to the provider's products collection.
type ProductAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.Product]
}

// NewProductAdapter creates the product adapter
func NewProductAdapter() *ProductAdapter {
	return &ProductAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.Product]{Entity: "products", Path: "products/"}}
}

var (
	_ fiscalsync.Adapter[*fiscalsync.Product]      = (*ProductAdapter)(nil)
	_ fiscalsync.NaturalKeyed[*fiscalsync.Product] = (*ProductAdapter)(nil)
)

// productPayload builds the product body. The provider refuses barcode and
// description flags when a product is created inside a document, so fast
// creation leaves them out.
func productPayload(p *fiscalsync.Product, fast bool) fiscalsync.Payload {
	payload := fiscalsync.Payload{
		"reference":         p.Code,
		"title":             p.Name,
		"supply_price":      p.SupplyPrice,
		"gross_price":       p.GrossPrice,
		"unit_id":           p.UnitRemoteID,
		"type_id":           p.RemoteType(),
		"stock_control":     p.StockControl(),
		"stock_type":        p.StockType(),
		"tax_id":            p.TaxCode,
		"tax_exemption":     p.TaxExemption,
		"tax_exemption_law": p.TaxExemptionLaw,
		"category_id":       p.CategoryRemoteID,
		"brand_id":          p.BrandRemoteID,
	}
	if !fast {
		payload["include_description"] = "no"
		payload["barcode"] = p.Barcode
	}
	return payload
}

func (a *ProductAdapter) ToCreatePayload(_ fiscalsync.SyncContext, p *fiscalsync.Product) (fiscalsync.Payload, error) {
	return productPayload(p, false), nil
}

func (a *ProductAdapter) ToUpdatePayload(sc fiscalsync.SyncContext, p *fiscalsync.Product) (fiscalsync.Payload, error) {
	return a.ToCreatePayload(sc, p)
}

func (a *ProductAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"code":               rec.String("reference"),
		"barcode":            rec.String("barcode"),
		"name":               rec.String("title"),
		"supply_price":       rec.Decimal("supply_price"),
		"gross_price":        rec.Decimal("price_without_tax"),
		"kind":               string(fiscalsync.ProductKindFromRemote(rec.String("type_id"))),
		"category_remote_id": rec.String("category_id"),
		"active":             rec.String("status") == "on",
		"remote_id":          rec.ID(),
	}, nil
}

// UpdateFromRemote never changes the kind of an existing product.
func (a *ProductAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, p *fiscalsync.Product, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	fields, _ := a.FromRemote(sc, rec)
	delete(fields, "kind")
	if p.IsLinked() {
		delete(fields, fiscalsync.FieldRemoteID)
	}
	return fields, nil
}

func (a *ProductAdapter) MatchPredicates(rec fiscalsync.RemoteRecord) []fiscalsync.Predicate {
	return []fiscalsync.Predicate{
		fiscalsync.Eq(fiscalsync.FieldRemoteID, rec.ID()),
		fiscalsync.Eq("code", rec.String("reference")),
		fiscalsync.Eq("barcode", rec.String("barcode")),
		fiscalsync.ILike("name", rec.String("title")),
	}
}

// DefaultOverride makes product imports refresh matched records.
func (a *ProductAdapter) DefaultOverride() bool { return true }

// HasNaturalKey is always true: products are created inline with documents.
func (a *ProductAdapter) HasNaturalKey(*fiscalsync.Product) bool { return true }

func (a *ProductAdapter) InlinePayload(_ fiscalsync.SyncContext, p *fiscalsync.Product) (fiscalsync.Payload, error) {
	return productPayload(p, true), nil
}

// RoundTripFields lists the payload keys that read back unchanged.
func (a *ProductAdapter) RoundTripFields() []string {
	return []string{"reference", "title", "barcode", "category_id"}
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// CategoryAdapter maps product categories.
type CategoryAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.Category]
}

// NewCategoryAdapter creates the category adapter
func NewCategoryAdapter() *CategoryAdapter {
	return &CategoryAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.Category]{Entity: "categories", Path: "products/categories/"}}
}

func (a *CategoryAdapter) ToCreatePayload(_ fiscalsync.SyncContext, c *fiscalsync.Category) (fiscalsync.Payload, error) {
	return fiscalsync.Payload{"title": c.Title, "status": fiscalsync.OnOff(c.Active)}, nil
}

func (a *CategoryAdapter) ToUpdatePayload(sc fiscalsync.SyncContext, c *fiscalsync.Category) (fiscalsync.Payload, error) {
	return a.ToCreatePayload(sc, c)
}

func (a *CategoryAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"title":     rec.String("title"),
		"active":    rec.String("status") == "on",
		"remote_id": rec.ID(),
	}, nil
}

func (a *CategoryAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, _ *fiscalsync.Category, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return a.FromRemote(sc, rec)
}

func (a *CategoryAdapter) MatchPredicates(rec fiscalsync.RemoteRecord) []fiscalsync.Predicate {
	return []fiscalsync.Predicate{
		fiscalsync.Eq(fiscalsync.FieldRemoteID, rec.ID()),
		fiscalsync.ILike("title", rec.String("title")),
	}
}

// ---------------------------------------------------------------------------
// Units
// ---------------------------------------------------------------------------

// UnitAdapter maps units of measure.
type UnitAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.Unit]
}

// NewUnitAdapter creates the unit adapter
func NewUnitAdapter() *UnitAdapter {
	return &UnitAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.Unit]{Entity: "units", Path: "products/units/"}}
}

func (a *UnitAdapter) ToCreatePayload(_ fiscalsync.SyncContext, u *fiscalsync.Unit) (fiscalsync.Payload, error) {
	return fiscalsync.Payload{
		"title":   u.Title,
		"default": fiscalsync.OnOff(u.IsDefault),
		"decimal": u.Decimals,
	}, nil
}

// ToUpdatePayload is empty: units are immutable once created.
func (a *UnitAdapter) ToUpdatePayload(fiscalsync.SyncContext, *fiscalsync.Unit) (fiscalsync.Payload, error) {
	return fiscalsync.Payload{}, nil
}

func (a *UnitAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"title":      rec.String("title"),
		"is_default": rec.String("default") == "on",
		"decimals":   rec.Int("decimal"),
		"remote_id":  rec.ID(),
	}, nil
}

func (a *UnitAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, _ *fiscalsync.Unit, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return a.FromRemote(sc, rec)
}

// ---------------------------------------------------------------------------
// Brands
// ---------------------------------------------------------------------------

// BrandAdapter maps product brands.
type BrandAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.Brand]
}

// NewBrandAdapter creates the brand adapter
func NewBrandAdapter() *BrandAdapter {
	return &BrandAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.Brand]{Entity: "brands", Path: "products/brands/"}}
}

func (a *BrandAdapter) ToCreatePayload(_ fiscalsync.SyncContext, b *fiscalsync.Brand) (fiscalsync.Payload, error) {
	return fiscalsync.Payload{"title": b.Title, "status": fiscalsync.OnOff(b.Active)}, nil
}

func (a *BrandAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"title":     rec.String("title"),
		"active":    rec.String("status") == "on",
		"remote_id": rec.ID(),
	}, nil
}

func (a *BrandAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, _ *fiscalsync.Brand, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return a.FromRemote(sc, rec)
}

func (a *BrandAdapter) MatchPredicates(rec fiscalsync.RemoteRecord) []fiscalsync.Predicate {
	return []fiscalsync.Predicate{
		fiscalsync.Eq(fiscalsync.FieldRemoteID, rec.ID()),
		fiscalsync.ILike("title", rec.String("title")),
	}
}

// ---------------------------------------------------------------------------
// Price groups
// ---------------------------------------------------------------------------

// PriceGroupAdapter maps price groups.
type PriceGroupAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.PriceGroup]
}

// NewPriceGroupAdapter creates the price group adapter
func NewPriceGroupAdapter() *PriceGroupAdapter {
	return &PriceGroupAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.PriceGroup]{Entity: "pricegroups", Path: "products/pricegroups/"}}
}

func (a *PriceGroupAdapter) ToCreatePayload(_ fiscalsync.SyncContext, g *fiscalsync.PriceGroup) (fiscalsync.Payload, error) {
	return fiscalsync.Payload{"title": g.Title, "is_default": fiscalsync.OnOff(g.IsDefault)}, nil
}

func (a *PriceGroupAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"title":      rec.String("title"),
		"is_default": rec.String("is_default") == "on",
		"remote_id":  rec.ID(),
	}, nil
}

func (a *PriceGroupAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, _ *fiscalsync.PriceGroup, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return a.FromRemote(sc, rec)
}
