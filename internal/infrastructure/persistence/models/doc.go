// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and SyncModel, the columns shared by every synchronized record
// - partner.go: customers and suppliers
// - catalog.go: products and the provider catalog collections
// - account.go: payment methods, registers, provider users and tenant credentials
// - document.go: fiscal documents and their lines
// - sync_run.go: import history
package models

// All lists every model managed by the schema, in dependency order.
func All() []any {
	return []any{
		&CustomerModel{},
		&SupplierModel{},
		&ProductModel{},
		&CategoryModel{},
		&UnitModel{},
		&BrandModel{},
		&PriceGroupModel{},
		&PaymentMethodModel{},
		&RegisterModel{},
		&RemoteUserModel{},
		&AccountModel{},
		&TenantSettingsModel{},
		&UserLinkModel{},
		&DocumentModel{},
		&DocumentLineModel{},
		&SyncRunModel{},
	}
}
