package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/infrastructure/persistence/models"
)

// SyncStores holds the store of every synchronized entity type.
type SyncStores struct {
	Customers      fiscalsync.Store[*fiscalsync.Customer]
	Suppliers      fiscalsync.Store[*fiscalsync.Supplier]
	Products       fiscalsync.Store[*fiscalsync.Product]
	Categories     fiscalsync.Store[*fiscalsync.Category]
	Units          fiscalsync.Store[*fiscalsync.Unit]
	Brands         fiscalsync.Store[*fiscalsync.Brand]
	PriceGroups    fiscalsync.Store[*fiscalsync.PriceGroup]
	PaymentMethods fiscalsync.Store[*fiscalsync.PaymentMethod]
	Registers      fiscalsync.Store[*fiscalsync.Register]
	RemoteUsers    fiscalsync.Store[*fiscalsync.RemoteUser]
	Accounts       fiscalsync.Store[*fiscalsync.Account]
	Documents      *GormDocumentRepository
}

// NewSyncStores creates the stores on db.
func NewSyncStores(db *gorm.DB) (*SyncStores, error) {
	var s SyncStores
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	s.Customers, err = NewGormStore[*fiscalsync.Customer, models.CustomerModel](db)
	collect(err)
	s.Suppliers, err = NewGormStore[*fiscalsync.Supplier, models.SupplierModel](db)
	collect(err)
	s.Products, err = NewGormStore[*fiscalsync.Product, models.ProductModel](db)
	collect(err)
	s.Categories, err = NewGormStore[*fiscalsync.Category, models.CategoryModel](db)
	collect(err)
	s.Units, err = NewGormStore[*fiscalsync.Unit, models.UnitModel](db)
	collect(err)
	s.Brands, err = NewGormStore[*fiscalsync.Brand, models.BrandModel](db)
	collect(err)
	s.PriceGroups, err = NewGormStore[*fiscalsync.PriceGroup, models.PriceGroupModel](db)
	collect(err)
	s.PaymentMethods, err = NewGormStore[*fiscalsync.PaymentMethod, models.PaymentMethodModel](db)
	collect(err)
	s.Registers, err = NewGormStore[*fiscalsync.Register, models.RegisterModel](db)
	collect(err)
	s.RemoteUsers, err = NewGormStore[*fiscalsync.RemoteUser, models.RemoteUserModel](db)
	collect(err)
	s.Accounts, err = NewGormStore[*fiscalsync.Account, models.AccountModel](db)
	collect(err)
	s.Documents, err = NewGormDocumentRepository(db)
	collect(err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &s, nil
}
