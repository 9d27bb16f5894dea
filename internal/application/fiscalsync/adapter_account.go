package fiscalsync

import (
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
)

// PaymentMethodAdapter maps document payment methods.
type PaymentMethodAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.PaymentMethod]
}

// NewPaymentMethodAdapter creates the payment method adapter
func NewPaymentMethodAdapter() *PaymentMethodAdapter {
	return &PaymentMethodAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.PaymentMethod]{
		Entity: "payment_methods",
		Path:   "documents/paymentmethods/",
	}}
}

func (a *PaymentMethodAdapter) ToCreatePayload(_ fiscalsync.SyncContext, m *fiscalsync.PaymentMethod) (fiscalsync.Payload, error) {
	change := 0
	if m.GivesChange {
		change = 1
	}
	return fiscalsync.Payload{
		"title":  m.Title,
		"change": change,
		"type":   m.MethodType,
		"status": fiscalsync.OnOff(m.Active),
	}, nil
}

// ToUpdatePayload is empty: the provider does not accept edits.
func (a *PaymentMethodAdapter) ToUpdatePayload(fiscalsync.SyncContext, *fiscalsync.PaymentMethod) (fiscalsync.Payload, error) {
	return fiscalsync.Payload{}, nil
}

func (a *PaymentMethodAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"title":        rec.String("title"),
		"gives_change": rec.Int("change") != 0,
		"method_type":  rec.String("type"),
		"active":       rec.String("status") == "on",
		"remote_id":    rec.ID(),
	}, nil
}

func (a *PaymentMethodAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, _ *fiscalsync.PaymentMethod, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return a.FromRemote(sc, rec)
}

// RegisterAdapter maps cash registers. Registers are managed at the
// provider and can only be imported.
type RegisterAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.Register]
}

// NewRegisterAdapter creates the register adapter
func NewRegisterAdapter() *RegisterAdapter {
	return &RegisterAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.Register]{Entity: "registers", Path: "registers/"}}
}

func (a *RegisterAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"title":     rec.String("title"),
		"active":    rec.String("status") == "on",
		"remote_id": rec.ID(),
	}, nil
}

func (a *RegisterAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, _ *fiscalsync.Register, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return a.FromRemote(sc, rec)
}

// RemoteUserAdapter maps the provider's account users.
type RemoteUserAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.RemoteUser]
}

// NewRemoteUserAdapter creates the remote user adapter
func NewRemoteUserAdapter() *RemoteUserAdapter {
	return &RemoteUserAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.RemoteUser]{Entity: "users", Path: "account/users/"}}
}

// FromRemote never touches the stored API key, which the provider does not
// return.
func (a *RemoteUserAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"title":     rec.String("name"),
		"email":     rec.String("email"),
		"remote_id": rec.ID(),
	}, nil
}

func (a *RemoteUserAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, _ *fiscalsync.RemoteUser, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return a.FromRemote(sc, rec)
}

func (a *RemoteUserAdapter) MatchPredicates(rec fiscalsync.RemoteRecord) []fiscalsync.Predicate {
	return []fiscalsync.Predicate{
		fiscalsync.Eq(fiscalsync.FieldRemoteID, rec.ID()),
		fiscalsync.Eq("email", rec.String("email")),
	}
}

// DefaultOverride makes user imports refresh matched records.
func (a *RemoteUserAdapter) DefaultOverride() bool { return true }

// AccountAdapter maps the provider account the tenant key belongs to.
type AccountAdapter struct {
	fiscalsync.BaseAdapter[*fiscalsync.Account]
}

// NewAccountAdapter creates the account adapter
func NewAccountAdapter() *AccountAdapter {
	return &AccountAdapter{BaseAdapter: fiscalsync.BaseAdapter[*fiscalsync.Account]{Entity: "account", Path: "account/"}}
}

func (a *AccountAdapter) FromRemote(_ fiscalsync.SyncContext, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return fiscalsync.Fields{
		"title":     rec.String("company"),
		"url":       rec.String("url"),
		"remote_id": rec.ID(),
	}, nil
}

func (a *AccountAdapter) UpdateFromRemote(sc fiscalsync.SyncContext, _ *fiscalsync.Account, rec fiscalsync.RemoteRecord) (fiscalsync.Fields, error) {
	return a.FromRemote(sc, rec)
}
