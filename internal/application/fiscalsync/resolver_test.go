package fiscalsync

import (
	"context"
	"net/http"
	"testing"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCustomerResolver(t *testing.T, f *customerFixture) *Resolver[*fiscalsync.Customer] {
	t.Helper()
	r, err := NewResolver(f.engine)
	require.NoError(t, err)
	return r
}

func TestNewResolver_RequiresNaturalKey(t *testing.T) {
	engine := NewEngine[*fiscalsync.Register](NewRegisterAdapter(), new(MockStore[*fiscalsync.Register]), new(MockGateway), new(MockTransactor), nil)

	_, err := NewResolver(engine)
	assert.ErrorIs(t, err, fiscalsync.ErrNotImplemented)
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("linked record is referenced by id", func(t *testing.T) {
		f := newCustomerFixture()
		r := newCustomerResolver(t, f)
		c := newTestCustomer(t, f.sc.TenantID, "ACME")
		c.SetRemoteID("7")

		ref, err := r.Resolve(context.Background(), f.sc, c)
		require.NoError(t, err)
		assert.Equal(t, fiscalsync.Payload{"id": "7"}, ref)
		f.gateway.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("natural key is sent inline", func(t *testing.T) {
		f := newCustomerFixture()
		r := newCustomerResolver(t, f)
		c := newTestCustomer(t, f.sc.TenantID, "ACME")
		c.VAT = "500100200"
		c.CountryCode = "PT"

		ref, err := r.Resolve(context.Background(), f.sc, c)
		require.NoError(t, err)
		assert.Equal(t, fiscalsync.Payload{"name": "ACME", "fiscal_id": "500100200", "country": "PT"}, ref)
		assert.NotContains(t, ref, "id")
		f.gateway.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything)
		f.tx.AssertNotCalled(t, "Checkpoint", mock.Anything)
	})

	t.Run("no natural key is created and committed first", func(t *testing.T) {
		f := newCustomerFixture()
		r := newCustomerResolver(t, f)
		c := newTestCustomer(t, f.sc.TenantID, "Walk-in")

		f.gateway.On("Do", mock.Anything, f.sc, methodIs(http.MethodPost, "clients/")).
			Return(jsonResponse(`{"id": 44}`), nil).Once()
		f.store.On("Update", mock.Anything, f.sc.TenantID, c.ID, fiscalsync.Fields{"remote_id": "44"}).Return(true, nil).Once()
		f.tx.On("Checkpoint", mock.Anything).Return(nil).Once()

		ref, err := r.Resolve(context.Background(), f.sc, c)
		require.NoError(t, err)
		assert.Equal(t, fiscalsync.Payload{"id": "44"}, ref)
		f.tx.AssertExpectations(t)
	})

	t.Run("create failure is returned", func(t *testing.T) {
		f := newCustomerFixture()
		r := newCustomerResolver(t, f)
		c := newTestCustomer(t, f.sc.TenantID, "Walk-in")
		f.gateway.On("Do", mock.Anything, f.sc, mock.Anything).
			Return(nil, &fiscalsync.RemoteServiceError{StatusCode: 400, Messages: []string{"Invalid name"}}).Once()

		_, err := r.Resolve(context.Background(), f.sc, c)

		var verr *fiscalsync.ValidationError
		assert.ErrorAs(t, err, &verr)
		f.tx.AssertNotCalled(t, "Checkpoint", mock.Anything)
	})
}

func TestResolver_SupplierAlwaysInline(t *testing.T) {
	engine := NewEngine[*fiscalsync.Supplier](NewSupplierAdapter(), new(MockStore[*fiscalsync.Supplier]), new(MockGateway), new(MockTransactor), nil)
	r, err := NewResolver(engine)
	require.NoError(t, err)

	s, err := fiscalsync.NewSupplier(testContext().TenantID, "Parts Lda")
	require.NoError(t, err)

	ref, err := r.Resolve(context.Background(), testContext(), s)
	require.NoError(t, err)
	assert.Equal(t, fiscalsync.Payload{"name": "Parts Lda"}, ref)
}
