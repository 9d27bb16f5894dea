package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDocumentRequest_ToDomain(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	body := `{
		"kind": "invoice",
		"document_type": "FT",
		"register_remote_id": "7",
		"date": "2026-03-01T10:00:00Z",
		"customer_id": "` + customerID.String() + `",
		"total": "24.60",
		"lines": [
			{"product_id": "` + productA.String() + `", "title": "Widget", "quantity": "2", "unit_price": "10", "tax_rate": "23"},
			{"product_id": "` + productB.String() + `", "title": "Service", "quantity": "1", "unit_price": "0.5"}
		],
		"payments": [{"method_remote_id": "3", "amount": "24.60"}]
	}`
	var req CreateDocumentRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	d, err := req.ToDomain(tenantID)
	require.NoError(t, err)

	assert.Equal(t, tenantID, d.TenantID)
	assert.Equal(t, fiscalsync.DocumentKindInvoice, d.Kind)
	assert.Equal(t, fiscalsync.DocumentStatusDraft, d.Status)
	assert.Equal(t, "FT", d.DocumentType)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), d.Date.UTC())
	require.NotNil(t, d.CustomerID)
	assert.Equal(t, customerID, *d.CustomerID)
	assert.True(t, decimal.RequireFromString("24.60").Equal(d.Total))
	require.Len(t, d.Lines, 2)
	assert.Equal(t, 1, d.Lines[0].Sequence)
	assert.Equal(t, 2, d.Lines[1].Sequence)
	assert.Equal(t, productB, d.Lines[1].ProductID)
	assert.NotEqual(t, uuid.Nil, d.Lines[0].ID)
	require.Len(t, d.Payments, 1)
	assert.Equal(t, "3", d.Payments[0].MethodRemoteID)
	assert.False(t, d.IsLinked())
}

func TestCreateDocumentRequest_ToDomainDefaults(t *testing.T) {
	req := CreateDocumentRequest{Kind: "receipt"}
	before := time.Now()
	d, err := req.ToDomain(uuid.New())
	require.NoError(t, err)
	assert.False(t, d.Date.Before(before))
	assert.Empty(t, d.Lines)
}

func TestCreateDocumentRequest_ToDomainRejectsUnknownKind(t *testing.T) {
	req := CreateDocumentRequest{Kind: "quote"}
	_, err := req.ToDomain(uuid.New())
	assert.Error(t, err)
}

func TestNewDocumentResponse(t *testing.T) {
	d, err := fiscalsync.NewDraft(uuid.New(), fiscalsync.DocumentKindInvoice, []fiscalsync.DocumentLine{
		{ProductID: uuid.New(), Title: "Widget", Quantity: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	require.NoError(t, d.Transition(fiscalsync.DocumentStatusReferencesResolved))
	require.NoError(t, d.Transition(fiscalsync.DocumentStatusSubmitted))
	require.NoError(t, d.AssignRemote("901", "FT 1/12"))
	d.ArchiveKey = "tenant/docs/ft-1-12.pdf"

	resp := NewDocumentResponse(d)
	assert.Equal(t, "901", resp.RemoteID)
	assert.Equal(t, "FT 1/12", resp.Number)
	assert.Equal(t, string(fiscalsync.DocumentStatusRemoteIDAssigned), resp.Status)
	assert.True(t, resp.Archived)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 1, resp.Lines[0].Sequence)
}

func TestNewSettingsResponse_HidesKey(t *testing.T) {
	resp := NewSettingsResponse(&fiscalsync.TenantSettings{TenantID: uuid.New(), APIKey: "secret", Active: true})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.True(t, resp.HasAPIKey)
}

func TestNewRunResponses(t *testing.T) {
	run, err := fiscalsync.NewSyncRun(uuid.New(), "customers", true, uuid.Nil)
	require.NoError(t, err)
	require.NoError(t, run.Complete(3, 2))

	out := NewRunResponses([]fiscalsync.SyncRun{*run})
	require.Len(t, out, 1)
	assert.Equal(t, "customers", out[0].Entity)
	assert.Equal(t, 3, out[0].Created)
	assert.Equal(t, 2, out[0].Updated)
	assert.Equal(t, string(fiscalsync.SyncRunStatusSuccess), out[0].Status)
	assert.NotNil(t, out[0].FinishedAt)
}
