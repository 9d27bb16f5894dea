package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/interfaces/http/dto"
	"github.com/erp/fiscalsync/internal/interfaces/http/middleware"
)

// DocumentIssuer drives fiscal documents through their submission states.
type DocumentIssuer interface {
	CreateDraft(ctx context.Context, sc fiscalsync.SyncContext, d *fiscalsync.Document) error
	Get(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error)
	Submit(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error)
	Backfill(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error)
	Cancel(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) (*fiscalsync.Document, error)
	FetchPDF(ctx context.Context, sc fiscalsync.SyncContext, id uuid.UUID) ([]byte, string, error)
}

// DocumentHandler issues fiscal documents through the provider.
type DocumentHandler struct {
	BaseHandler
	documents   DocumentIssuer
	credentials ContextResolver
}

// NewDocumentHandler creates a DocumentHandler
func NewDocumentHandler(documents DocumentIssuer, credentials ContextResolver) *DocumentHandler {
	return &DocumentHandler{documents: documents, credentials: credentials}
}

// Create godoc
// @ID           createFiscalDocument
// @Summary      Create a draft fiscal document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateDocumentRequest true "Document"
// @Success      201 {object} APIResponse[dto.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	sc, ok := h.syncContext(c, h.credentials)
	if !ok {
		return
	}
	d, err := req.ToDomain(sc.TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.documents.CreateDraft(c.Request.Context(), sc, d); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewDocumentResponse(d))
}

// Get returns a document of the tenant. Reading local state needs no
// provider key.
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	caller, ok := h.identity(c)
	if !ok {
		return
	}
	sc := fiscalsync.SyncContext{TenantID: caller.TenantID, UserID: caller.UserID, AsSystem: caller.AsSystem}
	d, err := h.documents.Get(c.Request.Context(), sc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDocumentResponse(d))
}

// Submit godoc
// @ID           submitFiscalDocument
// @Summary      Send a draft document to the provider
// @Description  Resolves the referenced customers, suppliers and products, issues the document and fetches the remote line ids back.
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[dto.DocumentResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/submit [post]
func (h *DocumentHandler) Submit(c *gin.Context) {
	h.run(c, h.documents.Submit)
}

// Backfill retries fetching the remote line ids of an issued document.
func (h *DocumentHandler) Backfill(c *gin.Context) {
	h.run(c, h.documents.Backfill)
}

// Cancel cancels an issued document at the provider.
func (h *DocumentHandler) Cancel(c *gin.Context) {
	h.run(c, h.documents.Cancel)
}

// PDF streams the certified PDF of an issued document.
func (h *DocumentHandler) PDF(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	sc, ok := h.syncContext(c, h.credentials)
	if !ok {
		return
	}
	content, name, err := h.documents.FetchPDF(c.Request.Context(), sc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename="+strconv.Quote(name))
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *DocumentHandler) run(c *gin.Context, op func(context.Context, fiscalsync.SyncContext, uuid.UUID) (*fiscalsync.Document, error)) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	sc, ok := h.syncContext(c, h.credentials)
	if !ok {
		return
	}
	d, err := op(c.Request.Context(), sc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDocumentResponse(d))
}
