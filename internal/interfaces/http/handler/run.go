package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/erp/fiscalsync/internal/interfaces/http/dto"
	"github.com/erp/fiscalsync/internal/interfaces/http/middleware"
)

// RunHandler serves the import run history of the calling tenant.
type RunHandler struct {
	BaseHandler
	runs fiscalsync.SyncRunRepository
}

// NewRunHandler creates a RunHandler
func NewRunHandler(runs fiscalsync.SyncRunRepository) *RunHandler {
	return &RunHandler{runs: runs}
}

// List godoc
// @ID           listSyncRuns
// @Summary      List import runs, newest first
// @Tags         runs
// @Produce      json
// @Param        entity    query string false "Entity collection"
// @Param        page      query int    false "Page"      minimum(1)
// @Param        page_size query int    false "Page size" minimum(1) maximum(100)
// @Success      200 {object} APIResponse[[]dto.RunResponse]
// @Security     BearerAuth
// @Router       /runs [get]
func (h *RunHandler) List(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var query dto.RunListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	query.Normalize()

	runs, total, err := h.runs.List(c.Request.Context(), id.TenantID, query.Entity, shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  "started_at",
		OrderDir: query.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewRunResponses(runs), total, query.Page, query.PageSize)
}

// Get returns one run of the tenant.
func (h *RunHandler) Get(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	runID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	run, err := h.runs.FindByID(c.Request.Context(), id.TenantID, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewRunResponse(run))
}
