package handler

import (
	"github.com/gin-gonic/gin"

	syncapp "github.com/erp/fiscalsync/internal/application/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/interfaces/http/dto"
	"github.com/erp/fiscalsync/internal/interfaces/http/middleware"
)

// SyncerRegistry looks up entity syncers by collection name.
type SyncerRegistry interface {
	Get(name string) (syncapp.Syncer, error)
	Names() []string
}

// SyncHandler exposes the reconciliation operations of every registered
// entity type.
type SyncHandler struct {
	BaseHandler
	registry    SyncerRegistry
	credentials ContextResolver
}

// NewSyncHandler creates a SyncHandler
func NewSyncHandler(registry SyncerRegistry, credentials ContextResolver) *SyncHandler {
	return &SyncHandler{registry: registry, credentials: credentials}
}

// prepare resolves the syncer named by the :entity parameter and the
// caller's SyncContext.
func (h *SyncHandler) prepare(c *gin.Context) (syncapp.Syncer, fiscalsync.SyncContext, bool) {
	syncer, err := h.registry.Get(c.Param("entity"))
	if err != nil {
		h.HandleError(c, err)
		return nil, fiscalsync.SyncContext{}, false
	}
	sc, ok := h.syncContext(c, h.credentials)
	return syncer, sc, ok
}

// ListEntities godoc
// @ID           listSyncEntities
// @Summary      List synchronized entity types
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[[]dto.EntityResponse]
// @Security     BearerAuth
// @Router       /entities [get]
func (h *SyncHandler) ListEntities(c *gin.Context) {
	names := h.registry.Names()
	out := make([]dto.EntityResponse, 0, len(names))
	for _, name := range names {
		syncer, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		out = append(out, dto.EntityResponse{Name: name, DefaultOverride: syncer.DefaultOverride()})
	}
	h.Success(c, out)
}

// ListRemote godoc
// @ID           listRemoteRecords
// @Summary      List every remote record of an entity type
// @Tags         sync
// @Produce      json
// @Param        entity path string true "Entity collection"
// @Success      200 {object} APIResponse[[]map[string]any]
// @Failure      404 {object} ErrorResponse
// @Failure      412 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /entities/{entity}/remote [get]
func (h *SyncHandler) ListRemote(c *gin.Context) {
	syncer, sc, ok := h.prepare(c)
	if !ok {
		return
	}
	records, err := syncer.ListRemote(c.Request.Context(), sc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if records == nil {
		records = []fiscalsync.RemoteRecord{}
	}
	h.Success(c, records)
}

// Import godoc
// @ID           importEntity
// @Summary      Import every remote record of an entity type
// @Description  Creates local records for unknown remote ids and updates linked ones when override is set.
// @Tags         sync
// @Produce      json
// @Param        entity   path  string  true  "Entity collection"
// @Param        override query boolean false "Overwrite linked local records"
// @Success      200 {object} APIResponse[dto.RunResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /entities/{entity}/import [post]
func (h *SyncHandler) Import(c *gin.Context) {
	var query dto.ImportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	syncer, sc, ok := h.prepare(c)
	if !ok {
		return
	}
	override := syncer.DefaultOverride()
	if query.Override != nil {
		override = *query.Override
	}

	run, err := syncer.Import(c.Request.Context(), sc, override)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewRunResponse(run))
}

// ImportOne godoc
// @ID           importRemoteRecord
// @Summary      Import one remote record
// @Tags         sync
// @Produce      json
// @Param        entity    path string true "Entity collection"
// @Param        remote_id path string true "Remote id"
// @Success      200 {object} APIResponse[dto.ImportOneResponse]
// @Security     BearerAuth
// @Router       /entities/{entity}/import/{remote_id} [post]
func (h *SyncHandler) ImportOne(c *gin.Context) {
	syncer, sc, ok := h.prepare(c)
	if !ok {
		return
	}
	remoteID := c.Param("remote_id")
	id, err := syncer.ImportOne(c.Request.Context(), sc, remoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ImportOneResponse{Entity: syncer.Name(), RemoteID: remoteID, ID: id})
}

// Push godoc
// @ID           pushRecord
// @Summary      Create or update the remote copy of a local record
// @Tags         sync
// @Produce      json
// @Param        entity path string true "Entity collection"
// @Param        id     path string true "Local id" format(uuid)
// @Success      200 {object} APIResponse[map[string]any]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /entities/{entity}/{id}/push [post]
func (h *SyncHandler) Push(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	syncer, sc, ok := h.prepare(c)
	if !ok {
		return
	}
	rec, err := syncer.Push(c.Request.Context(), sc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// ReadRemote returns the remote copy of a linked local record.
func (h *SyncHandler) ReadRemote(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	syncer, sc, ok := h.prepare(c)
	if !ok {
		return
	}
	rec, err := syncer.ReadRemote(c.Request.Context(), sc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// DeleteRemote deletes the remote copy of a local record and unlinks it.
func (h *SyncHandler) DeleteRemote(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	syncer, sc, ok := h.prepare(c)
	if !ok {
		return
	}
	rec, err := syncer.DeleteRemote(c.Request.Context(), sc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// ResolveReference returns the payload that references a local record from
// another one, creating its remote copy first when it has none.
func (h *SyncHandler) ResolveReference(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	syncer, sc, ok := h.prepare(c)
	if !ok {
		return
	}
	payload, err := syncer.ResolveReference(c.Request.Context(), sc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ReferenceResponse{Entity: syncer.Name(), ID: id, Payload: payload})
}
