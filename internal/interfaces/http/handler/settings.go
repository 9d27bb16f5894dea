package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	syncapp "github.com/erp/fiscalsync/internal/application/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/interfaces/http/dto"
	"github.com/erp/fiscalsync/internal/interfaces/http/middleware"
)

// SettingsManager stores tenant settings and user links.
type SettingsManager interface {
	Settings(ctx context.Context, tenantID uuid.UUID) (*fiscalsync.TenantSettings, error)
	Configure(ctx context.Context, tenantID uuid.UUID, in syncapp.ConfigureInput) (*fiscalsync.TenantSettings, error)
	LinkUser(ctx context.Context, tenantID, userID uuid.UUID, remoteUserID string) (*fiscalsync.UserLink, error)
}

// SettingsHandler manages the provider configuration of the calling tenant.
type SettingsHandler struct {
	BaseHandler
	settings SettingsManager
}

// NewSettingsHandler creates a SettingsHandler
func NewSettingsHandler(settings SettingsManager) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the settings of the calling tenant.
func (h *SettingsHandler) Get(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	s, err := h.settings.Settings(c.Request.Context(), id.TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSettingsResponse(s))
}

// Update godoc
// @ID           updateSyncSettings
// @Summary      Configure the provider settings of the tenant
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body dto.SettingsRequest true "Settings"
// @Success      200 {object} APIResponse[dto.SettingsResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	s, err := h.settings.Configure(c.Request.Context(), id.TenantID, syncapp.ConfigureInput{
		APIKey:   req.APIKey,
		Active:   req.Active,
		TestMode: req.TestMode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSettingsResponse(s))
}

// LinkUser binds a local user of the tenant to a provider user.
func (h *SettingsHandler) LinkUser(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "user_id")
	if !ok {
		return
	}
	var req dto.UserLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	link, err := h.settings.LinkUser(c.Request.Context(), id.TenantID, userID, req.RemoteUserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.UserLinkResponse{UserID: link.UserID, RemoteUserID: link.RemoteUserID})
}
