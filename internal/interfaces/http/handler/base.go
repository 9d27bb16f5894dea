// Package handler holds the gin handlers of the fiscal sync API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/domain/shared"
	"github.com/erp/fiscalsync/internal/infrastructure/logger"
	"github.com/erp/fiscalsync/internal/interfaces/http/dto"
	"github.com/erp/fiscalsync/internal/interfaces/http/middleware"
)

// ContextResolver builds the SyncContext of a caller.
type ContextResolver interface {
	Context(ctx context.Context, tenantID, userID uuid.UUID, asSystem bool) (fiscalsync.SyncContext, error)
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps an error of the sync taxonomy, a domain error or an
// unknown error to a response. Unknown errors are logged and hidden.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	code, message := classify(err)
	if code == dto.ErrCodeInternal {
		logger.L(c.Request.Context()).Error("Request failed", zap.Error(err))
		message = "An unexpected error occurred"
	}
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// classify returns the API code and the client message of err.
func classify(err error) (string, string) {
	switch {
	case errors.Is(err, fiscalsync.ErrImportInProgress):
		return dto.ErrCodeImportInProgress, err.Error()
	case errors.Is(err, fiscalsync.ErrUnknownEntity):
		return dto.ErrCodeNotFound, err.Error()
	case errors.Is(err, fiscalsync.ErrNotImplemented):
		return dto.ErrCodeNotImplemented, err.Error()
	case errors.Is(err, fiscalsync.ErrNotLinked):
		return dto.ErrCodeInvalidState, err.Error()
	case errors.Is(err, fiscalsync.ErrUnexpectedResponse):
		return dto.ErrCodeRemoteService, err.Error()
	}

	if code := fiscalsync.ErrorCode(err); code != "" {
		return dto.NormalizeErrorCode(code), err.Error()
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return dto.NormalizeErrorCode(domainErr.Code), domainErr.Message
	}
	return dto.ErrCodeInternal, err.Error()
}

// identity returns the caller identity or writes a 401.
func (h *BaseHandler) identity(c *gin.Context) (middleware.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		h.Unauthorized(c, "caller identity is missing")
		return id, false
	}
	return id, true
}

// syncContext resolves the SyncContext of the caller or writes the error.
func (h *BaseHandler) syncContext(c *gin.Context, resolver ContextResolver) (fiscalsync.SyncContext, bool) {
	id, ok := h.identity(c)
	if !ok {
		return fiscalsync.SyncContext{}, false
	}
	sc, err := resolver.Context(c.Request.Context(), id.TenantID, id.UserID, id.AsSystem)
	if err != nil {
		h.HandleError(c, err)
		return sc, false
	}
	return sc, true
}

// uuidParam parses a uuid path parameter or writes a 400.
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "invalid "+name+": must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}
