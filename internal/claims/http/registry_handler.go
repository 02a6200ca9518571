// Package http exposes the claim registry over HTTP. The authenticated client is the
// registry caller.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/claims/internal/auth/http"
	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	"github.com/allisson/claims/internal/claims/http/dto"
	claimsUseCase "github.com/allisson/claims/internal/claims/usecase"
	apperrors "github.com/allisson/claims/internal/errors"
	"github.com/allisson/claims/internal/httputil"
	customValidation "github.com/allisson/claims/internal/validation"
)

// RegistryHandler handles the claim registry endpoints.
type RegistryHandler struct {
	registryUseCase claimsUseCase.RegistryUseCase
	logger          *slog.Logger
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(registryUseCase claimsUseCase.RegistryUseCase, logger *slog.Logger) *RegistryHandler {
	return &RegistryHandler{
		registryUseCase: registryUseCase,
		logger:          logger,
	}
}

// caller returns the authenticated client ID, or writes 401 and returns false.
func (h *RegistryHandler) caller(c *gin.Context) (uuid.UUID, bool) {
	client, ok := authHTTP.GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return uuid.Nil, false
	}
	return client.ID, true
}

// claimParam decodes the hex :claim path segment, or writes 422 and returns false.
func (h *RegistryHandler) claimParam(c *gin.Context) ([]byte, bool) {
	raw, err := claimsDomain.DecodeHex(c.Param("claim"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return nil, false
	}
	return raw, true
}

// CreateHandler registers a claim to the caller.
// POST /v1/claims - Returns 201 Created with the registration.
func (h *RegistryHandler) CreateHandler(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	raw, err := claimsDomain.DecodeHex(*req.Claim)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	registration, err := h.registryUseCase.Create(c.Request.Context(), caller, raw)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRegistrationToResponse(registration))
}

// GetHandler returns the registration of a claim.
// GET /v1/claims/:claim - Returns 200 OK or 404 Not Found.
func (h *RegistryHandler) GetHandler(c *gin.Context) {
	raw, ok := h.claimParam(c)
	if !ok {
		return
	}

	registration, err := h.registryUseCase.Get(c.Request.Context(), raw)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRegistrationToResponse(registration))
}

// RevokeHandler removes a claim owned by the caller.
// DELETE /v1/claims/:claim - Returns 204 No Content.
func (h *RegistryHandler) RevokeHandler(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	raw, ok := h.claimParam(c)
	if !ok {
		return
	}

	if err := h.registryUseCase.Revoke(c.Request.Context(), caller, raw); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// TransferHandler hands a claim owned by the caller to another identity.
// POST /v1/claims/:claim/transfer - Returns 200 OK with the new registration.
func (h *RegistryHandler) TransferHandler(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	raw, ok := h.claimParam(c)
	if !ok {
		return
	}

	var req dto.TransferClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	registration, err := h.registryUseCase.Transfer(c.Request.Context(), caller, uuid.MustParse(req.To), raw)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRegistrationToResponse(registration))
}

// ListHandler lists the registrations of an owner, defaulting to the caller.
// GET /v1/claims?owner=&offset=&limit= - Returns 200 OK.
func (h *RegistryHandler) ListHandler(c *gin.Context) {
	owner, ok := h.caller(c)
	if !ok {
		return
	}

	if ownerParam := c.Query("owner"); ownerParam != "" {
		parsed, err := uuid.Parse(ownerParam)
		if err != nil {
			httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "owner must be a valid UUID"), h.logger)
			return
		}
		owner = parsed
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	registrations, err := h.registryUseCase.ListByOwner(c.Request.Context(), owner, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRegistrationsToListResponse(registrations))
}
