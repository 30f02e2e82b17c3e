// Package http provides HTTP handlers for registry management: devices,
// organisations and memberships.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keygrid/keygrid/internal/httputil"
	"github.com/keygrid/keygrid/internal/registry/http/dto"
	registryUseCase "github.com/keygrid/keygrid/internal/registry/usecase"
	customValidation "github.com/keygrid/keygrid/internal/validation"
)

// RegistryHandler handles HTTP requests for registry management.
type RegistryHandler struct {
	registry registryUseCase.RegistryUseCase
	logger   *slog.Logger
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(registry registryUseCase.RegistryUseCase, logger *slog.Logger) *RegistryHandler {
	return &RegistryHandler{
		registry: registry,
		logger:   logger,
	}
}

// validAddressParam validates a URL address parameter, writing the error
// response itself when invalid.
func (h *RegistryHandler) validAddressParam(c *gin.Context, name string) (string, bool) {
	address := c.Param(name)
	if err := customValidation.Address.Validate(address); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return "", false
	}
	return address, true
}

// RegisterDeviceHandler registers a device.
// POST /v1/devices
func (h *RegistryHandler) RegisterDeviceHandler(c *gin.Context) {
	var req dto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	registration, err := h.registry.RegisterDevice(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, registration)
}

// DeregisterDeviceHandler removes a device registration.
// DELETE /v1/devices/:address
func (h *RegistryHandler) DeregisterDeviceHandler(c *gin.Context) {
	address, ok := h.validAddressParam(c, "address")
	if !ok {
		return
	}

	txID, err := h.registry.DeregisterDevice(c.Request.Context(), address)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.TransactionResponse{TxID: txID})
}

// GetDeviceHandler reads a device's registration state.
// GET /v1/devices/:address
func (h *RegistryHandler) GetDeviceHandler(c *gin.Context) {
	address, ok := h.validAddressParam(c, "address")
	if !ok {
		return
	}

	device, err := h.registry.GetDevice(c.Request.Context(), address)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, device)
}

// ListDevicesHandler lists all actively registered devices.
// GET /v1/devices
func (h *RegistryHandler) ListDevicesHandler(c *gin.Context) {
	devices, err := h.registry.ListDevices(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ListDevicesResponse{Devices: devices})
}

// WhitelistOrganisationHandler whitelists an organisation.
// POST /v1/organisations
func (h *RegistryHandler) WhitelistOrganisationHandler(c *gin.Context) {
	var req dto.WhitelistOrganisationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	txID, err := h.registry.WhitelistOrganisation(c.Request.Context(), req.Address)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.TransactionResponse{TxID: txID})
}

// RemoveOrganisationHandler removes an organisation's whitelist entry.
// DELETE /v1/organisations/:address
func (h *RegistryHandler) RemoveOrganisationHandler(c *gin.Context) {
	address, ok := h.validAddressParam(c, "address")
	if !ok {
		return
	}

	txID, err := h.registry.RemoveOrganisation(c.Request.Context(), address)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.TransactionResponse{TxID: txID})
}

// AddMemberHandler adds a member to an organisation.
// POST /v1/organisations/:address/members
func (h *RegistryHandler) AddMemberHandler(c *gin.Context) {
	orgAddress, ok := h.validAddressParam(c, "address")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	txID, err := h.registry.AddMember(c.Request.Context(), orgAddress, req.Address)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.TransactionResponse{TxID: txID})
}

// RemoveMemberHandler removes a member from an organisation.
// DELETE /v1/organisations/:address/members/:member
func (h *RegistryHandler) RemoveMemberHandler(c *gin.Context) {
	orgAddress, ok := h.validAddressParam(c, "address")
	if !ok {
		return
	}
	memberAddress, ok := h.validAddressParam(c, "member")
	if !ok {
		return
	}

	txID, err := h.registry.RemoveMember(c.Request.Context(), orgAddress, memberAddress)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.TransactionResponse{TxID: txID})
}
