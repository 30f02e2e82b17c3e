// Package http provides the HTTP handler for command authorization.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keygrid/keygrid/internal/command/http/dto"
	commandUseCase "github.com/keygrid/keygrid/internal/command/usecase"
	"github.com/keygrid/keygrid/internal/httputil"
	customValidation "github.com/keygrid/keygrid/internal/validation"
)

// CommandHandler handles command submissions against registered devices.
type CommandHandler struct {
	authorizer commandUseCase.AuthorizerUseCase
	logger     *slog.Logger
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(authorizer commandUseCase.AuthorizerUseCase, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{
		authorizer: authorizer,
		logger:     logger,
	}
}

// AuthorizeHandler authorizes a signed command against a device.
// POST /v1/devices/:address/commands
//
// A rejected command is a successful authorization check: the response is
// 200 with verified=false and the rejection reason. A missing key returns
// 404 and ledger unavailability 502, keeping "not authorized" distinct from
// "could not determine authorization".
func (h *CommandHandler) AuthorizeHandler(c *gin.Context) {
	deviceAddress := c.Param("address")
	if err := customValidation.Address.Validate(deviceAddress); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	var req dto.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.authorizer.Authorize(c.Request.Context(), req.ToDomain(deviceAddress))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}
