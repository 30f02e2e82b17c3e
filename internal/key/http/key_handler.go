// Package http provides HTTP handlers for the capability key lifecycle.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keygrid/keygrid/internal/httputil"
	keyDomain "github.com/keygrid/keygrid/internal/key/domain"
	"github.com/keygrid/keygrid/internal/key/http/dto"
	keyUseCase "github.com/keygrid/keygrid/internal/key/usecase"
	customValidation "github.com/keygrid/keygrid/internal/validation"
)

// KeyHandler handles HTTP requests for key issuance, transfer and
// revocation.
type KeyHandler struct {
	issuer      keyUseCase.IssuerUseCase
	batchIssuer keyUseCase.BatchIssuerUseCase
	logger      *slog.Logger
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(
	issuer keyUseCase.IssuerUseCase,
	batchIssuer keyUseCase.BatchIssuerUseCase,
	logger *slog.Logger,
) *KeyHandler {
	return &KeyHandler{
		issuer:      issuer,
		batchIssuer: batchIssuer,
		logger:      logger,
	}
}

// IssueHandler issues one key for a device and whitelists it.
// POST /v1/keys
// Returns 201 Created with the key id and transaction ids.
func (h *KeyHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()

	keyID, err := h.issuer.Issue(ctx, req.DeviceAddress, req.ValidTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.IssueKeyResponse{KeyID: keyID}

	if req.RecipientAddress != "" {
		transferTxID, err := h.issuer.Transfer(ctx, keyID, req.RecipientAddress)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		response.TransferTxID = transferTxID
	}

	whitelistTxID, err := h.issuer.SetWhitelist(ctx, req.DeviceAddress, keyID, true)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	response.WhitelistTxID = whitelistTxID

	c.JSON(http.StatusCreated, response)
}

// BatchIssueHandler issues many keys for a device in one request.
// POST /v1/keys/batch
// Returns 201 Created with an ordered per-unit result list. Individual unit
// failures do not fail the request; limit violations do.
func (h *KeyHandler) BatchIssueHandler(c *gin.Context) {
	var req dto.BatchIssueKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	results, err := h.batchIssuer.IssueBatch(c.Request.Context(), &keyDomain.BatchRequest{
		DeviceAddress:    req.DeviceAddress,
		ValidTo:          req.ValidTo,
		Amount:           req.Amount,
		RecipientAddress: req.RecipientAddress,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.BatchIssueKeysResponse{Results: results})
}

// TransferHandler moves a key to a new owner.
// POST /v1/keys/:id/transfer
func (h *KeyHandler) TransferHandler(c *gin.Context) {
	keyID := c.Param("id")

	var req dto.TransferKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	txID, err := h.issuer.Transfer(c.Request.Context(), keyID, req.RecipientAddress)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.TransactionResponse{TxID: txID})
}

// RevokeHandler burns a key held by the authority account.
// DELETE /v1/keys/:id
func (h *KeyHandler) RevokeHandler(c *gin.Context) {
	txID, err := h.issuer.Revoke(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.TransactionResponse{TxID: txID})
}

// GetHandler reads a key's current on-ledger state.
// GET /v1/keys/:id
func (h *KeyHandler) GetHandler(c *gin.Context) {
	key, err := h.issuer.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(key))
}
