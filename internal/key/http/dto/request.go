// Package dto provides data transfer objects for key management endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/keygrid/keygrid/internal/validation"
)

// IssueKeyRequest contains the parameters for a single key issuance.
type IssueKeyRequest struct {
	DeviceAddress    string `json:"deviceAddress"`
	ValidTo          int64  `json:"validTo"`
	RecipientAddress string `json:"recipientAddress,omitempty"`
}

// Validate checks if the issue key request is valid.
func (r *IssueKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DeviceAddress, validation.Required, customValidation.Address),
		validation.Field(&r.ValidTo, validation.Required, validation.Min(1)),
		validation.Field(&r.RecipientAddress,
			validation.When(r.RecipientAddress != "", customValidation.Address),
		),
	)
}

// BatchIssueKeysRequest contains the parameters for a batch issuance.
// The upper bound on Amount is enforced by the use case against the
// configured limits, not here.
type BatchIssueKeysRequest struct {
	DeviceAddress    string `json:"deviceAddress"`
	ValidTo          int64  `json:"validTo"`
	Amount           int    `json:"amount"`
	RecipientAddress string `json:"recipientAddress,omitempty"`
}

// Validate checks if the batch issue request is valid.
func (r *BatchIssueKeysRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DeviceAddress, validation.Required, customValidation.Address),
		validation.Field(&r.ValidTo, validation.Required, validation.Min(1)),
		validation.Field(&r.Amount, validation.Required, validation.Min(1)),
		validation.Field(&r.RecipientAddress,
			validation.When(r.RecipientAddress != "", customValidation.Address),
		),
	)
}

// TransferKeyRequest contains the recipient of a key transfer.
type TransferKeyRequest struct {
	RecipientAddress string `json:"recipientAddress"`
}

// Validate checks if the transfer request is valid.
func (r *TransferKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RecipientAddress, validation.Required, customValidation.Address),
	)
}
