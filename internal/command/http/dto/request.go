// Package dto provides data transfer objects for command authorization
// endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	commandDomain "github.com/keygrid/keygrid/internal/command/domain"
	"github.com/keygrid/keygrid/internal/ledger"
	customValidation "github.com/keygrid/keygrid/internal/validation"
)

// CommandRequest is the payload of a command submission. The device address
// comes from the URL; the embedded transaction carries the caller's
// signature, and the caller's identity is derived from its signer key rather
// than accepted as a field.
type CommandRequest struct {
	Command             string              `json:"command"`
	KeyID               string              `json:"keyId"`
	OwnerAddress        string              `json:"ownerAddress"`
	WaitForConfirmation bool                `json:"waitForConfirmation"`
	Transaction         *ledger.Transaction `json:"transaction"`
}

// Validate checks if the command request is valid.
func (r *CommandRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Command, validation.Required, customValidation.NotBlank),
		validation.Field(&r.KeyID, validation.Required, customValidation.Base58),
		validation.Field(&r.OwnerAddress, validation.Required, customValidation.Address),
		validation.Field(&r.Transaction, validation.Required),
	)
}

// ToDomain maps the request to the domain model for the given device.
func (r *CommandRequest) ToDomain(deviceAddress string) *commandDomain.Request {
	return &commandDomain.Request{
		DeviceAddress:       deviceAddress,
		Command:             r.Command,
		KeyID:               r.KeyID,
		OwnerAddress:        r.OwnerAddress,
		WaitForConfirmation: r.WaitForConfirmation,
		Transaction:         r.Transaction,
	}
}
