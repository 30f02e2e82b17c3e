// Package dto provides data transfer objects for registry endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	registryDomain "github.com/keygrid/keygrid/internal/registry/domain"
	customValidation "github.com/keygrid/keygrid/internal/validation"
)

// RegisterDeviceRequest contains the parameters for a device registration.
type RegisterDeviceRequest struct {
	Address string `json:"address"`
	Owner   string `json:"owner,omitempty"`
	Dapp    string `json:"dapp,omitempty"`
}

// Validate checks if the register device request is valid.
func (r *RegisterDeviceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Address, validation.Required, customValidation.Address),
		validation.Field(&r.Owner, validation.When(r.Owner != "", customValidation.Address)),
		validation.Field(&r.Dapp, validation.When(r.Dapp != "", customValidation.Address)),
	)
}

// ToDomain maps the request to the domain device model.
func (r *RegisterDeviceRequest) ToDomain() *registryDomain.Device {
	return &registryDomain.Device{
		Address: r.Address,
		Owner:   r.Owner,
		Dapp:    r.Dapp,
	}
}

// WhitelistOrganisationRequest contains the organisation to whitelist.
type WhitelistOrganisationRequest struct {
	Address string `json:"address"`
}

// Validate checks if the whitelist organisation request is valid.
func (r *WhitelistOrganisationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Address, validation.Required, customValidation.Address),
	)
}

// AddMemberRequest contains the member to add to an organisation.
type AddMemberRequest struct {
	Address string `json:"address"`
}

// Validate checks if the add member request is valid.
func (r *AddMemberRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Address, validation.Required, customValidation.Address),
	)
}
