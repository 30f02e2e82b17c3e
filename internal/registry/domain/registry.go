// Package domain defines registry models: devices, organisations and
// memberships tracked as whitelist entries on the ledger.
package domain

import (
	"github.com/keygrid/keygrid/internal/errors"
)

// Registry error definitions.
var (
	// ErrDeviceNotRegistered indicates the device has no active registration
	// entry on the authority account.
	ErrDeviceNotRegistered = errors.Wrap(errors.ErrNotFound, "device is not registered")

	// ErrRegistryWrite indicates a registry whitelist update broadcast failed.
	ErrRegistryWrite = errors.Wrap(errors.ErrLedgerWrite, "registry update failed")
)

// Device is a registered device: an address whitelisted on the authority
// account, with owner and dapp bindings stored on the device's own account.
type Device struct {
	Address string `json:"address"`
	Owner   string `json:"owner,omitempty"`
	Dapp    string `json:"dapp,omitempty"`
}

// DeviceRegistration reports the two transactions a device registration
// submits: the authority whitelist entry and the device-side bindings.
type DeviceRegistration struct {
	WhitelistTxID string `json:"whitelistTxId"`
	BindingTxID   string `json:"bindingTxId"`
}
