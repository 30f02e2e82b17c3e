// Package domain defines command authorization models and the policy
// violation error type.
package domain

import (
	"github.com/keygrid/keygrid/internal/errors"
	"github.com/keygrid/keygrid/internal/ledger"
)

// Rejection messages surfaced verbatim to callers. Clients match on these
// strings, so they are part of the external contract.
const (
	MsgTransactionNotVerified = "Transaction not verified"
	MsgDeviceNotWhitelisted   = "device is not whitelisted"
	MsgKeyNotWhitelisted      = "key is not whitelisted on device"
	MsgNotKeyOwner            = "address is not key owner"
	MsgOrgNotKeyOwner         = "organisation does not own the key"
	MsgKeyExpired             = "key has expired"
	MsgWrongDevice            = "key is not valid for this device"
	MsgUserNotInOrganisation  = "user is not in organisation"
	MsgOrgNotWhitelisted      = "organisation is not whitelisted"
)

// Request is a signed command submission against a registered device.
//
// OwnerAddress is the address presented as the key holder. The caller's own
// identity is not a request field: it is derived from the public key that
// signed the embedded transaction. For a direct command the signer is the
// owner; for a delegated command OwnerAddress is an organisation and the
// signer must be one of its members.
type Request struct {
	DeviceAddress       string
	Command             string
	KeyID               string
	OwnerAddress        string
	WaitForConfirmation bool
	Transaction         *ledger.Transaction
}

// Result is the terminal outcome of an authorization. Rejected requests are
// never retried automatically; the client corrects and resubmits.
type Result struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}

// PolicyViolation reports that a named authorization predicate failed. Its
// message is surfaced verbatim as the rejection reason. It unwraps to
// errors.ErrForbidden so callers can separate "not authorized" from "could
// not determine authorization".
type PolicyViolation struct {
	message string
}

// NewPolicyViolation creates a policy violation with the given rejection
// message.
func NewPolicyViolation(message string) *PolicyViolation {
	return &PolicyViolation{message: message}
}

// Message returns the rejection reason shown to the caller.
func (v *PolicyViolation) Message() string {
	return v.message
}

func (v *PolicyViolation) Error() string {
	return v.message
}

func (v *PolicyViolation) Unwrap() error {
	return errors.ErrForbidden
}
