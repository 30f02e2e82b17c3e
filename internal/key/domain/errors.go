package domain

import (
	"github.com/keygrid/keygrid/internal/errors"
)

// Capability key error definitions.
var (
	// ErrKeyNotFound indicates the capability key asset does not exist.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found")

	// ErrKeyNotHeld indicates the authority account no longer holds the key,
	// so it cannot be transferred or burned.
	ErrKeyNotHeld = errors.Wrap(errors.ErrNotFound, "key is not held by the authority account")

	// ErrMalformedDescription indicates the asset description does not follow
	// the issuance encoding.
	ErrMalformedDescription = errors.Wrap(errors.ErrInvalidInput, "malformed key description")

	// ErrExpiryInPast indicates the requested validity window already ended.
	ErrExpiryInPast = errors.Wrap(errors.ErrLimitExceeded, "validTo must be in the future")

	// ErrBatchTooLarge indicates the requested batch amount exceeds the
	// configured maximum.
	ErrBatchTooLarge = errors.Wrap(errors.ErrLimitExceeded, "batch amount exceeds maximum")

	// ErrBatchOverCapacity indicates the requested batch amount exceeds what
	// a single whitelist transaction can carry.
	ErrBatchOverCapacity = errors.Wrap(errors.ErrLimitExceeded, "batch amount exceeds whitelist transaction capacity")

	// ErrIssuance indicates the issuance broadcast failed.
	ErrIssuance = errors.Wrap(errors.ErrLedgerWrite, "key issuance failed")

	// ErrTransfer indicates the transfer broadcast failed.
	ErrTransfer = errors.Wrap(errors.ErrLedgerWrite, "key transfer failed")

	// ErrRevoke indicates the burn broadcast failed.
	ErrRevoke = errors.Wrap(errors.ErrLedgerWrite, "key revocation failed")

	// ErrWhitelist indicates the whitelist update broadcast failed.
	ErrWhitelist = errors.Wrap(errors.ErrLedgerWrite, "whitelist update failed")
)
