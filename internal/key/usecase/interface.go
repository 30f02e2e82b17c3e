package usecase

import (
	"context"

	"github.com/keygrid/keygrid/internal/key/domain"
	"github.com/keygrid/keygrid/internal/ledger"
)

// TransactionSigner signs ledger transactions on behalf of the authority
// account.
type TransactionSigner interface {
	// Address returns the authority's ledger address.
	Address() string
	// SignTransaction fills the sender fields, signature and id of the
	// transaction.
	SignTransaction(tx *ledger.Transaction) error
}

// IssuerUseCase manages the capability key lifecycle: issuance, transfer,
// revocation and device whitelist maintenance. Every write operation submits
// exactly one ledger transaction; there is no transactionality across calls.
type IssuerUseCase interface {
	// Issue creates one non-reissuable key asset of quantity 1 owned by the
	// authority, bound to the device address and expiry. Returns the key id.
	Issue(ctx context.Context, deviceAddress string, validTo int64) (string, error)

	// Transfer moves the key to the recipient. Fails when the authority no
	// longer holds the key.
	Transfer(ctx context.Context, keyID, recipientAddress string) (string, error)

	// Revoke burns the key. Only valid while the key sits on the authority's
	// own account with quantity exactly 1.
	Revoke(ctx context.Context, keyID string) (string, error)

	// SetWhitelist writes or removes the key's whitelist entry on the device
	// account storage.
	SetWhitelist(ctx context.Context, deviceAddress, keyID string, active bool) (string, error)

	// WhitelistKeys adds multiple keys to the device whitelist in one shared
	// data transaction.
	WhitelistKeys(ctx context.Context, deviceAddress string, keyIDs []string) (string, error)

	// Get reads the key's current on-ledger state.
	Get(ctx context.Context, keyID string) (*domain.CapabilityKey, error)
}

// BatchIssuerUseCase issues many keys for a device in one logical request,
// tracking per-unit outcomes independently.
type BatchIssuerUseCase interface {
	IssueBatch(ctx context.Context, req *domain.BatchRequest) ([]domain.BatchUnitResult, error)
}
