// Package ledger defines the narrow gateway contract to the external ledger
// and the wire models shared by all use cases.
//
// The ledger is the only durable store in the application: account balances,
// token ownership, and key/value entries all live there. This package owns
// the Gateway interface consumed by the use case layer and an HTTP client
// implementation speaking to a ledger node's REST API.
//
// Every write is one discrete ledger transaction. There is no cross-call
// transactionality and no retry policy: a failed broadcast surfaces
// immediately and callers decide how to aggregate partial results.
package ledger

import (
	"context"

	apperrors "github.com/keygrid/keygrid/internal/errors"
)

// Ledger error definitions.
var (
	// ErrTokenNotFound indicates the referenced capability key asset does not
	// exist on the ledger.
	ErrTokenNotFound = apperrors.Wrap(apperrors.ErrNotFound, "key not found")

	// ErrEntryNotFound indicates the requested key/value entry is absent from
	// the account's storage. Absent entries are a normal condition for the
	// policy predicates (absent means "not whitelisted").
	ErrEntryNotFound = apperrors.Wrap(apperrors.ErrNotFound, "entry not found")

	// ErrBroadcast indicates the node rejected or failed to accept a
	// transaction broadcast.
	ErrBroadcast = apperrors.Wrap(apperrors.ErrLedgerWrite, "transaction broadcast failed")

	// ErrNotAccepted indicates a broadcast transaction was not accepted
	// within the gateway's deadline.
	ErrNotAccepted = apperrors.Wrap(apperrors.ErrLedgerWrite, "transaction not accepted in time")
)

// Token is a unique, non-fungible, non-reissuable ledger asset backing a
// capability key. The description field is immutable after issuance and
// encodes the bound device address and expiry.
type Token struct {
	ID          string
	Issuer      string
	Owner       string
	Name        string
	Description string
	Quantity    int64
	Decimals    int
	Reissuable  bool
}

// DataEntry is a key/value pair in an account's ledger storage. An empty
// Value removes the entry when broadcast in a data transaction.
type DataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Reader provides the read operations of the gateway contract.
type Reader interface {
	// FetchToken returns the token's current on-ledger state.
	// Returns ErrTokenNotFound if the asset does not exist.
	FetchToken(ctx context.Context, tokenID string) (*Token, error)

	// FetchTokenOwnerAtHeight returns the token's owner address as of the
	// given block height. Used with a one-block offset to avoid racing
	// in-flight transfers.
	FetchTokenOwnerAtHeight(ctx context.Context, tokenID string, height int64) (string, error)

	// FetchEntry returns a single key/value entry from an account's storage.
	// Returns ErrEntryNotFound if the entry is absent.
	FetchEntry(ctx context.Context, address, key string) (*DataEntry, error)

	// FetchEntriesByPattern returns all entries on an account whose keys
	// match the given pattern.
	FetchEntriesByPattern(ctx context.Context, address, pattern string) ([]DataEntry, error)

	// FetchHeight returns the current finalized block height.
	FetchHeight(ctx context.Context) (int64, error)

	// FetchAccountBalance returns the account's native token balance.
	FetchAccountBalance(ctx context.Context, address string) (int64, error)
}

// Writer provides the write operations of the gateway contract.
type Writer interface {
	// Broadcast submits a signed transaction and returns its id. It does not
	// wait for the transaction to be accepted into a block.
	Broadcast(ctx context.Context, tx *Transaction) (string, error)

	// AwaitAcceptance blocks until the transaction is accepted or the
	// gateway's own deadline passes, in which case it returns ErrNotAccepted.
	AwaitAcceptance(ctx context.Context, txID string) error
}

// Gateway is the complete read/write contract to the external ledger.
type Gateway interface {
	Reader
	Writer
}
