package usecase

import (
	"context"

	"github.com/keygrid/keygrid/internal/command/domain"
	"github.com/keygrid/keygrid/internal/ledger"
)

// TransactionVerifier checks that a transaction payload is well-formed and
// signed by the claimed sender, and derives the signer's ledger address from
// the transaction's public key. Implemented by crypto.Verifier.
type TransactionVerifier interface {
	Verify(tx *ledger.Transaction) error
	SenderAddress(tx *ledger.Transaction) (string, error)
}

// AuthorizerUseCase decides whether a signed command request may act on a
// device.
//
// A policy rejection is a normal outcome: the returned Result carries
// Verified=false and the rejection reason, with a nil error. A non-nil error
// means authorization could not be determined (missing key, ledger
// unavailable) and maps to a distinct status upstream.
type AuthorizerUseCase interface {
	Authorize(ctx context.Context, req *domain.Request) (*domain.Result, error)
}
