// Package usecase implements the command authorization policy engine.
//
// Authorization walks a small state machine: verify the request signature,
// resolve the key's current owner, select the direct or delegated strategy
// from that owner, then fan the strategy's predicates out concurrently. The
// first predicate failure observed becomes the rejection reason; which one
// wins is a race among concurrent ledger reads, not a fixed order.
package usecase

import (
	"context"
	"time"

	"github.com/keygrid/keygrid/internal/command/domain"
	apperrors "github.com/keygrid/keygrid/internal/errors"
	keyDomain "github.com/keygrid/keygrid/internal/key/domain"
	"github.com/keygrid/keygrid/internal/ledger"
)

// authorizerUseCase implements AuthorizerUseCase.
type authorizerUseCase struct {
	gateway          ledger.Reader
	verifier         TransactionVerifier
	authorityAddress string
	now              func() time.Time
}

// NewAuthorizerUseCase creates the command authorizer bound to the
// platform's authority address.
func NewAuthorizerUseCase(
	gateway ledger.Reader,
	verifier TransactionVerifier,
	authorityAddress string,
) AuthorizerUseCase {
	return &authorizerUseCase{
		gateway:          gateway,
		verifier:         verifier,
		authorityAddress: authorityAddress,
		now:              time.Now,
	}
}

// Authorize runs the authorization state machine for one command request.
func (u *authorizerUseCase) Authorize(ctx context.Context, req *domain.Request) (*domain.Result, error) {
	// Signature first. On failure no ledger read happens at all.
	if err := u.verifier.Verify(req.Transaction); err != nil {
		return &domain.Result{Verified: false, Error: domain.MsgTransactionNotVerified}, nil
	}

	// The caller's identity is the address derived from the key that signed
	// the transaction. It is never read from a request field, so a caller
	// cannot claim another account's membership.
	callerAddress, err := u.verifier.SenderAddress(req.Transaction)
	if err != nil {
		return &domain.Result{Verified: false, Error: domain.MsgTransactionNotVerified}, nil
	}

	token, err := u.gateway.FetchToken(ctx, req.KeyID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, keyDomain.ErrKeyNotFound
		}
		return nil, err
	}

	// Strategy selection is purely a function of current on-ledger
	// ownership, never of a client-controlled field.
	checks := u.directChecks
	if token.Owner != u.authorityAddress {
		checks = u.delegatedChecks
	}

	if err := checks(ctx, req, token, callerAddress); err != nil {
		var violation *domain.PolicyViolation
		if apperrors.As(err, &violation) {
			return &domain.Result{Verified: false, Error: violation.Message()}, nil
		}
		return nil, err
	}

	return &domain.Result{Verified: true}, nil
}
