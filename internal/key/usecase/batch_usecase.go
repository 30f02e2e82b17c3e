package usecase

import (
	"context"

	apperrors "github.com/keygrid/keygrid/internal/errors"
	"github.com/keygrid/keygrid/internal/key/domain"
)

// batchIssuerUseCase implements BatchIssuerUseCase on top of the issuer.
//
// Units are processed independently: a failure in one unit never aborts its
// siblings. There is no transactional boundary across the batch — assets
// created before a later failure stay on the ledger.
type batchIssuerUseCase struct {
	issuer            IssuerUseCase
	signer            TransactionSigner
	maxAmount         int
	whitelistCapacity int
}

// NewBatchIssuerUseCase creates the batch issuance coordinator.
// maxAmount bounds the requested batch size; whitelistCapacity bounds what a
// single shared whitelist transaction can carry.
func NewBatchIssuerUseCase(
	issuer IssuerUseCase,
	signer TransactionSigner,
	maxAmount int,
	whitelistCapacity int,
) BatchIssuerUseCase {
	return &batchIssuerUseCase{
		issuer:            issuer,
		signer:            signer,
		maxAmount:         maxAmount,
		whitelistCapacity: whitelistCapacity,
	}
}

// IssueBatch issues req.Amount keys for the device, transferring each to the
// recipient when one is given, and finally whitelists every successfully
// issued key in one shared data transaction.
//
// When the shared whitelist transaction fails, every unit in the batch is
// reported as failed — including units whose issuance and transfer succeeded
// and whose assets therefore still exist on-ledger. Downstream clients
// depend on this shape, so it is preserved deliberately.
func (u *batchIssuerUseCase) IssueBatch(
	ctx context.Context,
	req *domain.BatchRequest,
) ([]domain.BatchUnitResult, error) {
	if req.Amount < 1 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "amount must be at least 1")
	}
	if req.Amount > u.maxAmount {
		return nil, domain.ErrBatchTooLarge
	}
	if req.Amount > u.whitelistCapacity {
		return nil, domain.ErrBatchOverCapacity
	}

	results := make([]domain.BatchUnitResult, req.Amount)
	issued := make([]string, 0, req.Amount)

	for i := 0; i < req.Amount; i++ {
		keyID, err := u.issuer.Issue(ctx, req.DeviceAddress, req.ValidTo)
		if err != nil {
			results[i] = domain.BatchUnitResult{Error: err.Error()}
			continue
		}

		unit := domain.BatchUnitResult{KeyID: keyID}
		issued = append(issued, keyID)

		if req.RecipientAddress != "" && req.RecipientAddress != u.signer.Address() {
			transferTxID, err := u.issuer.Transfer(ctx, keyID, req.RecipientAddress)
			if err != nil {
				unit.Error = err.Error()
				results[i] = unit
				continue
			}
			unit.TransferTxID = transferTxID
		}

		unit.Success = true
		results[i] = unit
	}

	if len(issued) == 0 {
		return results, nil
	}

	whitelistTxID, err := u.issuer.WhitelistKeys(ctx, req.DeviceAddress, issued)
	if err != nil {
		// The shared whitelist transaction failed: the whole batch is
		// reported as failed even though the issued assets exist on-ledger.
		for i := range results {
			results[i].Success = false
			if results[i].Error == "" {
				results[i].Error = err.Error()
			}
		}
		return results, nil
	}

	for i := range results {
		if results[i].KeyID != "" {
			results[i].WhitelistTxID = whitelistTxID
		}
	}
	return results, nil
}
