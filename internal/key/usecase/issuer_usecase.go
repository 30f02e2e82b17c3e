// Package usecase implements business logic for the capability key lifecycle.
//
// The issuer use case coordinates between the transaction signer (the
// authority account) and the ledger gateway. Each write builds one
// transaction, signs it, broadcasts it and waits for the ledger's acceptance
// signal before returning. Failed broadcasts surface immediately as domain
// errors; nothing is retried or rolled back.
package usecase

import (
	"context"
	"time"

	apperrors "github.com/keygrid/keygrid/internal/errors"
	"github.com/keygrid/keygrid/internal/key/domain"
	"github.com/keygrid/keygrid/internal/ledger"
)

// Ledger fees per transaction kind, in the smallest native unit.
const (
	issueFee    int64 = 100000000
	transferFee int64 = 100000
	burnFee     int64 = 100000
	dataFee     int64 = 100000
)

// keyAssetName is the on-ledger asset name shared by all capability keys.
const keyAssetName = "device-key"

// issuerUseCase implements IssuerUseCase against the ledger gateway.
type issuerUseCase struct {
	gateway ledger.Gateway
	signer  TransactionSigner
	now     func() time.Time
}

// NewIssuerUseCase creates the capability key issuer use case.
func NewIssuerUseCase(gateway ledger.Gateway, signer TransactionSigner) IssuerUseCase {
	return &issuerUseCase{
		gateway: gateway,
		signer:  signer,
		now:     time.Now,
	}
}

// Issue creates one key asset bound to the device and expiry.
//
// The expiry must be in the future; the authority balance must cover the
// issuance fee. The asset id equals the issue transaction id.
func (u *issuerUseCase) Issue(ctx context.Context, deviceAddress string, validTo int64) (string, error) {
	if validTo <= u.now().UnixMilli() {
		return "", domain.ErrExpiryInPast
	}

	balance, err := u.gateway.FetchAccountBalance(ctx, u.signer.Address())
	if err != nil {
		return "", apperrors.Wrap(domain.ErrIssuance, err.Error())
	}
	if balance < issueFee {
		return "", apperrors.Wrap(domain.ErrIssuance, "insufficient balance for issuance fee")
	}

	tx := &ledger.Transaction{
		Type:        ledger.TxIssue,
		Fee:         issueFee,
		Timestamp:   u.now().UnixMilli(),
		Name:        keyAssetName,
		Description: domain.EncodeDescription(deviceAddress, validTo),
		Quantity:    1,
		Decimals:    0,
		Reissuable:  false,
	}

	txID, err := u.submit(ctx, tx)
	if err != nil {
		return "", apperrors.Wrap(domain.ErrIssuance, err.Error())
	}
	return txID, nil
}

// Transfer moves exactly one unit of the key to the recipient.
func (u *issuerUseCase) Transfer(ctx context.Context, keyID, recipientAddress string) (string, error) {
	token, err := u.fetchHeldToken(ctx, keyID)
	if err != nil {
		return "", err
	}

	tx := &ledger.Transaction{
		Type:      ledger.TxTransfer,
		Fee:       transferFee,
		Timestamp: u.now().UnixMilli(),
		AssetID:   token.ID,
		Quantity:  1,
		Recipient: recipientAddress,
	}

	txID, err := u.submit(ctx, tx)
	if err != nil {
		return "", apperrors.Wrap(domain.ErrTransfer, err.Error())
	}
	return txID, nil
}

// Revoke burns the key while it sits on the authority's own account.
func (u *issuerUseCase) Revoke(ctx context.Context, keyID string) (string, error) {
	token, err := u.fetchHeldToken(ctx, keyID)
	if err != nil {
		return "", err
	}

	tx := &ledger.Transaction{
		Type:      ledger.TxBurn,
		Fee:       burnFee,
		Timestamp: u.now().UnixMilli(),
		AssetID:   token.ID,
		Quantity:  1,
	}

	txID, err := u.submit(ctx, tx)
	if err != nil {
		return "", apperrors.Wrap(domain.ErrRevoke, err.Error())
	}
	return txID, nil
}

// SetWhitelist writes or removes the key's entry on the device storage.
func (u *issuerUseCase) SetWhitelist(ctx context.Context, deviceAddress, keyID string, active bool) (string, error) {
	value := ""
	if active {
		value = ledger.EntryActive
	}

	tx := &ledger.Transaction{
		Type:      ledger.TxData,
		Fee:       dataFee,
		Timestamp: u.now().UnixMilli(),
		Address:   deviceAddress,
		Entries:   []ledger.DataEntry{{Key: ledger.TokenKey(keyID), Value: value}},
	}

	txID, err := u.submit(ctx, tx)
	if err != nil {
		return "", apperrors.Wrap(domain.ErrWhitelist, err.Error())
	}
	return txID, nil
}

// WhitelistKeys adds multiple keys to the device whitelist in one shared
// data transaction.
func (u *issuerUseCase) WhitelistKeys(ctx context.Context, deviceAddress string, keyIDs []string) (string, error) {
	entries := make([]ledger.DataEntry, 0, len(keyIDs))
	for _, keyID := range keyIDs {
		entries = append(entries, ledger.DataEntry{Key: ledger.TokenKey(keyID), Value: ledger.EntryActive})
	}

	tx := &ledger.Transaction{
		Type:      ledger.TxData,
		Fee:       dataFee,
		Timestamp: u.now().UnixMilli(),
		Address:   deviceAddress,
		Entries:   entries,
	}

	txID, err := u.submit(ctx, tx)
	if err != nil {
		return "", apperrors.Wrap(domain.ErrWhitelist, err.Error())
	}
	return txID, nil
}

// Get reads the key's current state from the ledger.
func (u *issuerUseCase) Get(ctx context.Context, keyID string) (*domain.CapabilityKey, error) {
	token, err := u.gateway.FetchToken(ctx, keyID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, err
	}

	deviceAddress, validTo, err := domain.ParseDescription(token.Description)
	if err != nil {
		return nil, err
	}

	return &domain.CapabilityKey{
		ID:            token.ID,
		Issuer:        token.Issuer,
		Owner:         token.Owner,
		DeviceAddress: deviceAddress,
		ValidTo:       validTo,
	}, nil
}

// fetchHeldToken loads a token and verifies the authority still holds it
// with quantity exactly one.
func (u *issuerUseCase) fetchHeldToken(ctx context.Context, keyID string) (*ledger.Token, error) {
	token, err := u.gateway.FetchToken(ctx, keyID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, err
	}
	if token.Owner != u.signer.Address() || token.Quantity != 1 {
		return nil, domain.ErrKeyNotHeld
	}
	return token, nil
}

// submit signs, broadcasts and awaits acceptance of one transaction.
func (u *issuerUseCase) submit(ctx context.Context, tx *ledger.Transaction) (string, error) {
	if err := u.signer.SignTransaction(tx); err != nil {
		return "", err
	}

	txID, err := u.gateway.Broadcast(ctx, tx)
	if err != nil {
		return "", err
	}

	if err := u.gateway.AwaitAcceptance(ctx, txID); err != nil {
		return "", err
	}
	return txID, nil
}
