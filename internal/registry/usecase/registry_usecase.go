// Package usecase implements registry maintenance against the ledger:
// device registration, organisation whitelisting and membership management.
package usecase

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/keygrid/keygrid/internal/errors"
	"github.com/keygrid/keygrid/internal/ledger"
	"github.com/keygrid/keygrid/internal/registry/domain"
)

const dataFee int64 = 100000

// devicePattern matches every device whitelist entry on the authority
// account.
const devicePattern = "device_.*"

// registryUseCase implements RegistryUseCase against the ledger gateway.
type registryUseCase struct {
	gateway ledger.Gateway
	signer  TransactionSigner
	now     func() time.Time
}

// NewRegistryUseCase creates the registry use case.
func NewRegistryUseCase(gateway ledger.Gateway, signer TransactionSigner) RegistryUseCase {
	return &registryUseCase{
		gateway: gateway,
		signer:  signer,
		now:     time.Now,
	}
}

// RegisterDevice submits two data transactions: the device whitelist entry
// on the authority account, then the owner/dapp bindings on the device
// account. The calls are not atomic; a failure after the first write leaves
// the device whitelisted without bindings.
func (u *registryUseCase) RegisterDevice(
	ctx context.Context,
	device *domain.Device,
) (*domain.DeviceRegistration, error) {
	whitelistTxID, err := u.writeEntries(ctx, u.signer.Address(), []ledger.DataEntry{
		{Key: ledger.DeviceKey(device.Address), Value: ledger.EntryActive},
	})
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrRegistryWrite, err.Error())
	}

	bindings := make([]ledger.DataEntry, 0, 2)
	if device.Owner != "" {
		bindings = append(bindings, ledger.DataEntry{Key: ledger.DeviceOwnerKey, Value: device.Owner})
	}
	if device.Dapp != "" {
		bindings = append(bindings, ledger.DataEntry{Key: ledger.DeviceDappKey, Value: device.Dapp})
	}

	registration := &domain.DeviceRegistration{WhitelistTxID: whitelistTxID}
	if len(bindings) == 0 {
		return registration, nil
	}

	bindingTxID, err := u.writeEntries(ctx, device.Address, bindings)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrRegistryWrite, err.Error())
	}
	registration.BindingTxID = bindingTxID
	return registration, nil
}

// DeregisterDevice removes the device's whitelist entry from the authority
// account. The device's own bindings stay in place.
func (u *registryUseCase) DeregisterDevice(ctx context.Context, deviceAddress string) (string, error) {
	txID, err := u.writeEntries(ctx, u.signer.Address(), []ledger.DataEntry{
		{Key: ledger.DeviceKey(deviceAddress), Value: ""},
	})
	if err != nil {
		return "", apperrors.Wrap(domain.ErrRegistryWrite, err.Error())
	}
	return txID, nil
}

// GetDevice reads a device's registration entry and its owner/dapp bindings.
func (u *registryUseCase) GetDevice(ctx context.Context, deviceAddress string) (*domain.Device, error) {
	entry, err := u.gateway.FetchEntry(ctx, u.signer.Address(), ledger.DeviceKey(deviceAddress))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrDeviceNotRegistered
		}
		return nil, err
	}
	if !ledger.IsActive(entry) {
		return nil, domain.ErrDeviceNotRegistered
	}

	device := &domain.Device{Address: deviceAddress}

	if owner, err := u.gateway.FetchEntry(ctx, deviceAddress, ledger.DeviceOwnerKey); err == nil {
		device.Owner = owner.Value
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if dapp, err := u.gateway.FetchEntry(ctx, deviceAddress, ledger.DeviceDappKey); err == nil {
		device.Dapp = dapp.Value
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	return device, nil
}

// ListDevices returns the addresses of all devices with an active whitelist
// entry on the authority account.
func (u *registryUseCase) ListDevices(ctx context.Context) ([]string, error) {
	entries, err := u.gateway.FetchEntriesByPattern(ctx, u.signer.Address(), devicePattern)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(entries))
	for i := range entries {
		if entries[i].Value != ledger.EntryActive {
			continue
		}
		addresses = append(addresses, strings.TrimPrefix(entries[i].Key, "device_"))
	}
	return addresses, nil
}

// WhitelistOrganisation marks the organisation active on the authority
// account.
func (u *registryUseCase) WhitelistOrganisation(ctx context.Context, orgAddress string) (string, error) {
	txID, err := u.writeEntries(ctx, u.signer.Address(), []ledger.DataEntry{
		{Key: ledger.OrgKey(orgAddress), Value: ledger.EntryActive},
	})
	if err != nil {
		return "", apperrors.Wrap(domain.ErrRegistryWrite, err.Error())
	}
	return txID, nil
}

// RemoveOrganisation removes the organisation's whitelist entry.
func (u *registryUseCase) RemoveOrganisation(ctx context.Context, orgAddress string) (string, error) {
	txID, err := u.writeEntries(ctx, u.signer.Address(), []ledger.DataEntry{
		{Key: ledger.OrgKey(orgAddress), Value: ""},
	})
	if err != nil {
		return "", apperrors.Wrap(domain.ErrRegistryWrite, err.Error())
	}
	return txID, nil
}

// AddMember writes the membership entry on the organisation account.
func (u *registryUseCase) AddMember(ctx context.Context, orgAddress, memberAddress string) (string, error) {
	txID, err := u.writeEntries(ctx, orgAddress, []ledger.DataEntry{
		{Key: ledger.UserKey(memberAddress), Value: ledger.EntryActive},
	})
	if err != nil {
		return "", apperrors.Wrap(domain.ErrRegistryWrite, err.Error())
	}
	return txID, nil
}

// RemoveMember removes the membership entry.
func (u *registryUseCase) RemoveMember(ctx context.Context, orgAddress, memberAddress string) (string, error) {
	txID, err := u.writeEntries(ctx, orgAddress, []ledger.DataEntry{
		{Key: ledger.UserKey(memberAddress), Value: ""},
	})
	if err != nil {
		return "", apperrors.Wrap(domain.ErrRegistryWrite, err.Error())
	}
	return txID, nil
}

// writeEntries signs and submits one data transaction targeting the given
// account, waiting for acceptance.
func (u *registryUseCase) writeEntries(ctx context.Context, address string, entries []ledger.DataEntry) (string, error) {
	tx := &ledger.Transaction{
		Type:      ledger.TxData,
		Fee:       dataFee,
		Timestamp: u.now().UnixMilli(),
		Address:   address,
		Entries:   entries,
	}

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
