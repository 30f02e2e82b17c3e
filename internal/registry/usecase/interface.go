package usecase

import (
	"context"

	"github.com/keygrid/keygrid/internal/ledger"
	"github.com/keygrid/keygrid/internal/registry/domain"
)

// TransactionSigner signs ledger transactions on behalf of the authority
// account.
type TransactionSigner interface {
	Address() string
	SignTransaction(tx *ledger.Transaction) error
}

// RegistryUseCase maintains the on-ledger registries: the authority's device
// and organisation whitelists and each organisation's membership entries.
// Entries carry the value "active" when valid and are removed otherwise.
type RegistryUseCase interface {
	// RegisterDevice whitelists the device on the authority account and
	// writes the owner/dapp bindings to the device's own storage.
	RegisterDevice(ctx context.Context, device *domain.Device) (*domain.DeviceRegistration, error)

	// DeregisterDevice removes the device's whitelist entry.
	DeregisterDevice(ctx context.Context, deviceAddress string) (string, error)

	// GetDevice reads a device's registration state and bindings.
	GetDevice(ctx context.Context, deviceAddress string) (*domain.Device, error)

	// ListDevices returns the addresses of all actively registered devices.
	ListDevices(ctx context.Context) ([]string, error)

	// WhitelistOrganisation marks the organisation as active on the
	// authority account.
	WhitelistOrganisation(ctx context.Context, orgAddress string) (string, error)

	// RemoveOrganisation removes the organisation's whitelist entry.
	RemoveOrganisation(ctx context.Context, orgAddress string) (string, error)

	// AddMember writes a membership entry for the member on the
	// organisation's account.
	AddMember(ctx context.Context, orgAddress, memberAddress string) (string, error)

	// RemoveMember removes a membership entry.
	RemoveMember(ctx context.Context, orgAddress, memberAddress string) (string, error)
}
