package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	registryDomain "github.com/keygrid/keygrid/internal/registry/domain"
	registryUseCase "github.com/keygrid/keygrid/internal/registry/usecase"
)

// RunRegisterDevice adds a device to the authority whitelist and writes the
// owner and dapp bindings on the device account.
//
// Requirements: the ledger node must be reachable and AUTHORITY_SEED set.
func RunRegisterDevice(
	ctx context.Context,
	registry registryUseCase.RegistryUseCase,
	logger *slog.Logger,
	writer io.Writer,
	address string,
	owner string,
	dapp string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("registering device", slog.String("device_address", address))

	registration, err := registry.RegisterDevice(ctx, &registryDomain.Device{
		Address: address,
		Owner:   owner,
		Dapp:    dapp,
	})
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	if format == "json" {
		return printJSON(writer, registration)
	}

	fmt.Fprintf(writer, "device %s registered\n", address)
	fmt.Fprintf(writer, "whitelist tx %s\n", registration.WhitelistTxID)
	if registration.BindingTxID != "" {
		fmt.Fprintf(writer, "binding tx %s\n", registration.BindingTxID)
	}

	return nil
}
