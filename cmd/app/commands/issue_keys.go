package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keyDomain "github.com/keygrid/keygrid/internal/key/domain"
	keyUseCase "github.com/keygrid/keygrid/internal/key/usecase"
)

// RunIssueKeys issues a batch of capability keys for a device from the
// terminal. Each unit reports success or failure independently; a shared
// whitelist failure marks the whole batch as failed. Outputs per-unit
// results in either text or JSON format.
//
// Requirements: the ledger node must be reachable and AUTHORITY_SEED set.
func RunIssueKeys(
	ctx context.Context,
	batchIssuer keyUseCase.BatchIssuerUseCase,
	logger *slog.Logger,
	writer io.Writer,
	deviceAddress string,
	validTo int64,
	amount int,
	recipientAddress string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("issuing keys",
		slog.String("device_address", deviceAddress),
		slog.Int("amount", amount),
	)

	results, err := batchIssuer.IssueBatch(ctx, &keyDomain.BatchRequest{
		DeviceAddress:    deviceAddress,
		ValidTo:          validTo,
		Amount:           amount,
		RecipientAddress: recipientAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to issue keys: %w", err)
	}

	if format == "json" {
		return printJSON(writer, results)
	}

	for i, result := range results {
		if result.Success {
			fmt.Fprintf(writer, "unit %d: key %s whitelist tx %s\n", i+1, result.KeyID, result.WhitelistTxID)
			continue
		}
		fmt.Fprintf(writer, "unit %d: failed: %s\n", i+1, result.Error)
	}

	return nil
}
