package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keyUseCase "github.com/keygrid/keygrid/internal/key/usecase"
)

// RunRevokeKey burns a capability key held by the authority account.
// Only valid while the key sits on the authority's own account.
//
// Requirements: the ledger node must be reachable and AUTHORITY_SEED set.
func RunRevokeKey(
	ctx context.Context,
	issuer keyUseCase.IssuerUseCase,
	logger *slog.Logger,
	writer io.Writer,
	keyID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("revoking key", slog.String("key_id", keyID))

	txID, err := issuer.Revoke(ctx, keyID)
	if err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}

	if format == "json" {
		return printJSON(writer, map[string]string{"keyId": keyID, "txId": txID})
	}

	fmt.Fprintf(writer, "key %s revoked in tx %s\n", keyID, txID)

	return nil
}
