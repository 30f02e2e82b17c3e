// Package testutil provides shared fixtures for ledger-facing tests:
// deterministic accounts, addresses and token builders.
package testutil

import (
	"strconv"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/keygrid/keygrid/internal/crypto"
	"github.com/keygrid/keygrid/internal/ledger"
)

// TestChainID is the chain id used by all test fixtures.
const TestChainID = "T"

// Seed returns a base58-encoded 32-byte ed25519 seed filled with the given
// tag byte. The same tag always yields the same account.
func Seed(tag byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = tag
	}
	return base58.Encode(raw)
}

// NewAccount builds a deterministic test account on TestChainID.
func NewAccount(t *testing.T, tag byte) *crypto.Account {
	t.Helper()

	account, err := crypto.NewAccountFromSeed(Seed(tag), TestChainID)
	require.NoError(t, err)
	return account
}

// Address returns the address of the deterministic account for the tag.
func Address(t *testing.T, tag byte) string {
	t.Helper()
	return NewAccount(t, tag).Address()
}

// NewToken builds a capability key token owned by the given address, bound
// to the device and expiry.
func NewToken(id, issuer, owner, deviceAddress string, validTo int64) *ledger.Token {
	return &ledger.Token{
		ID:          id,
		Issuer:      issuer,
		Owner:       owner,
		Name:        "device-key",
		Description: "device:" + deviceAddress + "|validto:" + strconv.FormatInt(validTo, 10),
		Quantity:    1,
		Decimals:    0,
		Reissuable:  false,
	}
}
