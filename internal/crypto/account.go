// Package crypto provides account key handling, address derivation and
// transaction signature verification for the ledger protocol.
//
// Accounts are ed25519 key pairs. Addresses are derived from the public key
// with a blake2b-256 digest, tagged with a version byte and the chain id,
// and protected by a 4-byte checksum; all encodings on the wire are base58.
package crypto

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/keygrid/keygrid/internal/ledger"
)

// addressVersion tags the address format so future schemes can coexist.
const addressVersion byte = 0x01

const (
	addressHashSize     = 20
	addressChecksumSize = 4
)

// Account is an ed25519 key pair bound to a chain id. It signs transactions
// on behalf of the platform's authority account.
type Account struct {
	chainID string
	private ed25519.PrivateKey
	public  ed25519.PublicKey
	address string
}

// NewAccountFromSeed builds an account from a base58-encoded 32-byte ed25519
// seed and a chain id.
func NewAccountFromSeed(seed, chainID string) (*Account, error) {
	if chainID == "" {
		return nil, fmt.Errorf("chain id is required")
	}

	raw, err := base58.Decode(seed)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(raw))
	}

	private := ed25519.NewKeyFromSeed(raw)
	public := private.Public().(ed25519.PublicKey)

	address, err := AddressFromPublicKey(public, chainID)
	if err != nil {
		return nil, err
	}

	return &Account{
		chainID: chainID,
		private: private,
		public:  public,
		address: address,
	}, nil
}

// Address returns the account's ledger address.
func (a *Account) Address() string {
	return a.address
}

// PublicKey returns the account's base58-encoded public key.
func (a *Account) PublicKey() string {
	return base58.Encode(a.public)
}

// SignTransaction fills the sender fields, signature and id of a transaction.
// The id is the blake2b-256 digest of the canonical body bytes.
func (a *Account) SignTransaction(tx *ledger.Transaction) error {
	tx.ChainID = a.chainID
	tx.Sender = a.address
	tx.SenderPublicKey = a.PublicKey()

	body, err := tx.BodyBytes()
	if err != nil {
		return fmt.Errorf("encode transaction body: %w", err)
	}

	signature := ed25519.Sign(a.private, body)
	tx.Signature = base58.Encode(signature)

	digest := blake2b.Sum256(body)
	tx.ID = base58.Encode(digest[:])
	return nil
}

// AddressFromPublicKey derives the ledger address for a public key on the
// given chain.
func AddressFromPublicKey(public []byte, chainID string) (string, error) {
	if len(public) != ed25519.PublicKeySize {
		return "", fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(public))
	}
	if chainID == "" {
		return "", fmt.Errorf("chain id is required")
	}

	keyHash := blake2b.Sum256(public)

	payload := make([]byte, 0, 2+addressHashSize+addressChecksumSize)
	payload = append(payload, addressVersion, chainID[0])
	payload = append(payload, keyHash[:addressHashSize]...)

	checksum := blake2b.Sum256(payload)
	payload = append(payload, checksum[:addressChecksumSize]...)

	return base58.Encode(payload), nil
}

// ValidateAddress checks that an address is well-formed for the given chain:
// correct length, version byte, chain byte and checksum.
func ValidateAddress(address, chainID string) error {
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != 2+addressHashSize+addressChecksumSize {
		return fmt.Errorf("address must be %d bytes, got %d", 2+addressHashSize+addressChecksumSize, len(raw))
	}
	if raw[0] != addressVersion {
		return fmt.Errorf("unsupported address version %d", raw[0])
	}
	if chainID == "" || raw[1] != chainID[0] {
		return fmt.Errorf("address does not belong to chain %q", chainID)
	}

	body := raw[:2+addressHashSize]
	checksum := blake2b.Sum256(body)
	for i := 0; i < addressChecksumSize; i++ {
		if raw[2+addressHashSize+i] != checksum[i] {
			return fmt.Errorf("address checksum mismatch")
		}
	}
	return nil
}
