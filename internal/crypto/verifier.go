package crypto

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/keygrid/keygrid/internal/ledger"
)

// Verifier checks that a transaction payload is structurally well-formed and
// carries a valid signature by the claimed sender. It never evaluates
// business rules and never panics: any internal failure is reported as a
// verification error.
type Verifier struct {
	chainID string
}

// NewVerifier creates a transaction verifier bound to a chain id.
func NewVerifier(chainID string) *Verifier {
	return &Verifier{chainID: chainID}
}

// Verify returns nil when the transaction is well-formed and the signature
// matches the declared sender public key, and a descriptive error otherwise.
func (v *Verifier) Verify(tx *ledger.Transaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("signature verification failed: %v", r)
		}
	}()

	if tx == nil {
		return fmt.Errorf("transaction payload is missing")
	}
	if tx.SenderPublicKey == "" {
		return fmt.Errorf("sender public key is missing")
	}
	if tx.Signature == "" {
		return fmt.Errorf("signature is missing")
	}
	if tx.ChainID != v.chainID {
		return fmt.Errorf("wrong chain id %q", tx.ChainID)
	}

	public, err := base58.Decode(tx.SenderPublicKey)
	if err != nil {
		return fmt.Errorf("decode sender public key: %w", err)
	}
	if len(public) != ed25519.PublicKeySize {
		return fmt.Errorf("sender public key must be %d bytes, got %d", ed25519.PublicKeySize, len(public))
	}

	signature, err := base58.Decode(tx.Signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(signature))
	}

	// The declared sender address, when present, must match the public key.
	if tx.Sender != "" {
		derived, err := AddressFromPublicKey(public, v.chainID)
		if err != nil {
			return err
		}
		if derived != tx.Sender {
			return fmt.Errorf("sender address does not match public key")
		}
	}

	body, err := tx.BodyBytes()
	if err != nil {
		return fmt.Errorf("encode transaction body: %w", err)
	}

	if !ed25519.Verify(public, body, signature) {
		return fmt.Errorf("signature does not match payload")
	}
	return nil
}

// SenderAddress derives the ledger address of the transaction's signer from
// its declared public key. It is the only trustworthy source of the signer's
// identity: any address carried elsewhere in a request is a claim, this one
// is bound to the signature checked by Verify.
func (v *Verifier) SenderAddress(tx *ledger.Transaction) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("transaction payload is missing")
	}

	public, err := base58.Decode(tx.SenderPublicKey)
	if err != nil {
		return "", fmt.Errorf("decode sender public key: %w", err)
	}

	return AddressFromPublicKey(public, v.chainID)
}
