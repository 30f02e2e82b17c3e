// Package validation provides custom validation rules for request DTOs.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"
	"github.com/mr-tron/base58"

	apperrors "github.com/keygrid/keygrid/internal/errors"
)

// addressSize is the decoded length of a ledger address: version byte,
// chain byte, 20-byte key hash, 4-byte checksum.
const addressSize = 26

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Base58 validates that a string is non-empty and base58-decodable.
var Base58 = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "" {
			return false
		}
		_, err := base58.Decode(s)
		return err == nil
	},
	validation.NewError("validation_base58", "must be a base58-encoded value"),
)

// Address validates that a string decodes to a well-sized ledger address.
// Chain and checksum validation happens in the crypto package; this rule only
// rejects values that cannot possibly be addresses.
var Address = validation.NewStringRuleWithError(
	func(s string) bool {
		raw, err := base58.Decode(s)
		return err == nil && len(raw) == addressSize
	},
	validation.NewError("validation_address", "must be a base58-encoded ledger address"),
)
