// Package validation provides custom validation rules for request DTOs.
package validation

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/claims/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Hex validates that a string is an even-length hex encoding. The empty string passes,
// so an empty claim can be registered.
var Hex = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := hex.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_hex", "must be hex-encoded bytes"),
)

// UUID validates the canonical textual form of a UUID.
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// MaxHexBytes validates that a hex string decodes to at most n bytes.
func MaxHexBytes(n int) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			return hex.DecodedLen(len(s)) <= n
		},
		validation.NewError("validation_max_hex_bytes", "is too long"),
	)
}
