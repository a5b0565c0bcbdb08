package service

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldRules orders tag failures; the highest-ranked one is reported.
var fieldRules = map[string]struct {
	err  error
	rank int
}{
	"required": {ErrMissingFields, 3},
	"eqfield":  {ErrPasswordMismatch, 2},
	"email":    {ErrInvalidEmail, 1},
}

// validateStruct runs the validate tags on v and folds the result into a
// single error wrapping ErrValidation.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var (
		picked error
		best   = -1
	)
	for _, fe := range fieldErrs {
		rule, ok := fieldRules[fe.Tag()]
		if !ok {
			rule.err = fmt.Errorf("%w: %s fails %q", ErrValidation, fe.Field(), fe.Tag())
		}
		if rule.rank > best {
			picked, best = rule.err, rule.rank
		}
	}
	return picked
}

const bcryptMaxBytes = 72

// passwordKey is what gets handed to bcrypt. bcrypt ignores everything past
// 72 bytes and x/crypto refuses such input, so longer passwords are digested.
func passwordKey(password string) []byte {
	if len(password) <= bcryptMaxBytes {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
