package keyring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce   sync.Once
	structValidator *validator.Validate
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterValidation("secretref", isSecretRef)

		// Report YAML field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

// validate checks the struct tags of a keyring file and joins every
// violation into a single ErrInvalidKeyring error.
func validate(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidKeyring, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidKeyring, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	// Drop the top-level type name: "VerifierFile.checks[1].iv" -> "checks[1].iv"
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, param)
	case "len":
		return fmt.Sprintf("%s must have exactly %s values", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "secretref":
		return fmt.Sprintf("%s must be hex or an environment reference", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// isSecretRef accepts hex strings and $VAR references.
func isSecretRef(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.HasPrefix(s, "$") {
		return len(s) > 1
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
