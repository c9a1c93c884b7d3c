package domain

import (
	"fmt"
	"strings"

	"schat/errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	usernameRules = "required,max=25,printascii,nospace"
	roomNameRules = "required,max=64,printascii,nospace"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	lo.Must0(v.RegisterValidation("nospace", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), " \t")
	}), "registering nospace validation")
	return v
}

// ValidateUsername accepts up to 25 printable ASCII characters without spaces.
func ValidateUsername(name string) error {
	if err := validate.Var(name, usernameRules); err != nil {
		return fmt.Errorf("%w: username %q: %v", errors.ErrInvalidName, name, err)
	}
	return nil
}

func ValidateRoomName(name string) error {
	if err := validate.Var(name, roomNameRules); err != nil {
		return fmt.Errorf("%w: room %q: %v", errors.ErrInvalidName, name, err)
	}
	return nil
}
