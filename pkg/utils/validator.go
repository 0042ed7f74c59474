package utils

import (
	"github.com/go-playground/validator/v10"

	apperrors "return-unpack-system/pkg/errors"
)

// EchoValidator подключает go-playground/validator к echo.Context.Validate.
type EchoValidator struct {
	validate *validator.Validate
}

func NewEchoValidator() *EchoValidator {
	return &EchoValidator{validate: validator.New()}
}

func (v *EchoValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return apperrors.Wrap(apperrors.ErrBadRequest, err)
	}
	return nil
}
