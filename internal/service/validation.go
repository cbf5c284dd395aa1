package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/adobah666/edutrack-sub001/internal/ledger"
)

// NewValidator returns a validator with the engine's custom rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		return ledger.ValidAcademicYear(fl.Field().String())
	})
	return v
}
