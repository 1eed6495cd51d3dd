package validator

import (
	"reflect"
	"strings"

	"github.com/campus-stack/testing-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation with the content rules that
// tags cannot express (correct_index depends on the option count).
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate runs struct-tag validation and converts failures into the
// shared ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// ValidateQuestionContent enforces the write-time invariant on question
// version content: at least two options and a correct index that points
// into them.
func (v *Validator) ValidateQuestionContent(options []string, correctIndex int) ValidationErrors {
	var errs ValidationErrors

	if len(options) < 2 {
		errs = append(errs, *NewValidationErrorWithRule(
			"options", "must contain at least 2 options", "min", len(options)))
	}
	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			errs = append(errs, *NewValidationErrorWithRule(
				"options", "option text cannot be empty", "required", i))
			break
		}
	}
	if correctIndex < 0 || correctIndex >= len(options) {
		errs = append(errs, *NewValidationErrorWithRule(
			"correct_index", "must point at one of the options", "range", correctIndex))
	}

	return errs
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("role", validateRole)
	validate.RegisterValidation("attempt_status", validateAttemptStatus)

	// Report JSON field names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateRole(fl validator.FieldLevel) bool {
	return models.IsValidRole(models.Role(fl.Field().String()))
}

func validateAttemptStatus(fl validator.FieldLevel) bool {
	v := models.AttemptStatus(fl.Field().String())
	return v == models.AttemptStatusInProgress || v == models.AttemptStatusFinished
}
