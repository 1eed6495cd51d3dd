package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_AnswerIndexOutOfRange(t *testing.T) {
	err := NewValidationError("answer_index", "must be between 0 and 3", 7)

	assert.Equal(t, "answer_index", err.Field)
	assert.Equal(t, 7, err.Value)
	assert.Equal(t, "validation error on field 'answer_index': must be between 0 and 3", err.Error())
}

func TestValidationErrors_ErrorString(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("correct_index", "must be less than the option count", 5))
	assert.Equal(t, "validation failed: correct_index must be less than the option count", errs.Error())

	errs = append(errs, *NewValidationError("options", "must contain at least 2 items", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("order", "must contain every question exactly once", "permutation", []uint{1, 1})

	assert.Equal(t, "order", err.Field)
	assert.Equal(t, "permutation", err.Rule)
}

func TestToValidationErrors_TranslatesTags(t *testing.T) {
	v := validator.New()
	content := struct {
		Title        string   `validate:"required"`
		Options      []string `validate:"min=2"`
		CorrectIndex int      `validate:"gte=0"`
	}{
		Options:      []string{"only one"},
		CorrectIndex: -1,
	}

	errs := ToValidationErrors(v.Struct(content))

	assert.Len(t, errs, 3)

	byField := make(map[string]ValidationError, len(errs))
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "is required", byField["Title"].Message)
	assert.Equal(t, "required", byField["Title"].Rule)
	assert.Equal(t, "must be at least 2", byField["Options"].Message)
	assert.Equal(t, "must be greater than or equal to 0", byField["CorrectIndex"].Message)
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	errs := ToValidationErrors(assert.AnError)
	assert.Empty(t, errs)
}
