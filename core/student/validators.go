package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

var (
	gradeLevelTag = "gradelevel"
	statusTag     = "studentstatus"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterChoiceValidation(validate, translator, gradeLevelTag, GradeLevels)
	core.RegisterChoiceValidation(validate, translator, statusTag, Statuses)
}
