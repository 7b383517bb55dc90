// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budgetgrid/internal/domain"
	"budgetgrid/internal/months"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("month_name", validateMonthName)
		_ = v.RegisterValidation("value_type", validateValueType)
		_ = v.RegisterValidation("category_description", validateCategoryDescription)
		_ = v.RegisterValidation("nesting_level", validateNestingLevel)
	}
}

func validateMonthName(fl validator.FieldLevel) bool {
	return months.Valid(months.Month(fl.Field().String()))
}

func validateValueType(fl validator.FieldLevel) bool {
	return domain.ValueType(fl.Field().String()).Valid()
}

func validateCategoryDescription(fl validator.FieldLevel) bool {
	return domain.CategoryDescription(fl.Field().String()).Valid()
}

func validateNestingLevel(fl validator.FieldLevel) bool {
	level := fl.Field().Int()
	return level >= domain.LevelBucket && level <= domain.LevelLeaf
}
