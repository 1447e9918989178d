package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/SAP-F-2025/analytics-service/internal/errors"
	"github.com/SAP-F-2025/analytics-service/internal/models"
)

// Validator wraps go-playground struct validation with the custom tags the
// analytics payloads use.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate runs struct validation and converts failures to the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return apperrors.ToValidationErrors(err)
	}
	return nil
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field interface{}, tag string) error {
	if err := v.validate.Var(field, tag); err != nil {
		return apperrors.ToValidationErrors(err)
	}
	return nil
}

// Custom validation functions

func ValidateClusterLabel(fl validator.FieldLevel) bool {
	validLabels := []models.ClusterLabel{
		models.ClusterHighPerformers,
		models.ClusterConsistent,
		models.ClusterAtRisk,
		models.ClusterStruggling,
	}

	value := fl.Field().String()
	for _, validLabel := range validLabels {
		if string(validLabel) == value {
			return true
		}
	}
	return false
}

func ValidateInsightKind(fl validator.FieldLevel) bool {
	validKinds := []models.InsightKind{
		models.InsightCritical,
		models.InsightWarning,
		models.InsightPositive,
		models.InsightPerformance,
		models.InsightEngagement,
		models.InsightAttendance,
	}

	value := fl.Field().String()
	for _, validKind := range validKinds {
		if string(validKind) == value {
			return true
		}
	}
	return false
}

func ValidateRecommendationPriority(fl validator.FieldLevel) bool {
	validPriorities := []models.RecommendationPriority{
		models.PriorityHigh,
		models.PriorityMedium,
		models.PriorityLow,
	}

	value := fl.Field().String()
	for _, validPriority := range validPriorities {
		if string(validPriority) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("cluster_label", ValidateClusterLabel)
	validate.RegisterValidation("insight_kind", ValidateInsightKind)
	validate.RegisterValidation("recommendation_priority", ValidateRecommendationPriority)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
