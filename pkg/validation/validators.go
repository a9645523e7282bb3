package validation

import (
	"job-board-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("iso_date", ISODate)
	_ = v.RegisterValidation("requirement_level", RequirementLevel)
	_ = v.RegisterValidation("job_type", JobType)
	_ = v.RegisterValidation("job_status", JobStatus)
	_ = v.RegisterValidation("gender", Gender)
}

// ISODate accepts YYYY-MM-DD calendar dates.
func ISODate(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	_, err := domain.ParseDate(val)
	return err == nil
}

func RequirementLevel(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return domain.RequirementLevel(val).Valid()
}

func JobType(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return domain.JobType(val).Valid()
}

func JobStatus(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return domain.JobStatus(val).Valid()
}

func Gender(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return domain.Gender(val).Valid()
}
