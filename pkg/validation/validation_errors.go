package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	// Job fields
	"JobName":        "Job Name",
	"JobType":        "Job Type",
	"JobDescription": "Job Description",
	"NumOfCandidate": "Number of Candidates Needed",
	"MinSalary":      "Minimum Estimated Salary",
	"MaxSalary":      "Maximum Estimated Salary",
	"Status":         "Status",

	// Applicant fields
	"FullName":     "Full Name",
	"PhotoProfile": "Photo Profile",
	"Gender":       "Pronoun (gender)",
	"Domicile":     "Domicile",
	"Email":        "Email Address",
	"PhoneNumber":  "Phone Number",
	"Linkedin":     "LinkedIn Profile",
	"DateOfBirth":  "Date of Birth",

	// Auth fields
	"Password": "Password",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return fmt.Sprintf("%s: invalid email format", label)
	case "url":
		return fmt.Sprintf("%s: invalid URL format", label)
	case "iso_date":
		return fmt.Sprintf("%s: must be a date in YYYY-MM-DD format", label)
	case "requirement_level":
		return fmt.Sprintf("%s: must be one of: MANDATORY, OPTIONAL, OFF", label)
	case "job_type":
		return fmt.Sprintf("%s: must be one of: FULL_TIME, CONTRACT, PART_TIME, INTERNSHIP, FREELANCE", label)
	case "job_status":
		return fmt.Sprintf("%s: must be one of: DRAFT, ACTIVE, INACTIVE", label)
	case "gender":
		return fmt.Sprintf("%s: must be MALE or FEMALE", label)
	case "gtefield":
		return fmt.Sprintf("%s: must be greater than or equal to %s", label, getFieldLabel(param))
	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
