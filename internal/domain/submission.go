package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Photo is an uploaded profile photo before it reaches storage.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmissionPayload is what an applicant sends for one job. Values holds only
// the fields that were sent; a key with an empty value counts as present.
type SubmissionPayload struct {
	JobID  int64
	Values map[Field]string
	Photo  *Photo
}

// Has reports whether f was included in the payload at all.
func (p SubmissionPayload) Has(f Field) bool {
	if f == FieldPhotoProfile {
		return p.Photo != nil
	}
	_, ok := p.Values[f]
	return ok
}

// Filled reports whether f is present and non-blank.
func (p SubmissionPayload) Filled(f Field) bool {
	if f == FieldPhotoProfile {
		return p.Photo != nil && len(p.Photo.Data) > 0
	}
	return strings.TrimSpace(p.Values[f]) != ""
}

func (p SubmissionPayload) Value(f Field) string {
	return strings.TrimSpace(p.Values[f])
}

type ViolationCode string

const (
	CodeRequiredFieldMissing ViolationCode = "REQUIRED_FIELD_MISSING"
	CodeUnexpectedField      ViolationCode = "UNEXPECTED_FIELD"
	CodeInvalidValue         ViolationCode = "INVALID_VALUE"
	CodeMissingField         ViolationCode = "MISSING_FIELD"
)

type FieldViolation struct {
	Field   string        `json:"field"`
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
}

func (v FieldViolation) Error() string {
	return v.Message
}

func RequiredFieldMissing(f Field) FieldViolation {
	return FieldViolation{Field: string(f), Code: CodeRequiredFieldMissing, Message: fmt.Sprintf("%s is required", f)}
}

func UnexpectedField(f Field) FieldViolation {
	return FieldViolation{Field: string(f), Code: CodeUnexpectedField, Message: fmt.Sprintf("%s is not accepted for this job", f)}
}

func InvalidValue(f Field, reason string) FieldViolation {
	return FieldViolation{Field: string(f), Code: CodeInvalidValue, Message: fmt.Sprintf("%s %s", f, reason)}
}

func MissingField(name string) FieldViolation {
	return FieldViolation{Field: name, Code: CodeMissingField, Message: fmt.Sprintf("%s is required", name)}
}

// ValidateSubmission re-checks the payload against policy regardless of what
// the client rendered. It returns every violation, in form order.
func ValidateSubmission(policy Policy, payload SubmissionPayload) []FieldViolation {
	var violations []FieldViolation
	for _, f := range Fields {
		switch policy.LevelOf(f) {
		case LevelOff:
			if payload.Has(f) {
				violations = append(violations, UnexpectedField(f))
			}
		case LevelMandatory:
			if !payload.Filled(f) {
				violations = append(violations, RequiredFieldMissing(f))
			}
		}
	}

	var unknown []string
	for f := range payload.Values {
		if !f.Valid() {
			unknown = append(unknown, string(f))
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		violations = append(violations, UnexpectedField(Field(name)))
	}
	return violations
}
