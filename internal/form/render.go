// Package form drives an application form from a job's requirement policy:
// what each field looks like, what the applicant typed, and the payload that
// is finally sent.
package form

import (
	"job-board-backend/internal/domain"
	"job-board-backend/pkg/security"
)

// RenderState is derived from a requirement level and nothing else.
type RenderState struct {
	Visible  bool `json:"visible"`
	Enabled  bool `json:"enabled"`
	Required bool `json:"required"`
}

// StateFor maps a level onto its render state. OFF fields stay visible but
// disabled so applicants can see what the job does not ask for.
func StateFor(level domain.RequirementLevel) RenderState {
	switch level {
	case domain.LevelMandatory:
		return RenderState{Visible: true, Enabled: true, Required: true}
	case domain.LevelOff:
		return RenderState{Visible: true, Enabled: false, Required: false}
	default:
		return RenderState{Visible: true, Enabled: true, Required: false}
	}
}

type InputKind string

const (
	KindText     InputKind = "text"
	KindEmail    InputKind = "email"
	KindFile     InputKind = "file"
	KindRadio    InputKind = "radio"
	KindDate     InputKind = "date"
	KindPhone    InputKind = "phone"
	KindDomicile InputKind = "domicile"
	KindURL      InputKind = "url"
)

type FieldDescriptor struct {
	Field       domain.Field            `json:"field"`
	Label       string                  `json:"label"`
	Kind        InputKind               `json:"kind"`
	Level       domain.RequirementLevel `json:"level"`
	State       RenderState             `json:"state"`
	Placeholder string                  `json:"placeholder,omitempty"`
	Options     []string                `json:"options,omitempty"`
	Accept      []string                `json:"accept,omitempty"`
	MaxBytes    int64                   `json:"maxBytes,omitempty"`
	DialCode    string                  `json:"dialCode,omitempty"`
}

var fieldMeta = map[domain.Field]struct {
	label       string
	kind        InputKind
	placeholder string
}{
	domain.FieldPhotoProfile: {"Photo Profile", KindFile, ""},
	domain.FieldFullName:     {"Full Name", KindText, "Enter your full name"},
	domain.FieldDateOfBirth:  {"Date of Birth", KindDate, "Select your date of birth"},
	domain.FieldGender:       {"Pronoun (gender)", KindRadio, ""},
	domain.FieldDomicile:     {"Domicile", KindDomicile, "Ex. Jakarta, Indonesia"},
	domain.FieldPhoneNumber:  {"Phone Number", KindPhone, "81XXXXXXXXX"},
	domain.FieldEmail:        {"Email", KindEmail, "Enter your email address"},
	domain.FieldLinkedin:     {"Link Linkedin", KindURL, "Ex. https://linkedin.com/in/johndoe"},
}

// DisplayOrder is the order fields appear on the form.
var DisplayOrder = []domain.Field{
	domain.FieldPhotoProfile,
	domain.FieldFullName,
	domain.FieldDateOfBirth,
	domain.FieldGender,
	domain.FieldDomicile,
	domain.FieldPhoneNumber,
	domain.FieldEmail,
	domain.FieldLinkedin,
}

func Label(f domain.Field) string {
	if m, ok := fieldMeta[f]; ok {
		return m.label
	}
	return string(f)
}

// Describe returns one descriptor per recognized field in display order.
func Describe(policy domain.Policy) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(DisplayOrder))
	for _, f := range DisplayOrder {
		meta := fieldMeta[f]
		level := policy.LevelOf(f)
		d := FieldDescriptor{
			Field:       f,
			Label:       meta.label,
			Kind:        meta.kind,
			Level:       level,
			State:       StateFor(level),
			Placeholder: meta.placeholder,
		}
		switch f {
		case domain.FieldPhotoProfile:
			d.Accept = security.ImageMIMETypes
			d.MaxBytes = security.DefaultMaxPhotoBytes
		case domain.FieldGender:
			d.Options = []string{string(domain.GenderFemale), string(domain.GenderMale)}
		case domain.FieldPhoneNumber:
			d.DialCode = DefaultCountry().DialCode
		}
		out = append(out, d)
	}
	return out
}
