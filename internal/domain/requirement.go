package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RequirementLevel controls how an application-form field is rendered and
// validated for a given job.
type RequirementLevel string

const (
	LevelMandatory RequirementLevel = "MANDATORY"
	LevelOptional  RequirementLevel = "OPTIONAL"
	LevelOff       RequirementLevel = "OFF"
)

func (l RequirementLevel) Valid() bool {
	switch l {
	case LevelMandatory, LevelOptional, LevelOff:
		return true
	}
	return false
}

// Field is one of the recognized applicant profile fields.
type Field string

const (
	FieldFullName     Field = "fullName"
	FieldPhotoProfile Field = "photoProfile"
	FieldGender       Field = "gender"
	FieldDomicile     Field = "domicile"
	FieldEmail        Field = "email"
	FieldPhoneNumber  Field = "phoneNumber"
	FieldLinkedin     Field = "linkedin"
	FieldDateOfBirth  Field = "dateOfBirth"
)

// Fields lists every recognized field in form order.
var Fields = []Field{
	FieldFullName,
	FieldPhotoProfile,
	FieldGender,
	FieldDomicile,
	FieldEmail,
	FieldPhoneNumber,
	FieldLinkedin,
	FieldDateOfBirth,
}

var (
	ErrInvalidTransition = errors.New("field requirement cannot be lowered below MANDATORY")
	ErrUnknownField      = errors.New("unknown field")
	ErrInvalidLevel      = errors.New("invalid requirement level")
)

func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// IsFixed reports whether f must always be MANDATORY. The applicant record
// cannot exist without a name, a photo and an email address.
func (f Field) IsFixed() bool {
	return f == FieldFullName || f == FieldPhotoProfile || f == FieldEmail
}

// DefaultLevel is the level a field takes when nothing was configured.
func (f Field) DefaultLevel() RequirementLevel {
	if f.IsFixed() {
		return LevelMandatory
	}
	return LevelOptional
}

// Policy holds one requirement level per recognized field.
// The zero value is usable: every field resolves to its default level.
type Policy struct {
	levels map[Field]RequirementLevel
}

// DefaultPolicy returns fixed fields MANDATORY and every other field OPTIONAL.
func DefaultPolicy() Policy {
	p := Policy{levels: make(map[Field]RequirementLevel, len(Fields))}
	for _, f := range Fields {
		p.levels[f] = f.DefaultLevel()
	}
	return p
}

// LevelOf never reports an unset level.
func (p Policy) LevelOf(f Field) RequirementLevel {
	if l, ok := p.levels[f]; ok {
		return l
	}
	return f.DefaultLevel()
}

func (p Policy) IsFixed(f Field) bool {
	return f.IsFixed()
}

// SetLevel updates f in place.
func (p *Policy) SetLevel(f Field, l RequirementLevel) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	if !l.Valid() {
		return fmt.Errorf("%w: %q for %s", ErrInvalidLevel, l, f)
	}
	if f.IsFixed() && l != LevelMandatory {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, f)
	}
	if p.levels == nil {
		p.levels = make(map[Field]RequirementLevel, len(Fields))
	}
	p.levels[f] = l
	return nil
}

// With returns a copy of p with f set to l.
func (p Policy) With(f Field, l RequirementLevel) (Policy, error) {
	c := p.Clone()
	if err := c.SetLevel(f, l); err != nil {
		return p, err
	}
	return c, nil
}

func (p Policy) Clone() Policy {
	c := DefaultPolicy()
	for f, l := range p.levels {
		c.levels[f] = l
	}
	return c
}

// Levels returns the full field→level map, defaults included.
func (p Policy) Levels() map[Field]RequirementLevel {
	out := make(map[Field]RequirementLevel, len(Fields))
	for _, f := range Fields {
		out[f] = p.LevelOf(f)
	}
	return out
}

// ParsePolicy builds a policy from raw field→level strings. Missing fields
// take their default level; unknown fields and bad levels are rejected.
func ParsePolicy(raw map[string]string) (Policy, error) {
	p := DefaultPolicy()
	var errs []error
	for name, level := range raw {
		if err := p.SetLevel(Field(name), RequirementLevel(level)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Policy{}, errors.Join(errs...)
	}
	return p, nil
}

func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Levels())
}

func (p *Policy) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePolicy(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
