package domain_test

import (
	"encoding/json"
	"testing"

	"job-board-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := domain.DefaultPolicy()
	for _, f := range domain.Fields {
		if f.IsFixed() {
			assert.Equal(t, domain.LevelMandatory, p.LevelOf(f), f)
		} else {
			assert.Equal(t, domain.LevelOptional, p.LevelOf(f), f)
		}
	}
}

func TestZeroPolicyResolvesDefaults(t *testing.T) {
	var p domain.Policy
	assert.Equal(t, domain.LevelMandatory, p.LevelOf(domain.FieldEmail))
	assert.Equal(t, domain.LevelOptional, p.LevelOf(domain.FieldLinkedin))
	assert.Len(t, p.Levels(), len(domain.Fields))
}

func TestIsFixed(t *testing.T) {
	fixed := map[domain.Field]bool{
		domain.FieldFullName:     true,
		domain.FieldPhotoProfile: true,
		domain.FieldEmail:        true,
	}
	p := domain.DefaultPolicy()
	for _, f := range domain.Fields {
		assert.Equal(t, fixed[f], p.IsFixed(f), f)
	}
}

func TestSetLevelFixedFields(t *testing.T) {
	for _, f := range []domain.Field{domain.FieldFullName, domain.FieldPhotoProfile, domain.FieldEmail} {
		for _, l := range []domain.RequirementLevel{domain.LevelOptional, domain.LevelOff} {
			p := domain.DefaultPolicy()
			err := p.SetLevel(f, l)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", f, l)
			assert.Equal(t, domain.LevelMandatory, p.LevelOf(f))
		}
		p := domain.DefaultPolicy()
		assert.NoError(t, p.SetLevel(f, domain.LevelMandatory))
	}
}

func TestSetLevelFreeFields(t *testing.T) {
	p := domain.DefaultPolicy()
	levels := []domain.RequirementLevel{domain.LevelOff, domain.LevelMandatory, domain.LevelOptional, domain.LevelOff}
	for _, l := range levels {
		require.NoError(t, p.SetLevel(domain.FieldLinkedin, l))
		assert.Equal(t, l, p.LevelOf(domain.FieldLinkedin))
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	p := domain.DefaultPolicy()
	assert.ErrorIs(t, p.SetLevel("nickname", domain.LevelOptional), domain.ErrUnknownField)
	assert.ErrorIs(t, p.SetLevel(domain.FieldGender, "SOMETIMES"), domain.ErrInvalidLevel)
}

func TestWithDoesNotMutate(t *testing.T) {
	p := domain.DefaultPolicy()
	q, err := p.With(domain.FieldGender, domain.LevelOff)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelOptional, p.LevelOf(domain.FieldGender))
	assert.Equal(t, domain.LevelOff, q.LevelOf(domain.FieldGender))
}

func TestParsePolicy(t *testing.T) {
	p, err := domain.ParsePolicy(map[string]string{"linkedin": "OFF", "gender": "MANDATORY"})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelOff, p.LevelOf(domain.FieldLinkedin))
	assert.Equal(t, domain.LevelMandatory, p.LevelOf(domain.FieldGender))
	assert.Equal(t, domain.LevelOptional, p.LevelOf(domain.FieldDomicile))

	_, err = domain.ParsePolicy(map[string]string{"email": "OFF"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPolicyJSON(t *testing.T) {
	p, err := domain.DefaultPolicy().With(domain.FieldDateOfBirth, domain.LevelOff)
	require.NoError(t, err)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded, 8)
	assert.Equal(t, "OFF", decoded["dateOfBirth"])

	var back domain.Policy
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, p.Levels(), back.Levels())
}
