package form

import (
	"errors"
	"strings"

	"job-board-backend/internal/domain"
)

var ErrRequiredFieldMissing = errors.New("required field missing")

// MissingFieldsError lists every MANDATORY field left blank, in form order.
type MissingFieldsError struct {
	Fields []domain.Field
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = Label(f)
	}
	return "please fill in: " + strings.Join(names, ", ")
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrRequiredFieldMissing
}

func (e *MissingFieldsError) Violations() []domain.FieldViolation {
	out := make([]domain.FieldViolation, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = domain.RequiredFieldMissing(f)
	}
	return out
}

// Inputs is the raw form state: whatever the widgets currently hold.
type Inputs struct {
	Values map[domain.Field]string
	Photo  *domain.Photo
}

// BuildSubmission assembles the payload for job from inputs. OFF fields are
// dropped whatever they hold; blank optional fields are not sent. It does no
// I/O, so a missing MANDATORY field fails before anything reaches the network.
func BuildSubmission(job *domain.Job, inputs Inputs) (domain.SubmissionPayload, error) {
	payload := domain.SubmissionPayload{JobID: job.ID, Values: make(map[domain.Field]string)}
	var missing []domain.Field

	for _, f := range domain.Fields {
		level := job.Requirements.LevelOf(f)
		if level == domain.LevelOff {
			continue
		}

		if f == domain.FieldPhotoProfile {
			if inputs.Photo != nil && len(inputs.Photo.Data) > 0 {
				payload.Photo = inputs.Photo
			} else if level == domain.LevelMandatory {
				missing = append(missing, f)
			}
			continue
		}

		v := strings.TrimSpace(inputs.Values[f])
		if v == "" {
			if level == domain.LevelMandatory {
				missing = append(missing, f)
			}
			continue
		}
		payload.Values[f] = v
	}

	if len(missing) > 0 {
		return domain.SubmissionPayload{}, &MissingFieldsError{Fields: missing}
	}
	return payload, nil
}
