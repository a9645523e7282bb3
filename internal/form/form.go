package form

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"job-board-backend/internal/domain"
	"job-board-backend/pkg/security"
)

var (
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrFieldDisabled      = errors.New("field is disabled for this job")
	ErrUnknownCountry     = errors.New("unknown country")
	ErrInvalidValue       = errors.New("invalid value")
	ErrPhotoType          = errors.New("photo must be a JPEG, PNG, GIF or WebP image")
	ErrPhotoTooLarge      = errors.New("photo must be 2MB or smaller")
)

// Change is the single message every widget publishes.
type Change struct {
	Field domain.Field
	Value string
}

// Transport sends an assembled payload. internal/client implements it over
// HTTP.
type Transport interface {
	SubmitApplication(ctx context.Context, payload domain.SubmissionPayload) (*domain.Applicant, error)
}

// Form is the state of one application form instance.
type Form struct {
	mu         sync.Mutex
	job        *domain.Job
	values     map[domain.Field]string
	photo      *domain.Photo
	country    Country
	localPhone string
	link       *LinkChecker
	inFlight   bool
}

type Option func(*Form)

// WithLinkDebounce overrides the URL check delay.
func WithLinkDebounce(d time.Duration, onChange func(LinkStatus)) Option {
	return func(f *Form) { f.link = NewLinkChecker(d, onChange) }
}

func New(job *domain.Job, opts ...Option) *Form {
	f := &Form{
		job:     job,
		values:  make(map[domain.Field]string),
		country: DefaultCountry(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.link == nil {
		f.link = NewLinkChecker(DefaultLinkDebounce, nil)
	}
	return f
}

func (f *Form) Job() *domain.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.job
}

// Reload swaps in a fresh copy of the job. Inputs are kept even for fields
// that became OFF; BuildSubmission drops them.
func (f *Form) Reload(job *domain.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.job = job
}

func (f *Form) Describe() []FieldDescriptor {
	return Describe(f.Job().Requirements)
}

// Apply is the one reducer for all field edits. The URL check is started
// after the form is unlocked so its status callback can read the form.
func (f *Form) Apply(c Change) error {
	f.mu.Lock()
	if err := f.applyLocked(c); err != nil {
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()

	if c.Field == domain.FieldLinkedin {
		f.link.Update(c.Value)
	}
	return nil
}

func (f *Form) applyLocked(c Change) error {
	if !c.Field.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, c.Field)
	}
	if c.Field == domain.FieldPhotoProfile {
		return fmt.Errorf("photo is set with SetPhoto")
	}
	if !StateFor(f.job.Requirements.LevelOf(c.Field)).Enabled {
		return fmt.Errorf("%w: %s", ErrFieldDisabled, c.Field)
	}

	v := strings.TrimSpace(c.Value)
	switch c.Field {
	case domain.FieldGender:
		if v != "" && !domain.Gender(v).Valid() {
			return fmt.Errorf("%w: gender must be MALE or FEMALE", ErrInvalidValue)
		}
	case domain.FieldDateOfBirth:
		if v != "" {
			if _, err := domain.ParseDate(v); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
		}
	}

	if c.Field == domain.FieldPhoneNumber {
		f.localPhone = localDigits(c.Value)
		f.values[c.Field] = composePhone(f.country, f.localPhone)
		return nil
	}
	f.values[c.Field] = c.Value
	return nil
}

// SelectCountry changes the dial code and re-prefixes any number typed so far.
func (f *Form) SelectCountry(code string) error {
	country, ok := FindCountry(code)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCountry, code)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.country = country
	if f.localPhone != "" {
		f.values[domain.FieldPhoneNumber] = composePhone(country, f.localPhone)
	}
	return nil
}

func (f *Form) Country() Country {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.country
}

// SelectDate records the calendar day of t in t's own location, which is the
// applicant's local zone. Converting to UTC first would shift the day.
func (f *Form) SelectDate(t time.Time) error {
	return f.Apply(Change{Field: domain.FieldDateOfBirth, Value: domain.DateOf(t).String()})
}

// SelectDomicile overwrites the typed text with the chosen city.
func (f *Form) SelectDomicile(s Suggestion) error {
	return f.Apply(Change{Field: domain.FieldDomicile, Value: s.City})
}

// SetPhoto checks type and the advisory 2MB ceiling. The server re-checks.
func (f *Form) SetPhoto(p *domain.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !StateFor(f.job.Requirements.LevelOf(domain.FieldPhotoProfile)).Enabled {
		return fmt.Errorf("%w: %s", ErrFieldDisabled, domain.FieldPhotoProfile)
	}
	if p == nil {
		f.photo = nil
		return nil
	}
	if !security.IsImageExtension(strings.ToLower(filepath.Ext(p.Filename))) ||
		(p.ContentType != "" && !security.IsImageContentType(p.ContentType)) {
		return ErrPhotoType
	}
	if int64(len(p.Data)) > security.DefaultMaxPhotoBytes {
		return ErrPhotoTooLarge
	}
	f.photo = p
	return nil
}

func (f *Form) Value(field domain.Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

func (f *Form) Inputs() Inputs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputsLocked()
}

func (f *Form) inputsLocked() Inputs {
	values := make(map[domain.Field]string, len(f.values))
	for k, v := range f.values {
		values[k] = v
	}
	return Inputs{Values: values, Photo: f.photo}
}

func (f *Form) LinkStatus() LinkStatus {
	return f.link.Status()
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Submit builds the payload and hands it to t. Only one submission per form
// may be in flight. Inputs are left untouched whatever the outcome so the
// applicant can fix and resubmit.
func (f *Form) Submit(ctx context.Context, t Transport) (*domain.Applicant, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	payload, err := BuildSubmission(f.job, f.inputsLocked())
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.inFlight = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()
	return t.SubmitApplication(ctx, payload)
}

// Close stops the pending URL check.
func (f *Form) Close() {
	f.link.Stop()
}

func localDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func composePhone(c Country, local string) string {
	if local == "" {
		return ""
	}
	return c.DialCode + local
}
