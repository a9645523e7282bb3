package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"
	"job-board-backend/pkg/audit"
	"job-board-backend/pkg/security"
	"job-board-backend/pkg/storage"

	"github.com/go-playground/validator/v10"
)

// PhotoOptions bounds what is accepted and stored for profile photos.
type PhotoOptions struct {
	MaxBytes     int64
	MaxDimension int
	Quality      int
}

var DefaultPhotoOptions = PhotoOptions{
	MaxBytes:     security.DefaultMaxPhotoBytes,
	MaxDimension: 1024,
	Quality:      85,
}

type applicationUsecase struct {
	jobRepo       domain.JobRepository
	applicantRepo domain.ApplicantRepository
	photos        domain.PhotoStorage
	validate      *validator.Validate
	audit         *audit.Logger
	opts          PhotoOptions
	now           func() time.Time
}

func NewApplicationUsecase(
	jobRepo domain.JobRepository,
	applicantRepo domain.ApplicantRepository,
	photos domain.PhotoStorage,
	validate *validator.Validate,
	auditLog *audit.Logger,
	opts PhotoOptions,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		jobRepo:       jobRepo,
		applicantRepo: applicantRepo,
		photos:        photos,
		validate:      validate,
		audit:         auditLog,
		opts:          opts,
		now:           time.Now,
	}
}

// formatRules are checked only for fields that passed the requirement check
// and carry a value. Beyond the gender enum and a parseable date they only cap
// lengths; the form engine applies the same two value checks.
var formatRules = map[domain.Field]struct {
	tag    string
	reason string
}{
	domain.FieldFullName:    {"max=120", "is too long"},
	domain.FieldEmail:       {"max=254", "is too long"},
	domain.FieldGender:      {"gender", "must be MALE or FEMALE"},
	domain.FieldPhoneNumber: {"max=32", "is too long"},
	domain.FieldDateOfBirth: {"iso_date", "must be a YYYY-MM-DD date"},
	domain.FieldDomicile:    {"max=120", "is too long"},
	domain.FieldLinkedin:    {"max=300", "is too long"},
}

// Submit re-validates the payload against the job's current policy, stores
// the photo and then inserts the applicant. Nothing is uploaded or persisted
// when any field is rejected.
func (u *applicationUsecase) Submit(ctx context.Context, payload domain.SubmissionPayload) (*domain.Applicant, error) {
	if payload.JobID <= 0 {
		return nil, apperror.Validation("Submission is invalid", []domain.FieldViolation{domain.MissingField("jobId")})
	}
	job, err := u.jobRepo.GetByID(ctx, payload.JobID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Job not found")
	}
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	if job.Status != domain.JobStatusActive {
		return nil, apperror.BadRequest("This job is not accepting applications")
	}

	violations := domain.ValidateSubmission(job.Requirements, payload)
	violations = append(violations, u.checkFormats(job.Requirements, payload, violations)...)

	var stored []byte
	if payload.Photo != nil && len(payload.Photo.Data) > 0 && !hasViolation(violations, domain.FieldPhotoProfile) {
		if _, err := security.ValidatePhoto(payload.Photo.Filename, payload.Photo.Data, u.opts.MaxBytes); err != nil {
			violations = append(violations, domain.InvalidValue(domain.FieldPhotoProfile, photoReason(err, u.opts.MaxBytes)))
		} else if stored, err = storage.ReencodePhoto(payload.Photo.Data, u.opts.MaxDimension, u.opts.Quality); err != nil {
			violations = append(violations, domain.InvalidValue(domain.FieldPhotoProfile, "is not a valid image"))
		}
	}

	if len(violations) > 0 {
		u.audit.ApplicationRejected(ctx, job.Slug, len(violations))
		return nil, apperror.Validation("Submission is invalid", violations)
	}

	photoURL, err := u.storePhoto(ctx, payload.Photo.Filename, stored)
	if err != nil {
		return nil, apperror.Upload(err)
	}

	applicant := &domain.Applicant{
		JobID:        job.ID,
		FullName:     payload.Value(domain.FieldFullName),
		Email:        strings.ToLower(payload.Value(domain.FieldEmail)),
		PhotoProfile: photoURL,
		PhoneNumber:  optional(payload, domain.FieldPhoneNumber),
		Domicile:     optional(payload, domain.FieldDomicile),
		Linkedin:     optional(payload, domain.FieldLinkedin),
		CreatedAt:    u.now().UTC(),
	}
	if g := optional(payload, domain.FieldGender); g != nil {
		gender := domain.Gender(*g)
		applicant.Gender = &gender
	}
	if s := optional(payload, domain.FieldDateOfBirth); s != nil {
		d, _ := domain.ParseDate(*s)
		applicant.DateOfBirth = &d
	}

	// The stored photo is not removed if this insert fails.
	if err := u.applicantRepo.Create(ctx, applicant); err != nil {
		return nil, apperror.Persistence(err)
	}

	u.audit.ApplicationSubmitted(ctx, job.Slug, applicant.Email)
	return applicant, nil
}

func (u *applicationUsecase) checkFormats(policy domain.Policy, payload domain.SubmissionPayload, already []domain.FieldViolation) []domain.FieldViolation {
	var v []domain.FieldViolation
	for _, f := range domain.Fields {
		rule, ok := formatRules[f]
		if !ok || policy.LevelOf(f) == domain.LevelOff || !payload.Filled(f) || hasViolation(already, f) {
			continue
		}
		if err := u.validate.Var(payload.Value(f), rule.tag); err != nil {
			v = append(v, domain.InvalidValue(f, rule.reason))
		}
	}
	return v
}

// storePhoto uploads the re-encoded JPEG under a key derived from the
// applicant's filename.
func (u *applicationUsecase) storePhoto(ctx context.Context, filename string, data []byte) (string, error) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
	return u.photos.Upload(ctx, storage.PhotoKey(name, u.now()), data, "image/jpeg")
}

func optional(p domain.SubmissionPayload, f domain.Field) *string {
	if !p.Filled(f) {
		return nil
	}
	v := p.Value(f)
	return &v
}

func hasViolation(v []domain.FieldViolation, f domain.Field) bool {
	for _, x := range v {
		if x.Field == string(f) {
			return true
		}
	}
	return false
}

func photoReason(err error, maxBytes int64) string {
	switch {
	case errors.Is(err, security.ErrPhotoTooLarge):
		if maxBytes >= 1<<20 {
			return fmt.Sprintf("must be %dMB or smaller", maxBytes>>20)
		}
		return fmt.Sprintf("must be %dKB or smaller", maxBytes>>10)
	case errors.Is(err, security.ErrPhotoExtension), errors.Is(err, security.ErrPhotoMIME):
		return "must be a JPEG, PNG, GIF or WebP image"
	case errors.Is(err, security.ErrPhotoSpoofed):
		return "content does not match its file type"
	default:
		return "is not a valid image"
	}
}
