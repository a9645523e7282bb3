package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"
	"job-board-backend/pkg/audit"

	"github.com/xuri/excelize/v2"
)

// maxSlugAttempts bounds slug disambiguation (base, base-2 ... base-50).
const maxSlugAttempts = 50

type jobUsecase struct {
	jobRepo       domain.JobRepository
	applicantRepo domain.ApplicantRepository
	audit         *audit.Logger
	now           func() time.Time
}

func NewJobUsecase(jobRepo domain.JobRepository, applicantRepo domain.ApplicantRepository, auditLog *audit.Logger) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:       jobRepo,
		applicantRepo: applicantRepo,
		audit:         auditLog,
		now:           time.Now,
	}
}

// CreateJob validates the draft as a whole, derives a unique slug and
// persists the posting.
func (u *jobUsecase) CreateJob(ctx context.Context, draft domain.JobDraft) (*domain.Job, error) {
	job, violations := buildJob(draft)
	if len(violations) > 0 {
		return nil, apperror.Validation("Job posting is incomplete or invalid", violations)
	}

	base, err := domain.Slugify(job.JobName)
	if err != nil {
		return nil, apperror.Validation("Job posting is incomplete or invalid", []domain.FieldViolation{
			domain.InvalidValue("jobName", "must contain at least one letter or digit"),
		})
	}

	now := u.now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	for n := 1; n <= maxSlugAttempts; n++ {
		job.Slug = domain.SlugCandidate(base, n)
		err = u.jobRepo.Create(ctx, job)
		if err == nil {
			actor, _ := ctx.Value(domain.KeyUserEmail).(string)
			u.audit.JobCreated(ctx, job.Slug, actor)
			return job, nil
		}
		if !errors.Is(err, domain.ErrSlugConflict) {
			return nil, apperror.Persistence(err)
		}
	}
	return nil, apperror.Persistence(fmt.Errorf("no free slug for %q after %d attempts: %w", base, maxSlugAttempts, domain.ErrSlugConflict))
}

// buildJob reports every missing or invalid attribute at once.
func buildJob(d domain.JobDraft) (*domain.Job, []domain.FieldViolation) {
	var v []domain.FieldViolation
	job := &domain.Job{Status: domain.JobStatusActive}

	if d.JobName == nil || strings.TrimSpace(*d.JobName) == "" {
		v = append(v, domain.MissingField("jobName"))
	} else {
		job.JobName = strings.TrimSpace(*d.JobName)
	}

	if d.JobType == nil || *d.JobType == "" {
		v = append(v, domain.MissingField("jobType"))
	} else if t := domain.JobType(*d.JobType); !t.Valid() {
		v = append(v, domain.InvalidValue("jobType", "is not a known job type"))
	} else {
		job.JobType = t
	}

	if d.JobDescription == nil || strings.TrimSpace(*d.JobDescription) == "" {
		v = append(v, domain.MissingField("jobDescription"))
	} else {
		job.JobDescription = strings.TrimSpace(*d.JobDescription)
	}

	if d.NumOfCandidate == nil {
		v = append(v, domain.MissingField("numOfCandidate"))
	} else if *d.NumOfCandidate < 1 {
		v = append(v, domain.InvalidValue("numOfCandidate", "must be at least 1"))
	} else {
		job.NumOfCandidate = *d.NumOfCandidate
	}

	if d.MinSalary != nil && *d.MinSalary < 0 {
		v = append(v, domain.InvalidValue("minSalary", "must not be negative"))
	}
	if d.MaxSalary != nil && *d.MaxSalary < 0 {
		v = append(v, domain.InvalidValue("maxSalary", "must not be negative"))
	}
	if d.MinSalary != nil && d.MaxSalary != nil && *d.MinSalary > *d.MaxSalary {
		v = append(v, domain.InvalidValue("maxSalary", "must not be lower than minSalary"))
	}
	job.MinSalary = d.MinSalary
	job.MaxSalary = d.MaxSalary

	if d.Status != nil && *d.Status != "" {
		if s := domain.JobStatus(*d.Status); s.Valid() {
			job.Status = s
		} else {
			v = append(v, domain.InvalidValue("status", "is not a known status"))
		}
	}

	policy, pv := buildPolicy(d.Requirements)
	job.Requirements = policy
	v = append(v, pv...)

	return job, v
}

// buildPolicy requires an explicit level for all recognized fields.
func buildPolicy(raw map[string]string) (domain.Policy, []domain.FieldViolation) {
	var (
		policy domain.Policy
		v      []domain.FieldViolation
	)
	for _, f := range domain.Fields {
		name := "requirements." + string(f)
		level, ok := raw[string(f)]
		if !ok || level == "" {
			v = append(v, domain.MissingField(name))
			continue
		}
		err := policy.SetLevel(f, domain.RequirementLevel(level))
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			v = append(v, domain.FieldViolation{Field: name, Code: domain.CodeInvalidValue, Message: fmt.Sprintf("%s must stay MANDATORY", f)})
		case err != nil:
			v = append(v, domain.FieldViolation{Field: name, Code: domain.CodeInvalidValue, Message: fmt.Sprintf("%s must be MANDATORY, OPTIONAL or OFF", f)})
		}
	}

	var unknown []string
	for name := range raw {
		if !domain.Field(name).Valid() {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		v = append(v, domain.FieldViolation{Field: "requirements." + name, Code: domain.CodeUnexpectedField, Message: fmt.Sprintf("%s is not a recognized field", name)})
	}
	return policy, v
}

func (u *jobUsecase) GetJob(ctx context.Context, slug string) (*domain.Job, error) {
	job, err := u.jobRepo.GetBySlug(ctx, slug)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Job not found")
	}
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return job, nil
}

func (u *jobUsecase) ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	jobs, err := u.jobRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return jobs, nil
}

func (u *jobUsecase) ListApplicants(ctx context.Context, slug string, order domain.ApplicantOrder) (*domain.JobApplicants, error) {
	job, err := u.GetJob(ctx, slug)
	if err != nil {
		return nil, err
	}
	applicants, err := u.applicantRepo.ListByJob(ctx, job.ID, order)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return &domain.JobApplicants{Job: job.Summary(), Applicants: applicants}, nil
}

var exportColumns = []string{
	"FULL NAME", "EMAIL", "PHONE NUMBER", "GENDER", "DOMICILE",
	"LINKEDIN", "DATE OF BIRTH", "PHOTO", "APPLIED AT",
}

// ExportApplicants renders the job's applicants as an xlsx workbook.
func (u *jobUsecase) ExportApplicants(ctx context.Context, slug string) ([]byte, string, error) {
	result, err := u.ListApplicants(ctx, slug, domain.DefaultApplicantOrder)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Applicants"
	f.SetSheetName("Sheet1", sheetName)

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#01959F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, a := range result.Applicants {
		for colIdx, value := range applicantRow(a) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 24)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	u.audit.ApplicantsExported(ctx, slug, len(result.Applicants))

	filename := fmt.Sprintf("applicants_%s_%s.xlsx", slug, u.now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func applicantRow(a domain.Applicant) []string {
	dob := ""
	if a.DateOfBirth != nil {
		dob = a.DateOfBirth.Display()
	}
	gender := ""
	if a.Gender != nil {
		gender = string(*a.Gender)
	}
	return []string{
		a.FullName,
		a.Email,
		deref(a.PhoneNumber),
		gender,
		deref(a.Domicile),
		deref(a.Linkedin),
		dob,
		a.PhotoProfile,
		a.CreatedAt.Format("2006-01-02 15:04"),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
