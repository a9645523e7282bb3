package domain

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Common domain errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrSlugConflict = errors.New("slug already exists")
	ErrEmptySlug    = errors.New("name must contain at least one letter or digit")
)

type JobType string

const (
	JobTypeFullTime   JobType = "FULL_TIME"
	JobTypeContract   JobType = "CONTRACT"
	JobTypePartTime   JobType = "PART_TIME"
	JobTypeInternship JobType = "INTERNSHIP"
	JobTypeFreelance  JobType = "FREELANCE"
)

var JobTypes = []JobType{JobTypeFullTime, JobTypeContract, JobTypePartTime, JobTypeInternship, JobTypeFreelance}

func (t JobType) Valid() bool {
	for _, known := range JobTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label renders FULL_TIME as "Full Time".
func (t JobType) Label() string {
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

type JobStatus string

const (
	JobStatusDraft    JobStatus = "DRAFT"
	JobStatusActive   JobStatus = "ACTIVE"
	JobStatusInactive JobStatus = "INACTIVE"
)

func (s JobStatus) Valid() bool {
	return s == JobStatusDraft || s == JobStatusActive || s == JobStatusInactive
}

type Job struct {
	ID             int64     `json:"id"`
	Slug           string    `json:"slug"`
	JobName        string    `json:"jobName"`
	JobType        JobType   `json:"jobType"`
	JobDescription string    `json:"jobDescription"`
	NumOfCandidate int       `json:"numOfCandidate"`
	MinSalary      *int64    `json:"minSalary"`
	MaxSalary      *int64    `json:"maxSalary"`
	Status         JobStatus `json:"status"`
	Requirements   Policy    `json:"requirements"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// JobSummary is the job header shown above the applicants table.
type JobSummary struct {
	ID             int64     `json:"id"`
	JobName        string    `json:"jobName"`
	JobType        JobType   `json:"jobType"`
	Status         JobStatus `json:"status"`
	MinSalary      *int64    `json:"minSalary"`
	MaxSalary      *int64    `json:"maxSalary"`
	NumOfCandidate int       `json:"numOfCandidate"`
}

func (j *Job) Summary() JobSummary {
	return JobSummary{
		ID:             j.ID,
		JobName:        j.JobName,
		JobType:        j.JobType,
		Status:         j.Status,
		MinSalary:      j.MinSalary,
		MaxSalary:      j.MaxSalary,
		NumOfCandidate: j.NumOfCandidate,
	}
}

// JobDraft is the admin's create-job input. Pointers distinguish an absent
// attribute from its zero value; every requirement entry must be supplied.
type JobDraft struct {
	JobName        *string
	JobType        *string
	JobDescription *string
	NumOfCandidate *int
	MinSalary      *int64
	MaxSalary      *int64
	Status         *string
	Requirements   map[string]string
}

type JobFilter struct {
	Search string
	Status JobStatus
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lower-cases name, collapses whitespace runs into one hyphen and
// drops everything outside [a-z0-9-].
func Slugify(name string) (string, error) {
	s := strings.ToLower(name)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	if strings.Trim(s, "-") == "" {
		return "", ErrEmptySlug
	}
	return s, nil
}

// SlugCandidate returns the n-th disambiguated slug: base, base-2, base-3...
func SlugCandidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// FormatRupiah groups digits with dots, e.g. 7500000 -> "7.500.000".
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	GetBySlug(ctx context.Context, slug string) (*Job, error)
	List(ctx context.Context, filter JobFilter) ([]Job, error)
}

type JobUsecase interface {
	CreateJob(ctx context.Context, draft JobDraft) (*Job, error)
	GetJob(ctx context.Context, slug string) (*Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]Job, error)
	ListApplicants(ctx context.Context, slug string, order ApplicantOrder) (*JobApplicants, error)
	ExportApplicants(ctx context.Context, slug string) ([]byte, string, error)
}
