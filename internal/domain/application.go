package domain

import (
	"context"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Applicant is one persisted application. It is never edited after insert.
type Applicant struct {
	ID           int64     `json:"id"`
	JobID        int64     `json:"jobId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PhotoProfile string    `json:"photoProfile"`
	PhoneNumber  *string   `json:"phoneNumber"`
	Gender       *Gender   `json:"gender"`
	Domicile     *string   `json:"domicile"`
	Linkedin     *string   `json:"linkedin"`
	DateOfBirth  *Date     `json:"dateOfBirth"`
	CreatedAt    time.Time `json:"createdAt"`
}

// JobApplicants is the admin job-detail view.
type JobApplicants struct {
	Job        JobSummary  `json:"job"`
	Applicants []Applicant `json:"applicants"`
}

// ApplicantSortField is a column the applicants table can be sorted by.
type ApplicantSortField string

const (
	SortByFullName    ApplicantSortField = "fullName"
	SortByEmail       ApplicantSortField = "email"
	SortByPhoneNumber ApplicantSortField = "phoneNumber"
	SortByGender      ApplicantSortField = "gender"
	SortByDomicile    ApplicantSortField = "domicile"
	SortByLinkedin    ApplicantSortField = "linkedin"
	SortByDateOfBirth ApplicantSortField = "dateOfBirth"
	SortByCreatedAt   ApplicantSortField = "createdAt"
)

// ApplicantColumns maps sortable fields to their column names.
var ApplicantColumns = map[ApplicantSortField]string{
	SortByFullName:    "full_name",
	SortByEmail:       "email",
	SortByPhoneNumber: "phone_number",
	SortByGender:      "gender",
	SortByDomicile:    "domicile",
	SortByLinkedin:    "linkedin",
	SortByDateOfBirth: "date_of_birth",
	SortByCreatedAt:   "created_at",
}

type ApplicantOrder struct {
	Field ApplicantSortField
	Desc  bool
}

// DefaultApplicantOrder lists newest applicants first.
var DefaultApplicantOrder = ApplicantOrder{Field: SortByCreatedAt, Desc: true}

// ParseApplicantOrder falls back to the default for unknown fields.
// direction is "asc" or "desc"; anything else keeps the field's default.
func ParseApplicantOrder(field, direction string) ApplicantOrder {
	f := ApplicantSortField(field)
	if _, ok := ApplicantColumns[f]; !ok {
		return DefaultApplicantOrder
	}
	o := ApplicantOrder{Field: f, Desc: f == SortByCreatedAt}
	switch direction {
	case "asc":
		o.Desc = false
	case "desc":
		o.Desc = true
	}
	return o
}

type ApplicantRepository interface {
	Create(ctx context.Context, applicant *Applicant) error
	ListByJob(ctx context.Context, jobID int64, order ApplicantOrder) ([]Applicant, error)
}

// PhotoStorage stores uploaded photos and returns their public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type ApplicationUsecase interface {
	Submit(ctx context.Context, payload SubmissionPayload) (*Applicant, error)
}
