package postgres

import (
	"context"
	"time"

	"job-board-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type applicantRepo struct {
	db *pgxpool.Pool
}

func NewApplicantRepository(db *pgxpool.Pool) domain.ApplicantRepository {
	return &applicantRepo{db: db}
}

func (r *applicantRepo) Create(ctx context.Context, a *domain.Applicant) error {
	var dob *time.Time
	if a.DateOfBirth != nil && !a.DateOfBirth.IsZero() {
		t := a.DateOfBirth.Time()
		dob = &t
	}
	var gender *string
	if a.Gender != nil {
		g := string(*a.Gender)
		gender = &g
	}

	query := `INSERT INTO applicants (job_id, full_name, email, photo_profile, phone_number, gender, domicile, linkedin, date_of_birth, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, $10) RETURNING id`
	return r.db.QueryRow(ctx, query,
		a.JobID, a.FullName, a.Email, a.PhotoProfile, a.PhoneNumber, gender,
		a.Domicile, a.Linkedin, dob, a.CreatedAt,
	).Scan(&a.ID)
}

func (r *applicantRepo) ListByJob(ctx context.Context, jobID int64, order domain.ApplicantOrder) ([]domain.Applicant, error) {
	query := `SELECT id, job_id, full_name, email, photo_profile, phone_number, gender, domicile, linkedin, date_of_birth, created_at
              FROM applicants WHERE job_id = $1 ` + orderClause(order)

	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applicants := []domain.Applicant{}
	for rows.Next() {
		var (
			a      domain.Applicant
			gender *string
			dob    *time.Time
		)
		if err := rows.Scan(&a.ID, &a.JobID, &a.FullName, &a.Email, &a.PhotoProfile, &a.PhoneNumber,
			&gender, &a.Domicile, &a.Linkedin, &dob, &a.CreatedAt); err != nil {
			return nil, err
		}
		if gender != nil {
			g := domain.Gender(*gender)
			a.Gender = &g
		}
		if dob != nil {
			// DATE columns come back as UTC midnight.
			d := domain.DateOf(dob.UTC())
			a.DateOfBirth = &d
		}
		applicants = append(applicants, a)
	}
	return applicants, rows.Err()
}

// orderClause only ever emits a whitelisted column; unknown fields fall back
// to newest first. Nulls sort last in both directions with id as tiebreaker.
func orderClause(order domain.ApplicantOrder) string {
	column, ok := domain.ApplicantColumns[order.Field]
	if !ok {
		order = domain.DefaultApplicantOrder
		column = domain.ApplicantColumns[order.Field]
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	return "ORDER BY " + pq.QuoteIdentifier(column) + " " + dir + " NULLS LAST, id " + dir
}
