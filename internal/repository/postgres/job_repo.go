package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"job-board-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const jobColumns = `id, slug, job_name, job_type, job_description, num_of_candidate,
	min_salary, max_salary, status, requirements, created_at, updated_at`

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	requirements, err := json.Marshal(job.Requirements)
	if err != nil {
		return fmt.Errorf("encode requirements: %w", err)
	}

	query := `INSERT INTO jobs (slug, job_name, job_type, job_description, num_of_candidate, min_salary, max_salary, status, requirements, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11) RETURNING id`
	err = r.db.QueryRow(ctx, query,
		job.Slug, job.JobName, string(job.JobType), job.JobDescription, job.NumOfCandidate,
		job.MinSalary, job.MaxSalary, string(job.Status), string(requirements),
		job.CreatedAt, job.UpdatedAt,
	).Scan(&job.ID)
	if isUniqueViolation(err) {
		return domain.ErrSlugConflict
	}
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *jobRepo) GetBySlug(ctx context.Context, slug string) (*domain.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE slug = $1`, slug)
	return scanJob(row)
}

func (r *jobRepo) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	query, args := listJobsQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// listJobsQuery builds the listing query. Search matches job names
// case-insensitively; LIKE wildcards in the input are matched literally.
func listJobsQuery(filter domain.JobFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		where = append(where, fmt.Sprintf(`job_name ILIKE $%d`, len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf(`status = $%d`, len(args)))
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	return query + ` ORDER BY created_at DESC, id DESC`, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		job          domain.Job
		jobType      string
		status       string
		requirements []byte
	)
	err := row.Scan(
		&job.ID, &job.Slug, &job.JobName, &jobType, &job.JobDescription, &job.NumOfCandidate,
		&job.MinSalary, &job.MaxSalary, &status, &requirements, &job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	job.JobType = domain.JobType(jobType)
	job.Status = domain.JobStatus(status)
	if err := json.Unmarshal(requirements, &job.Requirements); err != nil {
		return nil, fmt.Errorf("decode requirements for job %d: %w", job.ID, err)
	}
	return &job, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
