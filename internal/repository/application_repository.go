package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hirelink/internal/domain"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	GetByJobAndApplicant(ctx context.Context, jobID, applicantID uuid.UUID) (*domain.Application, error)
	GetByRelatedNotification(ctx context.Context, notificationID uuid.UUID) (*domain.Application, error)
	UpdateStatus(ctx context.Context, app *domain.Application) error
	SetRelatedNotification(ctx context.Context, id, notificationID uuid.UUID) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Application, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]domain.Application, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.Application, error)
}

const applicationColumns = `
	a.application_id, a.job_id, a.applicant_id, a.status, a.feedback, a.related_notification_id,
	a.created_at, a.updated_at,
	a.applicant_name, a.applicant_email, a.applicant_phone, a.applicant_gender,
	a.applicant_address, a.applicant_education, a.applicant_skills`

// applicationRow is an application joined with its job for list views.
type applicationRow struct {
	domain.Application
	JobTitle      string    `db:"job_title"`
	JobLocation   string    `db:"job_location"`
	JobEmployerID uuid.UUID `db:"job_employer_id"`
}

func (row applicationRow) toDomain() domain.Application {
	app := row.Application
	app.Job = &domain.Job{
		ID:         app.JobID,
		EmployerID: row.JobEmployerID,
		Title:      row.JobTitle,
		Location:   row.JobLocation,
	}
	return app
}

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (
			application_id, job_id, applicant_id, status,
			applicant_name, applicant_email, applicant_phone, applicant_gender,
			applicant_address, applicant_education, applicant_skills
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		app.ID, app.JobID, app.ApplicantID, app.Status,
		app.Name, app.Email, app.Phone, app.Gender,
		app.Address, app.Education, app.Skills,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	return uniqueViolation(err, "you have already applied for this job")
}

func (r *applicationRepository) getOne(ctx context.Context, where string, args ...any) (*domain.Application, error) {
	var app domain.Application
	query := `SELECT ` + applicationColumns + ` FROM applications a WHERE ` + where

	err := r.db.GetContext(ctx, &app, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	return r.getOne(ctx, `a.application_id = $1`, id)
}

func (r *applicationRepository) GetByJobAndApplicant(ctx context.Context, jobID, applicantID uuid.UUID) (*domain.Application, error) {
	return r.getOne(ctx, `a.job_id = $1 AND a.applicant_id = $2`, jobID, applicantID)
}

func (r *applicationRepository) GetByRelatedNotification(ctx context.Context, notificationID uuid.UUID) (*domain.Application, error) {
	return r.getOne(ctx, `a.related_notification_id = $1`, notificationID)
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, app *domain.Application) error {
	query := `
		UPDATE applications
		SET status = $2, feedback = $3, updated_at = NOW()
		WHERE application_id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, app.ID, app.Status, app.Feedback).Scan(&app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("application not found")
	}
	return err
}

func (r *applicationRepository) SetRelatedNotification(ctx context.Context, id, notificationID uuid.UUID) error {
	query := `UPDATE applications SET related_notification_id = $2 WHERE application_id = $1`
	_, err := r.db.ExecContext(ctx, query, id, notificationID)
	return err
}

func (r *applicationRepository) list(ctx context.Context, where string, arg uuid.UUID) ([]domain.Application, error) {
	query := `
		SELECT ` + applicationColumns + `,
			j.job_title, j.location AS job_location, j.employer_id AS job_employer_id
		FROM applications a
		INNER JOIN jobs j ON j.job_id = a.job_id
		WHERE ` + where + `
		ORDER BY a.created_at DESC`

	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, err
	}

	apps := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.toDomain())
	}
	return apps, nil
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Application, error) {
	return r.list(ctx, `a.job_id = $1`, jobID)
}

func (r *applicationRepository) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]domain.Application, error) {
	return r.list(ctx, `j.employer_id = $1`, employerID)
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.Application, error) {
	return r.list(ctx, `a.applicant_id = $1`, applicantID)
}
