package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job is owned by the job listing service.
type Job struct {
	ID         uuid.UUID `json:"id" db:"job_id"`
	EmployerID uuid.UUID `json:"employer_id" db:"employer_id"`
	Title      string    `json:"job_title" db:"job_title"`
	Location   string    `json:"location" db:"location"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
