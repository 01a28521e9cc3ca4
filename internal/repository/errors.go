package repository

import (
	"errors"

	"github.com/lib/pq"

	"hirelink/internal/domain"
)

const pqUniqueViolation pq.ErrorCode = "23505"

// uniqueViolation maps a Postgres unique_violation to domain.ErrDuplicate and
// returns every other error untouched.
func uniqueViolation(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return &domain.Error{Kind: domain.ErrDuplicate, Message: message}
	}
	return err
}
