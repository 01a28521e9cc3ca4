package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"hirelink/internal/domain"
)

type ApplicationRepository struct {
	mock.Mock
}

func (m *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *ApplicationRepository) one(args mock.Arguments) (*domain.Application, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	return m.one(m.Called(ctx, id))
}

func (m *ApplicationRepository) GetByJobAndApplicant(ctx context.Context, jobID, applicantID uuid.UUID) (*domain.Application, error) {
	return m.one(m.Called(ctx, jobID, applicantID))
}

func (m *ApplicationRepository) GetByRelatedNotification(ctx context.Context, notificationID uuid.UUID) (*domain.Application, error) {
	return m.one(m.Called(ctx, notificationID))
}

func (m *ApplicationRepository) UpdateStatus(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *ApplicationRepository) SetRelatedNotification(ctx context.Context, id, notificationID uuid.UUID) error {
	args := m.Called(ctx, id, notificationID)
	return args.Error(0)
}

func (m *ApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Application, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *ApplicationRepository) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]domain.Application, error) {
	args := m.Called(ctx, employerID)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.Application, error) {
	args := m.Called(ctx, applicantID)
	return args.Get(0).([]domain.Application), args.Error(1)
}
