package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hirelink/internal/domain"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendApplicationStatusEmail(ctx context.Context, toEmail, recipientName, jobTitle string, status domain.ApplicationStatus, feedback *string) error {
	args := m.Called(ctx, toEmail, recipientName, jobTitle, status, feedback)
	return args.Error(0)
}
