package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type PushSender struct {
	mock.Mock
}

func (m *PushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	args := m.Called(ctx, token, title, body, data)
	return args.Error(0)
}
