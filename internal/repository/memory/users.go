package memory

import (
	"context"

	"github.com/google/uuid"

	"hirelink/internal/domain"
)

type userRepo struct{ s *Store }

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) SetDeviceToken(_ context.Context, id uuid.UUID, token *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.NotFound("user not found")
	}
	if token != nil {
		t := *token
		token = &t
	}
	u.DeviceToken = token
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

func (r *userRepo) ClearStaleDeviceToken(_ context.Context, id uuid.UUID, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.DeviceToken == nil || *u.DeviceToken != token {
		return nil
	}
	u.DeviceToken = nil
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

type jobRepo struct{ s *Store }

func (r *jobRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}
