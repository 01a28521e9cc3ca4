package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"hirelink/internal/domain"
)

type applicationRepo struct{ s *Store }

func (r *applicationRepo) Create(_ context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.applications {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return domain.Duplicate("you have already applied for this job")
		}
	}
	app.CreatedAt = r.s.now()
	app.UpdatedAt = app.CreatedAt
	stored := *app
	stored.Job = nil
	r.s.applications[app.ID] = stored
	return nil
}

func (r *applicationRepo) find(match func(domain.Application) bool) *domain.Application {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, app := range r.s.applications {
		if match(app) {
			out := app
			return &out
		}
	}
	return nil
}

func (r *applicationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	return r.find(func(a domain.Application) bool { return a.ID == id }), nil
}

func (r *applicationRepo) GetByJobAndApplicant(_ context.Context, jobID, applicantID uuid.UUID) (*domain.Application, error) {
	return r.find(func(a domain.Application) bool {
		return a.JobID == jobID && a.ApplicantID == applicantID
	}), nil
}

func (r *applicationRepo) GetByRelatedNotification(_ context.Context, notificationID uuid.UUID) (*domain.Application, error) {
	return r.find(func(a domain.Application) bool {
		return a.RelatedNotificationID != nil && *a.RelatedNotificationID == notificationID
	}), nil
}

func (r *applicationRepo) UpdateStatus(_ context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.applications[app.ID]
	if !ok {
		return domain.NotFound("application not found")
	}
	stored.Status = app.Status
	stored.Feedback = app.Feedback
	stored.UpdatedAt = r.s.tick(stored.UpdatedAt)
	app.UpdatedAt = stored.UpdatedAt
	r.s.applications[app.ID] = stored
	return nil
}

func (r *applicationRepo) SetRelatedNotification(_ context.Context, id, notificationID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.applications[id]
	if !ok {
		return nil
	}
	nid := notificationID
	stored.RelatedNotificationID = &nid
	r.s.applications[id] = stored
	return nil
}

func (r *applicationRepo) list(match func(domain.Application, domain.Job) bool) []domain.Application {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Application{}
	for _, app := range r.s.applications {
		job, ok := r.s.jobs[app.JobID]
		if !ok || !match(app, job) {
			continue
		}
		j := job
		app.Job = &j
		out = append(out, app)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *applicationRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]domain.Application, error) {
	return r.list(func(a domain.Application, _ domain.Job) bool { return a.JobID == jobID }), nil
}

func (r *applicationRepo) ListByEmployer(_ context.Context, employerID uuid.UUID) ([]domain.Application, error) {
	return r.list(func(_ domain.Application, j domain.Job) bool { return j.EmployerID == employerID }), nil
}

func (r *applicationRepo) ListByApplicant(_ context.Context, applicantID uuid.UUID) ([]domain.Application, error) {
	return r.list(func(a domain.Application, _ domain.Job) bool { return a.ApplicantID == applicantID }), nil
}
