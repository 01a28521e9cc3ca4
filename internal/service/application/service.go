package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hirelink/internal/domain"
	"hirelink/internal/metrics"
	"hirelink/internal/pkg/i18n"
	"hirelink/internal/repository"
	"hirelink/internal/service/email"
	"hirelink/internal/service/notification"
)

type Service interface {
	Submit(ctx context.Context, jobID, applicantID uuid.UUID, input domain.SubmitApplicationInput) (*domain.Application, error)
	Transition(ctx context.Context, applicationID, actorID uuid.UUID, input domain.TransitionApplicationInput) (*domain.Application, error)
	TransitionFromNotification(ctx context.Context, notificationID, actorID uuid.UUID, input domain.TransitionApplicationInput) (*domain.Application, error)
	GetByID(ctx context.Context, applicationID, actorID uuid.UUID) (*domain.Application, error)
	ListForJob(ctx context.Context, jobID, actorID uuid.UUID) ([]domain.Application, error)
	ListForEmployer(ctx context.Context, actorID uuid.UUID) ([]domain.Application, error)
	ListForApplicant(ctx context.Context, actorID uuid.UUID) ([]domain.Application, error)

	// Wait blocks until in-flight status emails finish.
	Wait()
}

type Options struct {
	Locale string
	// AllowTerminalRetransition lets an employer move an Accepted or Rejected
	// application to another status. When false only Pending applications
	// may transition.
	AllowTerminalRetransition bool
}

type service struct {
	appRepo  repository.ApplicationRepository
	jobRepo  repository.JobRepository
	userRepo repository.UserRepository
	notifSvc notification.Service
	emailSvc email.Service
	log      logrus.FieldLogger
	opts     Options
	mailing  sync.WaitGroup
}

func NewService(
	repos *repository.Repositories,
	notifSvc notification.Service,
	emailSvc email.Service,
	log logrus.FieldLogger,
	opts Options,
) Service {
	if opts.Locale == "" {
		opts.Locale = i18n.DefaultLocale
	}
	return &service{
		appRepo:  repos.Application,
		jobRepo:  repos.Job,
		userRepo: repos.User,
		notifSvc: notifSvc,
		emailSvc: emailSvc,
		log:      log,
		opts:     opts,
	}
}

func (s *service) Submit(ctx context.Context, jobID, applicantID uuid.UUID, input domain.SubmitApplicationInput) (*domain.Application, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, domain.NotFound("job not found")
	}

	existing, err := s.appRepo.GetByJobAndApplicant(ctx, jobID, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil {
		return nil, domain.Duplicate("you have already applied for this job")
	}

	applicant, err := s.userRepo.GetByID(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get applicant: %w", err)
	}
	if applicant == nil {
		return nil, domain.NotFound("applicant not found")
	}

	snapshot := input.Snapshot(applicant)
	if snapshot.Name == "" || snapshot.Email == "" {
		return nil, domain.Validation("name and email are required")
	}

	app := &domain.Application{
		ID:              uuid.New(),
		JobID:           jobID,
		ApplicantID:     applicantID,
		Status:          domain.ApplicationPending,
		ProfileSnapshot: snapshot,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	metrics.ApplicationSubmitted()

	locale := s.opts.Locale
	notif, err := s.notifSvc.Notify(ctx, domain.NotifyInput{
		RecipientID:  job.EmployerID,
		Title:        i18n.Translate(locale, "job_application.title"),
		Body:         i18n.Format(locale, "job_application.body", snapshot.Name, job.Title),
		Type:         domain.NotifJobApplication,
		RelatedJobID: &job.ID,
		Payload: map[string]any{
			"applicationId": app.ID,
			"jobId":         job.ID,
			"jobTitle":      job.Title,
			"applicantId":   applicantID,
			"applicant":     snapshot,
		},
	})
	if err != nil {
		s.log.WithError(err).WithField("application_id", app.ID).Error("failed to notify employer of new application")
	} else if err := s.appRepo.SetRelatedNotification(ctx, app.ID, notif.ID); err != nil {
		s.log.WithError(err).WithField("application_id", app.ID).Warn("failed to link application notification")
	} else {
		app.RelatedNotificationID = &notif.ID
	}

	app.Job = job
	return app, nil
}

func (s *service) Transition(ctx context.Context, applicationID, actorID uuid.UUID, input domain.TransitionApplicationInput) (*domain.Application, error) {
	if !input.Status.IsValid() {
		return nil, domain.Validation("status must be one of Pending, Accepted, Rejected")
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, domain.NotFound("application not found")
	}

	job, err := s.jobRepo.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, domain.NotFound("job not found")
	}
	if job.EmployerID != actorID {
		return nil, domain.Unauthorized("only the employer can update application status")
	}

	if !s.opts.AllowTerminalRetransition && app.Status != domain.ApplicationPending {
		return nil, domain.Precondition(fmt.Sprintf("application has already been %s", strings.ToLower(string(app.Status))))
	}

	app.Status = input.Status
	if input.Feedback != nil {
		if fb := strings.TrimSpace(*input.Feedback); fb != "" {
			app.Feedback = &fb
		}
	}

	if err := s.appRepo.UpdateStatus(ctx, app); err != nil {
		return nil, err
	}
	metrics.ApplicationTransitioned(string(app.Status))

	s.notifyStatus(ctx, app, job)
	s.mailStatus(ctx, app, job)

	app.Job = job
	return app, nil
}

func (s *service) notifyStatus(ctx context.Context, app *domain.Application, job *domain.Job) {
	locale := s.opts.Locale
	label := i18n.Translate(locale, "status."+string(app.Status))

	payload := map[string]any{
		"applicationId": app.ID,
		"jobId":         job.ID,
		"jobTitle":      job.Title,
		"status":        string(app.Status),
	}
	if app.Feedback != nil {
		payload["feedback"] = *app.Feedback
	}

	_, err := s.notifSvc.Notify(ctx, domain.NotifyInput{
		RecipientID:  app.ApplicantID,
		Title:        i18n.Format(locale, "application_status.title", label),
		Body:         i18n.Format(locale, "application_status.body", job.Title, strings.ToLower(label)),
		Type:         domain.NotifApplicationStatus,
		RelatedJobID: &job.ID,
		Payload:      payload,
	})
	if err != nil {
		s.log.WithError(err).WithField("application_id", app.ID).Error("failed to notify applicant of status change")
	}
}

func (s *service) mailStatus(ctx context.Context, app *domain.Application, job *domain.Job) {
	if s.emailSvc == nil || app.Email == "" {
		return
	}

	to, name, title, status := app.Email, app.Name, job.Title, app.Status
	var feedback *string
	if app.Feedback != nil {
		fb := *app.Feedback
		feedback = &fb
	}

	s.mailing.Add(1)
	go func() {
		defer s.mailing.Done()
		if err := s.emailSvc.SendApplicationStatusEmail(context.WithoutCancel(ctx), to, name, title, status, feedback); err != nil {
			s.log.WithError(err).WithField("application_id", app.ID).Warn("failed to send application status email")
		}
	}()
}

func (s *service) TransitionFromNotification(ctx context.Context, notificationID, actorID uuid.UUID, input domain.TransitionApplicationInput) (*domain.Application, error) {
	notif, err := s.notifSvc.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notif.Type != domain.NotifJobApplication {
		return nil, domain.Validation("notification is not a job application")
	}
	if notif.RelatedJobID == nil {
		return nil, domain.Validation("notification is not linked to a job")
	}

	job, err := s.jobRepo.GetByID(ctx, *notif.RelatedJobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, domain.NotFound("job not found")
	}
	if job.EmployerID != actorID {
		return nil, domain.Unauthorized("only the employer can update application status")
	}

	app, err := s.findByNotification(ctx, notif)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.NotFound("application not found")
	}

	updated, err := s.Transition(ctx, app.ID, actorID, input)
	if err != nil {
		return nil, err
	}

	if _, err := s.notifSvc.MarkAsRead(ctx, notif.ID, actorID); err != nil {
		s.log.WithError(err).WithField("notification_id", notif.ID).Warn("failed to mark source notification read")
	}
	return updated, nil
}

// findByNotification resolves the application a JOB_APPLICATION notification
// was raised for, falling back to the applicant id in its payload.
func (s *service) findByNotification(ctx context.Context, notif *domain.Notification) (*domain.Application, error) {
	app, err := s.appRepo.GetByRelatedNotification(ctx, notif.ID)
	if err != nil || app != nil {
		return app, err
	}

	var payload struct {
		ApplicantID uuid.UUID `json:"applicantId"`
	}
	if len(notif.Data) == 0 || json.Unmarshal(notif.Data, &payload) != nil || payload.ApplicantID == uuid.Nil {
		return nil, nil
	}
	return s.appRepo.GetByJobAndApplicant(ctx, *notif.RelatedJobID, payload.ApplicantID)
}

func (s *service) GetByID(ctx context.Context, applicationID, actorID uuid.UUID) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.NotFound("application not found")
	}

	job, err := s.jobRepo.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.NotFound("job not found")
	}
	if app.ApplicantID != actorID && job.EmployerID != actorID {
		return nil, domain.Unauthorized("you are not allowed to view this application")
	}

	app.Job = job
	return app, nil
}

func (s *service) ListForJob(ctx context.Context, jobID, actorID uuid.UUID) ([]domain.Application, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.NotFound("job not found")
	}
	if job.EmployerID != actorID {
		return nil, domain.Unauthorized("only the employer can view applications for this job")
	}
	return s.appRepo.ListByJob(ctx, jobID)
}

func (s *service) ListForEmployer(ctx context.Context, actorID uuid.UUID) ([]domain.Application, error) {
	return s.appRepo.ListByEmployer(ctx, actorID)
}

func (s *service) ListForApplicant(ctx context.Context, actorID uuid.UUID) ([]domain.Application, error) {
	return s.appRepo.ListByApplicant(ctx, actorID)
}

func (s *service) Wait() {
	s.mailing.Wait()
}
