package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"
	"github.com/sirupsen/logrus"

	"hirelink/internal/config"
	"hirelink/internal/domain"
	"hirelink/internal/pkg/i18n"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Service interface {
	SendApplicationStatusEmail(ctx context.Context, toEmail, recipientName, jobTitle string, status domain.ApplicationStatus, feedback *string) error
}

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type service struct {
	client emailSender
	config *config.Config
	tmpl   *template.Template
}

// NewService returns a resend-backed mailer, or one that only logs when no
// API key is configured.
func NewService(cfg *config.Config, log logrus.FieldLogger) Service {
	if !cfg.EmailEnabled() {
		return &disabled{log: log}
	}
	client := resend.NewClient(cfg.ResendAPIKey)
	return newService(client.Emails, cfg)
}

func newService(client emailSender, cfg *config.Config) *service {
	return &service{
		client: client,
		config: cfg,
		tmpl:   template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
}

func (s *service) sendEmail(ctx context.Context, toEmail, subject, templateName string, data any) error {
	var body bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.AppName, s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err := s.client.SendWithContext(ctx, params)
	return err
}

func (s *service) SendApplicationStatusEmail(ctx context.Context, toEmail, recipientName, jobTitle string, status domain.ApplicationStatus, feedback *string) error {
	locale := s.config.NotificationLocale
	statusLabel := i18n.Translate(locale, "status."+string(status))

	color := "#10b981"
	switch status {
	case domain.ApplicationRejected:
		color = "#ef4444"
	case domain.ApplicationPending:
		color = "#f59e0b"
	}

	data := struct {
		Title    string
		AppName  string
		Name     string
		JobTitle string
		Status   string
		Feedback string
		Color    string
	}{
		Title:    i18n.Format(locale, "application_status.title", statusLabel),
		AppName:  s.config.AppName,
		Name:     recipientName,
		JobTitle: jobTitle,
		Status:   statusLabel,
		Color:    color,
	}
	if feedback != nil {
		data.Feedback = *feedback
	}

	subject := i18n.Format(locale, "email.application_status.subject", jobTitle, statusLabel)
	return s.sendEmail(ctx, toEmail, subject, "application_status.html", data)
}

type disabled struct {
	log logrus.FieldLogger
}

func (d *disabled) SendApplicationStatusEmail(_ context.Context, toEmail, _, jobTitle string, status domain.ApplicationStatus, _ *string) error {
	d.log.WithFields(logrus.Fields{
		"job_title": jobTitle,
		"status":    status,
	}).Debug("email disabled, skipping application status email")
	return nil
}
