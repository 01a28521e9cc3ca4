package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hirelink/internal/domain"
	"hirelink/internal/metrics"
	"hirelink/internal/pkg/i18n"
	"hirelink/internal/repository"
	"hirelink/internal/service/notification"
)

type Service interface {
	GetOrCreate(ctx context.Context, applicationID, requesterID uuid.UUID) (*domain.Chat, error)
	SendMessage(ctx context.Context, chatID, senderID uuid.UUID, input domain.SendMessageInput) (*domain.Chat, error)
	// GetMessages returns the chat and marks every message read for the
	// requester. Viewing a chat counts as reading it.
	GetMessages(ctx context.Context, chatID, requesterID uuid.UUID) (*domain.Chat, error)
	MarkRead(ctx context.Context, chatID, userID uuid.UUID) (domain.MarkReadResult, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.ChatSummary, error)
}

type Options struct {
	Locale string
}

type service struct {
	chatRepo repository.ChatRepository
	appRepo  repository.ApplicationRepository
	jobRepo  repository.JobRepository
	notifSvc notification.Service
	log      logrus.FieldLogger
	opts     Options
}

func NewService(
	repos *repository.Repositories,
	notifSvc notification.Service,
	log logrus.FieldLogger,
	opts Options,
) Service {
	if opts.Locale == "" {
		opts.Locale = i18n.DefaultLocale
	}
	return &service{
		chatRepo: repos.Chat,
		appRepo:  repos.Application,
		jobRepo:  repos.Job,
		notifSvc: notifSvc,
		log:      log,
		opts:     opts,
	}
}

// admit checks that a chat may exist for the application and that the
// requester is one of its two parties.
func (s *service) admit(ctx context.Context, applicationID, requesterID uuid.UUID) (*domain.Application, *domain.Job, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, nil, domain.NotFound("application not found")
	}

	if app.Status != domain.ApplicationAccepted {
		return nil, nil, domain.Precondition("chat is only available for accepted applications")
	}

	job, err := s.jobRepo.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, nil, domain.NotFound("job not found")
	}

	if requesterID != job.EmployerID && requesterID != app.ApplicantID {
		return nil, nil, domain.Unauthorized("you are not a participant of this application")
	}
	return app, job, nil
}

func (s *service) GetOrCreate(ctx context.Context, applicationID, requesterID uuid.UUID) (*domain.Chat, error) {
	app, job, err := s.admit(ctx, applicationID, requesterID)
	if err != nil {
		return nil, err
	}

	existing, err := s.chatRepo.GetByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	chat := &domain.Chat{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		JobID:         job.ID,
		EmployerID:    job.EmployerID,
		ApplicantID:   app.ApplicantID,
	}
	err = s.chatRepo.Create(ctx, chat)
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		// Lost the race against the other participant; their chat wins.
		s.log.WithField("application_id", app.ID).Debug("concurrent chat creation, using existing chat")
	case err != nil:
		return nil, err
	default:
		metrics.ChatCreated()
	}

	created, err := s.chatRepo.GetByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("chat for application %s vanished after create", app.ID)
	}
	return created, nil
}

func (s *service) participantChat(ctx context.Context, chatID, userID uuid.UUID) (*domain.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, domain.NotFound("chat not found")
	}
	if !chat.IsParticipant(userID) {
		return nil, domain.Unauthorized("you are not a participant of this chat")
	}
	return chat, nil
}

func (s *service) SendMessage(ctx context.Context, chatID, senderID uuid.UUID, input domain.SendMessageInput) (*domain.Chat, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domain.Validation("message content is required")
	}
	if len([]rune(content)) > domain.MaxMessageLength {
		return nil, domain.Validation(fmt.Sprintf("message must be at most %d characters", domain.MaxMessageLength))
	}

	chat, err := s.participantChat(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:       uuid.New(),
		ChatID:   chat.ID,
		SenderID: senderID,
		Content:  content,
		ReadBy:   domain.ReadSet{senderID},
	}
	if err := s.chatRepo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	metrics.MessageSent()

	s.notifyRecipient(ctx, chat, msg)

	return s.chatRepo.GetByID(ctx, chat.ID)
}

func (s *service) notifyRecipient(ctx context.Context, chat *domain.Chat, msg *domain.Message) {
	locale := s.opts.Locale
	sender := chat.DisplayName(msg.SenderID)
	if sender == "" {
		sender = i18n.Translate(locale, "someone")
	}

	_, err := s.notifSvc.Notify(ctx, domain.NotifyInput{
		RecipientID:  chat.OtherParticipant(msg.SenderID),
		Title:        i18n.Translate(locale, "new_message.title"),
		Body:         i18n.Format(locale, "new_message.body", sender),
		Type:         domain.NotifNewMessage,
		RelatedJobID: &chat.JobID,
		Payload: map[string]any{
			"chatId":        chat.ID,
			"applicationId": chat.ApplicationID,
			"message":       domain.Preview(msg.Content),
		},
		PushBody: i18n.Format(locale, "new_message.push_body", sender, domain.Truncate(msg.Content, domain.PushPreviewLength)),
	})
	if err != nil {
		s.log.WithError(err).WithField("chat_id", chat.ID).Error("failed to notify message recipient")
	}
}

func (s *service) GetMessages(ctx context.Context, chatID, requesterID uuid.UUID) (*domain.Chat, error) {
	chat, err := s.participantChat(ctx, chatID, requesterID)
	if err != nil {
		return nil, err
	}

	shown := make([]uuid.UUID, len(chat.Messages))
	for i := range chat.Messages {
		shown[i] = chat.Messages[i].ID
	}
	if _, err := s.chatRepo.MarkMessagesRead(ctx, chat.ID, requesterID, shown); err != nil {
		return nil, err
	}
	for i := range chat.Messages {
		chat.Messages[i].ReadBy.Add(requesterID)
	}
	return chat, nil
}

func (s *service) MarkRead(ctx context.Context, chatID, userID uuid.UUID) (domain.MarkReadResult, error) {
	chat, err := s.participantChat(ctx, chatID, userID)
	if err != nil {
		return domain.MarkReadResult{}, err
	}

	n, err := s.chatRepo.MarkRead(ctx, chat.ID, userID)
	if err != nil {
		return domain.MarkReadResult{}, err
	}
	return domain.MarkReadResult{Updated: n > 0}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.ChatSummary, error) {
	return s.chatRepo.ListSummaries(ctx, userID)
}
