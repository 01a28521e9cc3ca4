package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hirelink/internal/domain"
	"hirelink/internal/metrics"
	"hirelink/internal/repository"
	"hirelink/internal/service/push"
)

type Service interface {
	// Notify persists a notification and then attempts push delivery to the
	// recipient's device. Delivery failures never fail the call.
	Notify(ctx context.Context, input domain.NotifyInput) (*domain.Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, id, actorID uuid.UUID) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) error
	ClearDeviceToken(ctx context.Context, userID uuid.UUID) error

	// Wait blocks until in-flight asynchronous deliveries finish.
	Wait()
}

type Options struct {
	// Async dispatches push delivery on a detached goroutine.
	Async bool
	// PushDeadline bounds one whole delivery, retries included.
	PushDeadline time.Duration
	// MaxInflight caps concurrent asynchronous deliveries. Pushes beyond it
	// are dropped; the notification itself is already persisted.
	MaxInflight    int
	UnreadCacheTTL time.Duration
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	sender    push.Sender
	cache     *redis.Client
	log       logrus.FieldLogger
	opts      Options
	inflight  errgroup.Group
}

// NewService builds the notification fanout. sender and cache may be nil.
func NewService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	sender push.Sender,
	cache *redis.Client,
	log logrus.FieldLogger,
	opts Options,
) Service {
	if opts.PushDeadline <= 0 {
		opts.PushDeadline = 10 * time.Second
	}
	if opts.UnreadCacheTTL <= 0 {
		opts.UnreadCacheTTL = 5 * time.Minute
	}
	if opts.MaxInflight <= 0 {
		opts.MaxInflight = 64
	}
	s := &service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		sender:    sender,
		cache:     cache,
		log:       log,
		opts:      opts,
	}
	s.inflight.SetLimit(opts.MaxInflight)
	return s
}

func (s *service) Notify(ctx context.Context, input domain.NotifyInput) (*domain.Notification, error) {
	if input.RecipientID == uuid.Nil {
		return nil, domain.Validation("recipient is required")
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Body) == "" {
		return nil, domain.Validation("title and body are required")
	}
	if !input.Type.IsValid() {
		return nil, domain.Validation("invalid notification type")
	}

	notif := &domain.Notification{
		ID:           uuid.New(),
		RecipientID:  input.RecipientID,
		Type:         input.Type,
		Title:        input.Title,
		Body:         input.Body,
		RelatedJobID: input.RelatedJobID,
	}
	if len(input.Payload) > 0 {
		data, err := json.Marshal(input.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode notification payload: %w", err)
		}
		notif.Data = data
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	metrics.NotificationCreated(string(notif.Type))
	s.invalidateUnread(ctx, notif.RecipientID)

	pushBody := input.Body
	if input.PushBody != "" {
		pushBody = input.PushBody
	}
	data := pushData(notif, input.Payload)

	if !s.opts.Async {
		s.deliver(ctx, notif, pushBody, data)
		return notif, nil
	}

	started := s.inflight.TryGo(func() error {
		s.deliver(context.WithoutCancel(ctx), notif, pushBody, data)
		return nil
	})
	if !started {
		metrics.PushDelivery(metrics.PushDropped)
		s.log.WithFields(logrus.Fields{
			"notification_id": notif.ID,
			"recipient_id":    notif.RecipientID,
		}).Warn("push dropped, too many deliveries in flight")
	}
	return notif, nil
}

func (s *service) deliver(ctx context.Context, notif *domain.Notification, body string, data map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.PushDeadline)
	defer cancel()

	logger := s.log.WithFields(logrus.Fields{
		"notification_id": notif.ID,
		"recipient_id":    notif.RecipientID,
	})

	if s.sender == nil {
		metrics.PushDelivery(metrics.PushSkipped)
		return
	}

	recipient, err := s.userRepo.GetByID(ctx, notif.RecipientID)
	if err != nil {
		metrics.PushDelivery(metrics.PushFailed)
		logger.WithError(err).Warn("push skipped, recipient lookup failed")
		return
	}
	if recipient == nil || !recipient.HasDeviceToken() {
		metrics.PushDelivery(metrics.PushSkipped)
		return
	}

	token := *recipient.DeviceToken
	err = s.sender.Send(ctx, token, notif.Title, body, data)
	if err == nil {
		metrics.PushDelivery(metrics.PushSent)
		return
	}

	metrics.PushDelivery(metrics.PushFailed)
	if errors.Is(err, push.ErrUnregistered) {
		logger.Info("device token unregistered, clearing")
		if err := s.userRepo.ClearStaleDeviceToken(ctx, notif.RecipientID, token); err != nil {
			logger.WithError(err).Warn("failed to clear stale device token")
		}
		return
	}
	logger.WithError(err).Warn("push delivery failed")
}

// pushData flattens the payload into the string map push providers accept.
func pushData(notif *domain.Notification, payload map[string]any) map[string]string {
	data := make(map[string]string, len(payload)+2)
	for k, v := range payload {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			data[k] = val
		case fmt.Stringer:
			data[k] = val.String()
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				continue
			}
			data[k] = string(encoded)
		}
	}
	data["type"] = string(notif.Type)
	data["notificationId"] = notif.ID.String()
	return data
}

func (s *service) Wait() {
	_ = s.inflight.Wait()
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notif == nil {
		return nil, domain.NotFound("notification not found")
	}
	return notif, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()

	notifications, total, err := s.notifRepo.ListByRecipient(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, id, actorID uuid.UUID) (*domain.Notification, error) {
	notif, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notif.RecipientID != actorID {
		return nil, domain.Unauthorized("you can only mark your own notifications as read")
	}
	if notif.IsRead {
		return notif, nil
	}

	if err := s.notifRepo.MarkAsRead(ctx, id); err != nil {
		return nil, err
	}
	s.invalidateUnread(ctx, actorID)

	return s.GetByID(ctx, id)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := s.notifRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.invalidateUnread(ctx, userID)
	}
	return updated, nil
}

func (s *service) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Validation("device token is required")
	}
	return s.userRepo.SetDeviceToken(ctx, userID, &token)
}

func (s *service) ClearDeviceToken(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.SetDeviceToken(ctx, userID, nil)
}
