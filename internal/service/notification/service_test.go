package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hirelink/internal/domain"
	"hirelink/internal/mocks"
	"hirelink/internal/service/notification"
	"hirelink/internal/service/push"
)

type fixture struct {
	notifRepo *mocks.NotificationRepository
	userRepo  *mocks.UserRepository
	sender    *mocks.PushSender
	hook      *test.Hook
	svc       notification.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	f := &fixture{
		notifRepo: new(mocks.NotificationRepository),
		userRepo:  new(mocks.UserRepository),
		sender:    new(mocks.PushSender),
		hook:      hook,
	}
	f.svc = notification.NewService(f.notifRepo, f.userRepo, f.sender, nil, log, notification.Options{})
	return f
}

func withToken(id uuid.UUID, token string) *domain.User {
	return &domain.User{ID: id, FullName: "Siti", Email: "siti@example.com", DeviceToken: &token}
}

func TestNotify_PersistsThenPushes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipient := uuid.New()
	chatID := uuid.New()

	var order []string
	f.notifRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).
		Run(func(mock.Arguments) { order = append(order, "persist") }).Return(nil)
	f.userRepo.On("GetByID", mock.Anything, recipient).Return(withToken(recipient, "device-1"), nil)
	f.sender.On("Send", mock.Anything, "device-1", "New Message", "Budi: hello", mock.MatchedBy(func(data map[string]string) bool {
		return data["type"] == "NEW_MESSAGE" && data["chatId"] == chatID.String() && data["notificationId"] != ""
	})).Run(func(mock.Arguments) { order = append(order, "push") }).Return(nil)

	notif, err := f.svc.Notify(ctx, domain.NotifyInput{
		RecipientID: recipient,
		Title:       "New Message",
		Body:        "Budi sent you a message",
		Type:        domain.NotifNewMessage,
		Payload:     map[string]any{"chatId": chatID, "message": "hello"},
		PushBody:    "Budi: hello",
	})

	require.NoError(t, err)
	assert.Equal(t, recipient, notif.RecipientID)
	assert.False(t, notif.IsRead)
	assert.Equal(t, []string{"persist", "push"}, order)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(notif.Data, &payload))
	assert.Equal(t, chatID.String(), payload["chatId"])

	f.notifRepo.AssertExpectations(t)
	f.sender.AssertExpectations(t)
}

func TestNotify_PushFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipient := uuid.New()

	f.notifRepo.On("Create", ctx, mock.Anything).Return(nil)
	f.userRepo.On("GetByID", mock.Anything, recipient).Return(withToken(recipient, "device-1"), nil)
	f.sender.On("Send", mock.Anything, "device-1", mock.Anything, mock.Anything, mock.Anything).
		Return(&push.DeliveryError{Attempts: 3, Err: errors.New("unavailable")})

	notif, err := f.svc.Notify(ctx, domain.NotifyInput{
		RecipientID: recipient,
		Title:       "Application Accepted",
		Body:        "Your application for Backend has been Accepted",
		Type:        domain.NotifApplicationStatus,
	})

	require.NoError(t, err)
	require.NotNil(t, notif)
	require.NotNil(t, f.hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, f.hook.LastEntry().Level)
	assert.Equal(t, "push delivery failed", f.hook.LastEntry().Message)
}

func TestNotify_UnregisteredTokenIsCleared(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipient := uuid.New()

	f.notifRepo.On("Create", ctx, mock.Anything).Return(nil)
	f.userRepo.On("GetByID", mock.Anything, recipient).Return(withToken(recipient, "stale"), nil)
	f.sender.On("Send", mock.Anything, "stale", mock.Anything, mock.Anything, mock.Anything).Return(push.ErrUnregistered)
	f.userRepo.On("ClearStaleDeviceToken", mock.Anything, recipient, "stale").Return(nil)

	_, err := f.svc.Notify(ctx, domain.NotifyInput{
		RecipientID: recipient,
		Title:       "t",
		Body:        "b",
		Type:        domain.NotifGeneral,
	})

	require.NoError(t, err)
	f.userRepo.AssertCalled(t, "ClearStaleDeviceToken", mock.Anything, recipient, "stale")
}

func TestNotify_NoDeviceTokenSkipsPush(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipient := uuid.New()

	f.notifRepo.On("Create", ctx, mock.Anything).Return(nil)
	f.userRepo.On("GetByID", mock.Anything, recipient).Return(&domain.User{ID: recipient}, nil)

	_, err := f.svc.Notify(ctx, domain.NotifyInput{RecipientID: recipient, Title: "t", Body: "b", Type: domain.NotifGeneral})

	require.NoError(t, err)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotify_PersistFailureFailsCallWithoutPush(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipient := uuid.New()

	f.notifRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	notif, err := f.svc.Notify(ctx, domain.NotifyInput{RecipientID: recipient, Title: "t", Body: "b", Type: domain.NotifGeneral})

	assert.Nil(t, notif)
	assert.ErrorContains(t, err, "db down")
	f.userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestNotify_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input domain.NotifyInput
	}{
		{"missing recipient", domain.NotifyInput{Title: "t", Body: "b", Type: domain.NotifGeneral}},
		{"blank title", domain.NotifyInput{RecipientID: uuid.New(), Title: " ", Body: "b", Type: domain.NotifGeneral}},
		{"unknown type", domain.NotifyInput{RecipientID: uuid.New(), Title: "t", Body: "b", Type: "CHAT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Notify(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	f.notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotify_AsyncDeliveryUsesDetachedContext(t *testing.T) {
	log, _ := test.NewNullLogger()
	notifRepo := new(mocks.NotificationRepository)
	userRepo := new(mocks.UserRepository)
	sender := new(mocks.PushSender)
	svc := notification.NewService(notifRepo, userRepo, sender, nil, log, notification.Options{Async: true})

	ctx, cancel := context.WithCancel(context.Background())
	recipient := uuid.New()

	notifRepo.On("Create", ctx, mock.Anything).Return(nil)
	userRepo.On("GetByID", mock.Anything, recipient).Return(withToken(recipient, "device-1"), nil)
	sender.On("Send", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }),
		"device-1", "t", "b", mock.Anything).Return(nil)

	_, err := svc.Notify(ctx, domain.NotifyInput{RecipientID: recipient, Title: "t", Body: "b", Type: domain.NotifGeneral})
	cancel()
	svc.Wait()

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestNotify_AsyncDropsPushWhenSaturated(t *testing.T) {
	log, hook := test.NewNullLogger()
	notifRepo := new(mocks.NotificationRepository)
	userRepo := new(mocks.UserRepository)
	sender := new(mocks.PushSender)
	svc := notification.NewService(notifRepo, userRepo, sender, nil, log,
		notification.Options{Async: true, MaxInflight: 1})

	ctx := context.Background()
	recipient := uuid.New()
	started := make(chan struct{})
	release := make(chan struct{})

	notifRepo.On("Create", ctx, mock.Anything).Return(nil)
	userRepo.On("GetByID", mock.Anything, recipient).Return(withToken(recipient, "device-1"), nil)
	sender.On("Send", mock.Anything, "device-1", "t", "b", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return(nil).Once()

	input := domain.NotifyInput{RecipientID: recipient, Title: "t", Body: "b", Type: domain.NotifGeneral}
	_, err := svc.Notify(ctx, input)
	require.NoError(t, err)
	<-started

	second, err := svc.Notify(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, second)

	close(release)
	svc.Wait()

	notifRepo.AssertNumberOfCalls(t, "Create", 2)
	sender.AssertNumberOfCalls(t, "Send", 1)
	var dropped bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "push dropped, too many deliveries in flight" {
			dropped = true
		}
	}
	assert.True(t, dropped)
}

func TestMarkAsRead(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.notifRepo.On("GetByID", ctx, id).Return(nil, nil)

		_, err := f.svc.MarkAsRead(ctx, id, owner)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("someone else's notification", func(t *testing.T) {
		f := newFixture(t)
		f.notifRepo.On("GetByID", ctx, id).Return(&domain.Notification{ID: id, RecipientID: owner}, nil)

		_, err := f.svc.MarkAsRead(ctx, id, uuid.New())
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		f.notifRepo.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
	})

	t.Run("marks and returns updated", func(t *testing.T) {
		f := newFixture(t)
		f.notifRepo.On("GetByID", ctx, id).Return(&domain.Notification{ID: id, RecipientID: owner}, nil).Once()
		f.notifRepo.On("MarkAsRead", ctx, id).Return(nil)
		f.notifRepo.On("GetByID", ctx, id).Return(&domain.Notification{ID: id, RecipientID: owner, IsRead: true}, nil).Once()

		notif, err := f.svc.MarkAsRead(ctx, id, owner)
		require.NoError(t, err)
		assert.True(t, notif.IsRead)
	})

	t.Run("already read is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.notifRepo.On("GetByID", ctx, id).Return(&domain.Notification{ID: id, RecipientID: owner, IsRead: true}, nil)

		notif, err := f.svc.MarkAsRead(ctx, id, owner)
		require.NoError(t, err)
		assert.True(t, notif.IsRead)
		f.notifRepo.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
	})
}

func TestMarkAllAsRead_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()

	f.notifRepo.On("MarkAllAsRead", ctx, user).Return(int64(3), nil).Once()
	f.notifRepo.On("MarkAllAsRead", ctx, user).Return(int64(0), nil).Once()

	n, err := f.svc.MarkAllAsRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = f.svc.MarkAllAsRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestList_ClampsPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	expected := domain.PaginationParams{Page: 1, PageSize: domain.MaxPageSize}

	f.notifRepo.On("ListByRecipient", ctx, user, true, expected).
		Return([]domain.Notification{{ID: uuid.New(), RecipientID: user}}, int64(1), nil)

	resp, err := f.svc.List(ctx, user, true, domain.PaginationParams{Page: 0, PageSize: 500})

	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.TotalPages)
	assert.False(t, resp.HasNext)
}

func TestGetUnreadCount_WithoutCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()

	f.notifRepo.On("CountUnread", ctx, user).Return(int64(4), nil)

	count, err := f.svc.GetUnreadCount(ctx, user)

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestDeviceTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()

	err := f.svc.RegisterDeviceToken(ctx, user, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.userRepo.On("SetDeviceToken", ctx, user, mock.MatchedBy(func(tok *string) bool {
		return tok != nil && *tok == "device-9"
	})).Return(nil)
	require.NoError(t, f.svc.RegisterDeviceToken(ctx, user, " device-9 "))

	f.userRepo.On("SetDeviceToken", ctx, user, (*string)(nil)).Return(nil)
	require.NoError(t, f.svc.ClearDeviceToken(ctx, user))

	f.userRepo.AssertExpectations(t)
}
