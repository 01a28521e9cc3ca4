package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirelink/internal/config"
	"hirelink/internal/domain"
	"hirelink/internal/repository/memory"
	"hirelink/internal/service"
)

type recordedPush struct {
	token, title, body string
	data               map[string]string
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []recordedPush
	fails bool
}

func (r *recordingSender) Send(_ context.Context, token, title, body string, data map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, recordedPush{token, title, body, data})
	if r.fails {
		return domain.ErrDelivery
	}
	return nil
}

type world struct {
	store     *memory.Store
	services  *service.Services
	sender    *recordingSender
	employer  uuid.UUID
	applicant uuid.UUID
	other     uuid.UUID
	job       uuid.UUID
}

func newWorld(t *testing.T) *world {
	t.Helper()
	log, _ := test.NewNullLogger()
	cfg := &config.Config{
		JWTSecret:                 "secret",
		AppName:                   "HireLink",
		NotificationLocale:        "en",
		PushAsync:                 false,
		PushTimeout:               time.Second,
		PushMaxAttempts:           1,
		AllowTerminalRetransition: true,
	}
	w := &world{
		store:     memory.NewStore(),
		sender:    &recordingSender{},
		employer:  uuid.New(),
		applicant: uuid.New(),
		other:     uuid.New(),
		job:       uuid.New(),
	}
	employerToken := "employer-device"
	w.store.PutUser(domain.User{ID: w.employer, FullName: "Eka", Email: "eka@example.com", DeviceToken: &employerToken})
	w.store.PutUser(domain.User{ID: w.applicant, FullName: "Adi", Email: "adi@example.com"})
	w.store.PutUser(domain.User{ID: w.other, FullName: "Budi", Email: "budi@example.com"})
	w.store.PutJob(domain.Job{ID: w.job, EmployerID: w.employer, Title: "Backend Engineer", Location: "Jakarta"})

	w.services = service.NewServices(w.store.Repositories(), nil, w.sender, cfg, log)
	return w
}

func TestScenario_ApplyAcceptChat(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	svc := w.services

	app, err := svc.Application.Submit(ctx, w.job, w.applicant, domain.SubmitApplicationInput{})
	require.NoError(t, err)

	employerInbox := w.store.Notifications(w.employer)
	require.Len(t, employerInbox, 1)
	assert.Equal(t, domain.NotifJobApplication, employerInbox[0].Type)
	assert.Equal(t, employerInbox[0].ID, *app.RelatedNotificationID)

	_, err = svc.Chat.GetOrCreate(ctx, app.ID, w.applicant)
	require.ErrorIs(t, err, domain.ErrPrecondition)

	_, err = svc.Application.Transition(ctx, app.ID, w.employer, domain.TransitionApplicationInput{Status: domain.ApplicationAccepted})
	require.NoError(t, err)
	svc.Application.Wait()

	applicantInbox := w.store.Notifications(w.applicant)
	require.Len(t, applicantInbox, 1)
	assert.Equal(t, domain.NotifApplicationStatus, applicantInbox[0].Type)
	assert.Equal(t, "Application Accepted", applicantInbox[0].Title)

	chat, err := svc.Chat.GetOrCreate(ctx, app.ID, w.applicant)
	require.NoError(t, err)

	chat, err = svc.Chat.SendMessage(ctx, chat.ID, w.applicant, domain.SendMessageInput{Content: "Hello"})
	require.NoError(t, err)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, domain.ReadSet{w.applicant}, chat.Messages[0].ReadBy)

	employerInbox = w.store.Notifications(w.employer)
	require.Len(t, employerInbox, 2)
	assert.Equal(t, domain.NotifNewMessage, employerInbox[0].Type)

	viewed, err := svc.Chat.GetMessages(ctx, chat.ID, w.employer)
	require.NoError(t, err)
	assert.True(t, viewed.Messages[0].ReadBy.Contains(w.employer))

	summaries, err := svc.Chat.ListForUser(ctx, w.employer)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].UnreadCount)

	// Only the employer registered a device; the applicant's status push was skipped.
	require.Len(t, w.sender.sent, 2)
	assert.Equal(t, "employer-device", w.sender.sent[1].token)
	assert.Equal(t, "Adi: Hello", w.sender.sent[1].body)
	assert.Equal(t, string(domain.NotifNewMessage), w.sender.sent[1].data["type"])
	assert.Equal(t, chat.ID.String(), w.sender.sent[1].data["chatId"])
}

func TestScenario_DuplicateApplication(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.services.Application.Submit(ctx, w.job, w.other, domain.SubmitApplicationInput{})
	require.NoError(t, err)

	_, err = w.services.Application.Submit(ctx, w.job, w.other, domain.SubmitApplicationInput{})
	require.ErrorIs(t, err, domain.ErrDuplicate)

	apps, err := w.services.Application.ListForJob(ctx, w.job, w.employer)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestScenario_PushFailureKeepsNotification(t *testing.T) {
	w := newWorld(t)
	w.sender.fails = true
	ctx := context.Background()

	_, err := w.services.Application.Submit(ctx, w.job, w.applicant, domain.SubmitApplicationInput{})
	require.NoError(t, err)

	inbox := w.store.Notifications(w.employer)
	require.Len(t, inbox, 1)
	assert.Len(t, w.sender.sent, 1)
}

func TestScenario_MarkAllNotificationsRead(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	svc := w.services

	for _, applicant := range []uuid.UUID{w.applicant, w.other} {
		_, err := svc.Application.Submit(ctx, w.job, applicant, domain.SubmitApplicationInput{})
		require.NoError(t, err)
	}

	count, err := svc.Notification.GetUnreadCount(ctx, w.employer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	updated, err := svc.Notification.MarkAllAsRead(ctx, w.employer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	list, err := svc.Notification.List(ctx, w.employer, false, domain.DefaultPagination())
	require.NoError(t, err)
	require.Len(t, list.Data, 2)
	for _, n := range list.Data {
		assert.True(t, n.IsRead)
		assert.NotNil(t, n.ReadAt)
	}

	updated, err = svc.Notification.MarkAllAsRead(ctx, w.employer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	count, err = svc.Notification.GetUnreadCount(ctx, w.employer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestScenario_NotificationReadDoesNotTouchMessages(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	svc := w.services

	app, err := svc.Application.Submit(ctx, w.job, w.applicant, domain.SubmitApplicationInput{})
	require.NoError(t, err)
	_, err = svc.Application.Transition(ctx, app.ID, w.employer, domain.TransitionApplicationInput{Status: domain.ApplicationAccepted})
	require.NoError(t, err)
	svc.Application.Wait()

	chat, err := svc.Chat.GetOrCreate(ctx, app.ID, w.applicant)
	require.NoError(t, err)
	_, err = svc.Chat.SendMessage(ctx, chat.ID, w.applicant, domain.SendMessageInput{Content: "Hi"})
	require.NoError(t, err)

	_, err = svc.Notification.MarkAllAsRead(ctx, w.employer)
	require.NoError(t, err)

	summaries, err := svc.Chat.ListForUser(ctx, w.employer)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].UnreadCount)
}
