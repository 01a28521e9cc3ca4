package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirelink/internal/domain"
)

func newChat() *domain.Chat {
	return &domain.Chat{
		ID:            uuid.New(),
		ApplicationID: uuid.New(),
		JobID:         uuid.New(),
		EmployerID:    uuid.New(),
		ApplicantID:   uuid.New(),
	}
}

func TestChatRepository_Create(t *testing.T) {
	t.Run("stores chat", func(t *testing.T) {
		db, mock := newMockDB(t)
		chat := newChat()
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO chats`)).
			WithArgs(chat.ID, chat.ApplicationID, chat.JobID, chat.EmployerID, chat.ApplicantID).
			WillReturnRows(sqlmock.NewRows([]string{"last_activity", "created_at"}).AddRow(now, now))

		require.NoError(t, NewChatRepository(db).Create(context.Background(), chat))
		assert.Equal(t, now, chat.LastActivity)
	})

	t.Run("second chat for application is a duplicate", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`INSERT INTO chats`).WillReturnError(&pq.Error{Code: "23505"})

		err := NewChatRepository(db).Create(context.Background(), newChat())
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})
}

func TestChatRepository_GetByApplication(t *testing.T) {
	db, mock := newMockDB(t)
	chat := newChat()
	now := time.Now()
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.application_id = $1`)).
		WithArgs(chat.ApplicationID).
		WillReturnRows(sqlmock.NewRows([]string{
			"chat_id", "application_id", "job_id", "employer_id", "applicant_id",
			"last_activity", "created_at",
			"job_title", "employer_name", "employer_photo", "applicant_name", "applicant_photo",
		}).AddRow(
			chat.ID, chat.ApplicationID, chat.JobID, chat.EmployerID, chat.ApplicantID,
			now, now,
			"Backend Engineer", "Eka", nil, "Adi", "https://cdn.example.com/adi.png",
		))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM messages`)).
		WithArgs(chat.ID).
		WillReturnRows(sqlmock.NewRows([]string{"message_id", "chat_id", "sender_id", "content", "read_by", "created_at"}).
			AddRow(first, chat.ID, chat.ApplicantID, "Hello", "{"+chat.ApplicantID.String()+"}", now).
			AddRow(second, chat.ID, chat.EmployerID, "Hi", "{"+chat.EmployerID.String()+","+chat.ApplicantID.String()+"}", now))

	got, err := NewChatRepository(db).GetByApplication(context.Background(), chat.ApplicationID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Backend Engineer", got.JobTitle)
	assert.Equal(t, "Eka", got.DisplayName(chat.EmployerID))
	require.NotNil(t, got.Applicant.ProfilePhotoURL)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, first, got.Messages[0].ID)
	assert.Equal(t, domain.ReadSet{chat.ApplicantID}, got.Messages[0].ReadBy)
	assert.True(t, got.Messages[1].ReadBy.Contains(chat.ApplicantID))
}

func TestChatRepository_GetByID_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.chat_id = $1`)).WillReturnError(sql.ErrNoRows)

	got, err := NewChatRepository(db).GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChatRepository_AppendMessage(t *testing.T) {
	msg := &domain.Message{
		ID:       uuid.New(),
		ChatID:   uuid.New(),
		SenderID: uuid.New(),
		Content:  "Hello",
	}
	msg.ReadBy = domain.ReadSet{msg.SenderID}

	t.Run("inserts and touches chat", func(t *testing.T) {
		db, mock := newMockDB(t)
		now := time.Now().UTC()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO messages`)).
			WithArgs(msg.ID, msg.ChatID, msg.SenderID, "Hello", msg.ReadBy).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE chats SET last_activity = GREATEST(last_activity, $2)`)).
			WithArgs(msg.ChatID, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewChatRepository(db).AppendMessage(context.Background(), msg))
		assert.Equal(t, now, msg.CreatedAt)
	})

	t.Run("rolls back when chat is gone", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO messages`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectExec(`UPDATE chats`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := NewChatRepository(db).AppendMessage(context.Background(), msg)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO messages`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := NewChatRepository(db).AppendMessage(context.Background(), msg)
		assert.EqualError(t, err, "connection reset")
	})
}

func TestChatRepository_MarkRead(t *testing.T) {
	db, mock := newMockDB(t)
	chatID, userID := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`SET read_by = array_append(read_by, $2::uuid)`)).
		WithArgs(chatID, userID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewChatRepository(db).MarkRead(context.Background(), chatID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestChatRepository_MarkMessagesRead(t *testing.T) {
	t.Run("restricted to shown messages", func(t *testing.T) {
		db, mock := newMockDB(t)
		chatID, userID := uuid.New(), uuid.New()
		first, second := uuid.New(), uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`AND message_id = ANY($3::uuid[])`)).
			WithArgs(chatID, userID, pq.StringArray{first.String(), second.String()}).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := NewChatRepository(db).MarkMessagesRead(context.Background(), chatID, userID, []uuid.UUID{first, second})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("nothing shown touches nothing", func(t *testing.T) {
		db, _ := newMockDB(t)

		n, err := NewChatRepository(db).MarkMessagesRead(context.Background(), uuid.New(), uuid.New(), nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestChatRepository_ListSummaries(t *testing.T) {
	db, mock := newMockDB(t)
	me, other := uuid.New(), uuid.New()
	withMessage, empty := newChat(), newChat()
	now := time.Now()
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcde"
	}

	cols := []string{
		"chat_id", "application_id", "last_activity", "job_title",
		"other_id", "other_name", "other_photo",
		"last_content", "last_created_at", "last_sender_id", "unread_count",
	}
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY c.last_activity DESC, c.chat_id DESC`)).
		WithArgs(me).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(withMessage.ID, withMessage.ApplicationID, now, "Backend Engineer",
				other, "Adi", nil, long, now, other, 2).
			AddRow(empty.ID, empty.ApplicationID, now.Add(-time.Hour), "Designer",
				other, "Adi", nil, nil, nil, nil, 0))

	summaries, err := NewChatRepository(db).ListSummaries(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	first := summaries[0]
	assert.Equal(t, withMessage.ID, first.ID)
	assert.Equal(t, other, first.OtherUser.ID)
	assert.Equal(t, 2, first.UnreadCount)
	require.NotNil(t, first.LastMessage)
	assert.False(t, first.LastMessage.IsFromMe)
	assert.Equal(t, domain.Preview(long), first.LastMessage.Content)
	assert.Len(t, []rune(first.LastMessage.Content), domain.PreviewLength+3)

	assert.Nil(t, summaries[1].LastMessage)
	assert.Zero(t, summaries[1].UnreadCount)
}
