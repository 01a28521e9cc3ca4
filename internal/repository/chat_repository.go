package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"hirelink/internal/domain"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error)
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.Chat, error)
	AppendMessage(ctx context.Context, msg *domain.Message) error
	MarkRead(ctx context.Context, chatID, userID uuid.UUID) (int64, error)
	MarkMessagesRead(ctx context.Context, chatID, userID uuid.UUID, messageIDs []uuid.UUID) (int64, error)
	ListSummaries(ctx context.Context, userID uuid.UUID) ([]domain.ChatSummary, error)
}

type chatRow struct {
	domain.Chat
	JobTitle       string  `db:"job_title"`
	EmployerName   string  `db:"employer_name"`
	EmployerPhoto  *string `db:"employer_photo"`
	ApplicantName  string  `db:"applicant_name"`
	ApplicantPhoto *string `db:"applicant_photo"`
}

func (row chatRow) toDomain() *domain.Chat {
	chat := row.Chat
	chat.JobTitle = row.JobTitle
	chat.Employer = &domain.Participant{ID: chat.EmployerID, FullName: row.EmployerName, ProfilePhotoURL: row.EmployerPhoto}
	chat.Applicant = &domain.Participant{ID: chat.ApplicantID, FullName: row.ApplicantName, ProfilePhotoURL: row.ApplicantPhoto}
	return &chat
}

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	query := `
		INSERT INTO chats (chat_id, application_id, job_id, employer_id, applicant_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING last_activity, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		chat.ID, chat.ApplicationID, chat.JobID, chat.EmployerID, chat.ApplicantID,
	).Scan(&chat.LastActivity, &chat.CreatedAt)
	return uniqueViolation(err, "chat already exists for this application")
}

func (r *chatRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	return r.getHydrated(ctx, `c.chat_id = $1`, id)
}

func (r *chatRepository) GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.Chat, error) {
	return r.getHydrated(ctx, `c.application_id = $1`, applicationID)
}

func (r *chatRepository) getHydrated(ctx context.Context, where string, arg uuid.UUID) (*domain.Chat, error) {
	query := `
		SELECT c.chat_id, c.application_id, c.job_id, c.employer_id, c.applicant_id,
			c.last_activity, c.created_at,
			COALESCE(j.job_title, '') AS job_title,
			COALESCE(e.full_name, '') AS employer_name, e.profile_photo_url AS employer_photo,
			COALESCE(a.full_name, '') AS applicant_name, a.profile_photo_url AS applicant_photo
		FROM chats c
		LEFT JOIN jobs j ON j.job_id = c.job_id
		LEFT JOIN users e ON e.user_id = c.employer_id
		LEFT JOIN users a ON a.user_id = c.applicant_id
		WHERE ` + where

	var row chatRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	chat := row.toDomain()
	messages, err := r.listMessages(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	chat.Messages = messages
	return chat, nil
}

func (r *chatRepository) listMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT message_id, chat_id, sender_id, content, read_by, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY seq ASC`

	messages := []domain.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, chatID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO messages (message_id, chat_id, sender_id, content, read_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	if err := tx.QueryRowxContext(ctx, insert,
		msg.ID, msg.ChatID, msg.SenderID, msg.Content, msg.ReadBy,
	).Scan(&msg.CreatedAt); err != nil {
		return err
	}

	touch := `UPDATE chats SET last_activity = GREATEST(last_activity, $2) WHERE chat_id = $1`
	res, err := tx.ExecContext(ctx, touch, msg.ChatID, msg.CreatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("chat not found")
	}

	return tx.Commit()
}

// MarkRead unions userID into the read set of every message in the chat and
// returns how many messages changed.
func (r *chatRepository) MarkRead(ctx context.Context, chatID, userID uuid.UUID) (int64, error) {
	query := `
		UPDATE messages
		SET read_by = array_append(read_by, $2::uuid)
		WHERE chat_id = $1 AND NOT ($2::uuid = ANY(read_by))`

	res, err := r.db.ExecContext(ctx, query, chatID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkMessagesRead is MarkRead restricted to messageIDs, so messages the
// reader has not been shown stay unread.
func (r *chatRepository) MarkMessagesRead(ctx context.Context, chatID, userID uuid.UUID, messageIDs []uuid.UUID) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}

	ids := make(pq.StringArray, len(messageIDs))
	for i, id := range messageIDs {
		ids[i] = id.String()
	}

	query := `
		UPDATE messages
		SET read_by = array_append(read_by, $2::uuid)
		WHERE chat_id = $1 AND message_id = ANY($3::uuid[]) AND NOT ($2::uuid = ANY(read_by))`

	res, err := r.db.ExecContext(ctx, query, chatID, userID, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type chatSummaryRow struct {
	ChatID        uuid.UUID  `db:"chat_id"`
	ApplicationID uuid.UUID  `db:"application_id"`
	JobTitle      string     `db:"job_title"`
	OtherID       uuid.UUID  `db:"other_id"`
	OtherName     string     `db:"other_name"`
	OtherPhoto    *string    `db:"other_photo"`
	LastContent   *string    `db:"last_content"`
	LastCreatedAt *time.Time `db:"last_created_at"`
	LastSenderID  *uuid.UUID `db:"last_sender_id"`
	UnreadCount   int        `db:"unread_count"`
	LastActivity  time.Time  `db:"last_activity"`
}

func (r *chatRepository) ListSummaries(ctx context.Context, userID uuid.UUID) ([]domain.ChatSummary, error) {
	query := `
		SELECT c.chat_id, c.application_id, c.last_activity,
			COALESCE(j.job_title, '') AS job_title,
			CASE WHEN c.employer_id = $1 THEN c.applicant_id ELSE c.employer_id END AS other_id,
			 COALESCE(o.full_name, '') AS other_name, o.profile_photo_url AS other_photo,
			lm.content AS last_content, lm.created_at AS last_created_at, lm.sender_id AS last_sender_id,
			(
				SELECT COUNT(*) FROM messages m
				WHERE m.chat_id = c.chat_id
					AND m.sender_id <> $1
					AND NOT ($1::uuid = ANY(m.read_by))
			) AS unread_count
		FROM chats c
		LEFT JOIN jobs j ON j.job_id = c.job_id
		LEFT JOIN users o ON o.user_id = CASE WHEN c.employer_id = $1 THEN c.applicant_id ELSE c.employer_id END
		LEFT JOIN LATERAL (
			SELECT content, created_at, sender_id FROM messages
			WHERE chat_id = c.chat_id
			ORDER BY seq DESC
			LIMIT 1
		) lm ON TRUE
		WHERE c.employer_id = $1 OR c.applicant_id = $1
		ORDER BY c.last_activity DESC, c.chat_id DESC`

	var rows []chatSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	summaries := make([]domain.ChatSummary, 0, len(rows))
	for _, row := range rows {
		s := domain.ChatSummary{
			ID:            row.ChatID,
			ApplicationID: row.ApplicationID,
			JobTitle:      row.JobTitle,
			OtherUser: domain.Participant{
				ID:              row.OtherID,
				FullName:        row.OtherName,
				ProfilePhotoURL: row.OtherPhoto,
			},
			UnreadCount:  row.UnreadCount,
			LastActivity: row.LastActivity,
		}
		if row.LastContent != nil && row.LastCreatedAt != nil {
			s.LastMessage = &domain.MessagePreview{
				Content:   domain.Preview(*row.LastContent),
				CreatedAt: *row.LastCreatedAt,
				IsFromMe:  row.LastSenderID != nil && *row.LastSenderID == userID,
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
