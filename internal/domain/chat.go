package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Chat struct {
	ID            uuid.UUID `json:"id" db:"chat_id"`
	ApplicationID uuid.UUID `json:"application_id" db:"application_id"`
	JobID         uuid.UUID `json:"job_id" db:"job_id"`
	EmployerID    uuid.UUID `json:"employer_id" db:"employer_id"`
	ApplicantID   uuid.UUID `json:"applicant_id" db:"applicant_id"`
	LastActivity  time.Time `json:"last_activity" db:"last_activity"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Messages  []Message    `json:"messages" db:"-"`
	JobTitle  string       `json:"job_title,omitempty" db:"-"`
	Employer  *Participant `json:"employer,omitempty" db:"-"`
	Applicant *Participant `json:"applicant,omitempty" db:"-"`
}

func (c *Chat) IsParticipant(userID uuid.UUID) bool {
	return c.EmployerID == userID || c.ApplicantID == userID
}

// OtherParticipant returns the counterpart of userID. userID must be a participant.
func (c *Chat) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.EmployerID == userID {
		return c.ApplicantID
	}
	return c.EmployerID
}

func (c *Chat) participant(userID uuid.UUID) *Participant {
	switch userID {
	case c.EmployerID:
		return c.Employer
	case c.ApplicantID:
		return c.Applicant
	}
	return nil
}

// DisplayName is the participant's name as hydrated on the chat, or "" if the
// chat was loaded without projections.
func (c *Chat) DisplayName(userID uuid.UUID) string {
	if p := c.participant(userID); p != nil {
		return p.FullName
	}
	return ""
}

type Message struct {
	ID        uuid.UUID `json:"id" db:"message_id"`
	ChatID    uuid.UUID `json:"chat_id" db:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	ReadBy    ReadSet   `json:"read_by" db:"read_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsUnreadFor reports whether the message counts toward userID's unread badge.
// A user's own messages are never unread for them.
func (m *Message) IsUnreadFor(userID uuid.UUID) bool {
	return m.SenderID != userID && !m.ReadBy.Contains(userID)
}

// ReadSet is the set of users who have read a message. It is stored as a
// Postgres uuid[] column.
type ReadSet []uuid.UUID

func (s ReadSet) Contains(userID uuid.UUID) bool {
	for _, id := range s {
		if id == userID {
			return true
		}
	}
	return false
}

// Add unions userID into the set and reports whether the set changed.
func (s *ReadSet) Add(userID uuid.UUID) bool {
	if s.Contains(userID) {
		return false
	}
	*s = append(*s, userID)
	return true
}

func (s ReadSet) Clone() ReadSet {
	out := make(ReadSet, len(s))
	copy(out, s)
	return out
}

func (s *ReadSet) Scan(src any) error {
	var raw pq.StringArray
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan read set: %w", err)
	}
	set := make(ReadSet, 0, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("scan read set: %w", err)
		}
		set = append(set, id)
	}
	*s = set
	return nil
}

func (s ReadSet) Value() (driver.Value, error) {
	raw := make(pq.StringArray, len(s))
	for i, id := range s {
		raw[i] = id.String()
	}
	return raw.Value()
}

const (
	MaxMessageLength  = 2000
	PreviewLength     = 100
	PushPreviewLength = 50
)

// Truncate shortens s to at most n runes, appending "..." when it cut anything.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func Preview(content string) string {
	return Truncate(content, PreviewLength)
}

type SendMessageInput struct {
	Content string `json:"content"`
}

type ChatSummary struct {
	ID            uuid.UUID       `json:"id"`
	ApplicationID uuid.UUID       `json:"application_id"`
	JobTitle      string          `json:"job_title"`
	OtherUser     Participant     `json:"other_user"`
	LastMessage   *MessagePreview `json:"last_message"`
	UnreadCount   int             `json:"unread_count"`
	LastActivity  time.Time       `json:"last_activity"`
}

type MessagePreview struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	IsFromMe  bool      `json:"is_from_me"`
}

type MarkReadResult struct {
	Updated bool `json:"updated"`
}
