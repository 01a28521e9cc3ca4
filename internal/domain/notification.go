package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification is a durable single-recipient event record. Its read flag is
// independent of any message read set.
type Notification struct {
	ID           uuid.UUID        `json:"id" db:"notification_id"`
	RecipientID  uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	Type         NotificationType `json:"type" db:"type"`
	Title        string           `json:"title" db:"title"`
	Body         string           `json:"body" db:"body"`
	RelatedJobID *uuid.UUID       `json:"related_job_id,omitempty" db:"related_job_id"`
	Data         json.RawMessage  `json:"data,omitempty" db:"data"`
	IsRead       bool             `json:"is_read" db:"is_read"`
	ReadAt       *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifJobApplication    NotificationType = "JOB_APPLICATION"
	NotifJobPosted         NotificationType = "JOB_POSTED"
	NotifApplicationStatus NotificationType = "APPLICATION_STATUS"
	NotifNewMessage        NotificationType = "NEW_MESSAGE"
	NotifGeneral           NotificationType = "GENERAL"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotifJobApplication, NotifJobPosted, NotifApplicationStatus, NotifNewMessage, NotifGeneral:
		return true
	}
	return false
}

type NotifyInput struct {
	RecipientID  uuid.UUID
	Title        string
	Body         string
	Type         NotificationType
	RelatedJobID *uuid.UUID
	Payload      map[string]any

	// PushBody replaces Body in the push message when set.
	PushBody string
}

type UnreadCount struct {
	Count int64 `json:"count"`
}
