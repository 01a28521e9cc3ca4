package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is owned by the profile service; this core only reads it and
// writes DeviceToken.
type User struct {
	ID              uuid.UUID `json:"id" db:"user_id"`
	FullName        string    `json:"full_name" db:"full_name"`
	Email           string    `json:"email" db:"email"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	Gender          *string   `json:"gender,omitempty" db:"gender"`
	HomeAddress     *string   `json:"home_address,omitempty" db:"home_address"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty" db:"profile_photo_url"`
	DeviceToken     *string   `json:"-" db:"device_token"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

func (u *User) HasDeviceToken() bool {
	return u.DeviceToken != nil && *u.DeviceToken != ""
}

// Participant is the public projection of a User shown inside chats.
type Participant struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
}

type RegisterDeviceTokenInput struct {
	Token string `json:"token"`
}
