package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	default:
		return false
	}
}

func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// ProfileSnapshot is the applicant's contact/profile data as it was when the
// application was submitted. Later profile edits do not change it.
type ProfileSnapshot struct {
	Name      string  `json:"name" db:"applicant_name"`
	Email     string  `json:"email" db:"applicant_email"`
	Phone     *string `json:"phone,omitempty" db:"applicant_phone"`
	Gender    *string `json:"gender,omitempty" db:"applicant_gender"`
	Address   *string `json:"address,omitempty" db:"applicant_address"`
	Education *string `json:"education,omitempty" db:"applicant_education"`
	Skills    *string `json:"skills,omitempty" db:"applicant_skills"`
}

type Application struct {
	ID                    uuid.UUID         `json:"id" db:"application_id"`
	JobID                 uuid.UUID         `json:"job_id" db:"job_id"`
	ApplicantID           uuid.UUID         `json:"applicant_id" db:"applicant_id"`
	Status                ApplicationStatus `json:"status" db:"status"`
	Feedback              *string           `json:"feedback,omitempty" db:"feedback"`
	RelatedNotificationID *uuid.UUID        `json:"related_notification_id,omitempty" db:"related_notification_id"`
	CreatedAt             time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at" db:"updated_at"`

	ProfileSnapshot `json:"profile"`

	Job *Job `json:"job,omitempty" db:"-"`
}

type SubmitApplicationInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Gender    string `json:"gender"`
	Address   string `json:"address"`
	Education string `json:"education"`
	Skills    string `json:"skills"`
}

// Snapshot merges the submitted fields over the applicant's profile. Blank
// submitted fields fall back to the profile value.
func (in SubmitApplicationInput) Snapshot(profile *User) ProfileSnapshot {
	snap := ProfileSnapshot{
		Name:      firstNonBlank(in.Name, profile.FullName),
		Email:     firstNonBlank(in.Email, profile.Email),
		Phone:     optional(in.Phone, profile.Phone),
		Gender:    optional(in.Gender, profile.Gender),
		Address:   optional(in.Address, profile.HomeAddress),
		Education: optional(in.Education, nil),
		Skills:    optional(in.Skills, nil),
	}
	return snap
}

type TransitionApplicationInput struct {
	Status   ApplicationStatus `json:"status"`
	Feedback *string           `json:"feedback,omitempty"`
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func optional(value string, fallback *string) *string {
	if v := strings.TrimSpace(value); v != "" {
		return &v
	}
	if fallback != nil && strings.TrimSpace(*fallback) != "" {
		v := *fallback
		return &v
	}
	return nil
}
