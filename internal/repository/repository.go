package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User         UserRepository
	Job          JobRepository
	Application  ApplicationRepository
	Chat         ChatRepository
	Notification NotificationRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Job:          NewJobRepository(db),
		Application:  NewApplicationRepository(db),
		Chat:         NewChatRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
