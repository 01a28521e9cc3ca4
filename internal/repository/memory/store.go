// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same uniqueness rules as the Postgres schema.
package memory

import (
	"bytes"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hirelink/internal/domain"
	"hirelink/internal/repository"
)

type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	users         map[uuid.UUID]domain.User
	jobs          map[uuid.UUID]domain.Job
	applications  map[uuid.UUID]domain.Application
	chats         map[uuid.UUID]domain.Chat
	messages      map[uuid.UUID][]domain.Message
	notifications map[uuid.UUID]domain.Notification
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		users:         make(map[uuid.UUID]domain.User),
		jobs:          make(map[uuid.UUID]domain.Job),
		applications:  make(map[uuid.UUID]domain.Application),
		chats:         make(map[uuid.UUID]domain.Chat),
		messages:      make(map[uuid.UUID][]domain.Message),
		notifications: make(map[uuid.UUID]domain.Notification),
	}
}

func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:         &userRepo{s},
		Job:          &jobRepo{s},
		Application:  &applicationRepo{s},
		Chat:         &chatRepo{s},
		Notification: &notificationRepo{s},
	}
}

// PutUser seeds a user owned by the identity service.
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
		u.UpdatedAt = u.CreatedAt
	}
	s.users[u.ID] = u
}

// PutJob seeds a job owned by the catalog service.
func (s *Store) PutJob(j domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = s.now()
	}
	s.jobs[j.ID] = j
}

// Notifications returns every stored notification for recipientID, newest first.
func (s *Store) Notifications(recipientID uuid.UUID) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notificationsFor(recipientID, false)
}

func (s *Store) notificationsFor(recipientID uuid.UUID, unreadOnly bool) []domain.Notification {
	out := []domain.Notification{}
	for _, n := range s.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, copyNotification(n))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return idAfter(out[i].ID, out[j].ID)
	})
	return out
}

// tick returns a strictly increasing timestamp so orderings by time are stable.
func (s *Store) tick(last time.Time) time.Time {
	t := s.now()
	if !t.After(last) {
		t = last.Add(time.Microsecond)
	}
	return t
}

// idAfter orders ids descending, matching Postgres uuid ordering.
func idAfter(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) > 0
}

func copyMessage(m domain.Message) domain.Message {
	m.ReadBy = m.ReadBy.Clone()
	return m
}

func copyNotification(n domain.Notification) domain.Notification {
	if n.Data != nil {
		n.Data = append(json.RawMessage(nil), n.Data...)
	}
	return n
}

func participant(u domain.User, ok bool, id uuid.UUID) *domain.Participant {
	if !ok {
		return &domain.Participant{ID: id}
	}
	return &domain.Participant{ID: u.ID, FullName: u.FullName, ProfilePhotoURL: u.ProfilePhotoURL}
}
