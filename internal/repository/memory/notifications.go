package memory

import (
	"context"

	"github.com/google/uuid"

	"hirelink/internal/domain"
)

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, notif *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.notifications[notif.ID]; exists {
		return domain.Duplicate("notification already exists")
	}
	var latest domain.Notification
	for _, n := range r.s.notifications {
		if n.RecipientID == notif.RecipientID && n.CreatedAt.After(latest.CreatedAt) {
			latest = n
		}
	}
	notif.CreatedAt = r.s.tick(latest.CreatedAt)
	notif.IsRead = false
	notif.ReadAt = nil
	r.s.notifications[notif.ID] = copyNotification(*notif)
	return nil
}

func (r *notificationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, nil
	}
	out := copyNotification(n)
	return &out, nil
}

func (r *notificationRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Validate()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.s.notificationsFor(recipientID, unreadOnly)
	total := int64(len(all))

	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *notificationRepo) MarkAsRead(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.IsRead {
		return nil
	}
	now := r.s.now()
	n.IsRead = true
	n.ReadAt = &now
	r.s.notifications[id] = n
	return nil
}

func (r *notificationRepo) MarkAllAsRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	var updated int64
	for id, n := range r.s.notifications {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		n.IsRead = true
		readAt := now
		n.ReadAt = &readAt
		r.s.notifications[id] = n
		updated++
	}
	return updated, nil
}

func (r *notificationRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
