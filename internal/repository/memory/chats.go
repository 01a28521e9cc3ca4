package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"hirelink/internal/domain"
)

type chatRepo struct{ s *Store }

func (r *chatRepo) Create(_ context.Context, chat *domain.Chat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.chats {
		if existing.ApplicationID == chat.ApplicationID {
			return domain.Duplicate("chat already exists for this application")
		}
	}
	chat.CreatedAt = r.s.now()
	chat.LastActivity = chat.CreatedAt
	stored := *chat
	stored.Messages = nil
	stored.Employer, stored.Applicant = nil, nil
	r.s.chats[chat.ID] = stored
	r.s.messages[chat.ID] = nil
	return nil
}

func (r *chatRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	chat, ok := r.s.chats[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(chat), nil
}

func (r *chatRepo) GetByApplication(_ context.Context, applicationID uuid.UUID) (*domain.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, chat := range r.s.chats {
		if chat.ApplicationID == applicationID {
			return r.hydrate(chat), nil
		}
	}
	return nil, nil
}

// hydrate must be called with the lock held.
func (r *chatRepo) hydrate(chat domain.Chat) *domain.Chat {
	if job, ok := r.s.jobs[chat.JobID]; ok {
		chat.JobTitle = job.Title
	}
	employer, ok := r.s.users[chat.EmployerID]
	chat.Employer = participant(employer, ok, chat.EmployerID)
	applicant, ok := r.s.users[chat.ApplicantID]
	chat.Applicant = participant(applicant, ok, chat.ApplicantID)

	stored := r.s.messages[chat.ID]
	chat.Messages = make([]domain.Message, 0, len(stored))
	for _, m := range stored {
		chat.Messages = append(chat.Messages, copyMessage(m))
	}
	return &chat
}

func (r *chatRepo) AppendMessage(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	chat, ok := r.s.chats[msg.ChatID]
	if !ok {
		return domain.NotFound("chat not found")
	}
	msg.CreatedAt = r.s.tick(chat.LastActivity)
	chat.LastActivity = msg.CreatedAt
	r.s.chats[chat.ID] = chat
	r.s.messages[chat.ID] = append(r.s.messages[chat.ID], copyMessage(*msg))
	return nil
}

func (r *chatRepo) MarkRead(_ context.Context, chatID, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	messages := r.s.messages[chatID]
	for i := range messages {
		if messages[i].ReadBy.Add(userID) {
			n++
		}
	}
	return n, nil
}

func (r *chatRepo) MarkMessagesRead(_ context.Context, chatID, userID uuid.UUID, messageIDs []uuid.UUID) (int64, error) {
	shown := make(map[uuid.UUID]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		shown[id] = struct{}{}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	messages := r.s.messages[chatID]
	for i := range messages {
		if _, ok := shown[messages[i].ID]; !ok {
			continue
		}
		if messages[i].ReadBy.Add(userID) {
			n++
		}
	}
	return n, nil
}

func (r *chatRepo) ListSummaries(_ context.Context, userID uuid.UUID) ([]domain.ChatSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	summaries := []domain.ChatSummary{}
	for _, chat := range r.s.chats {
		if !chat.IsParticipant(userID) {
			continue
		}
		otherID := chat.OtherParticipant(userID)
		other, ok := r.s.users[otherID]
		summary := domain.ChatSummary{
			ID:            chat.ID,
			ApplicationID: chat.ApplicationID,
			OtherUser:     *participant(other, ok, otherID),
			LastActivity:  chat.LastActivity,
		}
		if job, ok := r.s.jobs[chat.JobID]; ok {
			summary.JobTitle = job.Title
		}
		messages := r.s.messages[chat.ID]
		for i := range messages {
			if messages[i].IsUnreadFor(userID) {
				summary.UnreadCount++
			}
		}
		if len(messages) > 0 {
			last := messages[len(messages)-1]
			summary.LastMessage = &domain.MessagePreview{
				Content:   domain.Preview(last.Content),
				CreatedAt: last.CreatedAt,
				IsFromMe:  last.SenderID == userID,
			}
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].LastActivity.Equal(summaries[j].LastActivity) {
			return summaries[i].LastActivity.After(summaries[j].LastActivity)
		}
		return idAfter(summaries[i].ID, summaries[j].ID)
	})
	return summaries, nil
}
