package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func unreadKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}

// GetUnreadCount serves from the cache when possible. Cache failures fall
// back to the database.
func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := unreadKey(userID)

	if s.cache != nil {
		count, err := s.cache.Get(ctx, key).Int64()
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WithError(err).WithField("recipient_id", userID).Warn("unread cache read failed")
		}
	}

	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, count, s.opts.UnreadCacheTTL).Err(); err != nil {
			s.log.WithError(err).WithField("recipient_id", userID).Warn("unread cache write failed")
		}
	}
	return count, nil
}

func (s *service) invalidateUnread(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadKey(userID)).Err(); err != nil {
		s.log.WithError(err).WithField("recipient_id", userID).Warn("unread cache invalidation failed")
	}
}
