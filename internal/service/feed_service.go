package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/repository"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

const unreadCountTTL = 5 * time.Minute

// UnreadInvalidator drops a recipient's cached unread count after a
// notification write. Satisfied by FeedService; writers hold this narrow
// view so the badge never lags behind a new notification.
type UnreadInvalidator interface {
	Invalidate(ctx context.Context, recipientID string)
}

// FeedService serves the per-recipient notification feed. Unread counts
// are cached in Redis and invalidated on every write.
type FeedService struct {
	notifications repository.NotificationRepository
	cache         *redis.Client
	logger        *zap.Logger
}

// NewFeedService constructs the service. The cache may be nil; counting
// then always hits the database.
func NewFeedService(notifications repository.NotificationRepository, cache *redis.Client, logger *zap.Logger) *FeedService {
	return &FeedService{notifications: notifications, cache: cache, logger: logger}
}

// List returns the recipient's feed, newest first.
func (s *FeedService) List(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	items, err := s.notifications.ListByRecipient(ctx, recipientID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// MarkRead flips the read flag; only the owning recipient may.
func (s *FeedService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	if err := s.notifications.MarkRead(ctx, notificationID, recipientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	s.invalidate(ctx, recipientID)
	return nil
}

// CountUnread returns the unread badge count, served from cache when warm.
func (s *FeedService) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	key := unreadKey(recipientID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.notifications.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, count, unreadCountTTL).Err(); err != nil {
			s.logger.Debug("unread count cache set failed", zap.Error(err))
		}
	}
	return count, nil
}

// Invalidate drops the cached unread count after a notification write.
func (s *FeedService) Invalidate(ctx context.Context, recipientID string) {
	s.invalidate(ctx, recipientID)
}

func (s *FeedService) invalidate(ctx context.Context, recipientID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadKey(recipientID)).Err(); err != nil {
		s.logger.Debug("unread count cache invalidation failed", zap.Error(err))
	}
}

func unreadKey(recipientID string) string {
	return fmt.Sprintf("notifications:unread:%s", recipientID)
}
