package notification

import (
	"context"
	"strconv"
	"time"

	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/pkg/id"
	"github.com/rs/zerolog"
)

// UnreadCountTTL bounds how stale a cached unread counter can get.
const UnreadCountTTL = 300 * time.Second

func unreadCountKey(userID string) string { return "unread_count:" + userID }

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateNotificationRequest) (*domain.Notification, error)
	List(ctx context.Context, userID string, opts domain.ListOptions) (*domain.NotificationPage, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (*domain.MarkAllResult, error)
	Delete(ctx context.Context, notificationID, userID string) error
	UnreadCount(ctx context.Context, userID string) (*domain.UnreadCount, error)
}

// Store is implemented by every notification backend. Implementations
// exclude soft-deleted records from every method.
type Store interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	FindPaginated(ctx context.Context, userID string, opts domain.ListOptions) (*domain.NotificationPage, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	SoftDelete(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// Cache holds the unread counters. A nil Cache means caching is off.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Publisher receives created notifications. A nil Publisher disables events.
type Publisher interface {
	NotificationCreated(ctx context.Context, n *domain.Notification) error
}

type service struct {
	store  Store
	cache  Cache
	events Publisher
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(store Store, cache Cache, events Publisher, log zerolog.Logger) Service {
	return &service{
		store:  store,
		cache:  cache,
		events: events,
		log:    log.With().Str("component", "notifications").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores req as given; the HTTP layer has already normalized and
// validated it.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	now := s.now()
	n, err := s.store.Create(ctx, &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		Title:          req.Title,
		Message:        req.Message,
		Type:           req.Type,
		Metadata:       req.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	if s.events != nil {
		if err := s.events.NotificationCreated(ctx, n); err != nil {
			s.log.Warn().Err(err).Str("notification_id", n.NotificationID).Msg("publish event failed")
		}
	}
	return n, nil
}

func (s *service) List(ctx context.Context, userID string, opts domain.ListOptions) (*domain.NotificationPage, error) {
	return s.store.FindPaginated(ctx, userID, opts)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.store.MarkAsRead(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return n, nil
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) (*domain.MarkAllResult, error) {
	modified, err := s.store.MarkAllAsRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return &domain.MarkAllResult{ModifiedCount: modified}, nil
}

// Delete soft-deletes the record. Deleting an already-read record leaves the
// unread counter untouched, so the cache is kept.
func (s *service) Delete(ctx context.Context, notificationID, userID string) error {
	n, err := s.store.SoftDelete(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !n.IsRead {
		s.invalidate(ctx, userID)
	}
	return nil
}

// UnreadCount serves from the cache when it holds a parseable value and falls
// back to the store on any miss or cache error.
func (s *service) UnreadCount(ctx context.Context, userID string) (*domain.UnreadCount, error) {
	key := unreadCountKey(userID)
	if s.cache != nil {
		v, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		case ok:
			if n, perr := strconv.ParseInt(v, 10, 64); perr == nil && n >= 0 {
				return &domain.UnreadCount{Count: n, Cached: true}, nil
			}
			s.log.Warn().Str("key", key).Str("value", v).Msg("discarding unparseable cached count")
		}
	}

	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.FormatInt(n, 10), UnreadCountTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return &domain.UnreadCount{Count: n, Cached: false}, nil
}

func (s *service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	key := unreadCountKey(userID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}
