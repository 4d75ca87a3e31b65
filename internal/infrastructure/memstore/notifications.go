package memstore

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/go-notify-api/internal/domain"
)

// NotificationRepo keeps notifications in memory. Records are copied on the
// way in and out so callers never share state with the store.
type NotificationRepo struct {
	mu    sync.Mutex
	items map[string]*domain.Notification
	now   func() time.Time
}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{items: map[string]*domain.Notification{}, now: func() time.Time { return time.Now().UTC() }}
}

func (r *NotificationRepo) Create(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[n.NotificationID]; ok {
		return nil, fmt.Errorf("notification %s exists: %w", n.NotificationID, domain.ErrConflict)
	}
	stored := clone(n)
	r.items[n.NotificationID] = stored
	return clone(stored), nil
}

func (r *NotificationRepo) FindByID(_ context.Context, notificationID, userID string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.live(notificationID, userID)
	if err != nil {
		return nil, err
	}
	return clone(n), nil
}

func (r *NotificationRepo) FindPaginated(_ context.Context, userID string, opts domain.ListOptions) (*domain.NotificationPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Notification
	for _, n := range r.items {
		if n.UserID != userID || n.DeletedAt != nil {
			continue
		}
		if opts.IsRead != nil && n.IsRead != *opts.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].NotificationID > matched[j].NotificationID
	})

	page := make([]domain.Notification, 0, opts.Limit)
	for i := opts.Skip(); i < len(matched) && len(page) < opts.Limit; i++ {
		page = append(page, *clone(matched[i]))
	}
	return &domain.NotificationPage{
		Notifications: page,
		Pagination:    domain.NewPagination(int64(len(matched)), opts.Page, opts.Limit),
	}, nil
}

func (r *NotificationRepo) MarkAsRead(_ context.Context, notificationID, userID string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.live(notificationID, userID)
	if err != nil {
		return nil, err
	}
	now := r.now()
	n.IsRead = true
	n.ReadAt = &now
	n.UpdatedAt = now
	return clone(n), nil
}

func (r *NotificationRepo) MarkAllAsRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var modified int64
	for _, n := range r.items {
		if n.UserID != userID || n.DeletedAt != nil || n.IsRead {
			continue
		}
		n.IsRead = true
		n.ReadAt = &now
		n.UpdatedAt = now
		modified++
	}
	return modified, nil
}

func (r *NotificationRepo) SoftDelete(_ context.Context, notificationID, userID string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.live(notificationID, userID)
	if err != nil {
		return nil, err
	}
	now := r.now()
	n.DeletedAt = &now
	n.UpdatedAt = now
	return clone(n), nil
}

func (r *NotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.items {
		if n.UserID == userID && n.DeletedAt == nil && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// Raw returns a record regardless of owner or soft-delete state.
func (r *NotificationRepo) Raw(notificationID string) (*domain.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[notificationID]
	if !ok {
		return nil, false
	}
	return clone(n), true
}

// live returns the stored pointer if it is owned by userID and not deleted.
// Caller holds r.mu.
func (r *NotificationRepo) live(notificationID, userID string) (*domain.Notification, error) {
	n, ok := r.items[notificationID]
	if !ok || n.UserID != userID || n.DeletedAt != nil {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	return n, nil
}

func clone(n *domain.Notification) *domain.Notification {
	c := *n
	c.Metadata = maps.Clone(n.Metadata)
	if n.ReadAt != nil {
		t := *n.ReadAt
		c.ReadAt = &t
	}
	if n.DeletedAt != nil {
		t := *n.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}
