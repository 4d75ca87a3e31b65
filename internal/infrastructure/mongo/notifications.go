package mongoinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-notify-api/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// NotificationRepo provides typed MongoDB operations for the notifications collection.
type NotificationRepo struct {
	coll   *mongo.Collection
	now    func() time.Time
	fanout int // concurrent queries per list call
}

func NewNotificationRepo(db *mongo.Database) *NotificationRepo {
	return &NotificationRepo{
		coll:   db.Collection(notificationsCollection),
		now:    func() time.Time { return time.Now().UTC() },
		fanout: 2,
	}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("notification %s exists: %w", n.NotificationID, domain.ErrConflict)
		}
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	out := *n
	return &out, nil
}

func (r *NotificationRepo) FindByID(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.coll.FindOne(ctx, byIDFilter(notificationID, userID)).Decode(&n)
	return decoded(&n, err)
}

// FindPaginated runs the page query and the total count concurrently.
func (r *NotificationRepo) FindPaginated(ctx context.Context, userID string, opts domain.ListOptions) (*domain.NotificationPage, error) {
	filter := listFilter(userID, opts.IsRead)
	items := make([]domain.Notification, 0, opts.Limit)
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fanout)
	g.Go(func() error {
		cur, err := r.coll.Find(gctx, filter, options.Find().
			SetSort(newestFirst()).
			SetSkip(int64(opts.Skip())).
			SetLimit(int64(opts.Limit)))
		if err != nil {
			return fmt.Errorf("find notifications: %w", err)
		}
		if err := cur.All(gctx, &items); err != nil {
			return fmt.Errorf("decode notifications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		n, err := r.coll.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count notifications: %w", err)
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &domain.NotificationPage{
		Notifications: items,
		Pagination:    domain.NewPagination(total, opts.Page, opts.Limit),
	}, nil
}

// MarkAsRead is a single find-and-update, so a concurrent duplicate call on
// a record deleted in between legitimately gets ErrNotFound.
func (r *NotificationRepo) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.coll.FindOneAndUpdate(ctx,
		byIDFilter(notificationID, userID),
		markReadUpdate(r.now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	return decoded(&n, err)
}

func (r *NotificationRepo) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, unreadFilter(userID), markReadUpdate(r.now()))
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepo) SoftDelete(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.coll.FindOneAndUpdate(ctx,
		byIDFilter(notificationID, userID),
		softDeleteUpdate(r.now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	return decoded(&n, err)
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, unreadFilter(userID))
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func decoded(n *domain.Notification, err error) (*domain.Notification, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("notification query: %w", err)
	}
	return n, nil
}
