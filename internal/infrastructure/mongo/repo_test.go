package mongoinfra

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/go-notify-api/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var created = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func notificationDoc(id, userID string, read bool, extra ...bson.E) bson.D {
	d := bson.D{
		{Key: fieldID, Value: id},
		{Key: fieldUserID, Value: userID},
		{Key: "title", Value: "title " + id},
		{Key: "message", Value: "body"},
		{Key: "type", Value: "info"},
		{Key: fieldIsRead, Value: read},
		{Key: "metadata", Value: bson.D{{Key: "source", Value: "billing"}}},
		{Key: fieldCreatedAt, Value: created},
		{Key: fieldUpdatedAt, Value: created},
		{Key: fieldDeletedAt, Value: nil},
	}
	return append(d, extra...)
}

func ns(mt *mtest.T, coll string) string { return mt.DB.Name() + "." + coll }

// sequentialRepo runs list queries one at a time so they consume mock
// replies in order: find first, then count.
func sequentialRepo(mt *mtest.T) *NotificationRepo {
	r := NewNotificationRepo(mt.DB)
	r.fanout = 1
	return r
}

func TestNotificationRepo_FindByID(t *testing.T) {
	mt := newMock(t)

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch,
			notificationDoc("n1", "u1", false)))

		n, err := NewNotificationRepo(mt.DB).FindByID(context.Background(), "n1", "u1")
		require.NoError(mt, err)
		assert.Equal(mt, "n1", n.NotificationID)
		assert.Equal(mt, "u1", n.UserID)
		assert.Equal(mt, domain.NotificationInfo, n.Type)
		assert.Equal(mt, map[string]any{"source": "billing"}, n.Metadata)
		assert.True(mt, created.Equal(n.CreatedAt))
		assert.Nil(mt, n.ReadAt)
		assert.Nil(mt, n.DeletedAt)
	})

	mt.Run("missing maps to not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch))

		_, err := NewNotificationRepo(mt.DB).FindByID(context.Background(), "n1", "u1")
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})
}

func TestNotificationRepo_FindPaginated(t *testing.T) {
	mt := newMock(t)

	mt.Run("items and total", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch,
				notificationDoc("n3", "u1", false),
				notificationDoc("n2", "u1", true),
			),
			mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(5)}}),
		)

		page, err := sequentialRepo(mt).FindPaginated(context.Background(), "u1", domain.ListOptions{Page: 1, Limit: 2})
		require.NoError(mt, err)
		require.Len(mt, page.Notifications, 2)
		assert.Equal(mt, "n3", page.Notifications[0].NotificationID)
		assert.Equal(mt, "n2", page.Notifications[1].NotificationID)
		assert.True(mt, page.Notifications[1].IsRead)
		assert.Equal(mt, domain.Pagination{Total: 5, Page: 1, Limit: 2, Pages: 3}, page.Pagination)

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.Equal(mt, "find", find.CommandName)
		assert.Equal(mt, int64(2), find.Command.Lookup("limit").AsInt64())
	})

	mt.Run("page far past the end", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(1)}}),
		)

		page, err := sequentialRepo(mt).FindPaginated(context.Background(), "u1",
			domain.ListOptions{Page: math.MaxInt, Limit: 2})
		require.NoError(mt, err)
		assert.Empty(mt, page.Notifications)
		assert.Equal(mt, int64(1), page.Pagination.Total)

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.Equal(mt, int64(math.MaxInt64), find.Command.Lookup("skip").AsInt64())
	})

	mt.Run("empty result", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch),
		)

		page, err := sequentialRepo(mt).FindPaginated(context.Background(), "u1", domain.ListOptions{Page: 4, Limit: 10})
		require.NoError(mt, err)
		assert.Empty(mt, page.Notifications)
		assert.Equal(mt, domain.Pagination{Total: 0, Page: 4, Limit: 10, Pages: 0}, page.Pagination)
	})

	mt.Run("server error", func(mt *mtest.T) {
		fail := mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad query"})
		mt.AddMockResponses(fail, fail)

		_, err := sequentialRepo(mt).FindPaginated(context.Background(), "u1", domain.ListOptions{Page: 1, Limit: 2})
		assert.Error(mt, err)
		assert.NotErrorIs(mt, err, domain.ErrNotFound)
	})
}

func TestNotificationRepo_MarkAsRead(t *testing.T) {
	mt := newMock(t)

	mt.Run("returns updated record", func(mt *mtest.T) {
		readAt := created.Add(time.Minute)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: notificationDoc("n1", "u1", true, bson.E{Key: fieldReadAt, Value: readAt}),
		}))

		n, err := NewNotificationRepo(mt.DB).MarkAsRead(context.Background(), "n1", "u1")
		require.NoError(mt, err)
		assert.True(mt, n.IsRead)
		require.NotNil(mt, n.ReadAt)
		assert.True(mt, readAt.Equal(*n.ReadAt))
	})

	mt.Run("null value maps to not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewNotificationRepo(mt.DB).MarkAsRead(context.Background(), "n1", "other")
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})
}

func TestNotificationRepo_SoftDelete(t *testing.T) {
	mt := newMock(t)

	mt.Run("returns record with prior read state", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: notificationDoc("n1", "u1", false, bson.E{Key: fieldDeletedAt, Value: created.Add(time.Hour)}),
		}))

		n, err := NewNotificationRepo(mt.DB).SoftDelete(context.Background(), "n1", "u1")
		require.NoError(mt, err)
		assert.False(mt, n.IsRead)
		assert.NotNil(mt, n.DeletedAt)
	})

	mt.Run("already deleted maps to not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewNotificationRepo(mt.DB).SoftDelete(context.Background(), "n1", "u1")
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})
}

func TestNotificationRepo_MarkAllAsRead(t *testing.T) {
	mt := newMock(t)

	mt.Run("returns modified count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(3)},
			bson.E{Key: "nModified", Value: int32(3)},
		))

		n, err := NewNotificationRepo(mt.DB).MarkAllAsRead(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})

	mt.Run("nothing unread", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(0)},
			bson.E{Key: "nModified", Value: int32(0)},
		))

		n, err := NewNotificationRepo(mt.DB).MarkAllAsRead(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})
}

func TestNotificationRepo_CountUnread(t *testing.T) {
	mt := newMock(t)

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(4)}}))

		n, err := NewNotificationRepo(mt.DB).CountUnread(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Equal(mt, int64(4), n)
	})

	mt.Run("no documents", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, notificationsCollection), mtest.FirstBatch))

		n, err := NewNotificationRepo(mt.DB).CountUnread(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})
}

func TestNotificationRepo_Create(t *testing.T) {
	mt := newMock(t)

	mt.Run("inserts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		in := &domain.Notification{NotificationID: "n1", UserID: "u1", Title: "t", CreatedAt: created}
		out, err := NewNotificationRepo(mt.DB).Create(context.Background(), in)
		require.NoError(mt, err)
		assert.Equal(mt, *in, *out)
		assert.NotSame(mt, in, out)
	})

	mt.Run("duplicate id maps to conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))

		_, err := NewNotificationRepo(mt.DB).Create(context.Background(), &domain.Notification{NotificationID: "n1"})
		assert.ErrorIs(mt, err, domain.ErrConflict)
	})
}

func TestUserRepo_Create(t *testing.T) {
	mt := newMock(t)

	mt.Run("inserts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := NewUserRepo(mt.DB).Create(context.Background(), &domain.User{UserID: "u1", Email: "ada@example.com"})
		assert.NoError(mt, err)
	})

	mt.Run("duplicate email maps to conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: users index: email_unique",
		}))

		err := NewUserRepo(mt.DB).Create(context.Background(), &domain.User{UserID: "u2", Email: "ada@example.com"})
		assert.ErrorIs(mt, err, domain.ErrConflict)
	})

	mt.Run("other write error is not a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "Document failed validation"}))

		err := NewUserRepo(mt.DB).Create(context.Background(), &domain.User{UserID: "u3"})
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, domain.ErrConflict)
	})
}

func TestUserRepo_Lookups(t *testing.T) {
	mt := newMock(t)
	userDoc := bson.D{
		{Key: fieldID, Value: "u1"},
		{Key: "name", Value: "Ada"},
		{Key: fieldEmail, Value: "ada@example.com"},
		{Key: "passwordHash", Value: "$2a$10$hash"},
		{Key: fieldCreatedAt, Value: created},
		{Key: fieldUpdatedAt, Value: created},
	}

	mt.Run("get by email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch, userDoc))

		u, err := NewUserRepo(mt.DB).GetByEmail(context.Background(), "ada@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", u.UserID)
		assert.Equal(mt, "Ada", u.Name)
		assert.Equal(mt, "$2a$10$hash", u.PasswordHash)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch))

		_, err := NewUserRepo(mt.DB).GetByID(context.Background(), "nobody")
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("exists by email", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
			mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch),
		)
		repo := NewUserRepo(mt.DB)

		ok, err := repo.ExistsByEmail(context.Background(), "ada@example.com")
		require.NoError(mt, err)
		assert.True(mt, ok)

		ok, err = repo.ExistsByEmail(context.Background(), "bob@example.com")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestBootstrap(t *testing.T) {
	mt := newMock(t)

	mt.Run("creates indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		assert.NoError(mt, Bootstrap(context.Background(), mt.DB, zerolog.Nop()))
	})

	mt.Run("users index failure stops early", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 86, Name: "IndexKeySpecsConflict", Message: "index already exists with different options",
		}))

		err := Bootstrap(context.Background(), mt.DB, zerolog.Nop())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "create users indexes")
	})
}
