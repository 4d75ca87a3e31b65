package mongoinfra

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Document field names. Every notification read path goes through
// liveFilter so soft-deleted records never leak into results.
const (
	fieldID        = "_id"
	fieldUserID    = "userId"
	fieldEmail     = "email"
	fieldIsRead    = "isRead"
	fieldReadAt    = "readAt"
	fieldDeletedAt = "deletedAt"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// liveFilter matches non-deleted notifications owned by userID.
// {deletedAt: null} matches both an explicit null and a missing field.
func liveFilter(userID string) bson.D {
	return bson.D{
		{Key: fieldUserID, Value: userID},
		{Key: fieldDeletedAt, Value: nil},
	}
}

func byIDFilter(notificationID, userID string) bson.D {
	return append(bson.D{{Key: fieldID, Value: notificationID}}, liveFilter(userID)...)
}

func listFilter(userID string, isRead *bool) bson.D {
	f := liveFilter(userID)
	if isRead != nil {
		f = append(f, bson.E{Key: fieldIsRead, Value: *isRead})
	}
	return f
}

func unreadFilter(userID string) bson.D {
	return append(liveFilter(userID), bson.E{Key: fieldIsRead, Value: false})
}

// newestFirst orders by creation time, then by id; ids are monotonic ULIDs so
// equal timestamps keep insertion order.
func newestFirst() bson.D {
	return bson.D{{Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: -1}}
}

func markReadUpdate(now time.Time) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldIsRead, Value: true},
		{Key: fieldReadAt, Value: now},
		{Key: fieldUpdatedAt, Value: now},
	}}}
}

func softDeleteUpdate(now time.Time) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldDeletedAt, Value: now},
		{Key: fieldUpdatedAt, Value: now},
	}}}
}
