package domain

import (
	"math"
	"strings"
	"time"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a single inbox entry owned by one user.
// ReadAt is non-nil exactly when IsRead is true; DeletedAt marks a soft delete.
type Notification struct {
	NotificationID string           `json:"id" bson:"_id" dynamodbav:"notification_id"`
	UserID         string           `json:"userId" bson:"userId" dynamodbav:"user_id"`
	Title          string           `json:"title" bson:"title" dynamodbav:"title"`
	Message        string           `json:"message" bson:"message" dynamodbav:"message"`
	Type           NotificationType `json:"type" bson:"type" dynamodbav:"type"`
	IsRead         bool             `json:"isRead" bson:"isRead" dynamodbav:"is_read"`
	ReadAt         *time.Time       `json:"readAt" bson:"readAt" dynamodbav:"read_at,omitempty"`
	Metadata       map[string]any   `json:"metadata" bson:"metadata" dynamodbav:"metadata"`
	CreatedAt      time.Time        `json:"createdAt" bson:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" bson:"updatedAt" dynamodbav:"updated_at"`
	DeletedAt      *time.Time       `json:"deletedAt,omitempty" bson:"deletedAt" dynamodbav:"deleted_at,omitempty"`
}

// CreateNotificationRequest is the HTTP payload for POST /notifications.
// Type and Metadata are defaulted at the validation boundary.
type CreateNotificationRequest struct {
	Title    string           `json:"title" validate:"required,max=200"`
	Message  string           `json:"message" validate:"required,max=1000"`
	Type     NotificationType `json:"type" validate:"omitempty,oneof=info warning success error"`
	Metadata map[string]any   `json:"metadata"`
}

// Normalize trims text fields and fills the type and metadata defaults.
func (r *CreateNotificationRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)
	if r.Type == "" {
		r.Type = NotificationInfo
	}
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
}

// ListOptions is fully populated before it reaches the service layer.
type ListOptions struct {
	Page   int
	Limit  int
	IsRead *bool
}

// Skip is the number of records before the page. It saturates at
// math.MaxInt, so a page far past the end selects nothing.
func (o ListOptions) Skip() int {
	if o.Page <= 1 || o.Limit <= 0 {
		return 0
	}
	if o.Page-1 > math.MaxInt/o.Limit {
		return math.MaxInt
	}
	return (o.Page - 1) * o.Limit
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

// NewPagination computes pages = ceil(total/limit).
func NewPagination(total int64, page, limit int) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

type NotificationPage struct {
	Notifications []Notification
	Pagination    Pagination
}

type UnreadCount struct {
	Count  int64 `json:"count"`
	Cached bool  `json:"cached"`
}

type MarkAllResult struct {
	ModifiedCount int64 `json:"modifiedCount"`
}
