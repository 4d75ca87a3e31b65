package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Total: 0, Page: 1, Limit: 20, Pages: 0}, NewPagination(0, 1, 20))
	assert.Equal(t, int64(1), NewPagination(20, 1, 20).Pages)
	assert.Equal(t, int64(2), NewPagination(21, 1, 20).Pages)
	assert.Equal(t, int64(3), NewPagination(5, 1, 2).Pages)
}

func TestListOptionsSkip(t *testing.T) {
	assert.Equal(t, 0, ListOptions{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, 20, ListOptions{Page: 3, Limit: 10}.Skip())
	assert.Equal(t, math.MaxInt, ListOptions{Page: math.MaxInt, Limit: 2}.Skip())
	assert.Equal(t, math.MaxInt, ListOptions{Page: math.MaxInt/4 + 2, Limit: 4}.Skip())
}

func TestCreateNotificationRequestNormalize(t *testing.T) {
	r := CreateNotificationRequest{Title: "  hi ", Message: "\tbody\n"}
	r.Normalize()
	assert.Equal(t, "hi", r.Title)
	assert.Equal(t, "body", r.Message)
	assert.Equal(t, NotificationInfo, r.Type)
	assert.NotNil(t, r.Metadata)

	r = CreateNotificationRequest{Type: NotificationError, Metadata: map[string]any{"k": 1}}
	r.Normalize()
	assert.Equal(t, NotificationError, r.Type)
	assert.Equal(t, map[string]any{"k": 1}, r.Metadata)
}

func TestRegisterRequestNormalize(t *testing.T) {
	r := RegisterRequest{Name: " Ada ", Email: " Ada@Example.COM "}
	r.Normalize()
	assert.Equal(t, "Ada", r.Name)
	assert.Equal(t, "ada@example.com", r.Email)
}

func TestValidationError(t *testing.T) {
	var verr ValidationError
	verr.Message = "Validation failed"
	assert.NoError(t, verr.OrNil())

	verr.Add("title", "title is required")
	verr.Add("message", "message is required")
	err := verr.OrNil()
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.Equal(t, "Validation failed: title: title is required; message: message is required", err.Error())
}
