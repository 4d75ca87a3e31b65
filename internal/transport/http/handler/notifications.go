package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/pkg/id"
	"github.com/go-notify-api/internal/pkg/validate"
	"github.com/go-notify-api/internal/transport/http/middleware"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc   notification.Service
	pages config.Pagination
}

func NewNotificationHandler(svc notification.Service, pages config.Pagination) *NotificationHandler {
	return &NotificationHandler{svc: svc, pages: pages}
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, found := middleware.UserFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateNotificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	req.Normalize()
	if err := validate.Struct(req, validationFailed); err != nil {
		httpError(w, r, err)
		return
	}
	n, err := h.svc.Create(r.Context(), u.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "Notification created successfully", n)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	u, found := middleware.UserFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	opts, err := h.listOptions(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	page, err := h.svc.List(r.Context(), u.UserID, opts)
	if err != nil {
		httpError(w, r, err)
		return
	}
	items := page.Notifications
	if items == nil {
		items = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: items, Pagination: &page.Pagination})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	u, found := middleware.UserFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	c, err := h.svc.UnreadCount(r.Context(), u.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", c)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	u, found := middleware.UserFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	nid, err := notificationID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	n, err := h.svc.MarkAsRead(r.Context(), nid, u.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Notification marked as read", n)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	u, found := middleware.UserFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := h.svc.MarkAllAsRead(r.Context(), u.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	ok(w, http.StatusOK, fmt.Sprintf("%d notifications marked as read", res.ModifiedCount), res)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, found := middleware.UserFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	nid, err := notificationID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), nid, u.UserID); err != nil {
		httpError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Notification deleted successfully", nil)
}

// listOptions parses page, limit and isRead, reporting every bad parameter at once.
func (h *NotificationHandler) listOptions(r *http.Request) (domain.ListOptions, error) {
	q := r.URL.Query()
	verr := &domain.ValidationError{Message: validationFailed}
	opts := domain.ListOptions{Page: 1, Limit: h.pages.DefaultLimit}

	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			verr.Add("page", "page must be a number")
		} else {
			validate.Var(verr, "page", n, "min=1")
			opts.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			verr.Add("limit", "limit must be a number")
		} else {
			validate.Var(verr, "limit", n, fmt.Sprintf("min=1,max=%d", h.pages.MaxLimit))
			opts.Limit = n
		}
	}
	switch v := q.Get("isRead"); v {
	case "":
	case "true", "false":
		b := v == "true"
		opts.IsRead = &b
	default:
		verr.Add("isRead", "isRead must be a boolean")
	}
	return opts, verr.OrNil()
}

func notificationID(r *http.Request) (string, error) {
	nid := chi.URLParam(r, "id")
	if !id.Valid(nid) {
		verr := &domain.ValidationError{Message: validationFailed}
		verr.Add("id", "id must be a valid identifier")
		return "", verr
	}
	return nid, nil
}
