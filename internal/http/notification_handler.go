package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/house-doorbell/internal/application"
)

type feedService interface {
	ListNotifications(ctx context.Context, principal application.Principal, limit int) ([]application.StoredNotification, error)
	MarkNotificationRead(ctx context.Context, principal application.Principal, notificationID string) error
}

type NotificationHandler struct {
	service   feedService
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service feedService, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{service: service, responder: newResponder(base), logger: base}
}

// List returns the caller's dashboard feed, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	limit := 0
	if value := strings.TrimSpace(r.URL.Query().Get("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		limit = parsed
	}

	principal, _ := PrincipalFromContext(r.Context())

	notes, err := h.service.ListNotifications(r.Context(), principal, limit)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listNotificationsResponse{Notifications: toNotificationDTOs(notes)})
}

// MarkRead flags a single notification of the caller as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	notificationID, ok := NotificationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(notificationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidNotificationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	if err := h.service.MarkNotificationRead(r.Context(), principal, notificationID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type listNotificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

type notificationDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Category  string `json:"category"`
	PartyID   string `json:"party_id,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func toNotificationDTOs(notes []application.StoredNotification) []notificationDTO {
	if len(notes) == 0 {
		return nil
	}
	out := make([]notificationDTO, 0, len(notes))
	for _, note := range notes {
		out = append(out, notificationDTO{
			ID:        note.ID,
			Title:     note.Title,
			Message:   note.Message,
			Category:  string(note.Category),
			PartyID:   note.PartyID,
			Read:      note.Read,
			CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}
