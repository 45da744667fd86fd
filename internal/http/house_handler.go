package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/house-doorbell/internal/application"
)

type houseService interface {
	GetHouseState(ctx context.Context) (application.HouseState, error)
	SetMaintenance(ctx context.Context, principal application.Principal, active bool) (application.HouseState, error)
	SetRegistrationBlocked(ctx context.Context, principal application.Principal, blocked bool) (application.HouseState, error)
	ListLogs(ctx context.Context, principal application.Principal, limit int) ([]application.LogEntry, error)
}

type HouseHandler struct {
	service   houseService
	responder responder
	logger    *slog.Logger
}

func NewHouseHandler(service houseService, logger *slog.Logger) *HouseHandler {
	base := defaultLogger(logger)
	return &HouseHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *HouseHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "HouseHandler", operation, attrs...)
}

func (h *HouseHandler) GetState(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	state, err := h.service.GetHouseState(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, houseStateResponse{State: toHouseStateDTO(state)})
}

func (h *HouseHandler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "SetMaintenance", "principal_id", principal.UserID, "active", req.Active)

	state, err := h.service.SetMaintenance(r.Context(), principal, req.Active)
	if err != nil {
		logger.ErrorContext(r.Context(), "maintenance change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "maintenance state changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, houseStateResponse{State: toHouseStateDTO(state)})
}

func (h *HouseHandler) SetRegistration(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	state, err := h.service.SetRegistrationBlocked(r.Context(), principal, req.Blocked)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, houseStateResponse{State: toHouseStateDTO(state)})
}

func (h *HouseHandler) Logs(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.service.ListLogs(r.Context(), principal, limit)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listLogsResponse{Logs: toLogDTOs(entries)})
}

type maintenanceRequest struct {
	Active bool `json:"active"`
}

type registrationRequest struct {
	Blocked bool `json:"blocked"`
}

type houseStateResponse struct {
	State houseStateDTO `json:"state"`
}

type houseStateDTO struct {
	MaintenanceActive   bool   `json:"maintenance_active"`
	RegistrationBlocked bool   `json:"registration_blocked"`
	UpdatedAt           string `json:"updated_at"`
}

func toHouseStateDTO(state application.HouseState) houseStateDTO {
	return houseStateDTO{
		MaintenanceActive:   state.MaintenanceActive,
		RegistrationBlocked: state.RegistrationBlocked,
		UpdatedAt:           state.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type listLogsResponse struct {
	Logs []logDTO `json:"logs"`
}

type logDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

func toLogDTOs(entries []application.LogEntry) []logDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]logDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, logDTO{
			ID:        entry.ID,
			UserID:    entry.UserID,
			Message:   entry.Message,
			Type:      string(entry.Type),
			CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}
