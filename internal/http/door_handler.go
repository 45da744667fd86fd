package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/example/house-doorbell/internal/application"
)

type doorService interface {
	OpenDoor(ctx context.Context, params application.OpenDoorParams) (application.DoorResult, error)
}

type DoorHandler struct {
	service   doorService
	responder responder
	logger    *slog.Logger
}

func NewDoorHandler(service doorService, logger *slog.Logger) *DoorHandler {
	base := defaultLogger(logger)
	return &DoorHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DoorHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DoorHandler", operation, attrs...)
}

// Open triggers the unlock sequence. The body is optional; coordinates, when present,
// feed the inner-door decision.
func (h *DoorHandler) Open(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req openDoorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Open", "principal_id", principal.UserID)

	result, err := h.service.OpenDoor(r.Context(), application.OpenDoorParams{
		Principal: principal,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "door open failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	// A refused or unresponsive lock is a gateway problem, not a client one.
	status := http.StatusOK
	if result.Outer != application.OutcomeSuccess {
		status = http.StatusServiceUnavailable
	}

	logger.InfoContext(r.Context(), "door open handled", "outer", result.Outer, "inner_attempted", result.InnerAttempted)
	h.responder.writeJSON(r.Context(), w, status, doorResponse{Result: toDoorDTO(result)})
}

type openDoorRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type doorResponse struct {
	Result doorResultDTO `json:"result"`
}

type doorResultDTO struct {
	Outer          string `json:"outer"`
	Inner          string `json:"inner,omitempty"`
	InnerAttempted bool   `json:"inner_attempted"`
}

func toDoorDTO(result application.DoorResult) doorResultDTO {
	dto := doorResultDTO{
		Outer:          string(result.Outer),
		InnerAttempted: result.InnerAttempted,
	}
	if result.InnerAttempted {
		dto.Inner = string(result.Inner)
	}
	return dto
}
