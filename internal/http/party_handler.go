package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/house-doorbell/internal/application"
)

type partyService interface {
	CreateParty(ctx context.Context, params application.CreatePartyParams) (application.Party, error)
	GetParty(ctx context.Context, principal application.Principal, partyID string) (application.Party, error)
	ListParties(ctx context.Context, principal application.Principal) ([]application.Party, error)
	DeleteParty(ctx context.Context, principal application.Principal, partyID string) error
	UpdatePartyStatus(ctx context.Context, params application.UpdatePartyStatusParams) (application.Party, error)
	UpdateGuestStatus(ctx context.Context, params application.UpdateGuestStatusParams) error
	AddGuest(ctx context.Context, params application.GuestMembershipParams) error
	RemoveGuest(ctx context.Context, params application.GuestMembershipParams) error
	RescheduleParty(ctx context.Context, params application.ReschedulePartyParams) (application.Party, error)
}

type PartyHandler struct {
	service   partyService
	responder responder
	logger    *slog.Logger
}

func NewPartyHandler(service partyService, logger *slog.Logger) *PartyHandler {
	base := defaultLogger(logger)
	return &PartyHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PartyHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PartyHandler", operation, attrs...)
}

func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req partyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	party, err := h.service.CreateParty(r.Context(), application.CreatePartyParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "party creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("party_id", party.ID).InfoContext(r.Context(), "party created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, partyResponse{Party: toPartyDTO(party)})
}

func (h *PartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	partyID, ok := PartyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(partyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPartyID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	party, err := h.service.GetParty(r.Context(), principal, partyID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, partyResponse{Party: toPartyDTO(party)})
}

func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	parties, err := h.service.ListParties(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPartiesResponse{Parties: toPartyDTOs(parties)})
}

func (h *PartyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	partyID, ok := PartyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(partyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPartyID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteParty(r.Context(), principal, partyID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *PartyHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	partyID, ok := PartyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(partyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPartyID)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	party, err := h.service.UpdatePartyStatus(r.Context(), application.UpdatePartyStatusParams{
		Principal: principal,
		PartyID:   partyID,
		Status:    application.PartyStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, partyResponse{Party: toPartyDTO(party)})
}

func (h *PartyHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	partyID, ok := PartyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(partyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPartyID)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Reschedule", "principal_id", principal.UserID, "party_id", partyID)

	party, err := h.service.RescheduleParty(r.Context(), application.ReschedulePartyParams{
		Principal: principal,
		PartyID:   partyID,
		Start:     parseTime(req.Start),
		End:       parseTime(req.End),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "party reschedule failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "party rescheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, partyResponse{Party: toPartyDTO(party)})
}

func (h *PartyHandler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	partyID, ok := PartyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(partyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPartyID)
		return
	}

	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	err := h.service.UpdateGuestStatus(r.Context(), application.UpdateGuestStatusParams{
		Principal:    principal,
		PartyID:      partyID,
		TargetUserID: strings.TrimSpace(req.UserID),
		Status:       application.AttendanceStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *PartyHandler) AddGuest(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	partyID, ok := PartyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(partyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPartyID)
		return
	}

	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	err := h.service.AddGuest(r.Context(), application.GuestMembershipParams{
		Principal:   principal,
		PartyID:     partyID,
		GuestUserID: strings.TrimSpace(req.UserID),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *PartyHandler) RemoveGuest(w http.ResponseWriter, r *http.Request, guestUserID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	partyID, ok := PartyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(partyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPartyID)
		return
	}
	if strings.TrimSpace(guestUserID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	err := h.service.RemoveGuest(r.Context(), application.GuestMembershipParams{
		Principal:   principal,
		PartyID:     partyID,
		GuestUserID: guestUserID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type partyRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Rooms       []string `json:"rooms"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	GuestIDs    []string `json:"guest_ids"`
}

func (r partyRequest) toInput() application.PartyInput {
	rooms := make([]application.Room, 0, len(r.Rooms))
	for _, room := range r.Rooms {
		rooms = append(rooms, application.Room(strings.ToUpper(strings.TrimSpace(room))))
	}
	return application.PartyInput{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Category:    application.PartyCategory(strings.ToUpper(strings.TrimSpace(r.Category))),
		Rooms:       rooms,
		Start:       parseTime(r.Start),
		End:         parseTime(r.End),
		GuestIDs:    append([]string(nil), r.GuestIDs...),
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

type scheduleRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type attendanceRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type guestRequest struct {
	UserID string `json:"user_id"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

type partyResponse struct {
	Party partyDTO `json:"party"`
}

type listPartiesResponse struct {
	Parties []partyDTO `json:"parties"`
}

type partyDTO struct {
	ID          string     `json:"id"`
	HostID      string     `json:"host_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	Rooms       []string   `json:"rooms"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Guests      []guestDTO `json:"guests"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

type guestDTO struct {
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
}

func toPartyDTO(party application.Party) partyDTO {
	rooms := make([]string, 0, len(party.Rooms))
	for _, room := range party.Rooms {
		rooms = append(rooms, string(room))
	}
	guests := make([]guestDTO, 0, len(party.Guests))
	for _, guest := range party.Guests {
		guests = append(guests, guestDTO{
			UserID:    guest.UserID,
			Status:    string(guest.Status),
			UpdatedAt: guest.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return partyDTO{
		ID:          party.ID,
		HostID:      party.HostID,
		Name:        party.Name,
		Description: party.Description,
		Category:    string(party.Category),
		Status:      string(party.Status),
		Rooms:       rooms,
		Start:       party.Start.UTC().Format(time.RFC3339Nano),
		End:         party.End.UTC().Format(time.RFC3339Nano),
		Guests:      guests,
		CreatedAt:   party.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   party.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toPartyDTOs(parties []application.Party) []partyDTO {
	if len(parties) == 0 {
		return nil
	}
	out := make([]partyDTO, 0, len(parties))
	for _, party := range parties {
		out = append(out, toPartyDTO(party))
	}
	return out
}
