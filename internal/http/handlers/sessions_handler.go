package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"playhub/internal/service"
	"playhub/internal/storage"
)

// SessionsHandler holds the check-in/check-out endpoints.
type SessionsHandler struct {
	ledger *service.SessionLedger
	logger *zap.Logger
}

// NewSessionsHandler builds the handler set.
func NewSessionsHandler(ledger *service.SessionLedger, logger *zap.Logger) *SessionsHandler {
	return &SessionsHandler{ledger: ledger, logger: logger}
}

type checkInRequest struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	StationID    string `json:"station_id"`
}

// HandleCheckIn handles POST /api/sessions.
func (h *SessionsHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	session, err := h.ledger.CheckIn(r.Context(), service.CheckInInput{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Email:        req.Email,
		StationID:    req.StationID,
	})
	switch {
	case errors.Is(err, service.ErrStationRequired),
		errors.Is(err, service.ErrCustomerNameRequired),
		errors.Is(err, service.ErrStationInactive):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, storage.ErrStationNotFound), errors.Is(err, storage.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, storage.ErrStationOccupied):
		writeError(w, http.StatusConflict, "station already has an open session")
		return
	case err != nil:
		h.logger.Error("check-in failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// HandleEnd handles PATCH /api/sessions/{id}/end.
func (h *SessionsHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	session, err := h.ledger.CloseSession(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("check-out failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to end session")
		return
	}
	if session == nil {
		// Already closed; nothing changed.
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// HandleActive handles GET /api/sessions/active.
func (h *SessionsHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.ledger.ActiveSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch active sessions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}
