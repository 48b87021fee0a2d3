package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"playhub/internal/auth"
)

// AlertSweeper runs one alert evaluation pass on demand.
type AlertSweeper interface {
	Sweep(ctx context.Context)
}

// DayExporter delivers the daily summary for a given day on demand.
type DayExporter interface {
	ExportDay(ctx context.Context, day time.Time) error
}

// AdminHandler holds the staff-facing endpoints.
type AdminHandler struct {
	tokens       *auth.TokenService
	hasher       auth.Hasher
	passwordHash string
	sweeper      AlertSweeper
	exporter     DayExporter
	logger       *zap.Logger
}

// NewAdminHandler builds the handler set.
func NewAdminHandler(
	tokens *auth.TokenService,
	hasher auth.Hasher,
	passwordHash string,
	sweeper AlertSweeper,
	exporter DayExporter,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		tokens:       tokens,
		hasher:       hasher,
		passwordHash: passwordHash,
		sweeper:      sweeper,
		exporter:     exporter,
		logger:       logger,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// HandleLogin handles POST /admin/login.
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if h.passwordHash == "" {
		writeError(w, http.StatusForbidden, "admin access not configured")
		return
	}
	if err := h.hasher.Compare(h.passwordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.GenerateToken(auth.RoleAdmin)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// HandleRunAlertCheck handles POST /admin/alerts/check.
func (h *AdminHandler) HandleRunAlertCheck(w http.ResponseWriter, r *http.Request) {
	h.sweeper.Sweep(r.Context())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

// HandleRunExport handles POST /admin/export. Exports yesterday's summary.
func (h *AdminHandler) HandleRunExport(w http.ResponseWriter, r *http.Request) {
	if err := h.exporter.ExportDay(r.Context(), time.Now().AddDate(0, 0, -1)); err != nil {
		h.logger.Error("manual export failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "export failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}
