package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"playhub/internal/storage"
)

// NewListAlertsHandler returns GET /api/alerts handler (unread, newest first).
func NewListAlertsHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alerts, err := store.ListUnreadAlerts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch alerts")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
	}
}

// NewMarkAlertReadHandler returns PATCH /api/alerts/{id}/read handler.
func NewMarkAlertReadHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alert, err := store.MarkAlertRead(r.Context(), r.PathValue("id"))
		if errors.Is(err, storage.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to mark alert as read")
			return
		}
		writeJSON(w, http.StatusOK, alert)
	}
}

// NewListActivitiesHandler returns GET /api/activities handler.
func NewListActivitiesHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		activities, err := store.RecentActivities(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch activities")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"activities": activities})
	}
}
