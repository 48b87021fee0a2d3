package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"playhub/internal/models"
	"playhub/internal/service"
	"playhub/internal/storage"
)

// NewListStationsHandler returns GET /api/stations handler.
func NewListStationsHandler(registry *service.StationRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stations, err := registry.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch stations")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"stations": stations})
	}
}

type stationRequest struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	IsActive   *bool           `json:"is_active"`
}

// NewCreateStationHandler returns POST /api/stations handler.
func NewCreateStationHandler(registry *service.StationRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		station := &models.Station{
			Name:       req.Name,
			Type:       req.Type,
			HourlyRate: req.HourlyRate,
			IsActive:   true,
		}
		if req.IsActive != nil {
			station.IsActive = *req.IsActive
		}

		err := registry.Create(r.Context(), station)
		switch {
		case errors.Is(err, service.ErrInvalidRate), errors.Is(err, service.ErrStationRequired):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, storage.ErrDuplicateStation):
			writeError(w, http.StatusConflict, "station name already exists")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "failed to create station")
			return
		}
		writeJSON(w, http.StatusCreated, station)
	}
}

// NewUpdateStationHandler returns PUT /api/stations/{id} handler.
func NewUpdateStationHandler(registry *service.StationRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		station, err := registry.Get(r.Context(), r.PathValue("id"))
		if errors.Is(err, storage.ErrStationNotFound) {
			writeError(w, http.StatusNotFound, "station not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch station")
			return
		}

		if req.Name != "" {
			station.Name = req.Name
		}
		if req.Type != "" {
			station.Type = req.Type
		}
		if !req.HourlyRate.IsZero() {
			station.HourlyRate = req.HourlyRate
		}
		if req.IsActive != nil {
			station.IsActive = *req.IsActive
		}

		err = registry.Update(r.Context(), station)
		switch {
		case errors.Is(err, service.ErrInvalidRate):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, storage.ErrStationNotFound):
			writeError(w, http.StatusNotFound, "station not found")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "failed to update station")
			return
		}
		writeJSON(w, http.StatusOK, station)
	}
}

// NewDeleteStationHandler returns DELETE /api/stations/{id} handler.
func NewDeleteStationHandler(registry *service.StationRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := registry.Delete(r.Context(), r.PathValue("id"))
		switch {
		case errors.Is(err, storage.ErrStationNotFound):
			writeError(w, http.StatusNotFound, "station not found")
			return
		case errors.Is(err, storage.ErrStationBusy):
			writeError(w, http.StatusConflict, "station has open sessions")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "failed to delete station")
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}
