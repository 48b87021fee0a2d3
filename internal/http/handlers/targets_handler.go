package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"playhub/internal/models"
	"playhub/internal/service"
)

// NewListTargetsHandler returns GET /api/targets handler.
func NewListTargetsHandler(targets *service.TargetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := targets.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch revenue targets")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"targets": all})
	}
}

type createTargetRequest struct {
	Type         string          `json:"type"`
	Period       string          `json:"period"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

// NewCreateTargetHandler returns POST /api/targets handler.
func NewCreateTargetHandler(targets *service.TargetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTargetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		target := &models.RevenueTarget{
			Type:         req.Type,
			Period:       req.Period,
			TargetAmount: req.TargetAmount,
		}
		err := targets.Create(r.Context(), target)
		switch {
		case errors.Is(err, service.ErrInvalidTargetType), errors.Is(err, service.ErrInvalidTargetAmount):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusBadRequest, "invalid target data")
			return
		}
		writeJSON(w, http.StatusCreated, target)
	}
}
