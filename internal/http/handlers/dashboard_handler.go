package handlers

import (
	"net/http"

	"playhub/internal/service"
)

// NewDashboardMetricsHandler returns GET /api/dashboard/metrics handler.
func NewDashboardMetricsHandler(dashboard *service.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics, err := dashboard.Metrics(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch dashboard metrics")
			return
		}
		writeJSON(w, http.StatusOK, metrics)
	}
}

// NewDashboardRevenueHandler returns GET /api/dashboard/revenue handler.
func NewDashboardRevenueHandler(dashboard *service.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		series, err := dashboard.Revenue(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch revenue data")
			return
		}
		writeJSON(w, http.StatusOK, series)
	}
}

// NewDashboardUtilizationHandler returns GET /api/dashboard/utilization handler.
func NewDashboardUtilizationHandler(dashboard *service.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utilization, err := dashboard.Utilization(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch station utilization")
			return
		}
		writeJSON(w, http.StatusOK, utilization)
	}
}
