package handlers

import (
	"net/http"

	"github.com/kdiawara/sika/httpx"
	"github.com/kdiawara/sika/internal/services"
)

type StatsHandler struct {
	Svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{Svc: svc}
}

// Dashboard: GET /stats/dashboard
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Dashboard()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "dashboard stats", stats)
}

// TimeSeries: GET /stats/timeseries
func (h *StatsHandler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.Svc.TimeSeriesData()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "time series", series)
}
