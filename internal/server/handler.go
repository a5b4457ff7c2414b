package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ssbor/jobmap/internal/entities"
	"github.com/ssbor/jobmap/internal/feed"
	"github.com/ssbor/jobmap/internal/metrics"
	"github.com/ssbor/jobmap/internal/services"
)

// Handler exposes the offer filter over HTTP.
//
// Routes:
//
//	GET /offers?tag=&region=&min_wage=&origin=&radius_km=&q=  → filtered offers
//	GET /regions                                              → region codebook
//	GET /health                                               → liveness probe
type Handler struct {
	filters map[string]*services.DistanceFilter
}

func NewHandler(filters map[string]*services.DistanceFilter) *Handler {
	return &Handler{filters: filters}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/offers", h.handleOffers)
	mux.HandleFunc("/regions", h.handleRegions)
	mux.HandleFunc("/health", handleHealth)
}

type offersResponse struct {
	Tag            string               `json:"tag"`
	State          services.FilterState `json:"state"`
	Status         string               `json:"status,omitempty"`
	Count          int                  `json:"count"`
	AvgMonthlyWage *float64             `json:"avg_monthly_wage,omitempty"`
	TopEmployers   []feed.Employer      `json:"top_employers,omitempty"`
	Offers         []services.OfferRow  `json:"offers"`
}

func (h *Handler) handleOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	tag := query.Get("tag")
	filter, ok := h.filters[tag]
	if !ok {
		jsonError(w, "unknown tag", http.StatusNotFound)
		return
	}

	criteria := services.Criteria{
		Region:     query.Get("region"),
		OriginText: query.Get("origin"),
		Query:      query.Get("q"),
		MinWage:    parseFloat(query.Get("min_wage")),
		RadiusKm:   parseFloat(query.Get("radius_km")),
	}

	start := time.Now()
	result := filter.Apply(r.Context(), criteria)
	metrics.FilterRequestDuration.WithLabelValues(tag).Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, offersResponse{
		Tag:            tag,
		State:          result.State,
		Status:         result.Status,
		Count:          result.Total,
		AvgMonthlyWage: result.AvgMonthlyWage,
		TopEmployers:   result.TopEmployers,
		Offers:         result.Offers,
	})
}

func (h *Handler) handleRegions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, entities.Regions)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}
