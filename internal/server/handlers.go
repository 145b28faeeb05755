package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	applog "github.com/Randysweatpants/GambleBotAPI/internal/logger"
	"github.com/Randysweatpants/GambleBotAPI/internal/metrics"
	"github.com/Randysweatpants/GambleBotAPI/internal/models"
	"github.com/Randysweatpants/GambleBotAPI/internal/oddsapi"
	"github.com/Randysweatpants/GambleBotAPI/internal/repository"
	"github.com/Randysweatpants/GambleBotAPI/internal/service"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	scan     *service.ScanService
	provider oddsapi.Provider
	results  repository.ResultRepository
	logger   *logrus.Logger
	audit    *applog.AuditLogger
}

// NewHandler creates a new handler with dependencies. The results repository
// may be nil when the service runs without a database.
func NewHandler(scan *service.ScanService, provider oddsapi.Provider, results repository.ResultRepository, logger *logrus.Logger, audit *applog.AuditLogger) *Handler {
	return &Handler{
		scan:     scan,
		provider: provider,
		results:  results,
		logger:   logger,
		audit:    audit,
	}
}

// handleRoot returns basic service info
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"health": "/healthz",
	})
}

// handleHealthz is the liveness endpoint
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// handleOdds returns upcoming games with bookmaker prices
// Query params: sport (required), window_minutes, books
func (h *Handler) handleOdds(w http.ResponseWriter, r *http.Request) {
	sport := r.URL.Query().Get("sport")
	if sport == "" {
		respondError(w, http.StatusBadRequest, "sport is required", nil)
		return
	}

	windowMinutes := parseIntParam(r, "window_minutes", 240)

	events, err := h.provider.FetchOdds(r.Context(), sport)
	if err != nil {
		respondUpstreamError(w, sport, err)
		return
	}

	events = service.FilterUpcoming(events, time.Now(), time.Duration(windowMinutes)*time.Minute)

	if books := r.URL.Query().Get("books"); books != "" {
		events = service.FilterBooks(events, strings.Split(books, ","))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sport":          sport,
		"window_minutes": windowMinutes,
		"events":         events,
		"count":          len(events),
	})
}

// evParlaysRequest is the body for POST /ev_parlays. MinEV distinguishes
// "omitted" from an explicit 0.0 threshold.
type evParlaysRequest struct {
	Sport         string   `json:"sport"`
	Books         []string `json:"books"`
	MinEV         *float64 `json:"min_ev"`
	MaxLegs       int      `json:"max_legs"`
	TopN          int      `json:"top_n"`
	WindowMinutes int      `json:"window_minutes"`
	SameGameOnly  bool     `json:"same_game_only"`
	Diversify     bool     `json:"diversify"`
}

// handleEVParlays runs a scan and returns ranked, formatted parlays
func (h *Handler) handleEVParlays(w http.ResponseWriter, r *http.Request) {
	var req evParlaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Sport == "" {
		respondError(w, http.StatusBadRequest, "sport is required", nil)
		return
	}

	result, err := h.scan.Scan(r.Context(), service.ScanRequest{
		Sport:         req.Sport,
		Books:         req.Books,
		MinEV:         req.MinEV,
		MaxLegs:       req.MaxLegs,
		TopN:          req.TopN,
		WindowMinutes: req.WindowMinutes,
		SameGameOnly:  req.SameGameOnly,
		Diversify:     req.Diversify,
	})
	if err != nil {
		respondUpstreamError(w, req.Sport, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// logResultRequest is the body for POST /log_result
type logResultRequest struct {
	Sport          string       `json:"sport"`
	Legs           []models.Leg `json:"legs"`
	DecimalPrice   float64      `json:"decimal_price"`
	WinProbability float64      `json:"win_probability"`
	ExpectedValue  float64      `json:"expected_value"`
	Stake          float64      `json:"stake"`
	Payout         float64      `json:"payout"`
	Result         string       `json:"result"`
}

// handleLogResult persists a played parlay for future learning
func (h *Handler) handleLogResult(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		respondError(w, http.StatusServiceUnavailable, "result logging requires a database", nil)
		return
	}

	var req logResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Sport == "" {
		respondError(w, http.StatusBadRequest, "sport is required", nil)
		return
	}
	if req.Result == "" {
		req.Result = models.ResultPending
	}
	if !models.ValidResult(req.Result) {
		respondError(w, http.StatusBadRequest, "result must be pending, won, lost or void", nil)
		return
	}
	if req.Stake < 0 {
		respondError(w, http.StatusBadRequest, "stake must not be negative", nil)
		return
	}

	record := &models.ParlayResult{
		ID:             uuid.New(),
		Sport:          req.Sport,
		Legs:           req.Legs,
		DecimalPrice:   req.DecimalPrice,
		WinProbability: req.WinProbability,
		ExpectedValue:  req.ExpectedValue,
		Stake:          decimal.NewFromFloat(req.Stake),
		Payout:         decimal.NewFromFloat(req.Payout),
		Result:         req.Result,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.results.Create(r.Context(), record); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist result", err)
		return
	}

	metrics.RecordResultLogged(record.Result)
	if h.audit != nil {
		h.audit.LogResultRecorded(record.ID.String(), record.Sport, record.Result, req.Stake, req.Payout)
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     record.ID,
		"result": record.Result,
	})
}

// settleRequest is the body for POST /results/{id}/settle
type settleRequest struct {
	Result string  `json:"result"`
	Payout float64 `json:"payout"`
}

// handleSettleResult grades a previously logged parlay
func (h *Handler) handleSettleResult(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		respondError(w, http.StatusServiceUnavailable, "result logging requires a database", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid result id", err)
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if !models.ValidResult(req.Result) || req.Result == models.ResultPending {
		respondError(w, http.StatusBadRequest, "result must be won, lost or void", nil)
		return
	}
	if req.Payout < 0 {
		respondError(w, http.StatusBadRequest, "payout must not be negative", nil)
		return
	}

	if err := h.results.Settle(r.Context(), id, req.Result, req.Payout); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			respondError(w, http.StatusNotFound, "result not found", nil)
		case errors.Is(err, models.ErrInvalidResult):
			respondError(w, http.StatusBadRequest, "result must be won, lost or void", nil)
		default:
			respondError(w, http.StatusInternalServerError, "failed to settle result", err)
		}
		return
	}

	record, err := h.results.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settled result", err)
		return
	}

	metrics.RecordResultLogged(record.Result)
	if h.audit != nil {
		stake, _ := record.Stake.Float64()
		payout, _ := record.Payout.Float64()
		h.audit.LogResultRecorded(record.ID.String(), record.Sport, record.Result, stake, payout)
	}

	respondJSON(w, http.StatusOK, record)
}

// handleResults returns logged parlays
// Query params: limit (default 20), status=pending, from/to (RFC 3339 or
// YYYY-MM-DD)
func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		respondError(w, http.StatusServiceUnavailable, "result logging requires a database", nil)
		return
	}

	q := r.URL.Query()

	var (
		results []*models.ParlayResult
		err     error
	)
	switch {
	case q.Get("status") == "pending":
		results, err = h.results.GetPending(r.Context())
	case q.Get("from") != "" || q.Get("to") != "":
		var start, end time.Time
		start, end, err = parseDateRange(q.Get("from"), q.Get("to"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "from/to must be RFC 3339 or YYYY-MM-DD", err)
			return
		}
		results, err = h.results.GetByDateRange(r.Context(), start, end)
	default:
		limit := parseIntParam(r, "limit", 20)
		if limit > 200 {
			limit = 200
		}
		results, err = h.results.GetRecent(r.Context(), limit)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve results", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// parseDateRange resolves an open-ended from/to pair. A missing "from" means
// the beginning of time; a missing "to" means now.
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now().UTC()

	var err error
	if from != "" {
		if start, err = parseTimeParam(from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		if end, err = parseTimeParam(to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

func parseTimeParam(v string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", v)
}

// respondUpstreamError maps odds provider failures to HTTP statuses
func respondUpstreamError(w http.ResponseWriter, sport string, err error) {
	switch {
	case errors.Is(err, oddsapi.ErrUnauthorized):
		respondError(w, http.StatusBadGateway, "odds provider rejected credentials", err)
	case errors.Is(err, oddsapi.ErrQuotaExceeded):
		respondError(w, http.StatusBadGateway, "odds provider quota exhausted", err)
	default:
		respondError(w, http.StatusBadGateway, "failed to fetch odds for "+sport, err)
	}
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]interface{}{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	respondJSON(w, status, body)
}
