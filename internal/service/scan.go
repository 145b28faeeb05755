// Package service coordinates odds retrieval and parlay construction.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Randysweatpants/GambleBotAPI/internal/config"
	applog "github.com/Randysweatpants/GambleBotAPI/internal/logger"
	"github.com/Randysweatpants/GambleBotAPI/internal/metrics"
	"github.com/Randysweatpants/GambleBotAPI/internal/models"
	"github.com/Randysweatpants/GambleBotAPI/internal/oddsapi"
	"github.com/Randysweatpants/GambleBotAPI/internal/parlay"
)

// ScanRequest describes one scan over a sport's markets. Zero values fall
// back to configured defaults. MinEV is a pointer so callers can ask for a
// true 0.0 threshold; nil means "use the configured default".
type ScanRequest struct {
	Sport         string
	Books         []string
	MinEV         *float64
	MaxLegs       int
	TopN          int
	WindowMinutes int
	SameGameOnly  bool
	Diversify     bool
}

// FormattedParlay is one presentation-ready parlay.
type FormattedParlay struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// ScanResult is the outcome of one scan.
type ScanResult struct {
	Sport       string            `json:"sport"`
	Summary     string            `json:"summary"`
	Events      int               `json:"events"`
	PoolSize    int               `json:"pool_size"`
	Parlays     []models.Parlay   `json:"parlays"`
	Formatted   []FormattedParlay `json:"formatted"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// ScanBroadcaster receives completed scan results for push delivery.
// Implemented by the websocket hub.
type ScanBroadcaster interface {
	BroadcastScan(result *ScanResult)
}

// ScanService runs the full pipeline: fetch odds, extract legs, build and
// rank parlays, format for presentation.
type ScanService struct {
	provider    oddsapi.Provider
	engine      parlay.Config
	defaults    config.EngineConfig
	logger      *logrus.Logger
	audit       *applog.AuditLogger
	broadcaster ScanBroadcaster
}

// NewScanService creates a scan service from configuration.
func NewScanService(provider oddsapi.Provider, cfg *config.Config, log *logrus.Logger, audit *applog.AuditLogger) *ScanService {
	engine := parlay.Config{
		Bankroll:         cfg.Engine.Bankroll,
		CorrelationDecay: cfg.Engine.CorrelationDecay,
		KellyCap:         cfg.Engine.KellyCap,
		KellyFraction:    cfg.Engine.KellyFraction,
		Overround:        cfg.Engine.OverroundBand(),
		MaxPoolSize:      cfg.Engine.MaxPoolSize,
		AllowHedgedLegs:  cfg.Engine.AllowHedgedLegs,
	}

	return &ScanService{
		provider: provider,
		engine:   engine,
		defaults: cfg.Engine,
		logger:   log,
		audit:    audit,
	}
}

// SetBroadcaster wires a push channel for completed scans. Every scan,
// request-driven or scheduled, is delivered to it.
func (s *ScanService) SetBroadcaster(b ScanBroadcaster) {
	s.broadcaster = b
}

// Scan fetches odds for a sport and returns ranked, formatted parlays.
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	if req.Sport == "" {
		return nil, fmt.Errorf("scan: sport is required")
	}
	s.applyDefaults(&req)

	start := time.Now()

	events, err := s.provider.FetchOdds(ctx, req.Sport)
	if err != nil {
		metrics.RecordScan(req.Sport, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("scan %s: %w", req.Sport, err)
	}

	events = FilterUpcoming(events, time.Now(), time.Duration(req.WindowMinutes)*time.Minute)
	events = FilterBooks(events, req.Books)

	legs := parlay.ExtractLegs(events, s.engine, s.logger)
	metrics.RecordLegsExtracted(req.Sport, len(legs))

	opts := parlay.BuildOptions{
		MaxLegs:      req.MaxLegs,
		MinEV:        *req.MinEV,
		SameGameOnly: req.SameGameOnly,
		Diversify:    req.Diversify,
	}
	parlays := parlay.BuildParlays(legs, opts, s.engine)
	if len(parlays) > req.TopN {
		parlays = parlays[:req.TopN]
	}

	result := &ScanResult{
		Sport:       req.Sport,
		Summary:     parlay.FormatSummary(req.Sport, *req.MinEV),
		Events:      len(events),
		PoolSize:    len(legs),
		Parlays:     parlays,
		GeneratedAt: time.Now().UTC(),
	}
	for i, p := range parlays {
		name, body := parlay.FormatParlayFields(i+1, p)
		result.Formatted = append(result.Formatted, FormattedParlay{Name: name, Body: body})

		metrics.RecordParlayReturned(p.Valuation.ExpectedValue)
		if s.audit != nil {
			s.audit.LogRecommendation(req.Sport, len(p.Legs), p.Valuation.DecimalPrice,
				p.Valuation.WinProbability, p.Valuation.ExpectedValue, p.Valuation.SuggestedStake,
				result.GeneratedAt)
		}
	}

	elapsed := time.Since(start)
	metrics.RecordScan(req.Sport, "success", elapsed.Seconds())
	if s.audit != nil {
		s.audit.LogScanCompleted(req.Sport, len(events), len(legs), len(parlays),
			float64(elapsed.Milliseconds()))
	}

	s.logger.WithFields(logrus.Fields{
		"sport":   req.Sport,
		"events":  len(events),
		"legs":    len(legs),
		"parlays": len(parlays),
	}).Info("Scan completed")

	if s.broadcaster != nil {
		s.broadcaster.BroadcastScan(result)
	}

	return result, nil
}

func (s *ScanService) applyDefaults(req *ScanRequest) {
	if req.MinEV == nil {
		minEV := s.defaults.DefaultMinEV
		req.MinEV = &minEV
	}
	if req.MaxLegs == 0 {
		req.MaxLegs = s.defaults.DefaultMaxLegs
	}
	if req.MaxLegs < parlay.MinLegs {
		req.MaxLegs = parlay.MinLegs
	}
	if req.MaxLegs > parlay.MaxLegs {
		req.MaxLegs = parlay.MaxLegs
	}
	if req.TopN <= 0 {
		req.TopN = s.defaults.DefaultTopN
	}
	if req.WindowMinutes <= 0 {
		req.WindowMinutes = s.defaults.WindowMinutes
	}
}

// FilterUpcoming keeps events starting between now and now+window. Events
// already underway are excluded.
func FilterUpcoming(events []models.Event, now time.Time, window time.Duration) []models.Event {
	cutoff := now.Add(window)
	var kept []models.Event
	for _, e := range events {
		if e.CommenceTime.Before(now) || e.CommenceTime.After(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// FilterBooks keeps only the named bookmakers on each event. Events left with
// no books are dropped; an empty book list keeps everything.
func FilterBooks(events []models.Event, books []string) []models.Event {
	allowed := make(map[string]bool, len(books))
	for _, b := range books {
		b = strings.TrimSpace(strings.ToLower(b))
		if b != "" {
			allowed[b] = true
		}
	}
	if len(allowed) == 0 {
		return events
	}

	var kept []models.Event
	for _, e := range events {
		var bms []models.Bookmaker
		for _, bm := range e.Bookmakers {
			if allowed[strings.ToLower(bm.Key)] {
				bms = append(bms, bm)
			}
		}
		if len(bms) == 0 {
			continue
		}
		e.Bookmakers = bms
		kept = append(kept, e)
	}
	return kept
}
