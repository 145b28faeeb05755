// Package metrics provides centralized Prometheus metrics registry for the parlay service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamblebot",
		Name:      "scans_total",
		Help:      "Total number of market scans by sport and outcome",
	}, []string{"sport", "status"})
	LegsExtractedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gamblebot",
		Name:      "legs_extracted_total",
		Help:      "Total number of candidate legs extracted from odds data",
	})
	ParlaysReturnedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gamblebot",
		Name:      "parlays_returned_total",
		Help:      "Total number of parlays returned to callers",
	})
	ResultsLoggedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamblebot",
		Name:      "results_logged_total",
		Help:      "Total number of parlay results logged by outcome",
	}, []string{"result"})
	OddsRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamblebot",
		Name:      "odds_requests_total",
		Help:      "Total number of upstream odds API requests by status",
	}, []string{"status"})
	OddsCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gamblebot",
		Name:      "odds_cache_hits_total",
		Help:      "Total number of odds cache hits",
	})
	OddsCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gamblebot",
		Name:      "odds_cache_misses_total",
		Help:      "Total number of odds cache misses",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gamblebot",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker trips against the odds API",
	})
)

// Gauge metrics
var (
	OddsQuotaRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gamblebot",
		Name:      "odds_quota_remaining",
		Help:      "Remaining request quota reported by the odds API",
	})
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gamblebot",
		Name:      "current_bankroll",
		Help:      "Configured bankroll in currency units",
	})
	LegPoolSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gamblebot",
		Name:      "leg_pool_size",
		Help:      "Size of the deduplicated leg pool from the most recent scan",
	}, []string{"sport"})
)

// Histogram metrics
var (
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gamblebot",
		Name:      "scan_duration_seconds",
		Help:      "Duration of full market scans in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	OddsRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gamblebot",
		Name:      "odds_request_duration_seconds",
		Help:      "Latency of upstream odds API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ParlayExpectedValue = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gamblebot",
		Name:      "parlay_expected_value",
		Help:      "Expected value of parlays returned to callers",
		Buckets:   []float64{0, 0.02, 0.05, 0.10, 0.15, 0.25, 0.50, 1.0},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(ScansTotal)
		registry.MustRegister(LegsExtractedTotal)
		registry.MustRegister(ParlaysReturnedTotal)
		registry.MustRegister(ResultsLoggedTotal)
		registry.MustRegister(OddsRequestsTotal)
		registry.MustRegister(OddsCacheHitsTotal)
		registry.MustRegister(OddsCacheMissesTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		// Register gauge metrics
		registry.MustRegister(OddsQuotaRemaining)
		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(LegPoolSize)

		// Register histogram metrics
		registry.MustRegister(ScanDuration)
		registry.MustRegister(OddsRequestDuration)
		registry.MustRegister(ParlayExpectedValue)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScan records a completed scan with its duration.
func RecordScan(sport, status string, durationSeconds float64) {
	ScansTotal.WithLabelValues(sport, status).Inc()
	ScanDuration.Observe(durationSeconds)
}

// RecordLegsExtracted records extracted legs and the resulting pool size.
func RecordLegsExtracted(sport string, count int) {
	LegsExtractedTotal.Add(float64(count))
	LegPoolSize.WithLabelValues(sport).Set(float64(count))
}

// RecordParlayReturned records one parlay handed back to a caller.
func RecordParlayReturned(expectedValue float64) {
	ParlaysReturnedTotal.Inc()
	ParlayExpectedValue.Observe(expectedValue)
}

// RecordResultLogged records a user-reported parlay result.
func RecordResultLogged(result string) {
	ResultsLoggedTotal.WithLabelValues(result).Inc()
}

// RecordOddsRequest records an upstream odds API request.
func RecordOddsRequest(status string, durationSeconds float64) {
	OddsRequestsTotal.WithLabelValues(status).Inc()
	OddsRequestDuration.Observe(durationSeconds)
}

// RecordOddsCacheHit records an odds cache hit.
func RecordOddsCacheHit() {
	OddsCacheHitsTotal.Inc()
}

// RecordOddsCacheMiss records an odds cache miss.
func RecordOddsCacheMiss() {
	OddsCacheMissesTotal.Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateQuotaRemaining updates the odds API quota gauge.
func UpdateQuotaRemaining(remaining float64) {
	OddsQuotaRemaining.Set(remaining)
}

// UpdateBankroll updates the configured bankroll gauge.
func UpdateBankroll(amount float64) {
	CurrentBankroll.Set(amount)
}
