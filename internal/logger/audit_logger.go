// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for every recommendation
// the service emits and every result a user logs back.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRecommendation logs one parlay recommendation emitted to a caller.
func (al *AuditLogger) LogRecommendation(sport string, legCount int, decimalPrice, winProbability, expectedValue, suggestedStake float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"sport":           sport,
		"leg_count":       legCount,
		"decimal_price":   decimalPrice,
		"win_probability": winProbability,
		"expected_value":  expectedValue,
		"suggested_stake": suggestedStake,
		"timestamp":       timestamp.Unix(),
	}).Info("Parlay recommendation emitted")
}

// LogResultRecorded logs a user-reported parlay result.
func (al *AuditLogger) LogResultRecorded(resultID, sport, result string, stake, payout float64) {
	al.WithFields(logrus.Fields{
		"result_id": resultID,
		"sport":     sport,
		"result":    result,
		"stake":     stake,
		"payout":    payout,
	}).Info("Parlay result recorded")
}

// LogScanCompleted logs a completed market scan.
func (al *AuditLogger) LogScanCompleted(sport string, events, legs, parlays int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"sport":       sport,
		"events":      events,
		"legs":        legs,
		"parlays":     parlays,
		"duration_ms": durationMs,
	}).Info("Market scan completed")
}
