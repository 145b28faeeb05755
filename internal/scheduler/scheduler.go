// Package scheduler runs recurring market scans on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Randysweatpants/GambleBotAPI/internal/config"
	"github.com/Randysweatpants/GambleBotAPI/internal/service"
)

// Scheduler manages scheduled market scan jobs
type Scheduler struct {
	cron            *cron.Cron
	scanSvc         *service.ScanService
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(scanSvc *service.ScanService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		scanSvc:         scanSvc,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleScans schedules recurring scans for the configured sports.
// Each run scans every sport sequentially so a slow upstream cannot pile
// up concurrent quota usage.
func (s *Scheduler) ScheduleScans(scanCfg config.ScanConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	if len(scanCfg.Sports) == 0 {
		return fmt.Errorf("no sports configured for scheduled scans")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		for _, sport := range scanCfg.Sports {
			req := service.ScanRequest{
				Sport:         sport,
				MaxLegs:       scanCfg.MaxLegs,
				TopN:          scanCfg.TopN,
				WindowMinutes: scanCfg.WindowMinutes,
				Diversify:     true,
			}
			if scanCfg.MinEV != 0 {
				minEV := scanCfg.MinEV
				req.MinEV = &minEV
			}

			result, err := s.scanSvc.Scan(ctx, req)
			if err != nil {
				s.logger.WithError(err).WithField("sport", sport).Error("Scheduled scan failed")
				continue
			}

			s.logger.WithFields(logrus.Fields{
				"sport":   sport,
				"parlays": len(result.Parlays),
			}).Info("Scheduled scan finished")
		}
	}

	entryID, err := s.cron.AddFunc(scanCfg.Schedule, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"schedule": scanCfg.Schedule,
		"sports":   scanCfg.Sports,
	}).Info("Scheduled recurring scans")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for running jobs to finish")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
