package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CounterResetter zeroes every channel's delivery counters.
type CounterResetter interface {
	ResetAll() int
}

// FeedStatus reports whether the inbound signal feed is connected.
type FeedStatus interface {
	Connected() bool
}

// ResetScheduler runs the periodic counter reset and the feed health check.
type ResetScheduler struct {
	cronEngine      *cron.Cron
	resetter        CounterResetter
	feed            FeedStatus
	logger          *logrus.Entry
	cronSpecReset   string
	cronSpecMonitor string
}

func NewResetScheduler(
	resetter CounterResetter,
	feed FeedStatus, // may be nil to skip the monitor job
	logger *logrus.Entry,
	location *time.Location,
	cronSpecReset string, // e.g., "0 0 * * *" (midnight daily)
	cronSpecMonitor string, // e.g., "*/5 * * * *" (every 5 minutes)
) *ResetScheduler {
	if location == nil {
		location = time.Local
	}
	return &ResetScheduler{
		cronEngine:      cron.New(cron.WithLocation(location)),
		resetter:        resetter,
		feed:            feed,
		logger:          logger.WithField("component", "scheduler"),
		cronSpecReset:   cronSpecReset,
		cronSpecMonitor: cronSpecMonitor,
	}
}

// Start registers the jobs and starts the cron engine. An invalid spec is
// reported before anything runs.
func (s *ResetScheduler) Start() error {
	s.logger.Info("Starting reset scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecReset, s.ResetCounters); err != nil {
		return fmt.Errorf("could not add counter reset cron job %q: %w", s.cronSpecReset, err)
	}

	if s.feed != nil {
		if _, err := s.cronEngine.AddFunc(s.cronSpecMonitor, s.CheckFeed); err != nil {
			return fmt.Errorf("could not add feed monitor cron job %q: %w", s.cronSpecMonitor, err)
		}
	}

	s.cronEngine.Start()
	s.logger.WithField("entries", len(s.cronEngine.Entries())).Info("Reset scheduler started with jobs")
	return nil
}

// ResetCounters zeroes all counters regardless of traffic since the last run.
func (s *ResetScheduler) ResetCounters() {
	n := s.resetter.ResetAll()
	s.logger.WithField("channels_reset", n).Info("Message counters reset")
}

// CheckFeed logs the feed link state. Reconnecting is the feed client's job.
func (s *ResetScheduler) CheckFeed() {
	if s.feed.Connected() {
		s.logger.Info("Signal feed is operational")
		return
	}
	s.logger.Warn("Signal feed disconnected, waiting for reconnect")
}

// Stop stops the scheduler from starting new jobs and waits for running ones.
func (s *ResetScheduler) Stop() {
	s.logger.Info("Stopping reset scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Reset scheduler gracefully stopped")
}
