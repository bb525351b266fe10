package cron

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/campus-events/model"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"github.com/sahilchouksey/campus-events/utils/metrics"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ArchivePruner removes stale image archives
type ArchivePruner interface {
	PruneOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// Config selects which jobs run
type Config struct {
	// ArchiveRetention enables prune_archives when positive
	ArchiveRetention time.Duration
	// LogRetention is how long cron_job_logs rows are kept
	LogRetention time.Duration
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron     *cron.Cron
	db       *gorm.DB
	archives ArchivePruner
	config   Config
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, archives ArchivePruner, config Config) *CronManager {
	if config.LogRetention <= 0 {
		config.LogRetention = 30 * 24 * time.Hour
	}

	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{})))

	return &CronManager{
		cron:     c,
		db:       db,
		archives: archives,
		config:   config,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log := logger.With("cron")
	log.Info().Msg("starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Info().Int("jobs", len(m.cron.Entries())).Msg("cron jobs started")
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	log := logger.With("cron")
	log.Info().Msg("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Every hour: prune stale archives, only with a retention configured
	if m.config.ArchiveRetention > 0 && m.archives != nil {
		if _, err := m.cron.AddFunc("0 0 * * * *", func() { m.PruneArchives() }); err != nil {
			return err
		}
	}

	// 2. Daily at 3 AM: drop old cron logs
	if _, err := m.cron.AddFunc("0 0 3 * * *", func() { m.CleanupCronLogs() }); err != nil {
		return err
	}

	return nil
}

// run records one execution of job in cron_job_logs
func (m *CronManager) run(jobName string, timeout time.Duration, job func(ctx context.Context) (string, map[string]interface{}, error)) {
	log := logger.With("cron").With().Str("job", jobName).Logger()
	log.Info().Msg("job started")

	started := time.Now()
	entry := model.CronJobLog{
		JobName:   jobName,
		Status:    StatusRunning,
		StartedAt: started,
		Metadata:  datatypes.JSON("{}"),
	}
	if err := m.db.Create(&entry).Error; err != nil {
		log.Warn().Err(err).Msg("failed to record job start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	message, meta, err := job(ctx)

	completed := time.Now()
	updates := map[string]interface{}{
		"completed_at": completed,
		"duration":     completed.Sub(started).Milliseconds(),
		"message":      message,
	}
	if meta != nil {
		if raw, mErr := json.Marshal(meta); mErr == nil {
			updates["metadata"] = datatypes.JSON(raw)
		}
	}

	if err != nil {
		updates["status"] = StatusFailed
		updates["error_msg"] = err.Error()
		metrics.CronRuns.WithLabelValues(jobName, StatusFailed).Inc()
		log.Error().Err(err).Dur("took", completed.Sub(started)).Msg("job failed")
	} else {
		updates["status"] = StatusCompleted
		metrics.CronRuns.WithLabelValues(jobName, StatusCompleted).Inc()
		log.Info().Str("result", message).Dur("took", completed.Sub(started)).Msg("job completed")
	}

	if entry.ID != 0 {
		if err := m.db.Model(&entry).Updates(updates).Error; err != nil {
			log.Warn().Err(err).Msg("failed to record job result")
		}
	}
}

// cronLogger adapts the global zerolog logger to cron.Logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log := logger.With("cron")
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log := logger.With("cron")
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
