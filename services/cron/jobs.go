package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/campus-events/model"
)

const (
	JobPruneArchives   = "prune_archives"
	JobCleanupCronLogs = "cleanup_cron_logs"
)

// PruneArchives removes image archives older than the configured retention
func (m *CronManager) PruneArchives() {
	m.run(JobPruneArchives, 10*time.Minute, func(ctx context.Context) (string, map[string]interface{}, error) {
		removed, err := m.archives.PruneOlderThan(ctx, m.config.ArchiveRetention)
		meta := map[string]interface{}{
			"removed":   removed,
			"retention": m.config.ArchiveRetention.String(),
		}
		if err != nil {
			return "", meta, fmt.Errorf("failed to prune archives: %w", err)
		}
		return fmt.Sprintf("Removed %d archives", removed), meta, nil
	})
}

// CleanupCronLogs deletes finished cron logs past the log retention
func (m *CronManager) CleanupCronLogs() {
	m.run(JobCleanupCronLogs, 5*time.Minute, func(ctx context.Context) (string, map[string]interface{}, error) {
		cutoff := time.Now().Add(-m.config.LogRetention)

		result := m.db.WithContext(ctx).
			Where("started_at < ? AND status <> ?", cutoff, StatusRunning).
			Delete(&model.CronJobLog{})
		if result.Error != nil {
			return "", nil, fmt.Errorf("failed to delete cron logs: %w", result.Error)
		}
		return fmt.Sprintf("Deleted %d cron logs", result.RowsAffected), map[string]interface{}{"deleted": result.RowsAffected}, nil
	})
}
