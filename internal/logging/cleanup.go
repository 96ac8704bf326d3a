package logging

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
)

// StartCleanup runs a daily goroutine that deletes system_logs older than
// retentionDays. The first pass runs immediately.
func StartCleanup(db *gorm.DB, retentionDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			deleted, err := PurgeBefore(db, cutoff)
			if err != nil {
				slog.Error("log cleanup failed", "error", err.Error(), "action", "log_cleanup")
			} else if deleted > 0 {
				slog.Info("log cleanup completed", "deleted", deleted, "action", "log_cleanup")
			}

			select {
			case <-ticker.C:
			case <-done:
				return
			}
		}
	}()
}

// PurgeBefore deletes system logs recorded before cutoff.
func PurgeBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
