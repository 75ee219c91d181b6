package services

import (
	"github.com/chefbawss/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var cleanupCron *cron.Cron

// StartTokenCleanupScheduler purges dead invitation and password-reset
// tokens nightly. Expired tokens are already unusable; this only keeps
// the tables small.
func StartTokenCleanupScheduler(db *gorm.DB) {
	if cleanupCron != nil {
		return
	}

	tokenSvc := NewTokenService(db)
	cleanupCron = cron.New()

	_, err := cleanupCron.AddFunc("0 3 * * *", func() {
		removed, err := tokenSvc.PurgeDead()
		if err != nil {
			logger.Errorf("[Cleanup] token purge failed: %v", err)
			return
		}
		if removed > 0 {
			logger.Infof("[Cleanup] purged %d dead credential tokens", removed)
		}
	})
	if err != nil {
		logger.Errorf("[Cleanup] failed to schedule token purge: %v", err)
		return
	}

	cleanupCron.Start()
	logger.Infof("[Cleanup] token purge scheduled daily at 03:00")
}

// StopTokenCleanupScheduler stops the cleanup scheduler.
func StopTokenCleanupScheduler() {
	if cleanupCron != nil {
		cleanupCron.Stop()
		cleanupCron = nil
	}
}
