package main

import (
	"github.com/chefbawss/backend/internal/config"
	"github.com/chefbawss/backend/internal/handlers"
	"github.com/chefbawss/backend/internal/metrics"
	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/internal/services"
	"github.com/chefbawss/backend/internal/utils"
	"github.com/chefbawss/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	metrics   *metrics.Metrics
	taskQueue services.TaskQueue
	worker    *services.Worker

	authHandler    *handlers.AuthHandler
	orgHandler     *handlers.OrganizationHandler
	chefHandler    *handlers.ChefHandler
	clientHandler  *handlers.ClientHandler
	eventHandler   *handlers.EventHandler
	financeHandler *handlers.FinanceHandler
}

// bootstrap initializes all application dependencies: database, queue,
// notification pipeline, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	// Start nightly token cleanup
	services.StartTokenCleanupScheduler(db)

	// Email pipeline: tasks go through Redis when enabled, otherwise a
	// sync in-process queue
	emailService := services.NewEmailService(&cfg.SMTP, cfg.Frontend.BaseURL)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.Process)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.Process)
			worker.Start()
		}
	}

	dispatcher := services.NewDispatcher(taskQueue)

	authService := services.NewAuthService(db, &cfg.JWT, dispatcher)
	chefService := services.NewChefService(db, dispatcher)
	clientService := services.NewClientService(db)
	eventService := services.NewEventService(db, dispatcher)
	financeService := services.NewFinanceService(db)
	orgService := services.NewOrganizationService(db)

	return &appServices{
		metrics:   metrics.New(),
		taskQueue: taskQueue,
		worker:    worker,

		authHandler:    handlers.NewAuthHandler(authService),
		orgHandler:     handlers.NewOrganizationHandler(orgService),
		chefHandler:    handlers.NewChefHandler(chefService),
		clientHandler:  handlers.NewClientHandler(clientService),
		eventHandler:   handlers.NewEventHandler(eventService),
		financeHandler: handlers.NewFinanceHandler(financeService),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	services.StopTokenCleanupScheduler()

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("All services stopped")
}
