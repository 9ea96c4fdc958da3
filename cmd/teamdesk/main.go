package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nordwerk/teamdesk/internal/pkg/cache"
	"github.com/nordwerk/teamdesk/internal/pkg/database"
	"github.com/nordwerk/teamdesk/internal/pkg/env"
	"github.com/nordwerk/teamdesk/internal/pkg/jobqueue"
	"github.com/nordwerk/teamdesk/internal/pkg/router"
	"github.com/nordwerk/teamdesk/internal/pkg/session"
	"github.com/nordwerk/teamdesk/internal/pkg/trial"
)

func main() {
	app := NewApplication()

	manager := jobqueue.GetManager()
	manager.Start()

	// graceful shutdown drains the job queue workers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		manager.Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	session.NewSessionStore()

	// lifecycle transitions run on the queue workers
	jobqueue.SetTrialExecutor(trial.NewServiceFromDB(database.GetDB()))

	app := fiber.New(fiber.Config{
		AppName: "teamdesk",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
