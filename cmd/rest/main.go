package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"notebook-studio-be/internal/bootstrap"
	"notebook-studio-be/internal/config"
	"notebook-studio-be/internal/server"
	"notebook-studio-be/internal/tracer"
	"notebook-studio-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.Init(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 5. Start Background Services
	if err := container.RunnerService.Run(context.Background()); err != nil {
		log.Fatalf("Unable to start generation runner: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server, shutting down cleanly on SIGINT/SIGTERM so pending
	// overlay edits reach the database.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down: flushing pending edits...")
		container.OverlayService.FlushAll(context.Background())
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
