package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/punchclock-analytics/internal/config"
	appHTTP "github.com/cmlabs-hris/punchclock-analytics/internal/handler/http"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/cron"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/database"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/jwt"
	"github.com/cmlabs-hris/punchclock-analytics/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/punchclock-analytics/internal/service/attendance"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	})).With(slog.String("app", cfg.App.Name)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	runRepo := postgresql.NewAnalysisRunRepository(db)
	if err := runRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	engine, err := attendanceService.NewEngine(cfg.Attendance)
	if err != nil {
		return fmt.Errorf("build analysis engine: %w", err)
	}
	analysisService := attendanceService.NewAnalysisService(engine, runRepo, cfg.Runs.MaxUploadBytes)

	scheduler := cron.NewScheduler(ctx)
	if cfg.Runs.Retention > 0 {
		retentionJobs := cron.NewRetentionJobs(analysisService, cfg.Runs.Retention, cfg.Runs.RetentionInterval)
		if err := retentionJobs.RegisterJobs(scheduler); err != nil {
			return fmt.Errorf("register cron jobs: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceHandler := appHTTP.NewAttendanceHandler(analysisService, cfg.Runs.MaxUploadBytes)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:        cfg.App.Name,
		Version:        cfg.App.Version,
		Env:            cfg.App.Env,
		LogLevel:       cfg.App.SlogLevel(),
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
	}, JWTService, attendanceHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "version", cfg.App.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server", "timeout", cfg.App.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
