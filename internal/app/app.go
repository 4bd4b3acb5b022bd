package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	kafka_impl "watermark-generator/internal/broker/kafka"
	"watermark-generator/internal/config"
	watermark_h "watermark-generator/internal/http-server/handler/watermark"
	"watermark-generator/internal/http-server/router"
	minio_repo "watermark-generator/internal/repository/watermark/cloud/minio"
	postgres_repo "watermark-generator/internal/repository/watermark/db/postgres"
	"watermark-generator/internal/usecase/processor"
	watermark_uc "watermark-generator/internal/usecase/watermark"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

const initTimeout = 30 * time.Second

type App struct {
	cfg      *config.Config
	server   *http.Server
	logger   *zlog.Zerolog
	db       *dbpg.DB
	producer *kafka_impl.ProducerClient
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	imageProcessor, err := processor.NewImageProcessor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create image processor: %w", err)
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	jobsRepo := postgres_repo.NewJobsRepository(db, retries)
	if err := jobsRepo.EnsureSchema(ctx); err != nil {
		db.Master.Close()
		return nil, err
	}

	fileRepo, err := minio_repo.NewMinIORepository(cfg, retries, logger)
	if err != nil {
		db.Master.Close()
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}
	if err := fileRepo.EnsureBucket(ctx); err != nil {
		db.Master.Close()
		return nil, err
	}

	producer := kafka_impl.NewProducerClient(cfg)

	watermarkUsecase := watermark_uc.NewWatermarkUsecase(imageProcessor, logger)
	jobUsecase := watermark_uc.NewJobUsecase(imageProcessor, jobsRepo, fileRepo, producer, logger)

	h := &router.Handler{
		WatermarkHandler: watermark_h.NewWatermarkHandler(watermarkUsecase, jobUsecase, logger),
	}

	mux := router.SetupRouter(h)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:      cfg,
		server:   server,
		logger:   logger,
		db:       db,
		producer: producer,
	}, nil
}

// OpenDB connects to the jobs database with the configured pool limits.
func OpenDB(cfg *config.Config) (*dbpg.DB, error) {
	dbOpts := &dbpg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}

	db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go HandleSignals(cancel, a.logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		a.close()
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		a.close()
		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) close() {
	if a.db != nil && a.db.Master != nil {
		a.db.Master.Close()
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close producer")
		}
	}
}

// HandleSignals cancels on SIGINT or SIGTERM.
func HandleSignals(cancel context.CancelFunc, logger *zlog.Zerolog) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
