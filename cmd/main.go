package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"luckydraw/internal/config"
	"luckydraw/internal/handlers"
	"luckydraw/internal/metrics"
	"luckydraw/internal/services"
	"luckydraw/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/joho/godotenv"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// 1. Pick up a local .env, then load configuration (defaults -> file -> env).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging.
	logOut, verbose, err := logOutput(cfg)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logOut.Close()
	defer logger.Init("luckydraw", verbose, false, logOut).Close()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Open storage.
	kv, closer, err := storage.Open(ctx, cfg.StorageDriver, cfg.StoragePath)
	if err != nil {
		logger.Fatalf("Failed to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer closer.Close()
	repo := storage.NewRepository(kv)

	// 4. Initialize the draw engine and the Lottery Service.
	hub := handlers.NewHub()
	normalDelay, firstPrizeDelay := cfg.RevealDelays()
	engine := services.NewEngine(repo,
		services.WithSpinTick(cfg.SpinTick()),
		services.WithRevealDelays(normalDelay, firstPrizeDelay),
		services.WithListener(hub.Publish),
	)
	lotteryService := services.NewLotteryService(repo, engine)

	// 5. Start the scheduler that advances draws in real time.
	scheduler := services.NewScheduler(engine)
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	// 6. Set up the Gin router.
	r := gin.New()
	r.Use(gin.Recovery(), handlers.MetricsMiddleware())
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	httpHandler := handlers.NewHTTPHandler(lotteryService, hub, int64(cfg.MaxUploadMB)<<20)
	httpHandler.RegisterRoutes(r)

	// 7. Run the server. No write timeout: /draw/events streams for as long
	// as the client stays connected.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		logger.Infof("Server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Failed to run server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	<-schedulerDone
	logger.Info("Server stopped")
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// logOutput picks where google/logger writes. Without a log file everything
// goes to stdout, so verbose is forced on.
func logOutput(cfg *config.Config) (io.WriteCloser, bool, error) {
	if cfg.LogFile == "" {
		return nopWriteCloser{io.Discard}, true, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, false, err
	}
	return f, cfg.LogVerbose, nil
}
