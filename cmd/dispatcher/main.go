package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tapneat/config"
	"tapneat/internal/adapter/printer"
	"tapneat/internal/adapter/queue"
	"tapneat/internal/dispatch"
	"tapneat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("printer", cfg.Printer.Addr()).
		Str("api", cfg.Queue.APIBaseURL).
		Str("qr_mode", cfg.Printer.QRMode).
		Msg("Starting TapNEat print dispatcher")

	// Queue client, renderer and printer transport
	source := queue.NewClient(cfg.Queue, log)

	var fetcher printer.QRFetcher
	if cfg.Printer.QRMode == printer.QRModeRaster {
		fetcher = printer.NewImageServiceFetcher(cfg.Printer.QRImageURL)
	}
	renderer := printer.NewEncoder(cfg.Printer, cfg.Receipt, fetcher, log)
	transport := printer.NewTCPTransport(cfg.Printer, log)

	dispatcher := dispatch.New(source, renderer, transport, cfg.Queue.PollInterval, cfg.Queue.BatchLimit, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(done)
	}()

	// Health listener for process supervision
	gin.SetMode(gin.ReleaseMode)
	health := gin.New()
	health.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"printer":       cfg.Printer.Addr(),
			"api_base_url":  cfg.Queue.APIBaseURL,
			"poll_interval": cfg.Queue.PollInterval.String(),
			"batch_limit":   cfg.Queue.BatchLimit,
		})
	})

	healthAddr := fmt.Sprintf(":%d", cfg.Queue.HealthPort)
	healthSrv := &http.Server{Addr: healthAddr, Handler: health}
	go func() {
		log.Info().Str("addr", healthAddr).Msg("health listener started")
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health listener failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down dispatcher...")

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Error().Msg("Dispatcher forced to shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Health listener forced to shutdown")
	}

	log.Info().Msg("Dispatcher exited")
}
