package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/tipcalc/internal/config"
	"github.com/efreitasn/tipcalc/internal/currency"
	"github.com/efreitasn/tipcalc/internal/handler"
	"github.com/efreitasn/tipcalc/internal/service"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	amount := flag.String("amount", "", "Bill amount; computes one tip and exits instead of serving")
	percent := flag.String("percent", "", "Tip percentage (default 15 when omitted)")
	roundUp := flag.Bool("round-up", false, "Round the tip up to a whole currency unit")
	locale := flag.String("locale", "", "Formatting locale, BCP 47 or POSIX name")
	cur := flag.String("currency", "", "ISO 4217 currency override")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	tipSvc, err := service.NewTipService(cfg.Locale, cfg.Currency, currency.NewPatternRegistry(), logger)
	if err != nil {
		logger.Error("failed to create tip service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// One-shot mode: any -amount flag, even empty, computes and exits.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["amount"] {
		req := service.QuoteRequest{
			Amount:   *amount,
			RoundUp:  *roundUp,
			Locale:   *locale,
			Currency: *cur,
		}
		if set["percent"] {
			req.Percent = percent
		}
		q, err := tipSvc.Quote(req)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(q.Formatted)
		return
	}

	router := handler.NewRouter(tipSvc, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("locale", tipSvc.DefaultLocale().String()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
