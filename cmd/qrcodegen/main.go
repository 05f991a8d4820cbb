package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	qrcodeadapter "github.com/ericfisherdev/qrcodegen/internal/adapter/driven/qrcode"
	sqliteadapter "github.com/ericfisherdev/qrcodegen/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/qrcodegen/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/qrcodegen/internal/adapter/driving/web"
	"github.com/ericfisherdev/qrcodegen/internal/application"
	"github.com/ericfisherdev/qrcodegen/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"ecc_level", cfg.ECCLevel,
		"pixel_scale", cfg.PixelScale,
		"history_enabled", cfg.HasSecretKey(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := db.Migrate(); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters. Without a secret key the store refuses writes and
	// history is skipped.
	codeStore := sqliteadapter.NewCodeRepo(db, cfg.SecretKey)
	if !cfg.HasSecretKey() {
		slog.Info("no QRCODEGEN_SECRET_KEY configured, code history disabled")
	}

	level, err := qrcodeadapter.ParseLevel(cfg.ECCLevel)
	if err != nil {
		return err
	}
	rasterizer := qrcodeadapter.NewRasterizer(level, cfg.PixelScale)

	// 6. Create code service.
	codeSvc := application.NewCodeService(rasterizer, codeStore, cfg.HistoryLimit, slog.Default())

	// 7. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(codeSvc, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 8. Create web handler and register GUI routes.
	webHandler := webhandler.NewHandler(codeSvc, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
