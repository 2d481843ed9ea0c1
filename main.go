package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinelist/api"
	"cinelist/config"
	"cinelist/internal/server"
	"cinelist/services/credentials"
	"cinelist/services/lists"
	"cinelist/services/omdb"
	"cinelist/services/search"
	"cinelist/services/sessions"
)

func main() {
	configPath := flag.String("config", "settings.json", "path to settings.json")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("[main] %v", err)
	}
}

func run(configPath string) error {
	mgr := config.NewManager(configPath)
	settings, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	logger, closeLog := setupLogging(settings.Log)
	defer closeLog()

	if settings.OMDb.APIKey == "" {
		log.Printf("[main] warning: no OMDb API key configured; searches will fail until %s is set", config.EnvOMDbAPIKey)
	}

	osFS := afero.NewOsFs()

	provider, closeProvider, err := credentials.Open(settings.Storage.CredentialsBackend, settings.Storage.DataDir, osFS)
	if err != nil {
		return fmt.Errorf("open credentials: %w", err)
	}
	defer closeProvider()

	listsDir := ""
	if settings.Storage.PersistLists {
		listsDir = settings.Storage.DataDir
	}
	store, err := lists.NewService(osFS, listsDir)
	if err != nil {
		return fmt.Errorf("open lists: %w", err)
	}

	client := omdb.NewClient(settings.OMDb.APIKey, settings.OMDb.BaseURL, &http.Client{Timeout: settings.OMDb.Timeout()})
	limiter := api.NewIPRateLimiter(
		rate.Every(time.Minute/time.Duration(settings.Search.RequestsPerMinute)),
		settings.Search.Burst,
	)
	trusted, err := settings.Search.TrustedProxyPrefixes()
	if err != nil {
		return err
	}
	limiter.TrustProxies(trusted)

	router := server.NewRouter(server.Deps{
		Sessions:    sessions.NewService(provider, store),
		Lists:       store,
		Search:      search.NewService(client),
		RateLimiter: limiter,
		Logger:      logger,
		LogFS:       osFS,
		LogFile:     settings.Log.File,
	})

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      settings.OMDb.Timeout() + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] listening on %s (credentials=%s, data=%s)", addr, settings.Storage.CredentialsBackend, settings.Storage.DataDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupLogging sends the standard logger to stdout and a rotating file.
func setupLogging(cfg config.LogSettings) (*log.Logger, func()) {
	if cfg.File == "" {
		return log.Default(), func() {}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		log.Printf("[main] cannot create log dir, logging to stdout only: %v", err)
		return log.Default(), func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return log.Default(), func() { rotator.Close() }
}
