package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/praxis-labs/praxis/internal/api"
	"github.com/praxis-labs/praxis/internal/app/notify"
	"github.com/praxis-labs/praxis/internal/health"
	"github.com/praxis-labs/praxis/internal/infra/email"
	"github.com/praxis-labs/praxis/internal/infra/extract"
	_ "github.com/praxis-labs/praxis/internal/infra/metrics" // Register Prometheus metrics
	"github.com/praxis-labs/praxis/internal/infra/sqlite"
	"github.com/praxis-labs/praxis/internal/security"
)

// Daemon is the core Praxis runtime. It wires together all services.
type Daemon struct {
	Config    Config
	DB        *sqlite.DB
	Server    *api.Server
	Notify    *notify.Service
	Checker   *health.Checker
	Scheduler *Scheduler
	Version   string
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New(version string) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, version)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config, version string) (*Daemon, error) {
	dbDir := cfg.Database.Dir
	if dbDir == "" {
		dbDir = praxisHome()
	}
	db, err := sqlite.Open(dbDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	secret, err := security.LoadOrCreateSecret(praxisHome())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("auth secret: %w", err)
	}
	tokens := security.NewTokenManager(secret, cfg.TokenTTL())

	var extractor extract.Client
	if key := os.Getenv(cfg.Extract.APIKeyEnv); key != "" {
		extractor = extract.NewChatClient(cfg.Extract.BaseURL, key, cfg.Extract.Model)
	} else {
		log.Printf("[daemon] %s not set, notes extraction disabled", cfg.Extract.APIKeyEnv)
		extractor = unavailableExtractor{}
	}

	var mail email.Service
	if key := os.Getenv(cfg.Email.APIKeyEnv); key != "" {
		mail = email.NewResendClient(key, cfg.Email.FromEmail, cfg.Email.FromName)
	} else {
		log.Printf("[daemon] %s not set, reminder emails logged only", cfg.Email.APIKeyEnv)
		mail = email.LogService{}
	}

	n := notify.New(db, mail)
	n.Tolerance = cfg.DailyTolerance()

	srv := api.NewServer(db, tokens, extractor, n, version)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	checker := health.NewChecker(db, dbDir)
	srv.SetHealthChecker(checker)

	d := &Daemon{
		Config:  cfg,
		DB:      db,
		Server:  srv,
		Notify:  n,
		Checker: checker,
		Version: version,
	}
	if cfg.Scheduler.Enabled {
		d.Scheduler = NewScheduler(n, cfg.Scheduler)
	}
	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.Scheduler != nil {
		d.Scheduler.Start()
	}
	go d.Checker.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if d.Scheduler != nil {
			d.Scheduler.Stop()
		}
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Praxis serving on http://%s\n", addr)
	if d.Scheduler != nil {
		fmt.Println("  Reminders: scheduler running")
	}
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Scheduler != nil {
		d.Scheduler.Stop()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// unavailableExtractor rejects uploads when no provider key is configured.
type unavailableExtractor struct{}

func (unavailableExtractor) Extract(ctx context.Context, notes string) ([]extract.Item, error) {
	return nil, fmt.Errorf("notes extraction is not configured")
}
