package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"ripmedia/internal/config"
	"ripmedia/internal/events"
	"ripmedia/internal/history"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/notifications"
	"ripmedia/internal/preflight"
	"ripmedia/internal/webhost"
)

const defaultShutdownGrace = 30 * time.Second

// Manager is the orchestrator surface the daemon owns.
type Manager interface {
	webhost.Manager
	Shutdown(ctx context.Context) error
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithServerOptions forwards options to the web host server.
func WithServerOptions(opts ...webhost.Option) Option {
	return func(d *Daemon) { d.serverOpts = append(d.serverOpts, opts...) }
}

// WithShutdownGrace bounds how long Stop waits for running downloads.
func WithShutdownGrace(grace time.Duration) Option {
	return func(d *Daemon) {
		if grace > 0 {
			d.shutdownGrace = grace
		}
	}
}

// WithPreflight replaces the readiness checks run at start.
func WithPreflight(run func(context.Context, *config.Config) []preflight.Result) Option {
	return func(d *Daemon) {
		if run != nil {
			d.preflight = run
		}
	}
}

// Daemon runs the web host and enforces single-instance execution.
type Daemon struct {
	cfg           *config.Config
	logger        *slog.Logger
	store         *history.Store
	broker        *events.Broker
	manager       Manager
	server        *webhost.Server
	serverOpts    []webhost.Option
	shutdownGrace time.Duration
	preflight     func(context.Context, *config.Config) []preflight.Result

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	addr    net.Addr
	checks  []preflight.Result
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	Items        map[model.Status]int
	HistoryPath  string
	LockFilePath string
	Preflight    []preflight.Result
}

// New constructs a daemon. store may be nil when history is unavailable.
func New(cfg *config.Config, store *history.Store, broker *events.Broker, manager Manager, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || broker == nil || manager == nil {
		return nil, errors.New("daemon requires config, broker, and manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:           cfg,
		logger:        logging.NewComponentLogger(logger, "daemon"),
		store:         store,
		broker:        broker,
		manager:       manager,
		shutdownGrace: defaultShutdownGrace,
		preflight:     preflight.RunAll,
		lockPath:      lockPath,
		lock:          flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	serverOpts := []webhost.Option{webhost.WithLogger(logger)}
	if store != nil {
		serverOpts = append(serverOpts, webhost.WithHistory(store))
	}
	d.server = webhost.New(cfg.Paths.OutputDir, manager, broker, append(serverOpts, d.serverOpts...)...)
	return d, nil
}

// Start acquires the instance lock, runs preflight checks, and begins
// serving on the configured address.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another ripmedia webhost instance is already running")
	}

	d.checks = d.preflight(ctx, d.cfg)
	for _, failed := range preflight.Failed(d.checks) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String(logging.FieldErrorHint, failed.Detail),
			logging.String(logging.FieldImpact, "downloads that need it will fail"),
		)
	}

	addr, err := d.server.Start(ctx, d.cfg.ListenAddress())
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("start webhost: %w", err)
	}
	d.addr = addr
	d.running.Store(true)
	d.logger.Info("ripmedia webhost started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("address", addr.String()),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop closes the listener, lets running downloads finish within the grace
// period, and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	d.server.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), d.shutdownGrace)
	defer cancel()
	if err := d.manager.Shutdown(ctx); err != nil {
		logging.WarnWithContext(d.logger, "downloads cancelled at shutdown", "daemon_shutdown_timeout",
			logging.Duration("grace", d.shutdownGrace),
			logging.Error(err),
		)
	}
	d.broker.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("ripmedia webhost stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close stops the daemon and releases the history store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// URL returns the browser address of the running web host, or "".
func (d *Daemon) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.addr == nil {
		return ""
	}
	host, port, err := net.SplitHostPort(d.addr.String())
	if err != nil {
		return "http://" + d.addr.String() + "/"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	counts := make(map[model.Status]int)
	for _, item := range d.manager.Snapshot() {
		counts[item.Status]++
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	address := ""
	if d.addr != nil {
		address = d.addr.String()
	}
	return Status{
		Running:      d.running.Load(),
		Address:      address,
		Items:        counts,
		HistoryPath:  d.cfg.HistoryPath(),
		LockFilePath: d.lockPath,
		Preflight:    append([]preflight.Result(nil), d.checks...),
	}
}

// TestNotification sends a test notification using the current configuration.
func TestNotification(ctx context.Context, cfg *config.Config) (bool, string, error) {
	if cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(cfg)
	if err := notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
