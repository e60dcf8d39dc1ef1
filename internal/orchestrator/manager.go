package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ripmedia/internal/events"
	"ripmedia/internal/history"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/notifications"
	"ripmedia/internal/pipeline"
)

const (
	// DefaultParallel bounds concurrent items when Config.Parallel is unset.
	DefaultParallel = 2
	// DefaultProgressInterval is the minimum spacing of progress events per item.
	DefaultProgressInterval = 200 * time.Millisecond
)

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("orchestrator is shut down")

// Runner executes one URL. *pipeline.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, url string, opts pipeline.Options, rep pipeline.Reporter, chooser pipeline.Chooser) ([]string, error)
}

// Recorder persists finished items and batches. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
	RecordBatch(ctx context.Context, b history.Batch) error
}

// Publisher receives state changes. *events.Broker satisfies it.
type Publisher interface {
	Publish(evt events.Event)
}

// Config holds the per-run settings shared by every item.
type Config struct {
	Parallel  int
	Pipeline  pipeline.Options
	SpeedUnit string
	// Source labels batches in history, for example "webhost".
	Source string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPublisher sets where events are sent.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithNotifier sets the notification service.
func WithNotifier(n notifications.Service) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithRecorder enables history persistence.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithProgressInterval overrides the progress throttle.
func WithProgressInterval(d time.Duration) Option {
	return func(m *Manager) { m.progressInterval = d }
}

// WithBatchIDs overrides batch ID generation.
func WithBatchIDs(next func() string) Option {
	return func(m *Manager) {
		if next != nil {
			m.newBatchID = next
		}
	}
}

// Manager coordinates concurrent pipeline runs.
type Manager struct {
	runner           Runner
	cfg              Config
	logger           *slog.Logger
	publisher        Publisher
	notifier         notifications.Service
	recorder         Recorder
	now              func() time.Time
	progressInterval time.Duration
	newBatchID       func() string

	sem      chan struct{}
	baseCtx  context.Context
	cancel   context.CancelFunc
	stopping chan struct{}
	wg       sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	nextID  int64
	order   []int64
	items   map[int64]*model.ItemState
	batches map[string]*batchState
}

type batchState struct {
	id        string
	total     int
	remaining int
	saved     int
	failed    int
	started   time.Time
}

// New constructs a Manager. Interactive selection is never available to
// orchestrated runs, so cfg.Pipeline.Interactive is cleared.
func New(runner Runner, cfg Config, opts ...Option) *Manager {
	if cfg.Parallel <= 0 {
		cfg.Parallel = DefaultParallel
	}
	cfg.Pipeline.Interactive = false
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		runner:           runner,
		cfg:              cfg,
		logger:           logging.NewNop(),
		notifier:         notifications.NewService(nil),
		now:              time.Now,
		progressInterval: DefaultProgressInterval,
		newBatchID:       uuid.NewString,
		sem:              make(chan struct{}, cfg.Parallel),
		baseCtx:          ctx,
		cancel:           cancel,
		stopping:         make(chan struct{}),
		items:            make(map[int64]*model.ItemState),
		batches:          make(map[string]*batchState),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "orchestrator")
	return m
}

// Enqueue registers urls and starts them in the background. Blank entries are
// skipped. The returned states are snapshots in queued status.
func (m *Manager) Enqueue(urls []string) ([]model.ItemState, error) {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			cleaned = append(cleaned, u)
		}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if len(cleaned) == 0 {
		m.mu.Unlock()
		return []model.ItemState{}, nil
	}
	batch := &batchState{id: m.newBatchID(), total: len(cleaned), remaining: len(cleaned), started: m.now().UTC()}
	m.batches[batch.id] = batch
	queued := make([]model.ItemState, 0, len(cleaned))
	for _, u := range cleaned {
		m.nextID++
		state := &model.ItemState{
			ID:        m.nextID,
			URL:       u,
			Status:    model.StatusQueued,
			Steps:     map[string]model.StepOutcome{},
			Paths:     []string{},
			UpdatedAt: m.now().UTC(),
		}
		m.items[state.ID] = state
		m.order = append(m.order, state.ID)
		queued = append(queued, state.Clone())
	}
	m.wg.Add(len(queued))
	m.mu.Unlock()

	m.logger.Info("batch enqueued",
		logging.String(logging.FieldEventType, "batch_enqueued"),
		logging.String(logging.FieldCorrelationID, batch.id),
		logging.Int("items", len(queued)),
	)
	for i := range queued {
		snapshot := queued[i]
		m.publish(events.Event{Type: events.TypeQueued, ID: snapshot.ID, BatchID: batch.id, URL: snapshot.URL, Status: snapshot.Status, Item: &snapshot})
		go m.work(snapshot.ID, snapshot.URL, batch.id)
	}
	return queued, nil
}

// Snapshot returns every item in enqueue order.
func (m *Manager) Snapshot() []model.ItemState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ItemState, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id].Clone())
	}
	return out
}

// Item returns a snapshot of one item.
func (m *Manager) Item(id int64) (model.ItemState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.items[id]
	if !ok {
		return model.ItemState{}, false
	}
	return state.Clone(), true
}

// Shutdown stops accepting work, abandons items still waiting for a slot and
// waits for running items. When ctx ends first, running downloads are
// cancelled and ctx's error is returned.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.stopping)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		m.cancel()
		return nil
	case <-ctx.Done():
		m.cancel()
		return ctx.Err()
	}
}

// update applies fn to the item under the lock and returns the new snapshot.
func (m *Manager) update(id int64, fn func(*model.ItemState)) (model.ItemState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.items[id]
	if !ok {
		return model.ItemState{}, false
	}
	fn(state)
	state.UpdatedAt = m.now().UTC()
	return state.Clone(), true
}

// setStatus moves the item forward. Backward moves are ignored.
func (m *Manager) setStatus(id int64, next model.Status, fn func(*model.ItemState)) (model.ItemState, bool) {
	changed := false
	snapshot, ok := m.update(id, func(s *model.ItemState) {
		if s.Status != next && !s.Status.CanTransition(next) {
			return
		}
		changed = s.Status != next
		s.Status = next
		if fn != nil {
			fn(s)
		}
	})
	return snapshot, ok && changed
}

func (m *Manager) publish(evt events.Event) {
	if m.publisher != nil {
		m.publisher.Publish(evt)
	}
}
