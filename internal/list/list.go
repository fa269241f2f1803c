// Package list owns the ordered item list: the sequence, the pending input
// line, and the rules that turn user actions into new sequences. Every
// effective mutation is published to subscribers and followed by a
// debounced save.
package list

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/dragdo/internal/debounce"
	"github.com/Makepad-fr/dragdo/internal/model"
	"github.com/Makepad-fr/dragdo/internal/store"
)

// Persister is the storage the list talks to. *store.Gateway implements it.
type Persister interface {
	Save(ctx context.Context, items []model.Item) error
	Load(ctx context.Context) ([]model.Item, error)
	LoadCached(ctx context.Context) ([]model.Item, error)
	StoreCached(ctx context.Context, items []model.Item) error
}

// Snapshot is a copy of the list state handed to subscribers.
type Snapshot struct {
	Items    []model.Item
	Pending  string
	Revision uint64
}

// Option configures a List.
type Option func(*List)

func WithDebounce(d time.Duration) Option {
	return func(l *List) { l.sched = debounce.New(d) }
}

// WithScheduler shares an existing scheduler. Each list should still own its own.
func WithScheduler(s *debounce.Scheduler) Option {
	return func(l *List) {
		if s != nil {
			l.sched = s
		}
	}
}

func WithIDGenerator(g IDGenerator) Option {
	return func(l *List) {
		if g != nil {
			l.ids = g
		}
	}
}

func WithLogger(lg *log.Logger) Option {
	return func(l *List) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WithCacheFallback makes Initialize fall back to the local mirror when
// the remote load fails.
func WithCacheFallback(on bool) Option {
	return func(l *List) { l.cacheFallback = on }
}

// WithItems seeds the sequence before Initialize. The items are copied.
func WithItems(items []model.Item) Option {
	return func(l *List) { l.items = model.Clone(items) }
}

type List struct {
	persist       Persister
	sched         *debounce.Scheduler
	ids           IDGenerator
	logger        *log.Logger
	cacheFallback bool

	mu      sync.Mutex
	items   []model.Item
	pending string
	rev     uint64
	saveErr error
	// loads counts successful loads; a save queued before the latest
	// load holds a sequence that no longer exists and is dropped.
	loads uint64

	obsMu     sync.Mutex
	observers map[int]func(Snapshot)
	nextObs   int
}

func New(p Persister, opts ...Option) *List {
	l := &List{
		persist:   p,
		ids:       UUIDGenerator{},
		logger:    log.New(io.Discard),
		items:     []model.Item{},
		observers: map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sched == nil {
		l.sched = debounce.New(debounce.DefaultDelay)
	}
	return l
}

// Initialize loads the remote list once. On success the sequence is
// replaced and mirrored to the local cache. On failure the sequence is
// left alone (or taken from the cache when fallback is on) and the load
// error is returned for logging; it is never retried.
func (l *List) Initialize(ctx context.Context) error {
	items, err := l.persist.Load(ctx)
	if err == nil {
		l.adopt(items)
		if cerr := l.persist.StoreCached(ctx, items); cerr != nil {
			l.logger.Warn("cache write failed", "err", cerr)
		}
		l.logger.Info("list loaded", "items", len(items))
		return nil
	}

	if store.KindOf(err) == store.KindNotConfigured {
		l.logger.Debug("no remote configured")
	} else {
		l.logger.Warn("remote load failed", "kind", store.KindOf(err), "err", err)
	}
	if l.cacheFallback {
		cached, cerr := l.persist.LoadCached(ctx)
		if cerr == nil {
			l.adopt(cached)
			l.logger.Info("list loaded from cache", "items", len(cached))
		} else {
			l.logger.Debug("no cached list", "err", cerr)
		}
	}
	return err
}

// adopt replaces the sequence with a loaded one and drops any save queued
// against the sequence it replaces.
func (l *List) adopt(items []model.Item) {
	if l.sched.Cancel() {
		l.logger.Debug("dropped save queued before load")
	}
	l.mu.Lock()
	l.loads++
	l.items = model.Clone(items)
	l.rev++
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.publish(snap)
}

// Reorder moves the item at source to destination. ok=false means the
// drop was cancelled. Either way an invalid request leaves the list as is.
// It reports whether the list changed.
func (l *List) Reorder(source, destination int, ok bool) bool {
	if !ok {
		return false
	}
	l.mu.Lock()
	n := len(l.items)
	if source < 0 || source >= n || destination < 0 || destination >= n {
		l.mu.Unlock()
		return false
	}
	l.items = model.Move(l.items, source, destination)
	snap, loads := l.mutatedLocked(), l.loads
	l.mu.Unlock()

	l.publish(snap)
	l.scheduleSave(snap.Items, loads)
	return true
}

// SetPendingInput replaces the uncommitted input text. It never saves.
func (l *List) SetPendingInput(text string) {
	l.mu.Lock()
	if l.pending == text {
		l.mu.Unlock()
		return
	}
	l.pending = text
	l.rev++
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.publish(snap)
}

// Commit appends the pending input as a new item. Blank input is ignored.
func (l *List) Commit() (model.Item, bool) {
	l.mu.Lock()
	pending := l.pending
	l.mu.Unlock()
	return l.AppendItem(pending)
}

// AppendItem adds an unchecked item with a fresh id at the end and clears
// the pending input. Content that is blank after trimming is a no-op and
// leaves the pending input untouched.
func (l *List) AppendItem(content string) (model.Item, bool) {
	if strings.TrimSpace(content) == "" {
		return model.Item{}, false
	}

	l.mu.Lock()
	it := model.Item{ID: l.ids.NewID(l.items), Content: content}
	l.items = append(model.Clone(l.items), it)
	l.pending = ""
	snap, loads := l.mutatedLocked(), l.loads
	l.mu.Unlock()

	l.publish(snap)
	l.scheduleSave(snap.Items, loads)
	return it, true
}

// ToggleChecked flips the checked flag of the item with id. Unknown ids
// are ignored. It reports whether an item was toggled.
func (l *List) ToggleChecked(id string) bool {
	l.mu.Lock()
	i := model.IndexOf(l.items, id)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	next := model.Clone(l.items)
	next[i].Checked = !next[i].Checked
	l.items = next
	snap, loads := l.mutatedLocked(), l.loads
	l.mu.Unlock()

	l.publish(snap)
	l.scheduleSave(snap.Items, loads)
	return true
}

// Items returns a copy of the sequence.
func (l *List) Items() []model.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.Clone(l.items)
}

// Pending returns the uncommitted input text.
func (l *List) Pending() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

func (l *List) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// LastSaveError returns the error from the most recent save, nil once a
// save succeeds.
func (l *List) LastSaveError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveErr
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// on the goroutine that made the change and must not block. The returned
// func unsubscribes.
func (l *List) Subscribe(fn func(Snapshot)) (cancel func()) {
	l.obsMu.Lock()
	id := l.nextObs
	l.nextObs++
	l.observers[id] = fn
	l.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.obsMu.Lock()
			delete(l.observers, id)
			l.obsMu.Unlock()
		})
	}
}

// Flush runs a pending save now instead of waiting for the quiet period.
func (l *List) Flush(ctx context.Context) {
	l.sched.Flush(ctx)
}

// Close drops any pending save. Use Flush first to keep it.
func (l *List) Close() {
	l.sched.Stop()
}

func (l *List) mutatedLocked() Snapshot {
	l.rev++
	return l.snapshotLocked()
}

func (l *List) snapshotLocked() Snapshot {
	return Snapshot{Items: model.Clone(l.items), Pending: l.pending, Revision: l.rev}
}

func (l *List) publish(snap Snapshot) {
	l.obsMu.Lock()
	fns := make([]func(Snapshot), 0, len(l.observers))
	for _, fn := range l.observers {
		fns = append(fns, fn)
	}
	l.obsMu.Unlock()

	for _, fn := range fns {
		fn(Snapshot{Items: model.Clone(snap.Items), Pending: snap.Pending, Revision: snap.Revision})
	}
}

// scheduleSave queues a save of items; a newer call replaces it. loads is
// the load count the items were derived from.
func (l *List) scheduleSave(items []model.Item, loads uint64) {
	l.sched.Schedule(func(ctx context.Context) {
		l.mu.Lock()
		stale := loads != l.loads
		l.mu.Unlock()
		if stale {
			l.logger.Debug("skipped save from before load", "items", len(items))
			return
		}
		err := l.persist.Save(ctx, items)
		l.mu.Lock()
		l.saveErr = err
		l.mu.Unlock()
		switch {
		case store.KindOf(err) == store.KindNotConfigured:
			l.logger.Debug("saved to cache only", "items", len(items))
			return
		case err != nil:
			l.logger.Warn("save failed", "kind", store.KindOf(err), "err", err)
			return
		}
		l.logger.Debug("saved", "items", len(items))
	})
}
