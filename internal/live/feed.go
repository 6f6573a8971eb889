package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Loader reads a fresh snapshot from the store.
type Loader[T any] func(ctx context.Context) (T, error)

// Feed is a shared snapshot stream. The upstream loop starts with the first
// subscriber, reloads on every broker signal for its topics, and stops once
// the last subscriber has been gone for the grace period.
type Feed[T any] struct {
	broker *Broker
	topics []Topic
	load   Loader[T]
	grace  time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	subs      map[uuid.UUID]*Subscription[T]
	latest    T
	hasLatest bool
	cancel    context.CancelFunc
	runID     uint64
	idleGen   uint64
	idleTimer *time.Timer
}

// FeedConfig configures a Feed.
type FeedConfig[T any] struct {
	Broker *Broker
	Topics []Topic
	Load   Loader[T]
	Grace  time.Duration
	Logger *slog.Logger
}

// NewFeed constructs an idle feed.
func NewFeed[T any](cfg FeedConfig[T]) *Feed[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed[T]{
		broker: cfg.Broker,
		topics: cfg.Topics,
		load:   cfg.Load,
		grace:  cfg.Grace,
		logger: logger,
		subs:   make(map[uuid.UUID]*Subscription[T]),
	}
}

// Subscription delivers the newest snapshot on C. C is closed by Close or
// when the context passed to Subscribe ends.
type Subscription[T any] struct {
	ID   uuid.UUID
	C    <-chan T
	ch   chan T
	feed *Feed[T]
	done chan struct{}
	once sync.Once
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		close(s.done)
		s.feed.remove(s.ID)
	})
}

// Subscribe attaches a subscriber. If a snapshot is already known it is
// delivered immediately.
func (f *Feed[T]) Subscribe(ctx context.Context) *Subscription[T] {
	ch := make(chan T, 1)
	sub := &Subscription[T]{ID: uuid.New(), C: ch, ch: ch, feed: f, done: make(chan struct{})}

	f.mu.Lock()
	f.subs[sub.ID] = sub
	f.idleGen++
	if f.idleTimer != nil {
		f.idleTimer.Stop()
		f.idleTimer = nil
	}
	if f.hasLatest {
		offer(sub.ch, f.latest)
	}
	if f.cancel == nil {
		f.start()
	}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	return sub
}

// Running reports whether the upstream loop is active.
func (f *Feed[T]) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel != nil
}

// Subscribers reports the number of attached subscribers.
func (f *Feed[T]) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// start must be called with f.mu held.
func (f *Feed[T]) start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.runID++
	runID := f.runID
	signals, unlisten := f.broker.Listen(f.topics...)
	go f.run(ctx, runID, signals, unlisten)
}

func (f *Feed[T]) run(ctx context.Context, runID uint64, signals <-chan struct{}, unlisten func()) {
	defer unlisten()
	f.refresh(ctx, runID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			f.refresh(ctx, runID)
		}
	}
}

func (f *Feed[T]) refresh(ctx context.Context, runID uint64) {
	value, err := f.load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			f.logger.Warn("live feed reload failed", slog.Any("topics", f.topics), slog.Any("error", err))
		}
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.runID != runID || f.cancel == nil {
		return
	}
	f.latest = value
	f.hasLatest = true
	for _, sub := range f.subs {
		offer(sub.ch, value)
	}
}

func (f *Feed[T]) remove(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return
	}
	delete(f.subs, id)
	close(sub.ch)
	if len(f.subs) > 0 || f.cancel == nil {
		return
	}
	if f.grace <= 0 {
		f.stopLocked()
		return
	}
	f.idleGen++
	gen := f.idleGen
	f.idleTimer = time.AfterFunc(f.grace, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.idleGen == gen && len(f.subs) == 0 {
			f.stopLocked()
		}
	})
}

func (f *Feed[T]) stopLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.idleTimer = nil
	var zero T
	f.latest = zero
	f.hasLatest = false
}

// offer replaces any undelivered value so a slow reader only sees the newest.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
