// Package hub runs the background loop that turns submitted expeditions into
// encoded event streams for registered subscribers.
package hub

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/indexer"
)

// ErrQueueFull is returned when a request or registry change cannot be queued.
var ErrQueueFull = errors.New("hub queue full")

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultQueueSize    = 64
)

// DeliverFunc receives one encoded event.
type DeliverFunc func(payload []byte)

// Subscriber receives every event of every handled expedition, encoded in
// Format.
type Subscriber struct {
	Format  event.Format
	Deliver DeliverFunc
}

// RunObserver is notified after each handled expedition, e.g. to persist it.
type RunObserver interface {
	ObserveRun(ctx context.Context, rep indexer.Report, events []event.Event) error
}

// Options configures a Hub. Zero values select defaults.
type Options struct {
	PollInterval time.Duration
	QueueSize    int
	Observer     RunObserver
}

type change struct {
	id  uint64
	sub *Subscriber // nil removes id
}

// Hub owns the subscriber registry and the request queue. Subscribe,
// Unsubscribe and Submit may be called from any goroutine; the registry
// itself is only touched while polling.
type Hub struct {
	indexer  *indexer.Indexer
	interval time.Duration
	observer RunObserver

	requests chan indexer.Expedition
	changes  chan change

	mu          sync.Mutex // serializes polls
	subscribers map[uint64]Subscriber
	nextID      atomic.Uint64
	handled     atomic.Uint64
}

// New creates a hub handling expeditions with ix.
func New(ix *indexer.Indexer, opts Options) *Hub {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	return &Hub{
		indexer:     ix,
		interval:    opts.PollInterval,
		observer:    opts.Observer,
		requests:    make(chan indexer.Expedition, opts.QueueSize),
		changes:     make(chan change, opts.QueueSize),
		subscribers: make(map[uint64]Subscriber),
	}
}

// Subscribe registers s and returns its id. The subscriber becomes active at
// the next loop iteration.
func (h *Hub) Subscribe(s Subscriber) (uint64, error) {
	id := h.nextID.Add(1)
	select {
	case h.changes <- change{id: id, sub: &s}:
		return id, nil
	default:
		return 0, ErrQueueFull
	}
}

// Unsubscribe removes the subscriber id at the next loop iteration.
func (h *Hub) Unsubscribe(id uint64) error {
	select {
	case h.changes <- change{id: id}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Submit queues an expedition.
func (h *Hub) Submit(exp indexer.Expedition) error {
	select {
	case h.requests <- exp:
		return nil
	default:
		return ErrQueueFull
	}
}

// Handled returns the number of expeditions processed so far.
func (h *Hub) Handled() uint64 {
	return h.handled.Load()
}

// Run polls the queues every poll interval until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	slog.Info("hub started", "poll_interval", h.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("hub stopping", "handled", h.Handled())
			return ctx.Err()
		case <-ticker.C:
			h.Poll(ctx)
		}
	}
}

// Poll applies pending registry changes and then handles every queued
// expedition. It returns the number of expeditions handled. Concurrent
// polls run one after another.
func (h *Hub) Poll(ctx context.Context) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.applyChanges()

	n := 0
	for {
		select {
		case exp := <-h.requests:
			h.handle(ctx, exp)
			n++
		default:
			return n
		}
	}
}

func (h *Hub) applyChanges() {
	for {
		select {
		case c := <-h.changes:
			if c.sub == nil {
				delete(h.subscribers, c.id)
				slog.Debug("subscriber removed", "id", c.id)
				continue
			}
			h.subscribers[c.id] = *c.sub
			slog.Debug("subscriber added", "id", c.id, "format", c.sub.Format)
		default:
			return
		}
	}
}

func (h *Hub) handle(ctx context.Context, exp indexer.Expedition) {
	events, rep := h.indexer.Record(exp)
	h.handled.Add(1)

	ids := make([]uint64, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// each format is encoded once per run
	encoded := make(map[event.Format][][]byte, 2)
	for _, id := range ids {
		sub := h.subscribers[id]
		payloads, ok := encoded[sub.Format]
		if !ok {
			payloads = encodeAll(sub.Format, events)
			encoded[sub.Format] = payloads
		}
		for _, p := range payloads {
			sub.Deliver(p)
		}
	}

	if h.observer != nil {
		if err := h.observer.ObserveRun(ctx, rep, events); err != nil {
			slog.Warn("run observer failed", "expedition", exp, "error", err)
		}
	}
}

func encodeAll(f event.Format, events []event.Event) [][]byte {
	out := make([][]byte, 0, len(events))
	for _, e := range events {
		p, err := event.Encode(f, e)
		if err != nil {
			slog.Warn("encoding event", "event", e, "format", f, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}
