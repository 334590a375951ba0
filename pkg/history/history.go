package history

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/matst80/slask-intel/pkg/storage"
	"github.com/matst80/slask-intel/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const DefaultCapacity = 10

var ErrEntryNotFound = errors.New("history entry not found")

var (
	historyWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskintel_history_write_errors_total",
		Help: "The total number of failed history writes",
	})
	historyCorrupt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskintel_history_corrupt_total",
		Help: "The total number of discarded persisted histories",
	})
)

// Entry is one applied filter state. Timestamp is unix milliseconds.
type Entry struct {
	Timestamp      int64             `json:"timestamp"`
	Filters        types.FilterState `json:"filters"`
	SourceLocation string            `json:"sourceLocation"`
}

func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

func (e Entry) clone() Entry {
	e.Filters = e.Filters.Clone()
	return e
}

// Store is a bounded, most recent first log of filter states persisted under a single key.
type Store struct {
	mu       sync.Mutex
	kv       storage.KeyValueStore
	key      string
	capacity int
	entries  []Entry
	Now      func() time.Time
}

func NewStore(kv storage.KeyValueStore, key string, capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		kv:       kv,
		key:      key,
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
		Now:      time.Now,
	}
}

// Load restores the persisted list. Missing or malformed data leaves the store empty.
func (h *Store) Load(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make([]Entry, 0, h.capacity)

	var stored []Entry
	err := storage.GetJson(ctx, h.kv, h.key, &stored)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		historyCorrupt.Inc()
		log.Printf("Discarding stored history %s: %v", h.key, err)
		return
	}
	for _, e := range stored {
		if len(h.entries) >= h.capacity {
			break
		}
		e.Filters.Sanitize()
		h.entries = append(h.entries, e)
	}
}

// Record prepends a copy of state. The in memory list is always updated, a
// returned error only means the persisted copy is stale.
func (h *Store) Record(ctx context.Context, state types.FilterState, location string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry := Entry{
		Timestamp:      h.Now().UnixMilli(),
		Filters:        state.Clone(),
		SourceLocation: location,
	}
	h.entries = append([]Entry{entry}, h.entries...)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[:h.capacity]
	}
	return h.persist(ctx)
}

func (h *Store) persist(ctx context.Context) error {
	err := storage.SetJson(ctx, h.kv, h.key, h.entries)
	if err != nil {
		historyWriteErrors.Inc()
	}
	return err
}

func (h *Store) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make([]Entry, 0, h.capacity)
	return h.kv.Delete(ctx, h.key)
}

// Apply returns the state stored at index.
func (h *Store) Apply(index int) (types.FilterState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.entries) {
		return types.FilterState{}, ErrEntryNotFound
	}
	return h.entries[index].Filters.Clone(), nil
}

func (h *Store) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	ret := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		ret[i] = e.clone()
	}
	return ret
}

func (h *Store) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
