package index

import (
	"sync"

	"github.com/matst80/slask-intel/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var totalItems = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "slaskintel_records_total",
	Help: "The total number of records in the repository",
})

// Repository is the read side the controller evaluates against.
type Repository interface {
	All() []types.Record
	Get(id string) (types.Record, bool)
	Len() int
	Version() uint64
}

// ChangeHandler is notified after records are added, replaced or removed.
type ChangeHandler interface {
	RecordsChanged(version uint64)
}

type ChangeHandlerFunc func(version uint64)

func (f ChangeHandlerFunc) RecordsChanged(version uint64) {
	f(version)
}

// MemoryRepository keeps records in insertion order. Records handed out are copies.
type MemoryRepository struct {
	mu       sync.RWMutex
	items    []types.Record
	position map[string]int
	version  uint64
	handlers []ChangeHandler
}

func NewMemoryRepository(records ...types.Record) *MemoryRepository {
	r := &MemoryRepository{
		items:    make([]types.Record, 0, len(records)),
		position: make(map[string]int, len(records)),
	}
	r.upsertUnsafe(records)
	return r
}

func (r *MemoryRepository) AddChangeHandler(handler ChangeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, handler)
}

func (r *MemoryRepository) All() []types.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]types.Record, len(r.items))
	for i, item := range r.items {
		ret[i] = item.Clone()
	}
	return ret
}

func (r *MemoryRepository) Get(id string) (types.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.position[id]
	if !ok {
		return types.Record{}, false
	}
	return r.items[idx].Clone(), true
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *MemoryRepository) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *MemoryRepository) upsertUnsafe(records []types.Record) {
	for _, record := range records {
		if record.Id == "" {
			continue
		}
		record = record.Clone()
		if idx, ok := r.position[record.Id]; ok {
			r.items[idx] = record
			continue
		}
		r.position[record.Id] = len(r.items)
		r.items = append(r.items, record)
	}
	r.version++
	totalItems.Set(float64(len(r.items)))
}

func (r *MemoryRepository) notify() {
	r.mu.RLock()
	version := r.version
	handlers := append([]ChangeHandler(nil), r.handlers...)
	r.mu.RUnlock()
	for _, h := range handlers {
		h.RecordsChanged(version)
	}
}

// Upsert replaces records with a known id in place and appends new ones.
func (r *MemoryRepository) Upsert(records ...types.Record) {
	r.mu.Lock()
	r.upsertUnsafe(records)
	r.mu.Unlock()
	r.notify()
}

// Replace swaps the whole collection, records missing from the new set are dropped.
func (r *MemoryRepository) Replace(records ...types.Record) {
	r.mu.Lock()
	r.items = make([]types.Record, 0, len(records))
	r.position = make(map[string]int, len(records))
	r.upsertUnsafe(records)
	r.mu.Unlock()
	r.notify()
}

func (r *MemoryRepository) Delete(ids ...string) {
	r.mu.Lock()
	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	kept := r.items[:0]
	for _, item := range r.items {
		if _, ok := remove[item.Id]; !ok {
			kept = append(kept, item)
		}
	}
	r.items = kept
	r.position = make(map[string]int, len(kept))
	for i, item := range kept {
		r.position[item.Id] = i
	}
	r.version++
	totalItems.Set(float64(len(r.items)))
	r.mu.Unlock()
	r.notify()
}
