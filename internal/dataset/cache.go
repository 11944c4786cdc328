package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gonarrate/domain/core"
	domain "gonarrate/domain/dataset"
	"gonarrate/internal"
	"gonarrate/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Cache is the process-wide dataset store. Each registered name is decoded at
// most once: concurrent first loads of a name collapse into one read, the
// result is published under the write lock, and from then on the entry is
// immutable and served under the read lock. Entries are dropped only by an
// explicit Invalidate; failed loads are not cached.
//
// The shared read runs detached from the cancellation of whichever caller
// started it. Each caller still stops waiting when its own context ends.
type Cache struct {
	source ports.DatasetSource
	fp     ports.Fingerprinter
	refs   map[string]string
	logger *internal.Logger

	mu      sync.RWMutex
	entries map[string]*entry
	gens    map[string]uint64
	group   singleflight.Group
}

type entry struct {
	ds          *domain.Dataset
	fingerprint string
	loadedAt    time.Time
}

// EntryInfo describes one registered dataset for listings
type EntryInfo struct {
	Name        string    `json:"name"`
	Ref         string    `json:"ref"`
	Loaded      bool      `json:"loaded"`
	Rows        int       `json:"rows,omitempty"`
	Columns     int       `json:"columns,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
}

// NewCache registers name → reference pairs. The registry is fixed for the
// cache's lifetime. If source also implements ports.Fingerprinter, entries
// record a fingerprint for Stale.
func NewCache(source ports.DatasetSource, refs map[string]string, logger *internal.Logger) *Cache {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	reg := make(map[string]string, len(refs))
	for k, v := range refs {
		reg[k] = v
	}
	c := &Cache{
		source:  source,
		refs:    reg,
		logger:  logger,
		entries: make(map[string]*entry),
		gens:    make(map[string]uint64),
	}
	if fp, ok := source.(ports.Fingerprinter); ok {
		c.fp = fp
	}
	return c
}

// Names returns registered dataset names, sorted
func (c *Cache) Names() []string {
	names := make([]string, 0, len(c.refs))
	for name := range c.refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registered reports whether name is in the registry
func (c *Cache) Registered(name string) bool {
	_, ok := c.refs[name]
	return ok
}

// Load returns the requested datasets, decoding any not yet cached. With no
// names it loads every registered dataset. Any failure fails the whole call.
func (c *Cache) Load(ctx context.Context, names ...string) (map[string]*domain.Dataset, error) {
	if len(names) == 0 {
		names = c.Names()
	}
	out := make(map[string]*domain.Dataset, len(names))
	for _, name := range names {
		ds, err := c.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		out[name] = ds
	}
	return out, nil
}

// Get returns one dataset, decoding it on first access
func (c *Cache) Get(ctx context.Context, name string) (*domain.Dataset, error) {
	if e := c.lookup(name); e != nil {
		return e.ds, nil
	}
	ref, ok := c.refs[name]
	if !ok {
		return nil, core.NewDataUnavailableError(name, fmt.Errorf("not registered"))
	}

	ch := c.group.DoChan(name, func() (interface{}, error) {
		if e := c.lookup(name); e != nil {
			return e.ds, nil
		}
		return c.populate(context.WithoutCancel(ctx), name, ref, c.generation(name))
	})
	select {
	case <-ctx.Done():
		return nil, core.NewDataUnavailableError(name, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Trace("dataset %s load shared with concurrent caller", name)
		}
		return res.Val.(*domain.Dataset), nil
	}
}

func (c *Cache) lookup(name string) *entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[name]
}

func (c *Cache) generation(name string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[name]
}

// populate decodes name and publishes it unless an Invalidate ran after gen
// was read, in which case the caller gets the data but the cache stays empty.
func (c *Cache) populate(ctx context.Context, name, ref string, gen uint64) (*domain.Dataset, error) {
	start := time.Now()
	ds, err := c.source.Read(ctx, name, ref)
	if err != nil {
		c.logger.Error("dataset %s (%s) unavailable: %v", name, ref, err)
		return nil, core.NewDataUnavailableError(name, err)
	}

	e := &entry{ds: ds, loadedAt: time.Now()}
	if c.fp != nil {
		fp, err := c.fp.Fingerprint(ctx, ref)
		if err != nil {
			c.logger.Warn("dataset %s loaded but fingerprint failed: %v", name, err)
		}
		e.fingerprint = fp
	}

	c.mu.Lock()
	if existing, ok := c.entries[name]; ok {
		c.mu.Unlock()
		return existing.ds, nil
	}
	if c.gens[name] != gen {
		c.mu.Unlock()
		c.logger.Info("dataset %s invalidated while loading; not cached", name)
		return ds, nil
	}
	c.entries[name] = e
	c.mu.Unlock()
	c.logger.Info("dataset %s loaded from %s in %s (%d rows)", name, ref, time.Since(start).Round(time.Millisecond), ds.RowCount())
	return ds, nil
}

// Warm loads every registered dataset concurrently and reports the first
// failure once all loads have finished
func (c *Cache) Warm(ctx context.Context) error {
	var g errgroup.Group
	for _, name := range c.Names() {
		name := name
		g.Go(func() error {
			_, err := c.Get(ctx, name)
			return err
		})
	}
	return g.Wait()
}

// Stale reports whether the stored data changed since it was cached. Unloaded
// entries and sources without fingerprints are never stale.
func (c *Cache) Stale(ctx context.Context, name string) (bool, error) {
	e := c.lookup(name)
	if e == nil || c.fp == nil || e.fingerprint == "" {
		return false, nil
	}
	current, err := c.fp.Fingerprint(ctx, c.refs[name])
	if err != nil {
		return false, core.NewDataUnavailableError(name, err)
	}
	return current != e.fingerprint, nil
}

// Invalidate drops a cached entry so the next Get decodes it again. A load
// already in flight still answers its callers but is not published. It
// reports whether an entry was present.
func (c *Cache) Invalidate(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[name]
	delete(c.entries, name)
	c.gens[name]++
	c.group.Forget(name)
	if ok {
		c.logger.Info("dataset %s invalidated", name)
	}
	return ok
}

// Entries describes every registered dataset
func (c *Cache) Entries() []EntryInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := c.Names()
	out := make([]EntryInfo, len(names))
	for i, name := range names {
		info := EntryInfo{Name: name, Ref: c.refs[name]}
		if e, ok := c.entries[name]; ok {
			info.Loaded = true
			info.Rows = e.ds.RowCount()
			info.Columns = len(e.ds.Columns())
			info.Fingerprint = e.fingerprint
			info.LoadedAt = e.loadedAt
		}
		out[i] = info
	}
	return out
}
