package loader

import (
	"context"
	"sync"
)

type sectionState struct {
	loaded  bool
	loading bool
}

// SectionCache tracks which logical sections (tabs) have been populated at
// least once, so switching back to a tab does not refetch it. Caches are
// process-lifetime only; ResetAll drops everything on an identity switch.
type SectionCache struct {
	mu       sync.Mutex
	sections map[string]*sectionState
}

// NewSectionCache creates an empty section cache
func NewSectionCache() *SectionCache {
	return &SectionCache{sections: make(map[string]*sectionState)}
}

// EnsureLoaded runs loaderFn unless the section is already loaded and the
// call is not forced. The loading flag is held for the duration and cleared
// on settlement; the loaded flag is set on success only, so a failed first
// fetch is retried on the next visit. A forced reload bypasses the loaded
// flag without clearing it.
func (c *SectionCache) EnsureLoaded(ctx context.Context, key string, loaderFn func(context.Context) error, force bool) error {
	c.mu.Lock()
	st, ok := c.sections[key]
	if !ok {
		st = &sectionState{}
		c.sections[key] = st
	}
	if st.loaded && !force {
		c.mu.Unlock()
		return nil
	}
	// Overlapping runs for one section are allowed: supersession is the
	// sequencer's job, not the cache's.
	st.loading = true
	c.mu.Unlock()

	err := loaderFn(ctx)

	c.mu.Lock()
	st.loading = false
	if err == nil {
		st.loaded = true
	}
	c.mu.Unlock()
	return err
}

// Loaded reports whether the section has been populated at least once
func (c *SectionCache) Loaded(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.sections[key]
	return ok && st.loaded
}

// Loading reports whether a grouped fetch for the section is in flight
func (c *SectionCache) Loading(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.sections[key]
	return ok && st.loading
}

// ResetAll forgets every section. Used on identity change so per-user data
// never leaks across an actor switch.
func (c *SectionCache) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sections = make(map[string]*sectionState)
}
