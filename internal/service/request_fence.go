package service

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type fenceEntry struct {
	gen     uint64
	touched time.Time
}

// RequestFence issues a monotonically increasing generation per (session,
// view). A response is applied only while its generation is still the latest
// issued for that view, so a slow reply never overwrites a newer one.
type RequestFence struct {
	mu      sync.Mutex
	entries map[string]fenceEntry
	now     func() time.Time
}

// NewRequestFence creates an empty fence
func NewRequestFence() *RequestFence {
	return &RequestFence{
		entries: make(map[string]fenceEntry),
		now:     time.Now,
	}
}

func fenceKey(sessionID uuid.UUID, view string) string {
	return sessionID.String() + ":" + view
}

// Next issues the next generation for the view
func (f *RequestFence) Next(sessionID uuid.UUID, view string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := fenceKey(sessionID, view)
	entry := f.entries[key]
	entry.gen++
	entry.touched = f.now()
	f.entries[key] = entry
	return entry.gen
}

// IsLatest reports whether gen is still the newest generation for the view
func (f *RequestFence) IsLatest(sessionID uuid.UUID, view string, gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.entries[fenceKey(sessionID, view)].gen == gen
}

// ForgetSession drops every generation counter of a session
func (f *RequestFence) ForgetSession(sessionID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := sessionID.String() + ":"
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
}

// Prune drops counters last advanced before the cutoff. Sessions that expire
// without a logout never call ForgetSession; the janitor reclaims them here.
func (f *RequestFence) Prune(before time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	removed := 0
	for key, entry := range f.entries {
		if entry.touched.Before(before) {
			delete(f.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked (session, view) counters
func (f *RequestFence) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
