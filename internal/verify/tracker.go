package verify

import "sync"

// Tracker keeps the set of live tunnels so the signal handler and teardown
// can kill them unconditionally. Tunnels are fire-and-forget children; none
// may outlive the process.
type Tracker struct {
	mu      sync.Mutex
	tunnels []Tunnel
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Track registers a tunnel for later teardown.
func (t *Tracker) Track(tunnel Tunnel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tunnels = append(t.tunnels, tunnel)
}

// CloseAll closes every tracked tunnel and forgets them. Idempotent.
func (t *Tracker) CloseAll() {
	t.mu.Lock()
	tunnels := t.tunnels
	t.tunnels = nil
	t.mu.Unlock()

	for _, tunnel := range tunnels {
		tunnel.Close()
	}
}

// Len returns the number of currently tracked tunnels.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tunnels)
}
