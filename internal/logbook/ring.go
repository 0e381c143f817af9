package logbook

import (
	"strings"
	"sync"
)

// ring is a zapcore.WriteSyncer holding the last encoded lines.
type ring struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
	total int
}

func newRing(capacity int) *ring {
	return &ring{lines: make([]string, capacity)}
}

func (r *ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		r.lines[r.next] = line
		r.next = (r.next + 1) % len(r.lines)
		if r.next == 0 {
			r.full = true
		}
		r.total++
	}
	return len(p), nil
}

func (r *ring) Sync() error {
	return nil
}

func (r *ring) last(n int) ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := r.next
	if r.full {
		size = len(r.lines)
	}
	if n > size {
		n = size
	}
	if n == 0 {
		return nil, r.total
	}
	out := make([]string, 0, n)
	start := (r.next - n + len(r.lines)) % len(r.lines)
	for i := 0; i < n; i++ {
		out = append(out, r.lines[(start+i)%len(r.lines)])
	}
	return out, r.total
}
