package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PreviewPathPrefix is the route under which previews are served.
const PreviewPathPrefix = "/preview/"

// Preview is an uploaded image held for display before it is sent.
type Preview struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	Created     time.Time

	lastUsed time.Time
}

// URL returns the local reference usable as an image source.
func (p *Preview) URL() string {
	return PreviewPathPrefix + p.ID
}

// PreviewService keeps previews in memory until they are released or expire.
type PreviewService struct {
	previews map[string]*Preview
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

func NewPreviewService(ttl time.Duration) *PreviewService {
	return &PreviewService{
		previews: make(map[string]*Preview),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Run evicts expired previews every interval until stop is closed.
func (s *PreviewService) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-stop:
			return
		}
	}
}

// Add stores a copy of data under a fresh id.
func (s *PreviewService) Add(filename, contentType string, data []byte) *Preview {
	buf := make([]byte, len(data))
	copy(buf, data)

	p := &Preview{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType,
		Data:        buf,
		Created:     s.now(),
	}
	p.lastUsed = p.Created

	s.mu.Lock()
	s.previews[p.ID] = p
	s.mu.Unlock()
	return p
}

// Get returns the preview with id, or nil, and marks it as used.
func (s *PreviewService) Get(id string) *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.previews[id]
	if !ok {
		return nil
	}
	p.lastUsed = s.now()
	return p
}

// Release drops a preview. Unknown ids are ignored.
func (s *PreviewService) Release(id string) {
	s.mu.Lock()
	delete(s.previews, id)
	s.mu.Unlock()
}

// Sweep drops previews unused for longer than the ttl and reports how many
// were removed. Controllers release their previews themselves; this only
// catches what was never released.
func (s *PreviewService) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.previews {
		if p.lastUsed.Before(cutoff) {
			delete(s.previews, id)
			removed++
		}
	}
	return removed
}

// Len reports how many previews are held.
func (s *PreviewService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.previews)
}
