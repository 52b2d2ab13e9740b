package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cropdetector/internal/controller"
	"cropdetector/internal/metrics"

	"github.com/google/uuid"
)

// CookieName carries the session id.
const CookieName = "session_id"

type contextKey struct{}

// Factory builds the controller for a newly mounted session.
type Factory func(id string) *controller.Controller

type entry struct {
	ctrl     *controller.Controller
	lastSeen time.Time
}

// Manager maps session ids to controllers. A session is mounted on first
// request and unmounted after ttl of inactivity.
type Manager struct {
	factory  Factory
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*entry
	mu       sync.Mutex
}

func NewManager(factory Factory, ttl time.Duration) *Manager {
	return &Manager{
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the controller for id, mounting it when unknown.
func (m *Manager) Get(id string) *controller.Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		e = &entry{ctrl: m.factory(id)}
		m.sessions[id] = e
		metrics.ActiveSessions.Inc()
	}
	e.lastSeen = m.now()
	return e.ctrl
}

// Lookup returns the controller for id without mounting one.
func (m *Manager) Lookup(id string) (*controller.Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.ctrl, true
}

// Sweep unmounts idle sessions and returns their ids.
func (m *Manager) Sweep() []string {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*entry
	var ids []string
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e)
			ids = append(ids, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, e := range expired {
		e.ctrl.Close()
		metrics.ActiveSessions.Dec()
	}
	return ids
}

// Run sweeps every interval until stop is closed.
func (m *Manager) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-stop:
			return
		}
	}
}

// Len reports the number of mounted sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Middleware makes sure every request carries a session cookie and stores
// the id in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(CookieName); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				id = cookie.Value
			}
		}

		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// WithID stores a session id in ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IDFromContext returns the session id stored by Middleware.
func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
