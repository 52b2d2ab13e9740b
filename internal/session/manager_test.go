package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cropdetector/internal/controller"
	"cropdetector/internal/service/predict"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPredictor struct{}

func (nopPredictor) Predict(context.Context, string, []byte) predict.Outcome {
	return predict.Success(predict.NewPrediction("x", 1))
}

func newTestManager(ttl time.Duration) (*Manager, *int) {
	mounted := 0
	m := NewManager(func(id string) *controller.Controller {
		mounted++
		return controller.New(nopPredictor{}, controller.Options{SessionID: id})
	}, ttl)
	return m, &mounted
}

func TestManager_GetMountsOnce(t *testing.T) {
	m, mounted := newTestManager(time.Minute)

	a := m.Get("s1")
	b := m.Get("s1")
	c := m.Get("s2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, *mounted)
	assert.Equal(t, 2, m.Len())
}

func TestManager_Lookup(t *testing.T) {
	m, _ := newTestManager(time.Minute)

	_, ok := m.Lookup("s1")
	assert.False(t, ok)

	m.Get("s1")
	_, ok = m.Lookup("s1")
	assert.True(t, ok)
}

func TestManager_SweepUnmountsIdle(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Get("old")
	now = now.Add(2 * time.Minute)
	m.Get("fresh")

	expired := m.Sweep()

	assert.Equal(t, []string{"old"}, expired)
	assert.Equal(t, 1, m.Len())
	_, ok := m.Lookup("fresh")
	assert.True(t, ok)
}

func TestMiddleware_IssuesCookie(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestMiddleware_ReusesValidCookie(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	id := uuid.NewString()
	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, id, seen)
	assert.Empty(t, rec.Result().Cookies())
}

func TestMiddleware_ReplacesForgedCookie(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "../../etc"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, "../../etc", seen)
}
