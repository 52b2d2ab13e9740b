package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		token      string
		remoteAddr string
		header     map[string]string
		want       int
	}{
		{"loopback v4", "", "127.0.0.1:5000", nil, http.StatusTeapot},
		{"loopback v6", "", "[::1]:5000", nil, http.StatusTeapot},
		{"remote", "", "203.0.113.7:5000", nil, http.StatusForbidden},
		{"proxied from loopback", "", "127.0.0.1:5000", map[string]string{"X-Forwarded-For": "203.0.113.7"}, http.StatusForbidden},
		{"forwarded header", "", "127.0.0.1:5000", map[string]string{"Forwarded": "for=203.0.113.7"}, http.StatusForbidden},
		{"garbage address", "", "not-an-address", nil, http.StatusForbidden},
		{"token accepted from anywhere", "s3cret", "203.0.113.7:5000", map[string]string{AdminTokenHeader: "s3cret"}, http.StatusTeapot},
		{"wrong token", "s3cret", "127.0.0.1:5000", map[string]string{AdminTokenHeader: "guess"}, http.StatusUnauthorized},
		{"missing token", "s3cret", "127.0.0.1:5000", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/logs/info", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			AdminOnly(tt.token)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
