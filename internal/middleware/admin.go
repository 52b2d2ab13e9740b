package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
)

// AdminTokenHeader carries the admin token on maintenance requests.
const AdminTokenHeader = "X-Admin-Token"

// AdminOnly guards maintenance routes such as the log viewer. With a token
// configured the request must present it in AdminTokenHeader. Without one,
// only direct loopback requests are let through; anything relayed by a proxy
// is refused because its origin cannot be told from the socket address.
func AdminOnly(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" {
				got := r.Header.Get(AdminTokenHeader)
				if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !isLoopback(r.RemoteAddr) || r.Header.Get("X-Forwarded-For") != "" || r.Header.Get("Forwarded") != "" {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
