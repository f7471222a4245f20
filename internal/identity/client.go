package identity

import (
	"net"
	"net/http"
	"strings"
)

// Client carries the unhashed request signals forwarded with every event.
type Client struct {
	IP        string
	UserAgent string
}

// ClientFromRequest resolves the client IP and user agent.
// IP precedence: payloadIP, then the first X-Forwarded-For entry, then the
// peer address. The user agent only ever comes from the request header.
func ClientFromRequest(r *http.Request, payloadIP string) Client {
	return Client{
		IP:        clientIP(r, strings.TrimSpace(payloadIP)),
		UserAgent: r.Header.Get("User-Agent"),
	}
}

func clientIP(r *http.Request, payloadIP string) string {
	if payloadIP != "" {
		return payloadIP
	}
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		first, _, _ := strings.Cut(xff[0], ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
