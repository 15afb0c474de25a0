package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	trusted := parseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.7 ", "not-an-ip"})

	cases := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{name: "direct peer", remoteAddr: "203.0.113.9:5123", want: "203.0.113.9"},
		{name: "spoofed header from untrusted peer", remoteAddr: "203.0.113.9:5123", xff: "1.1.1.1", xRealIP: "2.2.2.2", want: "203.0.113.9"},
		{name: "forwarded by trusted proxy", remoteAddr: "10.1.2.3:443", xff: "198.51.100.4", want: "198.51.100.4"},
		{name: "skips trusted hops", remoteAddr: "10.1.2.3:443", xff: "6.6.6.6, 198.51.100.4, 192.168.1.7", want: "198.51.100.4"},
		{name: "real ip header", remoteAddr: "192.168.1.7:80", xRealIP: "198.51.100.5", want: "198.51.100.5"},
		{name: "only trusted hops", remoteAddr: "10.1.2.3:443", xff: "10.9.9.9", want: "10.1.2.3"},
		{name: "garbage header", remoteAddr: "10.1.2.3:443", xff: "unknown", want: "10.1.2.3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, trusted.clientIP(tc.remoteAddr, tc.xff, tc.xRealIP))
		})
	}
}

func TestRateLimitMiddleware_IgnoresSpoofedForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(6, nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for _, spoof := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "203.0.113.9:5123"
		req.Header.Set("X-Forwarded-For", spoof)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[1], "rotating the header must not reset the limit")
}
