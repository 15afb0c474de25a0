package middleware

import (
	"net"
	"strings"
)

// trustedProxies holds the addresses allowed to report the visitor IP through
// forwarding headers. Entries are single IPs or CIDR ranges.
type trustedProxies []*net.IPNet

func parseTrustedProxies(entries []string) trustedProxies {
	var nets trustedProxies
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.Contains(e, "/") {
			if ip := net.ParseIP(e); ip != nil {
				bits := 32
				if ip.To4() == nil {
					bits = 128
				}
				nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			}
			continue
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

func (t trustedProxies) contains(raw string) bool {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return false
	}
	for _, n := range t {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP returns the visitor address used for rate limiting. Forwarding
// headers count only when the peer is a trusted proxy; X-Forwarded-For is
// read right to left, skipping hops that are themselves trusted.
func (t trustedProxies) clientIP(remoteAddr, xff, xRealIP string) string {
	peer := remoteAddr
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		peer = host
	}
	if !t.contains(peer) {
		return peer
	}

	if xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			if !t.contains(hop) {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(xRealIP); net.ParseIP(ip) != nil {
		return ip
	}
	return peer
}
