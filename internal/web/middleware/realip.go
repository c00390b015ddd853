package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// ParseTrustedProxies parses CIDRs or bare addresses. Invalid entries are
// logged and skipped.
func ParseTrustedProxies(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		slog.Warn("realip: invalid trusted proxy, skipping", "entry", e)
	}
	return out
}

// TrustedRealIP rewrites RemoteAddr to the client address. X-Real-IP, then
// the first X-Forwarded-For entry, is honored only when the connection comes
// from a trusted proxy; otherwise the connection address is used. The port
// is always dropped so RemoteAddr identifies the client.
func TrustedRealIP(trusted []string) func(http.Handler) http.Handler {
	prefixes := ParseTrustedProxies(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remote, ok := parseAddr(r.RemoteAddr)
			if ok {
				r.RemoteAddr = remote.String()
				if isTrusted(remote, prefixes) {
					if client, ok := forwardedFor(r); ok {
						r.RemoteAddr = client.String()
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedFor(r *http.Request) (netip.Addr, bool) {
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		return parseAddr(rip)
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return parseAddr(strings.TrimSpace(first))
	}
	return netip.Addr{}, false
}

// parseAddr accepts "host:port" or a bare address.
func parseAddr(s string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return a.Unmap(), true
	}
	return netip.Addr{}, false
}

func isTrusted(a netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
