package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/beconnected/beconnected"
)

// unknownIP stands in for a client whose address cannot be determined.
const unknownIP = "0.0.0.0"

// nonPublic lists the IANA special-purpose IPv4 blocks no client connects from.
var nonPublic = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("198.18.0.0/15"),
}

// PrivateProxies are the loopback and private ranges a load balancer in front of the web app connects from.
var PrivateProxies = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
}

// InjectIPAddress promotes the client IP address to *http.Request.Context
// under beconnected.IpAddrKey.
//
// Proxy headers are only believed when the connection comes from one of trusted; cf. GetIPAddress.
// Otherwise, and without a public address in them, the host of r.RemoteAddr is used.
func InjectIPAddress(trusted ...netip.Prefix) Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trusted)
			h.ServeHTTP(w, r.Clone(context.WithValue(r.Context(), beconnected.IpAddrKey, ip)))
		})
	}
}

// ParseProxies parses a comma separated list of CIDR blocks or bare IP addresses.
func ParseProxies(list string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: proxy %q: %s", beconnected.ErrNotValid, raw, err)
			}

			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}

		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: proxy %q: %s", beconnected.ErrNotValid, raw, err)
		}

		out = append(out, p.Masked())
	}

	return out, nil
}

// GetIPAddress parses "X-Forwarded-For" and "X-Real-Ip" headers for the IP address
// of the client, walking each header from the proxy nearest to us outward.
//
// GetIPAddress skips addresses from non-public ranges and returns "0.0.0.0"
// when it finds none.
func GetIPAddress(hm http.Header) string {
	for _, h := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		hops := strings.Split(hm.Get(h), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			addr, err := netip.ParseAddr(hop)
			if err != nil || !isPublic(addr) {
				continue
			}

			return hop
		}
	}

	return unknownIP
}

// clientIP resolves the client address of r.
// Headers are consulted only for connections from a trusted proxy.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return unknownIP
	}

	if remote, err := netip.ParseAddr(host); err == nil && contains(trusted, remote.Unmap()) {
		if ip := GetIPAddress(r.Header); ip != unknownIP {
			return ip
		}
	}

	return host
}

// ipFrom retrieves the address InjectIPAddress stashed,
// falling back to the connection's remote address.
func ipFrom(r *http.Request) string {
	if ip, ok := r.Context().Value(beconnected.IpAddrKey).(string); ok && ip != "" {
		return ip
	}

	return clientIP(r, nil)
}

func contains(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}

	return false
}

// isPublic asserts addr is a global unicast address outside the IPv4 special-purpose blocks.
func isPublic(addr netip.Addr) bool {
	if !addr.IsGlobalUnicast() {
		return false
	}

	return !contains(nonPublic, addr.Unmap())
}
