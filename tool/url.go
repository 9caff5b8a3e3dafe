package tool

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ParseNetworks parses a list of CIDRs, skipping blank entries.
func ParseNetworks(cidrs []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid network %q: %w", cidr, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// InNetworks reports whether ip lies in one of nets.
func InNetworks(ip string, nets []*net.IPNet) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

// RequestHostname returns the hostname the browser used to reach us, without port.
// X-Forwarded-Host is only honoured when the peer is one of the trusted proxies.
func RequestHostname(r *http.Request, trustedProxies []*net.IPNet) string {
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" && InNetworks(ClientIP(r), trustedProxies) {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		if strings.Contains(h, ":") {
			return "[" + h + "]" // keep IPv6 literals usable in URLs
		}
		return h
	}
	return host
}

// ClientIP returns the remote address of r without port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
