package transport

import (
	"net/netip"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ValidateEndpoint checks a configured provider base URL before any request is
// made. Cleartext HTTP is allowed only toward local hosts; an API key sent
// over plain HTTP to a remote host is a misconfiguration, not a transport
// failure.
func ValidateEndpoint(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrapf(err, "invalid endpoint %q", rawURL)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return errors.Errorf("endpoint %q has no host", rawURL)
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if !isLocalHost(host) {
			return errors.Errorf("refusing plain HTTP endpoint %q: only local hosts may skip TLS", rawURL)
		}
	default:
		return errors.Errorf("unsupported endpoint scheme %q", parsed.Scheme)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if addr.IsUnspecified() || addr.IsMulticast() {
			return errors.Errorf("unroutable endpoint address %q", host)
		}
	}

	return nil
}

// isLocalHost reports whether host names the local machine or a private
// network.
func isLocalHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return true
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast()
	}
	return false
}
