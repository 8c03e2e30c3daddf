// Package trust decides whether a request arrived on the main site or on
// the dedicated host that serves user-uploaded files.
package trust

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Level is the outcome of classifying a request.
type Level int

const (
	// Trusted requests come through the main site and must never receive
	// user-uploaded bytes directly.
	Trusted Level = iota
	// Untrusted requests target the attachments host and may be served
	// file content.
	Untrusted
)

func (l Level) String() string {
	if l == Untrusted {
		return "untrusted"
	}
	return "trusted"
}

// Classifier matches request hosts against the configured attachments
// host and origin.
type Classifier struct {
	hosts          map[string]bool
	forwardedHosts bool
}

// NewClassifier builds a classifier. origin may be a bare host or a URL;
// empty values are ignored. With trustForwarded set, X-Forwarded-Host wins
// over the Host header.
func NewClassifier(host, origin string, trustForwarded bool) *Classifier {
	c := &Classifier{hosts: map[string]bool{}, forwardedHosts: trustForwarded}
	for _, h := range []string{host, origin} {
		if n := normalize(h); n != "" {
			c.hosts[n] = true
		}
	}
	return c
}

// Classify returns Untrusted when the request host is the attachments host.
// Without a configured attachments host there is nowhere to send files, so
// every request is Untrusted and files are served from the main site.
func (c *Classifier) Classify(r *http.Request) Level {
	if c == nil || len(c.hosts) == 0 {
		return Untrusted
	}
	if c.hosts[normalize(c.requestHost(r))] {
		return Untrusted
	}
	return Trusted
}

func (c *Classifier) requestHost(r *http.Request) string {
	if c.forwardedHosts {
		if fh := r.Header.Get("X-Forwarded-Host"); fh != "" {
			// first entry is the client-facing host
			return strings.TrimSpace(strings.Split(fh, ",")[0])
		}
	}
	return r.Host
}

// normalize lowercases a host and strips any scheme, path and default port.
func normalize(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if h == "" {
		return ""
	}
	if strings.Contains(h, "://") {
		if u, err := url.Parse(h); err == nil {
			h = u.Host
		}
	}
	if host, port, err := net.SplitHostPort(h); err == nil && (port == "80" || port == "443") {
		h = host
	}
	return strings.TrimSuffix(h, ".")
}
