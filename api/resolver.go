package api

import (
	"net"
	"net/url"
	"strings"
	"sync"
)

// Resolver turns base URL templates into concrete base URLs. Each flag value
// is computed once and cached for the lifetime of the Resolver.
type Resolver struct {
	defaultTemplate  string
	longTaskTemplate string
	origin           string

	mu    sync.Mutex
	cache map[bool]string
}

// NewResolver returns a Resolver for the two templates. origin is the host
// the console is served from ("https://admin.example.com:8443" or a bare
// host); it fills the {domain} placeholder.
func NewResolver(defaultTemplate, longTaskTemplate, origin string) *Resolver {
	return &Resolver{
		defaultTemplate:  defaultTemplate,
		longTaskTemplate: longTaskTemplate,
		origin:           origin,
		cache:            make(map[bool]string),
	}
}

// BaseURL returns the base URL for the default or the long-task backend.
// An empty long-task template falls back to the default one.
func (r *Resolver) BaseURL(longTask bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.cache[longTask]; ok {
		return u
	}
	tmpl := r.defaultTemplate
	if longTask && r.longTaskTemplate != "" {
		tmpl = r.longTaskTemplate
	}
	u := strings.TrimRight(strings.ReplaceAll(tmpl, DomainPlaceholder, CurrentDomain(r.origin)), "/")
	r.cache[longTask] = u
	return u
}

// CurrentDomain normalizes origin to the value substituted for {domain}:
// the last two DNS labels of the host, followed by ":port" unless the port
// is absent, 80 or 443. IP addresses are kept whole.
func CurrentDomain(origin string) string {
	if origin == "" {
		return ""
	}
	if !strings.Contains(origin, "://") {
		origin = "//" + origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if net.ParseIP(host) == nil {
		if labels := strings.Split(host, "."); len(labels) > 2 {
			host = strings.Join(labels[len(labels)-2:], ".")
		}
	}
	switch port := u.Port(); port {
	case "", "80", "443":
		return host
	default:
		return net.JoinHostPort(host, port)
	}
}
