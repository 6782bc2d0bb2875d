package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Rotator hands out outbound proxies in round-robin order. A Rotator with no
// proxies makes every request go direct.
type Rotator struct {
	proxies []*url.URL
	mu      sync.Mutex
	index   int
}

// NewRotator parses a comma-separated proxy list. Blank entries are ignored.
func NewRotator(list string) (*Rotator, error) {
	r := &Rotator{}
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q", raw)
		}
		r.proxies = append(r.proxies, u)
	}
	return r, nil
}

func (r *Rotator) Len() int {
	return len(r.proxies)
}

// Next returns the next proxy, or nil when none are configured.
func (r *Rotator) Next() *url.URL {
	if len(r.proxies) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.proxies[r.index]
	r.index = (r.index + 1) % len(r.proxies)
	return p
}

// ProxyFunc matches http.Transport.Proxy.
func (r *Rotator) ProxyFunc(*http.Request) (*url.URL, error) {
	return r.Next(), nil
}
