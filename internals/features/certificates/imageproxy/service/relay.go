package service

import (
	"net/url"
	"strings"
)

const DefaultRelayPath = "/api/image-proxy"

// Relay rewrites cross-origin image URLs so they are served from our own origin,
// which keeps canvas pixel reads untainted on the client.
type Relay struct {
	Path   string
	origin *url.URL
}

// NewRelay builds a relay for the given public origin (e.g. "https://sifs.in").
// An empty origin means every absolute URL is treated as cross-origin.
func NewRelay(path, publicOrigin string) *Relay {
	if strings.TrimSpace(path) == "" {
		path = DefaultRelayPath
	}
	r := &Relay{Path: path}
	if o := strings.TrimSpace(publicOrigin); o != "" {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			r.origin = u
		}
	}
	return r
}

// Rewrite returns the relayed URL for absolute cross-origin sources and the input
// untouched for relative, same-origin and data: URLs.
func (r *Relay) Rewrite(raw string) string {
	src := strings.TrimSpace(raw)
	if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
		return src
	}
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	u, err := url.Parse(src)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return src
	}
	if r.isSameOrigin(u) {
		return src
	}
	return r.Path + "?url=" + url.QueryEscape(src)
}

// Unwrap extracts the upstream URL from a relayed src. ok is false when src is
// not a relay URL.
func (r *Relay) Unwrap(src string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return "", false
	}
	if u.IsAbs() && !r.isSameOrigin(u) {
		return "", false
	}
	if u.Path != r.Path {
		return "", false
	}
	target := u.Query().Get("url")
	if target == "" {
		return "", false
	}
	return target, true
}

func (r *Relay) isSameOrigin(u *url.URL) bool {
	if r.origin == nil {
		return false
	}
	return strings.EqualFold(u.Scheme, r.origin.Scheme) && strings.EqualFold(u.Host, r.origin.Host)
}
