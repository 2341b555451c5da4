package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

var (
	ErrInvalidURL     = errors.New("url must be an absolute http(s) url")
	ErrHostNotAllowed = errors.New("image host is not allowed")
	ErrTooLarge       = errors.New("image exceeds the relay size limit")
	ErrNotImage       = errors.New("upstream resource is not an image")
	ErrPrivateAddress = errors.New("image host resolves to a private or local address")
)

// UpstreamError is returned when the image host answers with a failure or cannot be reached.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream image fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream image fetch failed: status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type FetcherConfig struct {
	AllowedHosts []string // exact hosts or "*.example.com"; empty = any host
	MaxBytes     int64
	Timeout      time.Duration
	UserAgent    string

	// AllowPrivateNetworks lets the default client dial loopback, private and link-local addresses.
	AllowPrivateNetworks bool
}

type Image struct {
	Data        []byte
	ContentType string
}

type Fetcher struct {
	cfg    FetcherConfig
	client *http.Client
}

func NewFetcher(cfg FetcherConfig, client *http.Client) *Fetcher {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "sifs-image-relay/1.0"
	}
	if client == nil {
		client = newClient(cfg)
	}
	return &Fetcher{cfg: cfg, client: client}
}

// newClient checks every dialed address after DNS resolution, so redirects and
// rebinding cannot reach internal hosts either.
func newClient(cfg FetcherConfig) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if !cfg.AllowPrivateNetworks {
		dialer.Control = guardDial
	}
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          50,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("stopped after 5 redirects")
			}
			return nil
		},
	}
}

func guardDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !PublicAddr(addr) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, addr)
	}
	return nil
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// PublicAddr reports whether addr is routable on the public internet.
func PublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		addr.IsUnspecified(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}

// Validate parses raw and checks scheme and host policy without touching the network.
func (f *Fetcher) Validate(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return nil, ErrInvalidURL
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return nil, ErrInvalidURL
	}
	if !f.hostAllowed(u.Hostname()) {
		return nil, ErrHostNotAllowed
	}
	return u, nil
}

func (f *Fetcher) Fetch(ctx context.Context, raw string) (*Image, error) {
	u, err := f.Validate(raw)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "image/*")
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > f.cfg.MaxBytes {
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(data)) > f.cfg.MaxBytes {
		return nil, ErrTooLarge
	}

	ct := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(strings.ToLower(ct), "image/") {
		return nil, ErrNotImage
	}
	return &Image{Data: data, ContentType: ct}, nil
}

func (f *Fetcher) hostAllowed(host string) bool {
	if len(f.cfg.AllowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, h := range f.cfg.AllowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
			continue
		case strings.HasPrefix(h, "*."):
			if strings.HasSuffix(host, h[1:]) {
				return true
			}
		case h == host:
			return true
		}
	}
	return false
}
