// Package source fetches record payloads from the locations a load names:
// HTTP(S) URLs, local files and Redis keys.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kailas-cloud/devsift/internal/db"
	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// Locator schemes.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeFile  = "file"
	SchemeRedis = "redis"
)

// ErrUnsupportedScheme is returned for locators no loader is registered for.
var ErrUnsupportedScheme = errors.New("unsupported locator scheme")

// Loader fetches and decodes the records behind one locator.
type Loader interface {
	Load(ctx context.Context, locator string) ([]device.RawRecord, error)
}

// Mux routes a locator to the Loader registered for its scheme. Locators
// without a scheme are treated as file paths.
type Mux struct {
	loaders map[string]Loader
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{loaders: make(map[string]Loader)}
}

// Options selects the loaders New registers.
type Options struct {
	// HTTPClient is used for http(s) locators. nil builds one with Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration
	// MaxBodyBytes caps http and file payloads. 0 selects DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// KV enables redis:// locators when set.
	KV db.KVStore
}

// New creates a Mux with the http, https and file loaders, plus redis when
// opts.KV is set.
func New(opts Options) *Mux {
	m := NewMux()
	h := NewHTTP(opts.HTTPClient, opts.Timeout)
	if opts.MaxBodyBytes > 0 {
		h.maxBody = opts.MaxBodyBytes
	}
	m.Handle(SchemeHTTP, h)
	m.Handle(SchemeHTTPS, h)
	m.Handle(SchemeFile, NewFile(opts.MaxBodyBytes))
	if opts.KV != nil {
		m.Handle(SchemeRedis, NewRedis(opts.KV))
	}
	return m
}

// Handle registers l for scheme, replacing any previous loader.
func (m *Mux) Handle(scheme string, l Loader) {
	m.loaders[strings.ToLower(scheme)] = l
}

// Schemes returns the registered schemes.
func (m *Mux) Schemes() []string {
	out := make([]string, 0, len(m.loaders))
	for s := range m.loaders {
		out = append(out, s)
	}
	return out
}

// Load dispatches to the loader for the locator's scheme.
func (m *Mux) Load(ctx context.Context, locator string) ([]device.RawRecord, error) {
	scheme := Scheme(locator)
	l, ok := m.loaders[scheme]
	if !ok {
		return nil, domain.NewLoadError(locator, 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme))
	}
	return l.Load(ctx, locator)
}

// Scheme returns the lowercased scheme of locator, or "file" when it has none.
func Scheme(locator string) string {
	scheme, _, ok := strings.Cut(locator, "://")
	if !ok || scheme == "" {
		return SchemeFile
	}
	return strings.ToLower(scheme)
}

// FilePath returns the local path a file locator points at.
func FilePath(locator string) (string, bool) {
	if Scheme(locator) != SchemeFile {
		return "", false
	}
	if _, rest, ok := strings.Cut(locator, "://"); ok {
		return rest, rest != ""
	}
	return locator, locator != ""
}

func decode(data []byte) ([]device.RawRecord, error) {
	records, err := device.DecodeRecords(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return records, nil
}
