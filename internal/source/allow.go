package source

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Allowlist admits locators that fall under one of its entries. File entries
// match the path itself and everything below it. URL entries match on scheme,
// host and path prefix. Redis entries match on key prefix.
type Allowlist struct {
	entries []target
}

type target struct {
	scheme string
	host   string
	path   string
}

// NewAllowlist parses entries. Blank entries are skipped.
func NewAllowlist(entries ...string) (*Allowlist, error) {
	a := &Allowlist{}
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		t, err := parseTarget(e)
		if err != nil {
			return nil, fmt.Errorf("allowlist entry %q: %w", e, err)
		}
		a.entries = append(a.entries, t)
	}
	return a, nil
}

// Len returns the number of entries.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Allows reports whether locator is admitted. A nil or empty list admits nothing.
func (a *Allowlist) Allows(locator string) bool {
	if a == nil {
		return false
	}
	t, err := parseTarget(locator)
	if err != nil {
		return false
	}
	for _, e := range a.entries {
		if e.covers(t) {
			return true
		}
	}
	return false
}

func (e target) covers(t target) bool {
	if e.scheme != t.scheme || e.host != t.host {
		return false
	}
	switch e.scheme {
	case SchemeRedis:
		return strings.HasPrefix(t.path, e.path)
	case SchemeFile:
		return t.path == e.path || strings.HasPrefix(t.path, strings.TrimSuffix(e.path, string(filepath.Separator))+string(filepath.Separator))
	default:
		return t.path == e.path || strings.HasPrefix(t.path, strings.TrimSuffix(e.path, "/")+"/")
	}
}

func parseTarget(locator string) (target, error) {
	switch Scheme(locator) {
	case SchemeFile:
		p, ok := FilePath(locator)
		if !ok {
			return target{}, fmt.Errorf("empty file path")
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return target{}, err
		}
		return target{scheme: SchemeFile, path: abs}, nil
	case SchemeRedis:
		key, ok := Key(locator)
		if !ok {
			return target{}, fmt.Errorf("missing redis key")
		}
		return target{scheme: SchemeRedis, path: key}, nil
	}
	u, err := url.Parse(locator)
	if err != nil {
		return target{}, err
	}
	if u.Host == "" {
		return target{}, fmt.Errorf("missing host")
	}
	p := path.Clean("/" + u.Path)
	return target{scheme: strings.ToLower(u.Scheme), host: strings.ToLower(u.Host), path: p}, nil
}
