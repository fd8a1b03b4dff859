// Package allowlist matches hosts and origins against a closed set of entries.
// Nothing outside the set is accepted: there is no wildcard syntax and an empty
// list rejects every candidate.
package allowlist

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrWildcard is returned for entries that would match more than one name, such as "*" or ".example.com".
	ErrWildcard = errors.New("wildcard entries are not allowed")
	// ErrEmptyEntry is returned for blank entries.
	ErrEmptyEntry = errors.New("empty entry")
	// ErrInvalidOrigin is returned for origins that are not scheme://host[:port].
	ErrInvalidOrigin = errors.New("invalid origin")
)

// List is an immutable set of normalized entries.
type List struct {
	entries   []string
	set       map[string]struct{}
	normalize func(string) (string, error)
}

// NewHosts builds a list of host names or IP addresses. Ports are ignored when matching.
func NewHosts(entries []string) (List, error) {
	return build(entries, normalizeHost)
}

// NewOrigins builds a list of web origins such as "http://localhost:3000".
func NewOrigins(entries []string) (List, error) {
	return build(entries, normalizeOrigin)
}

func build(entries []string, normalize func(string) (string, error)) (List, error) {
	l := List{
		entries:   make([]string, 0, len(entries)),
		set:       make(map[string]struct{}, len(entries)),
		normalize: normalize,
	}
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			return List{}, ErrEmptyEntry
		}
		if strings.Contains(trimmed, "*") || strings.HasPrefix(trimmed, ".") {
			return List{}, fmt.Errorf("%w: %q", ErrWildcard, trimmed)
		}
		key, err := normalize(trimmed)
		if err != nil {
			return List{}, err
		}
		if _, dup := l.set[key]; dup {
			continue
		}
		l.set[key] = struct{}{}
		l.entries = append(l.entries, key)
	}
	return l, nil
}

// Allows reports whether candidate is one of the entries. Candidates that cannot
// be normalized are rejected.
func (l List) Allows(candidate string) bool {
	if len(l.set) == 0 || l.normalize == nil {
		return false
	}
	key, err := l.normalize(strings.TrimSpace(candidate))
	if err != nil {
		return false
	}
	_, ok := l.set[key]
	return ok
}

// Entries returns the normalized entries in insertion order.
func (l List) Entries() []string {
	return slices.Clone(l.entries)
}

// Len returns the number of distinct entries.
func (l List) Len() int {
	return len(l.entries)
}

// normalizeHost lower-cases the host, drops a port and a trailing dot.
func normalizeHost(raw string) (string, error) {
	host := raw
	if h, port, err := net.SplitHostPort(raw); err == nil {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return "", fmt.Errorf("invalid port in %q", raw)
		}
		host = h
	} else if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		host = raw[1 : len(raw)-1]
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return "", ErrEmptyEntry
	}
	return host, nil
}

// normalizeOrigin reduces raw to scheme://host[:port] with default ports removed.
func normalizeOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrigin, raw)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: %q: scheme must be http or https", ErrInvalidOrigin, raw)
	}
	if u.Host == "" || u.User != nil || (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrigin, raw)
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port == "" {
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		return scheme + "://" + host, nil
	}
	return scheme + "://" + net.JoinHostPort(host, port), nil
}

// OriginOf returns the normalized origin of an absolute URL such as a Referer header.
func OriginOf(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	origin, err := normalizeOrigin(u.Scheme + "://" + u.Host)
	if err != nil {
		return "", false
	}
	return origin, true
}
