package allowlist

import (
	"errors"
	"testing"
)

func TestHostsAllowsOnlyListedEntries(t *testing.T) {
	hosts, err := NewHosts([]string{"127.0.0.1", "localhost"})
	if err != nil {
		t.Fatalf("NewHosts returned error: %v", err)
	}

	cases := map[string]bool{
		"localhost":       true,
		"LOCALHOST":       true,
		"localhost:8080":  true,
		"localhost.":      true,
		"127.0.0.1":       true,
		"127.0.0.1:8000":  true,
		"example.com":     false,
		"localhost.evil":  false,
		"127.0.0.2":       false,
		"":                false,
		"[::1]:8080":      false,
		"sub.localhost":   false,
		"localhost:3000x": false,
	}
	for candidate, want := range cases {
		if got := hosts.Allows(candidate); got != want {
			t.Errorf("Allows(%q) = %v, want %v", candidate, got, want)
		}
	}
}

func TestOriginsAllowsOnlyListedEntries(t *testing.T) {
	origins, err := NewOrigins([]string{"http://localhost:3000", "https://app.example.com:443"})
	if err != nil {
		t.Fatalf("NewOrigins returned error: %v", err)
	}

	cases := map[string]bool{
		"http://localhost:3000":   true,
		"HTTP://LocalHost:3000":   true,
		"http://localhost:3000/":  true,
		"https://app.example.com": true,
		"https://localhost:3000":  false,
		"http://localhost":        false,
		"http://localhost:3001":   false,
		"http://app.example.com":  false,
		"null":                    false,
		"":                        false,
	}
	for candidate, want := range cases {
		if got := origins.Allows(candidate); got != want {
			t.Errorf("Allows(%q) = %v, want %v", candidate, got, want)
		}
	}
}

func TestEmptyListRejectsEverything(t *testing.T) {
	hosts, err := NewHosts(nil)
	if err != nil {
		t.Fatalf("NewHosts returned error: %v", err)
	}
	if hosts.Allows("localhost") {
		t.Fatalf("expected empty host list to reject localhost")
	}

	var zero List
	if zero.Allows("anything") {
		t.Fatalf("expected zero List to reject candidates")
	}
}

func TestWildcardEntriesRejected(t *testing.T) {
	for _, entry := range []string{"*", "*.example.com", ".example.com"} {
		if _, err := NewHosts([]string{"localhost", entry}); !errors.Is(err, ErrWildcard) {
			t.Errorf("NewHosts(%q): expected ErrWildcard, got %v", entry, err)
		}
	}
	if _, err := NewOrigins([]string{"https://*.example.com"}); !errors.Is(err, ErrWildcard) {
		t.Errorf("expected ErrWildcard for origin wildcard, got %v", err)
	}
}

func TestInvalidEntries(t *testing.T) {
	if _, err := NewHosts([]string{" "}); !errors.Is(err, ErrEmptyEntry) {
		t.Fatalf("expected ErrEmptyEntry, got %v", err)
	}

	for _, entry := range []string{"localhost:3000", "ftp://example.com", "http://example.com/path", "http://user@example.com"} {
		if _, err := NewOrigins([]string{entry}); !errors.Is(err, ErrInvalidOrigin) {
			t.Errorf("NewOrigins(%q): expected ErrInvalidOrigin, got %v", entry, err)
		}
	}
}

func TestEntriesAreNormalizedAndDeduplicated(t *testing.T) {
	origins, err := NewOrigins([]string{"http://LOCALHOST:3000", "http://localhost:3000/", "https://example.com:443"})
	if err != nil {
		t.Fatalf("NewOrigins returned error: %v", err)
	}
	got := origins.Entries()
	want := []string{"http://localhost:3000", "https://example.com"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected entries %v, want %v", got, want)
	}
	if origins.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", origins.Len())
	}
}

func TestOriginOf(t *testing.T) {
	origin, ok := OriginOf("http://localhost:3000/dashboard/settings?tab=1")
	if !ok || origin != "http://localhost:3000" {
		t.Fatalf("unexpected origin %q (ok=%v)", origin, ok)
	}
	if _, ok := OriginOf("/relative/path"); ok {
		t.Fatalf("expected relative URL to have no origin")
	}
}
