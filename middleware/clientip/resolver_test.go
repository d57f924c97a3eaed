package clientip

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newRequest(remoteAddr string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = remoteAddr
	return r
}

func TestResolve_XForwardedForSkipsInvalidEntries(t *testing.T) {
	r := newRequest("192.0.2.1:9999")
	r.Header.Set("X-Forwarded-For", "bad, 203.0.113.5, 10.0.0.1")

	addr, err := Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := addr.String(); got != "203.0.113.5" {
		t.Fatalf("expected first valid XFF entry, got %q", got)
	}
}

func TestResolve_XRealIP(t *testing.T) {
	r := newRequest("")
	r.Header.Set("X-Real-IP", "198.51.100.7")

	addr, err := Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := addr.String(); got != "198.51.100.7" {
		t.Fatalf("expected X-Real-IP value, got %q", got)
	}
}

func TestResolve_XForwardedForWinsOverXRealIP(t *testing.T) {
	r := newRequest("192.0.2.1:9999")
	r.Header.Set("X-Forwarded-For", "203.0.113.5")
	r.Header.Set("X-Real-IP", "198.51.100.7")

	addr, err := Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := addr.String(); got != "203.0.113.5" {
		t.Fatalf("expected XFF to take precedence, got %q", got)
	}
}

func TestResolve_FallsBackToRemoteAddr(t *testing.T) {
	addr, err := Resolve(newRequest("192.0.2.1:1234"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := addr.String(); got != "192.0.2.1" {
		t.Fatalf("expected RemoteAddr host, got %q", got)
	}
}

func TestResolve_RemoteAddrWithoutPort(t *testing.T) {
	addr, err := Resolve(newRequest("2001:db8::1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := addr.String(); got != "2001:db8::1" {
		t.Fatalf("expected bare IPv6 RemoteAddr, got %q", got)
	}
}

func TestResolve_NotFoundWithoutAnySource(t *testing.T) {
	// sem headers e sem peer address não há chave de cliente possível
	if _, err := Resolve(newRequest("")); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_InvalidHeadersFallThrough(t *testing.T) {
	r := newRequest("192.0.2.9:80")
	r.Header.Set("X-Forwarded-For", "not-an-ip, also-bad")
	r.Header.Set("X-Real-IP", "nope")
	r.Header.Set("Forwarded", "for=unknown;proto=https")

	addr, err := Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := addr.String(); got != "192.0.2.9" {
		t.Fatalf("expected RemoteAddr fallback, got %q", got)
	}
}
