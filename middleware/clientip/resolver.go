package clientip

import (
	"errors"
	"net/http"
	"net/netip"
	"strings"
)

// ErrNotFound indica que nenhuma estratégia conseguiu resolver um IP.
var ErrNotFound = errors.New("clientip: no usable client IP address")

// strategy tenta extrair um IP do request. Retorna ok=false para cair na próxima.
type strategy func(r *http.Request) (netip.Addr, bool)

// A ordem aqui É a precedência. Mantida como slice explícito (e não como
// if/else aninhado) para cada estratégia poder ser testada isoladamente.
var strategies = []strategy{
	fromXForwardedFor,
	fromXRealIP,
	fromForwarded,
	fromRemoteAddr,
}

// Resolve devolve o IP do cliente segundo a cadeia de precedência do pacote.
func Resolve(r *http.Request) (netip.Addr, error) {
	for _, s := range strategies {
		if addr, ok := s(r); ok {
			return addr, nil
		}
	}
	return netip.Addr{}, ErrNotFound
}

func fromXForwardedFor(r *http.Request) (netip.Addr, bool) {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return netip.Addr{}, false
	}

	// primeira entrada válida vence; entradas que não parseiam são ignoradas
	for _, part := range strings.Split(xff, ",") {
		if addr, err := netip.ParseAddr(strings.TrimSpace(part)); err == nil {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

func fromXRealIP(r *http.Request) (netip.Addr, bool) {
	v := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if v == "" {
		return netip.Addr{}, false
	}

	addr, err := netip.ParseAddr(v)
	return addr, err == nil
}

func fromForwarded(r *http.Request) (netip.Addr, bool) {
	// o header pode aparecer múltiplas vezes; varremos todas as instâncias
	// e todos os elementos de cada uma, em ordem.
	for _, hv := range r.Header.Values("Forwarded") {
		for _, elem := range splitForwardedElements(hv) {
			if addr, ok := forwardedFor(elem); ok {
				return addr, true
			}
		}
	}
	return netip.Addr{}, false
}

func fromRemoteAddr(r *http.Request) (netip.Addr, bool) {
	if r.RemoteAddr == "" {
		return netip.Addr{}, false
	}

	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr(), true
	}
	// alguns transports expõem só o host, sem porta
	addr, err := netip.ParseAddr(strings.TrimSpace(r.RemoteAddr))
	return addr, err == nil
}
