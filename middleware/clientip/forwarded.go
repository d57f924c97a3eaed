package clientip

import (
	"net/netip"
	"strings"
)

// Parsing mínimo do header Forwarded (RFC 7239).
//
// Só nos interessa o parâmetro for=. Identificadores ofuscados ("_abc") e
// "unknown" não resolvem para IP e caem para o próximo elemento. Cobrir a
// gramática completa do RFC está fora do escopo.

// splitForwardedElements separa os elementos de um valor Forwarded.
// Elementos são separados por vírgula; parâmetros dentro de um elemento, por
// ponto e vírgula. Vírgulas dentro de aspas são respeitadas.
func splitForwardedElements(value string) []string {
	var (
		elems    []string
		start    int
		inQuotes bool
	)

	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				elems = append(elems, value[start:i])
				start = i + 1
			}
		}
	}
	elems = append(elems, value[start:])
	return elems
}

// forwardedFor extrai o IP do parâmetro for= de um elemento Forwarded.
func forwardedFor(elem string) (netip.Addr, bool) {
	for _, param := range strings.Split(elem, ";") {
		name, value, ok := strings.Cut(param, "=")
		if !ok {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(name), "for") {
			continue
		}

		if addr, ok := parseForwardedIdentifier(strings.TrimSpace(value)); ok {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

// parseForwardedIdentifier aceita as formas de node do RFC:
// 1.2.3.4, "1.2.3.4:8080", "[2001:db8::1]", "[2001:db8::1]:8080" e 2001:db8::1.
func parseForwardedIdentifier(v string) (netip.Addr, bool) {
	v = strings.Trim(v, `"`)
	if v == "" || v == "unknown" || strings.HasPrefix(v, "_") {
		return netip.Addr{}, false
	}

	if ap, err := netip.ParseAddrPort(v); err == nil {
		return ap.Addr(), true
	}

	v = strings.TrimPrefix(strings.TrimSuffix(v, "]"), "[")
	addr, err := netip.ParseAddr(v)
	return addr, err == nil
}
