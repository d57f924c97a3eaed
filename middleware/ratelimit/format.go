package ratelimit

import "strconv"

// Formatação dos valores numéricos que vão em headers (Retry-After,
// X-RateLimit-*). strconv direto em vez de fmt: saída estável, sem notação
// científica nos valores usuais.

func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
