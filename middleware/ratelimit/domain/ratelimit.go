package domain

// Camada de domínio do controle de admissão.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key identifica um cliente (o IP resolvido). Uma Key mapeia para exatamente
// um bucket dentro de um BucketStore.
type Key string

// BucketStore decide admissão por chave.
//
// A semântica esperada é cota-então-cooldown: cada chave tem `rate` requests
// de cota; quando a cota zera, a chave entra em cooldown por `per` e todo
// request é rejeitado até o prazo vencer (o prazo exato já admite de novo).
// Não é um token bucket de reabastecimento contínuo: a cota volta inteira de
// uma vez quando o cooldown expira.
//
// Admit nunca falha: é só avaliação de máquina de estados. A implementação
// precisa ser linearizável por chave (sem decrementos perdidos, sem admissão
// além da cota sob concorrência) e não pode serializar chaves distintas.
type BucketStore interface {
	Admit(Key) Decision
}

// Decision é o resultado de uma avaliação de admissão.
type Decision struct {
	Allowed bool
	// RetryAfter é quanto falta para o cooldown da chave vencer.
	// Só é preenchido quando Allowed=false.
	RetryAfter time.Duration
}
