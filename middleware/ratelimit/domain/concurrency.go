package domain

import "context"

// SlotPool é a capacidade finita de requests em voo do serviço.
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar. A release
// devolve a vaga quando a resposta termina; implementações devem tolerar
// chamadas repetidas sem devolver vaga em dobro.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
