// Package ratelimit fornece os adapters HTTP (net/http) do controle de admissão
// por cliente e do limite de concorrência do serviço.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão admit/reject, acquire/timeout) sem net/http
//   - infra: implementações concretas (bucket cota-então-cooldown, semáforo)
//   - ratelimit (este pacote): middlewares HTTP + tradução para status/headers
//
// Fluxo por request:
//
//  1. Resolve o IP do cliente (middleware/clientip); sem IP não há chave de
//     admissão e o request morre com 500 (nunca caímos para "sem limite")
//  2. Chama a camada application para obter a decisão do bucket da chave
//  3. Se rejeitado, responde 429 com {"message": ...} e o retry em segundos
//  4. Se admitido, chama o próximo handler
//
// Cada rota protegida recebe o próprio Store com a cota (rate, per) dela,
// construído e injetado pelo cmd/server; nada de estado global de pacote.
package ratelimit
