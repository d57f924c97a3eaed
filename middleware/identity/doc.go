// Package identity resolve bearer tokens opacos para a identidade do usuário.
//
// O token inteiro do header Authorization é tratado como chave opaca: nada
// aqui parseia a estrutura interna dele. A resolução é cache-aside sobre o
// storage durável (token -> user_id): primeiro o mapa em memória; num miss,
// uma consulta ao storage popula o cache. Resultados negativos nunca são
// cacheados (token inválido/expirado precisa continuar consultando a fonte).
//
// Dois misses concorrentes do mesmo token podem consultar o storage em
// dobro; como tokens são imutáveis depois de emitidos, os dois escrevem o
// mesmo valor e a corrida é benigna; preferimos esse custo raro a um lock
// por token.
package identity
