// Package application contém os casos de uso (regras de aplicação) para
// controle de admissão e limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(key) retorna uma Decision (admit/reject + retry-after).
package application
