// Package httpjson centraliza a escrita de respostas JSON da API.
//
// Todas as respostas de erro do serviço seguem o mesmo corpo estruturado
// {"message": "..."}, então vale a pena ter um único ponto de formatação.
package httpjson

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error é o corpo padrão de erro da API.
type Error struct {
	Message string `json:"message"`
}

// Write serializa v como JSON com o status informado.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError escreve um corpo {"message": ...} com o status informado.
func WriteError(w http.ResponseWriter, status int, message string) {
	Write(w, status, Error{Message: message})
}

// WriteErrorf é WriteError com formatação.
func WriteErrorf(w http.ResponseWriter, status int, format string, args ...any) {
	WriteError(w, status, fmt.Sprintf(format, args...))
}
