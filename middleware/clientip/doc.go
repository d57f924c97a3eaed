// Package clientip resolve o endereço IP "confiável o suficiente" de um request.
//
// O IP é a chave de isolamento do rate limit, então a resolução precisa ser
// determinística e auditável. A precedência é uma lista ordenada de estratégias
// (cada uma falha para a próxima):
//
//  1. X-Forwarded-For (primeira entrada que parseia como IP)
//  2. X-Real-IP
//  3. Forwarded (RFC 7239, apenas o identificador for=)
//  4. RemoteAddr da conexão
//
// Se nenhuma estratégia resolver, Resolve retorna ErrNotFound. Isso é tratado
// como falha dura: sem chave de cliente não dá para aplicar rate limit com
// segurança, então o middleware responde 500 em vez de liberar o request.
package clientip
