package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateMessageRequestBodySynonyms(t *testing.T) {
	cases := []struct {
		name string
		req  CreateMessageRequest
		want string
	}{
		{"mensagem", CreateMessageRequest{Mensagem: "a"}, "a"},
		{"conteudo", CreateMessageRequest{Conteudo: "b"}, "b"},
		{"texto", CreateMessageRequest{Texto: "c"}, "c"},
		{"mensagem_usuario", CreateMessageRequest{MensagemUsuario: "d"}, "d"},
		{"first non-empty wins", CreateMessageRequest{Mensagem: " ", Conteudo: "x", Texto: "y"}, "x"},
		{"trims whitespace", CreateMessageRequest{Texto: "  oi  "}, "oi"},
		{"all empty", CreateMessageRequest{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.req.Body())
		})
	}
}
