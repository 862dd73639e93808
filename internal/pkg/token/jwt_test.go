package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gocadastro/internal/pkg/token"
)

const testSecret = "chave-de-teste-nao-usar-em-producao"

// TestGenerateAndValidate testa o ciclo completo: o subject recuperado é o
// e-mail usado na emissão.
func TestGenerateAndValidate(t *testing.T) {
	svc := token.NewService(testSecret, 24*time.Hour)

	tokenString, err := svc.GenerateToken("maria@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	subject, err := svc.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, "maria@example.com", subject)
}

// TestValidate_ExpiredToken testa que token expirado é rejeitado com o erro
// sentinela.
func TestValidate_ExpiredToken(t *testing.T) {
	svc := token.NewService(testSecret, -1*time.Hour)

	tokenString, err := svc.GenerateToken("maria@example.com")
	assert.NoError(t, err)

	subject, err := svc.ValidateToken(tokenString)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	assert.Empty(t, subject)
}

// TestValidate_WrongKey testa que token assinado com outra chave é rejeitado.
func TestValidate_WrongKey(t *testing.T) {
	issuer := token.NewService("outra-chave", 24*time.Hour)
	verifier := token.NewService(testSecret, 24*time.Hour)

	tokenString, err := issuer.GenerateToken("maria@example.com")
	assert.NoError(t, err)

	_, err = verifier.ValidateToken(tokenString)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestValidate_TamperedToken testa que payload adulterado invalida a assinatura.
func TestValidate_TamperedToken(t *testing.T) {
	svc := token.NewService(testSecret, 24*time.Hour)

	tokenString, err := svc.GenerateToken("maria@example.com")
	assert.NoError(t, err)

	parts := strings.Split(tokenString, ".")
	assert.Len(t, parts, 3)
	tampered := parts[0] + ".eyJzdWIiOiJhdGFjYW50ZUBleGVtcGxvLmNvbSJ9." + parts[2]

	_, err = svc.ValidateToken(tampered)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestValidate_MalformedInput testa que entrada arbitrária nunca causa pânico
// nem erro diferente do sentinela.
func TestValidate_MalformedInput(t *testing.T) {
	svc := token.NewService(testSecret, 24*time.Hour)

	for _, input := range []string{"", "abc", "a.b.c", "Bearer xyz", "...."} {
		_, err := svc.ValidateToken(input)
		assert.ErrorIs(t, err, token.ErrInvalidToken, "entrada: %q", input)
	}
}
