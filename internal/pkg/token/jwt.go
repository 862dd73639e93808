package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer é o identificador fixo do serviço, verificado em todo token.
const Issuer = "gocadastro"

// ErrInvalidToken é o erro sentinela para qualquer falha de verificação
// (assinatura incorreta, issuer errado, expirado, malformado). ValidateToken
// é total: nunca propaga outra coisa para o chamador.
var ErrInvalidToken = errors.New("invalid token")

// TokenService define o contrato para emissão e verificação de JWTs.
type TokenService interface {
	GenerateToken(subjectEmail string) (string, error)
	ValidateToken(tokenString string) (string, error)
}

// Service implementa a interface TokenService com HMAC-SHA256 e chave
// simétrica carregada da configuração do processo (nunca de estado global).
type Service struct {
	secretKey []byte
	expiry    time.Duration
}

// NewService cria uma nova instância do serviço de tokens.
func NewService(secretKey string, expiry time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		expiry:    expiry,
	}
}

// GenerateToken cria um JWT assinado com subject = e-mail normalizado do
// usuário e expiração em emissão + expiry (24h por padrão).
func (s *Service) GenerateToken(subjectEmail string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   subjectEmail,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifica assinatura, issuer e expiração e retorna o subject
// (e-mail) em caso de sucesso. Qualquer falha vira ErrInvalidToken; entrada
// não confiável jamais causa pânico ou erro distinto.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// Verifica se o método de assinatura é o esperado (HS256)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
