package hash

import "golang.org/x/crypto/bcrypt"

// Hasher define o contrato de hashing de senha usado pelo serviço de usuário.
// A senha em texto puro nunca é logada nem retornada.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext string, digest string) bool
}

// BcryptHasher é a implementação concreta usando bcrypt (algoritmo adaptativo
// com salt embutido no digest).
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher cria um hasher com o custo padrão do bcrypt.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash gera o digest da senha. Falha de hashing é fatal para a operação
// chamadora (traduzida em erro interno pelo serviço).
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Compare verifica a senha em texto puro contra o digest armazenado.
func (h *BcryptHasher) Compare(plaintext string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
