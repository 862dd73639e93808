package hash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gocadastro/internal/pkg/hash"
)

// TestBcryptHasher_RoundTrip testa que a senha confere com o próprio digest.
func TestBcryptHasher_RoundTrip(t *testing.T) {
	hasher := hash.NewBcryptHasher()

	digest, err := hasher.Hash("s3nh4forte")
	assert.NoError(t, err)
	assert.NotEmpty(t, digest)
	assert.NotEqual(t, "s3nh4forte", digest)

	assert.True(t, hasher.Compare("s3nh4forte", digest))
	assert.False(t, hasher.Compare("senhaerrada", digest))
}

// TestBcryptHasher_DistinctDigests testa que o salt torna cada digest único.
func TestBcryptHasher_DistinctDigests(t *testing.T) {
	hasher := hash.NewBcryptHasher()

	first, err := hasher.Hash("s3nh4forte")
	assert.NoError(t, err)
	second, err := hasher.Hash("s3nh4forte")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Compare("s3nh4forte", first))
	assert.True(t, hasher.Compare("s3nh4forte", second))
}

// TestBcryptHasher_InvalidDigest testa que digest malformado nunca confere.
func TestBcryptHasher_InvalidDigest(t *testing.T) {
	hasher := hash.NewBcryptHasher()

	assert.False(t, hasher.Compare("s3nh4forte", ""))
	assert.False(t, hasher.Compare("s3nh4forte", "nao-e-um-digest-bcrypt"))
}
