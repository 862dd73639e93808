package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gocadastro/internal/domain"
)

// TestDate_JSON testa o formato dd/MM/yyyy na serialização e na leitura.
func TestDate_JSON(t *testing.T) {
	d := domain.NewDate(1990, time.May, 15)

	out, err := json.Marshal(d)
	assert.NoError(t, err)
	assert.Equal(t, `"15/05/1990"`, string(out))

	var parsed domain.Date
	assert.NoError(t, json.Unmarshal([]byte(`"15/05/1990"`), &parsed))
	assert.Equal(t, d.Time, parsed.Time)

	// Formato ISO não é aceito
	err = json.Unmarshal([]byte(`"1990-05-15"`), &parsed)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dd/MM/yyyy")

	// null e vazio deixam a data zerada
	var empty domain.Date
	assert.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.True(t, empty.IsZero())

	zero := domain.Date{}
	out, err = json.Marshal(zero)
	assert.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

// TestUser_JSONHidesSensitiveFields testa que o hash da senha jamais aparece
// na serialização da entidade.
func TestUser_JSONHidesSensitiveFields(t *testing.T) {
	u := domain.User{
		ID:           "id-1",
		Name:         "Maria",
		Email:        "maria@example.com",
		PasswordHash: "digest-bcrypt",
	}

	out, err := json.Marshal(u)
	assert.NoError(t, err)
	assert.NotContains(t, string(out), "digest-bcrypt")
	assert.NotContains(t, string(out), "password")
}

// TestNewUserData testa a visão de leitura: CPF formatado e idade derivada.
func TestNewUserData(t *testing.T) {
	u := domain.User{
		ID:          "id-1",
		Name:        "Maria",
		LastName:    "Da Silva",
		CPF:         "12345678901",
		DateOfBirth: domain.NewDate(1990, time.May, 15),
		Email:       "maria@example.com",
	}

	data := domain.NewUserData(u)

	assert.Equal(t, "123.456.789-01", data.CPF)
	assert.Equal(t, "Maria", data.Name)
	assert.True(t, data.Age >= 35)
}

// TestNewPaginationInfo testa a derivação dos metadados de página.
func TestNewPaginationInfo(t *testing.T) {
	tests := []struct {
		name     string
		page     domain.PageRequest
		total    int64
		expected domain.PaginationInfo
	}{
		{
			name:  "primeira página de várias",
			page:  domain.PageRequest{Page: 0, Size: 10},
			total: 25,
			expected: domain.PaginationInfo{
				CurrentPage: 0, PageSize: 10, TotalElements: 25, TotalPages: 3,
				IsFirst: true, IsLast: false, HasNext: true, HasPrevious: false,
			},
		},
		{
			name:  "última página",
			page:  domain.PageRequest{Page: 2, Size: 10},
			total: 25,
			expected: domain.PaginationInfo{
				CurrentPage: 2, PageSize: 10, TotalElements: 25, TotalPages: 3,
				IsFirst: false, IsLast: true, HasNext: false, HasPrevious: true,
			},
		},
		{
			name:  "página intermediária",
			page:  domain.PageRequest{Page: 1, Size: 2},
			total: 5,
			expected: domain.PaginationInfo{
				CurrentPage: 1, PageSize: 2, TotalElements: 5, TotalPages: 3,
				IsFirst: false, IsLast: false, HasNext: true, HasPrevious: true,
			},
		},
		{
			name:  "resultado vazio",
			page:  domain.PageRequest{Page: 0, Size: 10},
			total: 0,
			expected: domain.PaginationInfo{
				CurrentPage: 0, PageSize: 10, TotalElements: 0, TotalPages: 0,
				IsFirst: true, IsLast: true, HasNext: false, HasPrevious: false,
			},
		},
		{
			name:  "total exatamente divisível",
			page:  domain.PageRequest{Page: 1, Size: 10},
			total: 20,
			expected: domain.PaginationInfo{
				CurrentPage: 1, PageSize: 10, TotalElements: 20, TotalPages: 2,
				IsFirst: false, IsLast: true, HasNext: false, HasPrevious: true,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, domain.NewPaginationInfo(tc.page, tc.total))
		})
	}
}
