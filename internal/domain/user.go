package domain

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gocadastro/internal/validation"
)

// dateLayout é o formato de data usado no JSON da API (dd/MM/yyyy).
const dateLayout = "02/01/2006"

// Date é uma data de calendário sem horário, serializada como "dd/MM/yyyy".
type Date struct {
	time.Time
}

// NewDate cria uma Date a partir de ano, mês e dia.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON serializa a data no formato dd/MM/yyyy.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON aceita "dd/MM/yyyy"; null e string vazia deixam a data zerada.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected format dd/MM/yyyy", s)
	}
	d.Time = t
	return nil
}

// Value implementa driver.Valuer para persistência como DATE.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan implementa sql.Scanner para leitura de colunas DATE.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

// User representa a entidade de usuário no sistema.
// O ID é gerado na persistência e imutável; e-mail e CPF são únicos (índice
// único do banco); a senha nunca é armazenada nem exposta em texto puro.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LastName     string    `json:"lastName"`
	CPF          string    `json:"cpf"`
	DateOfBirth  Date      `json:"dateOfBirth"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// RegisterUserRequest representa o payload de entrada para o registro.
type RegisterUserRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=50"`
	LastName    string `json:"lastName" validate:"required,notblank,max=50"`
	CPF         string `json:"cpf" validate:"required,len=11,numeric"`
	DateOfBirth Date   `json:"dateOfBirth"`
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required,notblank,min=6,max=100"`
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest representa o payload de atualização parcial.
// Campo ausente ou em branco significa "sem alteração", nunca limpeza.
type UpdateUserRequest struct {
	Name     string `json:"name,omitempty"`
	LastName string `json:"lastName,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// UserData é a visão de leitura do usuário exposta pela API.
// O CPF é formatado apenas para exibição; a idade é derivada na leitura e
// nunca armazenada.
type UserData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	CPF      string `json:"cpf"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
}

// NewUserData monta a visão de leitura a partir da entidade.
func NewUserData(user User) UserData {
	return UserData{
		ID:       user.ID,
		Name:     user.Name,
		LastName: user.LastName,
		CPF:      validation.FormatCPF(user.CPF),
		Email:    user.Email,
		Age:      validation.Age(user.DateOfBirth.Time, time.Now()),
	}
}

// PageRequest agrupa os parâmetros de paginação já normalizados pelo serviço.
type PageRequest struct {
	Page          int
	Size          int
	SortBy        string
	SortDirection string // "asc" ou "desc"
}

// UserPage é o resultado de uma listagem paginada do repositório.
type UserPage struct {
	Content       []User
	TotalElements int64
}

// UserRepository define o contrato de persistência para a entidade User.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByCpf(ctx context.Context, cpf string) (User, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByCpf(ctx context.Context, cpf string) (bool, error)
	FindAll(ctx context.Context, page PageRequest) (UserPage, error)
	SearchByName(ctx context.Context, name string, page PageRequest) (UserPage, error)
	SearchByLastName(ctx context.Context, lastName string, page PageRequest) (UserPage, error)
	Search(ctx context.Context, term string, page PageRequest) (UserPage, error)
	Delete(ctx context.Context, id string) error
}
