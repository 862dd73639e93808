package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gocadastro/internal/api/user"
	"gocadastro/internal/domain"
	apperror "gocadastro/internal/errors"
	"gocadastro/internal/pkg/logger"
)

// MockUserService é uma implementação mock da interface UserService do Handler.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, dto domain.RegisterUserRequest) (domain.User, string, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(domain.User), args.String(1), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, dto domain.LoginRequest) (domain.User, string, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(domain.User), args.String(1), args.Error(2)
}

func (m *MockUserService) Update(ctx context.Context, id string, dto domain.UpdateUserRequest) (domain.User, error) {
	args := m.Called(ctx, id, dto)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserService) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserService) FindByCpf(ctx context.Context, cpf string) (domain.User, error) {
	args := m.Called(ctx, cpf)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error) {
	args := m.Called(ctx, page, size, sortBy, sortDirection)
	return args.Get(0).(domain.UserPage), args.Get(1).(domain.PageRequest), args.Error(2)
}

func (m *MockUserService) SearchByName(ctx context.Context, name string, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error) {
	args := m.Called(ctx, name, page, size, sortBy, sortDirection)
	return args.Get(0).(domain.UserPage), args.Get(1).(domain.PageRequest), args.Error(2)
}

func (m *MockUserService) SearchByLastName(ctx context.Context, lastName string, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error) {
	args := m.Called(ctx, lastName, page, size, sortBy, sortDirection)
	return args.Get(0).(domain.UserPage), args.Get(1).(domain.PageRequest), args.Error(2)
}

func (m *MockUserService) Search(ctx context.Context, term string, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error) {
	args := m.Called(ctx, term, page, size, sortBy, sortDirection)
	return args.Get(0).(domain.UserPage), args.Get(1).(domain.PageRequest), args.Error(2)
}

func newTestHandler() (*user.Handler, *MockUserService) {
	mockSvc := new(MockUserService)
	return user.NewHandler(mockSvc, logger.NewLogger("error")), mockSvc
}

// decodeBody decodifica o corpo da resposta em um mapa genérico.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

// TestRegisterHandler_Success testa o envelope 201 com token e visão de
// leitura do usuário (CPF formatado, idade derivada).
func TestRegisterHandler_Success(t *testing.T) {
	h, mockSvc := newTestHandler()

	saved := domain.User{
		ID:          uuid.New().String(),
		Name:        "Maria",
		LastName:    "Da Silva",
		CPF:         "12345678901",
		DateOfBirth: domain.NewDate(1990, time.May, 15),
		Email:       "maria@example.com",
	}
	mockSvc.On("Register", mock.Anything, mock.Anything).Return(saved, "jwt-token", nil)

	payload := `{"name":"maria","lastName":"da silva","cpf":"12345678901","dateOfBirth":"15/05/1990","email":"maria@example.com","password":"s3nh4forte"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/v1/register", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	h.RegisterHandler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User registered successfully", body["message"])
	assert.Equal(t, "jwt-token", body["token"])
	assert.NotEmpty(t, body["timestamp"])

	userData := body["user"].(map[string]interface{})
	assert.Equal(t, "123.456.789-01", userData["cpf"])
	assert.Equal(t, "Maria", userData["name"])
	// O hash da senha jamais aparece na resposta
	_, hasHash := userData["password_hash"]
	assert.False(t, hasHash)
	mockSvc.AssertExpectations(t)
}

// TestRegisterHandler_Fail_InvalidJSON testa a rejeição de corpo malformado.
func TestRegisterHandler_Fail_InvalidJSON(t *testing.T) {
	h, mockSvc := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/auth/v1/register", strings.NewReader("{corpo ruim"))
	rec := httptest.NewRecorder()

	h.RegisterHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid JSON payload", body["message"])
	mockSvc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

// TestRegisterHandler_Fail_Duplicate testa o status 400 para duplicidade no
// registro (diferente do 409 da atualização).
func TestRegisterHandler_Fail_Duplicate(t *testing.T) {
	h, mockSvc := newTestHandler()

	mockSvc.On("Register", mock.Anything, mock.Anything).
		Return(domain.User{}, "", apperror.NewDuplicateError("Email already registered"))

	req := httptest.NewRequest(http.MethodPost, "/auth/v1/register", strings.NewReader(`{"email":"maria@example.com"}`))
	rec := httptest.NewRecorder()

	h.RegisterHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Email already registered", body["message"])
}

// TestLoginHandler_Fail_Unauthorized testa o 401 com a mensagem genérica.
func TestLoginHandler_Fail_Unauthorized(t *testing.T) {
	h, mockSvc := newTestHandler()

	mockSvc.On("Login", mock.Anything, mock.Anything).
		Return(domain.User{}, "", apperror.NewUnauthorizedError("Invalid email or password"))

	req := httptest.NewRequest(http.MethodPost, "/auth/v1/login", strings.NewReader(`{"email":"x@example.com","password":"errada"}`))
	rec := httptest.NewRecorder()

	h.LoginHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid email or password", body["message"])
}

// TestGetByIDHandler_Fail_NotFound testa o 404 com envelope de erro.
func TestGetByIDHandler_Fail_NotFound(t *testing.T) {
	h, mockSvc := newTestHandler()

	id := uuid.New().String()
	mockSvc.On("FindByID", mock.Anything, id).
		Return(domain.User{}, apperror.NewNotFoundError("User not found"))

	req := httptest.NewRequest(http.MethodGet, "/users/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.GetByIDHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User not found", body["message"])
}

// TestGetByIDHandler_Fail_InternalErrorIsOpaque testa que o detalhe de erro
// interno nunca vaza para o cliente.
func TestGetByIDHandler_Fail_InternalErrorIsOpaque(t *testing.T) {
	h, mockSvc := newTestHandler()

	id := uuid.New().String()
	mockSvc.On("FindByID", mock.Anything, id).
		Return(domain.User{}, apperror.NewDBError("Falha ao consultar usuário", assert.AnError))

	req := httptest.NewRequest(http.MethodGet, "/users/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.GetByIDHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "An unexpected error occurred", body["message"])
	assert.NotContains(t, rec.Body.String(), "Falha ao consultar")
}

// TestListHandler_EmptyPage testa a página vazia: 200 com success=false.
func TestListHandler_EmptyPage(t *testing.T) {
	h, mockSvc := newTestHandler()

	normalized := domain.PageRequest{Page: 0, Size: 10, SortBy: "name", SortDirection: "asc"}
	mockSvc.On("List", mock.Anything, 0, 10, "", "").
		Return(domain.UserPage{}, normalized, nil)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()

	h.ListHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No users found", body["message"])
}

// TestListHandler_Success_Pagination testa o envelope paginado completo.
func TestListHandler_Success_Pagination(t *testing.T) {
	h, mockSvc := newTestHandler()

	content := []domain.User{
		{ID: uuid.New().String(), Name: "Ana", CPF: "11122233344", DateOfBirth: domain.NewDate(1995, time.March, 10)},
		{ID: uuid.New().String(), Name: "Bruno", CPF: "55566677788", DateOfBirth: domain.NewDate(1988, time.July, 22)},
	}
	normalized := domain.PageRequest{Page: 1, Size: 2, SortBy: "name", SortDirection: "asc"}
	mockSvc.On("List", mock.Anything, 1, 2, "name", "asc").
		Return(domain.UserPage{Content: content, TotalElements: 5}, normalized, nil)

	req := httptest.NewRequest(http.MethodGet, "/users?page=1&size=2&sortBy=name&sortDirection=asc", nil)
	rec := httptest.NewRecorder()

	h.ListHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Users retrieved successfully", body["message"])
	assert.Len(t, body["content"], 2)

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["currentPage"])
	assert.Equal(t, float64(2), pagination["pageSize"])
	assert.Equal(t, float64(5), pagination["totalElements"])
	assert.Equal(t, float64(3), pagination["totalPages"])
	assert.Equal(t, false, pagination["isFirst"])
	assert.Equal(t, false, pagination["isLast"])
	assert.Equal(t, true, pagination["hasNext"])
	assert.Equal(t, true, pagination["hasPrevious"])
}

// TestSearchHandler_Success testa a mensagem da busca com total e termo.
func TestSearchHandler_Success(t *testing.T) {
	h, mockSvc := newTestHandler()

	content := []domain.User{{ID: uuid.New().String(), Name: "Silvana", CPF: "11122233344"}}
	normalized := domain.PageRequest{Page: 0, Size: 10, SortBy: "name", SortDirection: "asc"}
	mockSvc.On("Search", mock.Anything, "silva", 0, 10, "", "").
		Return(domain.UserPage{Content: content, TotalElements: 1}, normalized, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/search?q=silva", nil)
	rec := httptest.NewRecorder()

	h.SearchHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Found 1 users matching 'silva'", body["message"])
}

// TestUpdateHandler_Fail_Conflict testa o 409 da troca de e-mail.
func TestUpdateHandler_Fail_Conflict(t *testing.T) {
	h, mockSvc := newTestHandler()

	id := uuid.New().String()
	mockSvc.On("Update", mock.Anything, id, mock.Anything).
		Return(domain.User{}, apperror.NewConflictError("Email already in use by another user"))

	req := httptest.NewRequest(http.MethodPut, "/users/"+id, strings.NewReader(`{"email":"outra@example.com"}`))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.UpdateHandler(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Email already in use by another user", body["message"])
}

// TestDeleteHandler_Success testa o envelope de remoção sem payload de dados.
func TestDeleteHandler_Success(t *testing.T) {
	h, mockSvc := newTestHandler()

	id := uuid.New().String()
	mockSvc.On("Delete", mock.Anything, id).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/users/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.DeleteHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User deleted successfully", body["message"])
	mockSvc.AssertExpectations(t)
}
