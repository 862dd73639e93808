package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"gocadastro/internal/domain"
	apperror "gocadastro/internal/errors"
	"gocadastro/internal/pkg/logger"
)

// UserService define o contrato que o Handler espera da camada de serviço.
type UserService interface {
	Register(ctx context.Context, dto domain.RegisterUserRequest) (domain.User, string, error)
	Login(ctx context.Context, dto domain.LoginRequest) (domain.User, string, error)
	Update(ctx context.Context, id string, dto domain.UpdateUserRequest) (domain.User, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByCpf(ctx context.Context, cpf string) (domain.User, error)
	List(ctx context.Context, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error)
	SearchByName(ctx context.Context, name string, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error)
	SearchByLastName(ctx context.Context, lastName string, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error)
	Search(ctx context.Context, term string, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// respondJSON escreve o payload com o status informado.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError traduz o erro tipado para status + envelope padronizado.
// Erros internos são logados com o detalhe; o cliente recebe mensagem genérica.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status, _, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error("Erro interno no serviço de usuário.", err)
	}

	h.respondJSON(w, status, domain.NewErrorResponse(message))
}

// RegisterHandler lida com a requisição POST /auth/v1/register.
// @Summary Registra um novo usuário
// @Description Valida e normaliza o payload, hasheia a senha, persiste o usuário e emite um JWT.
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body domain.RegisterUserRequest true "Dados de registro"
// @Success 201 {object} domain.AuthResponse "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou e-mail/CPF já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /auth/v1/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var dto domain.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, apperror.NewValidationError("Invalid JSON payload"))
		return
	}

	newUser, tokenString, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated,
		domain.NewAuthSuccess("User registered successfully", tokenString, domain.NewUserData(newUser)))
}

// LoginHandler lida com a requisição POST /auth/v1/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Verifica e-mail e senha; a mensagem de falha é sempre genérica.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body domain.LoginRequest true "Credenciais do usuário"
// @Success 200 {object} domain.AuthResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /auth/v1/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var dto domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, apperror.NewValidationError("Invalid JSON payload"))
		return
	}

	user, tokenString, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK,
		domain.NewAuthSuccess("Logged in successfully", tokenString, domain.NewUserData(user)))
}

// GetByIDHandler lida com a requisição GET /users/{id}.
// @Summary Busca usuário por ID
// @Tags users
// @Produce json
// @Param id path string true "ID do usuário (UUID)"
// @Success 200 {object} domain.APIResponse
// @Failure 400 {object} domain.ErrorResponse "ID malformado"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Router /users/{id} [get]
func (h *Handler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK,
		domain.NewSuccessResponse("User found successfully", domain.NewUserData(user)))
}

// GetByEmailHandler lida com a requisição GET /users/email?email=.
// Formato malformado na consulta é 400; ausência de registro é 404.
// @Summary Busca usuário por e-mail
// @Tags users
// @Produce json
// @Param email query string true "E-mail do usuário"
// @Success 200 {object} domain.APIResponse
// @Failure 400 {object} domain.ErrorResponse "E-mail malformado"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Router /users/email [get]
func (h *Handler) GetByEmailHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.FindByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK,
		domain.NewSuccessResponse("User found successfully", domain.NewUserData(user)))
}

// GetByCpfHandler lida com a requisição GET /users/cpf?cpf=.
// @Summary Busca usuário por CPF
// @Tags users
// @Produce json
// @Param cpf query string true "CPF (11 dígitos, sem formatação)"
// @Success 200 {object} domain.APIResponse
// @Failure 400 {object} domain.ErrorResponse "CPF malformado"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Router /users/cpf [get]
func (h *Handler) GetByCpfHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.FindByCpf(r.Context(), r.URL.Query().Get("cpf"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK,
		domain.NewSuccessResponse("User found successfully", domain.NewUserData(user)))
}

// ListHandler lida com a requisição GET /users (listagem paginada).
// Página vazia responde 200 com success=false e "No users found".
// @Summary Lista usuários paginados
// @Tags users
// @Produce json
// @Param page query int false "Página (a partir de 0)"
// @Param size query int false "Tamanho da página (1-100, padrão 10)"
// @Param sortBy query string false "Campo de ordenação (padrão name)"
// @Param sortDirection query string false "asc ou desc (padrão asc)"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /users [get]
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	page, size, sortBy, sortDirection := pageParams(r)

	result, req, err := h.Service.List(r.Context(), page, size, sortBy, sortDirection)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if len(result.Content) == 0 {
		h.respondJSON(w, http.StatusOK, domain.NewPaginatedError("No users found"))
		return
	}

	h.respondJSON(w, http.StatusOK, domain.NewPaginatedSuccess(
		"Users retrieved successfully",
		toUserData(result.Content),
		domain.NewPaginationInfo(req, result.TotalElements),
	))
}

// SearchHandler lida com a requisição GET /users/search?q= (nome ou sobrenome).
// @Summary Busca usuários por fragmento de nome ou sobrenome
// @Tags users
// @Produce json
// @Param q query string true "Termo de busca"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.ErrorResponse "Termo de busca ausente"
// @Router /users/search [get]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	page, size, sortBy, sortDirection := pageParams(r)
	term := r.URL.Query().Get("q")

	result, req, err := h.Service.Search(r.Context(), term, page, size, sortBy, sortDirection)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if len(result.Content) == 0 {
		h.respondJSON(w, http.StatusOK, domain.NewPaginatedError("No users found with the provided search term"))
		return
	}

	h.respondJSON(w, http.StatusOK, domain.NewPaginatedSuccess(
		fmt.Sprintf("Found %d users matching '%s'", result.TotalElements, term),
		toUserData(result.Content),
		domain.NewPaginationInfo(req, result.TotalElements),
	))
}

// SearchByNameHandler lida com a requisição GET /users/search/name?name=.
// @Summary Busca usuários por fragmento de nome
// @Tags users
// @Produce json
// @Param name query string true "Fragmento do nome"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.ErrorResponse "Termo de busca ausente"
// @Router /users/search/name [get]
func (h *Handler) SearchByNameHandler(w http.ResponseWriter, r *http.Request) {
	page, size, sortBy, sortDirection := pageParams(r)
	name := r.URL.Query().Get("name")

	result, req, err := h.Service.SearchByName(r.Context(), name, page, size, sortBy, sortDirection)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if len(result.Content) == 0 {
		h.respondJSON(w, http.StatusOK, domain.NewPaginatedError("No users found containing the provided name"))
		return
	}

	h.respondJSON(w, http.StatusOK, domain.NewPaginatedSuccess(
		fmt.Sprintf("Found %d users containing '%s'", result.TotalElements, name),
		toUserData(result.Content),
		domain.NewPaginationInfo(req, result.TotalElements),
	))
}

// SearchByLastNameHandler lida com a requisição GET /users/search/lastname?lastName=.
// @Summary Busca usuários por fragmento de sobrenome
// @Tags users
// @Produce json
// @Param lastName query string true "Fragmento do sobrenome"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.ErrorResponse "Termo de busca ausente"
// @Router /users/search/lastname [get]
func (h *Handler) SearchByLastNameHandler(w http.ResponseWriter, r *http.Request) {
	page, size, sortBy, sortDirection := pageParams(r)
	lastName := r.URL.Query().Get("lastName")

	result, req, err := h.Service.SearchByLastName(r.Context(), lastName, page, size, sortBy, sortDirection)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if len(result.Content) == 0 {
		h.respondJSON(w, http.StatusOK, domain.NewPaginatedError("No users found containing the provided last name"))
		return
	}

	h.respondJSON(w, http.StatusOK, domain.NewPaginatedSuccess(
		fmt.Sprintf("Found %d users containing '%s'", result.TotalElements, lastName),
		toUserData(result.Content),
		domain.NewPaginationInfo(req, result.TotalElements),
	))
}

// UpdateHandler lida com a requisição PUT /users/{id} (atualização parcial).
// @Summary Atualiza nome, sobrenome, e-mail ou senha do usuário
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "ID do usuário (UUID)"
// @Param update body domain.UpdateUserRequest true "Campos a atualizar (ausente = sem alteração)"
// @Success 200 {object} domain.APIResponse
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 409 {object} domain.ErrorResponse "E-mail igual ao atual ou em uso por outro usuário"
// @Router /users/{id} [put]
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var dto domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, apperror.NewValidationError("Invalid JSON payload"))
		return
	}

	updated, err := h.Service.Update(r.Context(), r.PathValue("id"), dto)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK,
		domain.NewSuccessResponse("User updated successfully", domain.NewUserData(updated)))
}

// DeleteHandler lida com a requisição DELETE /users/{id} (hard delete).
// @Summary Remove um usuário definitivamente
// @Tags users
// @Produce json
// @Param id path string true "ID do usuário (UUID)"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Router /users/{id} [delete]
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK,
		domain.NewSuccessResponse("User deleted successfully", nil))
}

// pageParams extrai os parâmetros de paginação da query string. Valores não
// numéricos caem nos padrões; o clamp final acontece no serviço.
func pageParams(r *http.Request) (page, size int, sortBy, sortDirection string) {
	q := r.URL.Query()

	page = 0
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		page = v
	}

	size = 10
	if v, err := strconv.Atoi(q.Get("size")); err == nil {
		size = v
	}

	return page, size, q.Get("sortBy"), q.Get("sortDirection")
}

// toUserData converte as entidades da página para a visão de leitura.
func toUserData(users []domain.User) []domain.UserData {
	out := make([]domain.UserData, 0, len(users))
	for _, u := range users {
		out = append(out, domain.NewUserData(u))
	}
	return out
}
