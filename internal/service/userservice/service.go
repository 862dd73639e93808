package userservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"gocadastro/internal/domain"
	apperror "gocadastro/internal/errors"
	"gocadastro/internal/pkg/hash"
	"gocadastro/internal/pkg/logger"
	"gocadastro/internal/validation"
)

// timeNow é indireção para a data corrente, substituída em teste.
var timeNow = time.Now

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(subjectEmail string) (string, error)
}

// UserService implementa a lógica de negócio das operações de conta:
// registro, login, consulta, busca, atualização e remoção.
type UserService struct {
	UserRepo domain.UserRepository
	Hasher   hash.Hasher
	TokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando os colaboradores.
func NewService(repo domain.UserRepository, hasher hash.Hasher, tokenSvc TokenService, log logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		Hasher:   hasher,
		TokenSvc: tokenSvc,
		logger:   log,
	}
}

// Register registra um novo usuário: valida e normaliza o payload, rejeita
// e-mail/CPF duplicados, hasheia a senha, persiste e emite o token.
// O índice único do banco é a rejeição autoritativa para duplicidade; as
// pré-checagens só melhoram a mensagem.
func (s *UserService) Register(ctx context.Context, dto domain.RegisterUserRequest) (domain.User, string, error) {
	if err := validation.Struct(dto); err != nil {
		return domain.User{}, "", apperror.NewValidationError(err.Error())
	}

	if dto.DateOfBirth.IsZero() {
		return domain.User{}, "", apperror.NewValidationError("dateOfBirth is required")
	}
	if !validation.IsPast(dto.DateOfBirth.Time, timeNow()) {
		return domain.User{}, "", apperror.NewValidationError("dateOfBirth must be in the past")
	}

	email := validation.NormalizeEmail(dto.Email)
	if !validation.ValidEmail(email) {
		return domain.User{}, "", apperror.NewValidationError("Invalid email format")
	}

	exists, err := s.UserRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return domain.User{}, "", err
	}
	if exists {
		s.logger.Warn("Tentativa de registro com e-mail existente.", map[string]interface{}{"email": email})
		return domain.User{}, "", apperror.NewDuplicateError("Email already registered")
	}

	exists, err = s.UserRepo.ExistsByCpf(ctx, dto.CPF)
	if err != nil {
		return domain.User{}, "", err
	}
	if exists {
		s.logger.Warn("Tentativa de registro com CPF existente.", map[string]interface{}{"cpf": dto.CPF})
		return domain.User{}, "", apperror.NewDuplicateError("CPF already registered")
	}

	passwordHash, err := s.Hasher.Hash(dto.Password)
	if err != nil {
		return domain.User{}, "", apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	newUser := domain.User{
		Name:         validation.Capitalize(dto.Name),
		LastName:     validation.Capitalize(dto.LastName),
		CPF:          dto.CPF,
		DateOfBirth:  dto.DateOfBirth,
		Email:        email,
		PasswordHash: passwordHash,
	}

	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		// A pré-checagem é sujeita a corrida entre registros concorrentes:
		// a violação de unicidade na escrita é a rejeição que vale.
		if apperror.IsUniqueViolation(err) {
			return domain.User{}, "", apperror.NewDuplicateError("Email or CPF already registered")
		}
		return domain.User{}, "", err
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.Email)
	if err != nil {
		return domain.User{}, "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Usuário registrado com sucesso.", map[string]interface{}{"email": user.Email})
	return user, tokenString, nil
}

// Login autentica um usuário e emite um novo token. A mensagem de rejeição é
// sempre genérica ("Invalid email or password") para não revelar se o e-mail
// existe.
func (s *UserService) Login(ctx context.Context, dto domain.LoginRequest) (domain.User, string, error) {
	if strings.TrimSpace(dto.Email) == "" {
		return domain.User{}, "", apperror.NewValidationError("Email is required")
	}
	if dto.Password == "" {
		return domain.User{}, "", apperror.NewValidationError("Password is required")
	}

	email := validation.NormalizeEmail(dto.Email)
	if !validation.ValidEmail(email) {
		return domain.User{}, "", apperror.NewValidationError("Invalid email format")
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			s.logger.Warn("Tentativa de login com e-mail inexistente.", map[string]interface{}{"email": email})
			return domain.User{}, "", apperror.NewUnauthorizedError("Invalid email or password")
		}
		return domain.User{}, "", err
	}

	if !s.Hasher.Compare(dto.Password, user.PasswordHash) {
		s.logger.Warn("Tentativa de login com senha incorreta.", map[string]interface{}{"email": email})
		return domain.User{}, "", apperror.NewUnauthorizedError("Invalid email or password")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.Email)
	if err != nil {
		return domain.User{}, "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Usuário autenticado com sucesso.", map[string]interface{}{"email": email})
	return user, tokenString, nil
}

// Update aplica uma atualização parcial: campo ausente ou em branco não
// altera nada. E-mail novo precisa ser diferente do atual e não colidir com
// outro usuário (ambos 409).
func (s *UserService) Update(ctx context.Context, id string, dto domain.UpdateUserRequest) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, apperror.NewValidationError("The user ID must be a valid UUID")
	}

	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			s.logger.Warn("Tentativa de atualização de usuário inexistente.", map[string]interface{}{"user_id": id})
			return domain.User{}, apperror.NewNotFoundError("User not found")
		}
		return domain.User{}, err
	}

	if strings.TrimSpace(dto.Name) != "" {
		user.Name = validation.Capitalize(dto.Name)
	}

	if strings.TrimSpace(dto.LastName) != "" {
		user.LastName = validation.Capitalize(dto.LastName)
	}

	if strings.TrimSpace(dto.Email) != "" {
		newEmail := validation.NormalizeEmail(dto.Email)

		if !validation.ValidEmail(newEmail) {
			return domain.User{}, apperror.NewValidationError("Invalid email format")
		}

		if newEmail == user.Email {
			return domain.User{}, apperror.NewConflictError("New email must be different from current email")
		}

		exists, err := s.UserRepo.ExistsByEmail(ctx, newEmail)
		if err != nil {
			return domain.User{}, err
		}
		if exists {
			return domain.User{}, apperror.NewConflictError("Email already in use by another user")
		}

		user.Email = newEmail
	}

	if strings.TrimSpace(dto.Password) != "" {
		if len(dto.Password) < 6 {
			return domain.User{}, apperror.NewValidationError("password must be a minimum of 6 characters")
		}
		if len(dto.Password) > 100 {
			return domain.User{}, apperror.NewValidationError("password must be at most 100 characters")
		}
		passwordHash, err := s.Hasher.Hash(dto.Password)
		if err != nil {
			return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
		}
		user.PasswordHash = passwordHash
	}

	updated, err := s.UserRepo.Save(ctx, user)
	if err != nil {
		if apperror.IsUniqueViolation(err) {
			return domain.User{}, apperror.NewConflictError("Email already in use by another user")
		}
		return domain.User{}, err
	}

	s.logger.Info("Usuário atualizado com sucesso.", map[string]interface{}{"user_id": id})
	return updated, nil
}

// Delete remove o usuário definitivamente (hard delete).
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("The user ID must be a valid UUID")
	}

	exists, err := s.UserRepo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		s.logger.Warn("Tentativa de remoção de usuário inexistente.", map[string]interface{}{"user_id": id})
		return apperror.NewNotFoundError("User not found")
	}

	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Usuário removido com sucesso.", map[string]interface{}{"user_id": id})
	return nil
}

// FindByID busca um usuário pelo identificador.
func (s *UserService) FindByID(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, apperror.NewValidationError("The user ID must be a valid UUID")
	}
	return s.UserRepo.FindByID(ctx, id)
}

// FindByEmail busca um usuário pelo e-mail. O e-mail de consulta passa pela
// mesma normalização do armazenamento antes da busca; formato malformado na
// consulta é 400, ausência de registro é 404.
func (s *UserService) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	adjusted := validation.NormalizeEmail(email)
	if !validation.ValidEmail(adjusted) {
		return domain.User{}, apperror.NewValidationError("Invalid email format")
	}
	return s.UserRepo.FindByEmail(ctx, adjusted)
}

// FindByCpf busca um usuário pelo CPF (somente dígitos).
func (s *UserService) FindByCpf(ctx context.Context, cpf string) (domain.User, error) {
	if !validation.ValidCPF(cpf) {
		s.logger.Warn("CPF com formato inválido recebido.", map[string]interface{}{"cpf": cpf})
		return domain.User{}, apperror.NewValidationError("Invalid CPF format. Use only numbers, e.g. 00000000000")
	}
	return s.UserRepo.FindByCpf(ctx, cpf)
}

// List retorna uma página de usuários com os parâmetros normalizados.
func (s *UserService) List(ctx context.Context, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error) {
	req := NormalizePageRequest(page, size, sortBy, sortDirection, "name")
	result, err := s.UserRepo.FindAll(ctx, req)
	return result, req, err
}

// SearchByName busca por fragmento de nome (case-insensitive).
func (s *UserService) SearchByName(ctx context.Context, name string, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error) {
	if strings.TrimSpace(name) == "" {
		return domain.UserPage{}, domain.PageRequest{}, apperror.NewValidationError("Search term is required")
	}
	req := NormalizePageRequest(page, size, sortBy, sortDirection, "name")
	result, err := s.UserRepo.SearchByName(ctx, strings.TrimSpace(name), req)
	return result, req, err
}

// SearchByLastName busca por fragmento de sobrenome (case-insensitive).
func (s *UserService) SearchByLastName(ctx context.Context, lastName string, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error) {
	if strings.TrimSpace(lastName) == "" {
		return domain.UserPage{}, domain.PageRequest{}, apperror.NewValidationError("Search term is required")
	}
	req := NormalizePageRequest(page, size, sortBy, sortDirection, "lastName")
	result, err := s.UserRepo.SearchByLastName(ctx, strings.TrimSpace(lastName), req)
	return result, req, err
}

// Search busca por fragmento em nome ou sobrenome (case-insensitive).
func (s *UserService) Search(ctx context.Context, term string, page, size int, sortBy, sortDirection string) (domain.UserPage, domain.PageRequest, error) {
	if strings.TrimSpace(term) == "" {
		return domain.UserPage{}, domain.PageRequest{}, apperror.NewValidationError("Search term is required")
	}
	req := NormalizePageRequest(page, size, sortBy, sortDirection, "name")
	result, err := s.UserRepo.Search(ctx, strings.TrimSpace(term), req)
	return result, req, err
}

// NormalizePageRequest aplica os limites de paginação: página negativa vira 0,
// tamanho fora de 1..100 vira 10, ordenação em branco cai no padrão e direção
// só é descendente para "desc" (case-insensitive).
func NormalizePageRequest(page, size int, sortBy, sortDirection, defaultSortBy string) domain.PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	if sortBy == "" {
		sortBy = defaultSortBy
	}

	direction := "asc"
	if strings.EqualFold(sortDirection, "desc") {
		direction = "desc"
	}

	return domain.PageRequest{
		Page:          page,
		Size:          size,
		SortBy:        sortBy,
		SortDirection: direction,
	}
}
