package userrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gocadastro/internal/domain"
	apperror "gocadastro/internal/errors"
	"gocadastro/internal/pkg/cache"
	"gocadastro/internal/pkg/logger"
)

// userColumns são as colunas lidas em toda busca de usuário.
const userColumns = `id, name, last_name, cpf, date_of_birth, email, password_hash, created_at, updated_at`

// sortColumns mapeia os campos de ordenação aceitos pela API para as colunas
// reais. Campo desconhecido cai no padrão "name" para manter o ORDER BY
// seguro contra injeção.
var sortColumns = map[string]string{
	"name":        "name",
	"lastName":    "last_name",
	"email":       "email",
	"cpf":         "cpf",
	"dateOfBirth": "date_of_birth",
	"createdAt":   "created_at",
}

// UserRepository implementa a interface domain.UserRepository sobre o
// PostgreSQL, com cache de leitura por ID no Redis.
type UserRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB e o cache.
func NewUserRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, cacheTTL time.Duration, log logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// Save insere o usuário quando não há ID (o identificador é gerado aqui e
// nunca fornecido pelo chamador) ou atualiza o registro existente.
// Violação de índice único (e-mail/CPF) é propagada de forma distinguível
// para a camada de serviço: o índice do banco é a fonte de verdade contra
// registros concorrentes.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now()

	if user.ID == "" {
		user.ID = uuid.NewString()
		user.CreatedAt = now
		user.UpdatedAt = now

		insertSQL := `INSERT INTO users (id, name, last_name, cpf, date_of_birth, email, password_hash, created_at, updated_at)
                      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

		_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
			user.ID, user.Name, user.LastName, user.CPF, user.DateOfBirth,
			user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			if apperror.IsUniqueViolation(err) {
				r.logger.Warn("Violação de unicidade ao inserir usuário.", map[string]interface{}{"email": user.Email})
				return domain.User{}, apperror.NewDBError("unique constraint violated on insert", err)
			}
			r.logger.Error("Falha ao inserir usuário no DB.", err)
			return domain.User{}, apperror.NewDBError("failed to insert user", err)
		}

		r.logger.Info("Usuário salvo no repositório.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
		return user, nil
	}

	user.UpdatedAt = now

	updateSQL := `UPDATE users SET name = $2, last_name = $3, email = $4, password_hash = $5, updated_at = $6
                  WHERE id = $1`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL,
		user.ID, user.Name, user.LastName, user.Email, user.PasswordHash, user.UpdatedAt,
	)
	if err != nil {
		if apperror.IsUniqueViolation(err) {
			r.logger.Warn("Violação de unicidade ao atualizar usuário.", map[string]interface{}{"user_id": user.ID})
			return domain.User{}, apperror.NewDBError("unique constraint violated on update", err)
		}
		r.logger.Error("Falha ao atualizar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to update user", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("User not found with id '%s'", user.ID))
	}

	r.invalidate(ctxTimeout, user.ID)
	r.logger.Info("Usuário atualizado no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// FindByID busca um usuário pelo identificador, com cache de leitura.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// Tentativa de cache: qualquer erro de cache é tratado como miss.
	if cached, err := r.Cache.Get(ctxTimeout, cacheKey(id)); err == nil {
		var record cachedUser
		if err := json.Unmarshal([]byte(cached), &record); err == nil {
			r.logger.Debug("Usuário servido do cache.", map[string]interface{}{"user_id": id})
			return record.toDomain(), nil
		}
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := r.scanOne(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError("User not found with the provided ID")
		}
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by id", err)
	}

	if payload, err := json.Marshal(newCachedUser(user)); err == nil {
		if err := r.Cache.Set(ctxTimeout, cacheKey(id), payload, r.CacheTTL); err != nil {
			r.logger.Debug("Falha ao popular cache de usuário.", map[string]interface{}{"user_id": id})
		}
	}

	return user, nil
}

// FindByEmail busca um usuário pelo e-mail já normalizado.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := r.scanOne(r.DB.QueryRowContext(ctxTimeout, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError("User not found with the provided email")
		}
		r.logger.Error("Falha ao buscar usuário por e-mail no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by email", err)
	}
	return user, nil
}

// FindByCpf busca um usuário pelo CPF (11 dígitos, sem formatação).
func (r *UserRepository) FindByCpf(ctx context.Context, cpf string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE cpf = $1`
	user, err := r.scanOne(r.DB.QueryRowContext(ctxTimeout, query, cpf))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError("User not found with the provided cpf")
		}
		r.logger.Error("Falha ao buscar usuário por CPF no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by cpf", err)
	}
	return user, nil
}

// ExistsByID verifica a existência de um usuário pelo identificador.
func (r *UserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
}

// ExistsByEmail verifica a existência de um usuário pelo e-mail normalizado.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// ExistsByCpf verifica a existência de um usuário pelo CPF.
func (r *UserRepository) ExistsByCpf(ctx context.Context, cpf string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE cpf = $1)`, cpf)
}

// FindAll retorna uma página de usuários ordenada.
func (r *UserRepository) FindAll(ctx context.Context, page domain.PageRequest) (domain.UserPage, error) {
	return r.queryPage(ctx, "", nil, page)
}

// SearchByName busca usuários cujo nome contém o termo (case-insensitive).
func (r *UserRepository) SearchByName(ctx context.Context, name string, page domain.PageRequest) (domain.UserPage, error) {
	where := `WHERE name ILIKE '%' || $1 || '%'`
	return r.queryPage(ctx, where, []interface{}{name}, page)
}

// SearchByLastName busca usuários cujo sobrenome contém o termo (case-insensitive).
func (r *UserRepository) SearchByLastName(ctx context.Context, lastName string, page domain.PageRequest) (domain.UserPage, error) {
	where := `WHERE last_name ILIKE '%' || $1 || '%'`
	return r.queryPage(ctx, where, []interface{}{lastName}, page)
}

// Search busca usuários cujo nome ou sobrenome contém o termo (case-insensitive).
func (r *UserRepository) Search(ctx context.Context, term string, page domain.PageRequest) (domain.UserPage, error) {
	where := `WHERE name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%'`
	return r.queryPage(ctx, where, []interface{}{term}, page)
}

// Delete remove o usuário definitivamente (hard delete, sem tombstone).
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar usuário no DB.", err)
		return apperror.NewDBError("failed to delete user", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return apperror.NewNotFoundError("User not found")
	}

	r.invalidate(ctxTimeout, id)
	r.logger.Info("Usuário removido do repositório.", map[string]interface{}{"user_id": id})
	return nil
}

// --- Helpers internos ---

// cachedUser é o registro serializado no Redis. A entidade domain.User oculta
// o hash da senha no JSON (`json:"-"`), então o cache usa um tipo próprio para
// não perder o campo no round-trip.
type cachedUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name"`
	CPF          string    `json:"cpf"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newCachedUser(user domain.User) cachedUser {
	return cachedUser{
		ID:           user.ID,
		Name:         user.Name,
		LastName:     user.LastName,
		CPF:          user.CPF,
		DateOfBirth:  user.DateOfBirth.Time,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func (c cachedUser) toDomain() domain.User {
	return domain.User{
		ID:           c.ID,
		Name:         c.Name,
		LastName:     c.LastName,
		CPF:          c.CPF,
		DateOfBirth:  domain.Date{Time: c.DateOfBirth},
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// queryPage executa a listagem paginada com contagem total.
func (r *UserRepository) queryPage(ctx context.Context, where string, args []interface{}, page domain.PageRequest) (domain.UserPage, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	column, ok := sortColumns[page.SortBy]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if page.SortDirection == "desc" {
		direction = "DESC"
	}

	countQuery := `SELECT COUNT(*) FROM users ` + where
	var total int64
	if err := r.DB.QueryRowContext(ctxTimeout, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Falha ao contar usuários no DB.", err)
		return domain.UserPage{}, apperror.NewDBError("failed to count users", err)
	}

	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		userColumns, where, column, direction, limitPos, offsetPos)

	queryArgs := append(append([]interface{}{}, args...), page.Size, page.Page*page.Size)

	rows, err := r.DB.QueryContext(ctxTimeout, query, queryArgs...)
	if err != nil {
		r.logger.Error("Falha ao listar usuários no DB.", err)
		return domain.UserPage{}, apperror.NewDBError("failed to list users", err)
	}
	defer rows.Close()

	content := make([]domain.User, 0, page.Size)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.Name, &user.LastName, &user.CPF, &user.DateOfBirth,
			&user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return domain.UserPage{}, apperror.NewDBError("failed to scan user row", err)
		}
		content = append(content, user)
	}
	if err := rows.Err(); err != nil {
		return domain.UserPage{}, apperror.NewDBError("failed to iterate user rows", err)
	}

	return domain.UserPage{Content: content, TotalElements: total}, nil
}

// scanOne mapeia uma linha para a entidade User.
func (r *UserRepository) scanOne(row *sql.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Name, &user.LastName, &user.CPF, &user.DateOfBirth,
		&user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

// exists executa uma checagem EXISTS genérica.
func (r *UserRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var found bool
	if err := r.DB.QueryRowContext(ctxTimeout, query, arg).Scan(&found); err != nil {
		r.logger.Error("Falha em checagem de existência no DB.", err)
		return false, apperror.NewDBError("failed to check existence", err)
	}
	return found, nil
}

// invalidate remove a entrada de cache do usuário após escrita.
func (r *UserRepository) invalidate(ctx context.Context, id string) {
	if err := r.Cache.Delete(ctx, cacheKey(id)); err != nil {
		r.logger.Debug("Falha ao invalidar cache de usuário.", map[string]interface{}{"user_id": id})
	}
}

func cacheKey(id string) string {
	return "user:" + id
}
