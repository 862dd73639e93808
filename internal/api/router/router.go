package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "gocadastro/docs" // registro da especificação OpenAPI gerada
	"gocadastro/internal/api/user"
	"gocadastro/internal/pkg/logger"
	"gocadastro/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências e envolve
// o mux inteiro com o filtro de autenticação (que nunca aborta a requisição).
func NewRouter(userHandler *user.Handler, tokenSvc middleware.TokenValidator, users middleware.UserLookup, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// --- Rotas de Health Check ---
	mux.HandleFunc("GET /ping", PingHandler)

	// --- Rotas de Autenticação ---
	mux.HandleFunc("POST /auth/v1/register", userHandler.RegisterHandler)
	mux.HandleFunc("POST /auth/v1/login", userHandler.LoginHandler)

	// --- Rotas de Usuário ---
	// As rotas literais (/users/email, /users/cpf, /users/search) têm
	// precedência sobre o curinga /users/{id} no ServeMux.
	mux.HandleFunc("GET /users", userHandler.ListHandler)
	mux.HandleFunc("GET /users/email", userHandler.GetByEmailHandler)
	mux.HandleFunc("GET /users/cpf", userHandler.GetByCpfHandler)
	mux.HandleFunc("GET /users/search", userHandler.SearchHandler)
	mux.HandleFunc("GET /users/search/name", userHandler.SearchByNameHandler)
	mux.HandleFunc("GET /users/search/lastname", userHandler.SearchByLastNameHandler)
	mux.HandleFunc("GET /users/{id}", userHandler.GetByIDHandler)
	mux.HandleFunc("PUT /users/{id}", userHandler.UpdateHandler)
	mux.HandleFunc("DELETE /users/{id}", userHandler.DeleteHandler)

	// --- Documentação (Swagger UI) ---
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// O filtro de autenticação envolve o mux inteiro; as rotas públicas da
	// skip-list seguem sem verificação.
	authFilter := middleware.NewAuthFilter(tokenSvc, users, log)
	return authFilter(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
