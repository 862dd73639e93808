// @title GoCadastro API
// @version 1.0
// @description API REST de gerenciamento de contas de usuário: registro, login, consulta, busca, atualização e remoção, com autenticação JWT.
// @BasePath /
package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gocadastro/config"
	"gocadastro/internal/api/router"
	"gocadastro/internal/api/user"
	"gocadastro/internal/pkg/cache"
	"gocadastro/internal/pkg/database"
	"gocadastro/internal/pkg/hash"
	"gocadastro/internal/pkg/logger"
	"gocadastro/internal/pkg/token"
	"gocadastro/internal/repository/userrepo"
	"gocadastro/internal/service/userservice"
)

func main() {
	// 0. Carregar variáveis de ambiente (.env). Se o arquivo não existir,
	// seguimos com as variáveis do ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("Aviso: arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 1. Conexão com recursos de infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis). Indisponibilidade do cache não impede o serviço:
	// o repositório trata erro de cache como miss.
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Warn("Redis indisponível, cache de leitura degradado.", map[string]interface{}{"addr": cfg.RedisAddr})
	} else {
		log.Info("Conexão Redis estabelecida.", nil)
	}

	// 2. Injeção de dependências (Repository -> Service -> Handler)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de tokens JWT inicializado.", nil)

	hasher := hash.NewBcryptHasher()

	userRepo := userrepo.NewUserRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	log.Debug("Repositório de usuário inicializado.", nil)

	userSvc := userservice.NewService(userRepo, hasher, tokenSvc, log)
	log.Debug("Serviço de usuário inicializado.", nil)

	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Handler de usuário inicializado.", nil)

	// 3. Roteador e servidor HTTP

	r := router.NewRouter(userHandler, tokenSvc, userRepo, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e graceful shutdown
	go func() {
		log.Info("Servidor GoCadastro ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
