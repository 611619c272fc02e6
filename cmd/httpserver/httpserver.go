// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/db"
	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/cardalloc"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/ledgerdelivery"
	"github.com/go-petr/pet-ledger/internal/ledgerrepo"
	"github.com/go-petr/pet-ledger/internal/ledgerservice"
	"github.com/go-petr/pet-ledger/internal/memstore"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/sessiondelivery"
	"github.com/go-petr/pet-ledger/internal/sessionrepo"
	"github.com/go-petr/pet-ledger/internal/sessionservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Server holds storage connections, handlers router and configuration.
type Server struct {
	DB     *sql.DB // nil for the memory driver
	Redis  *redis.Client
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close releases the storage connections.
func (s *Server) Close() error {
	var errs []error

	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}

	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}

	return errors.Join(errs...)
}

type accountStore interface {
	accountservice.Repo
	GetByCardNumber(ctx context.Context, cardNumber string) (domain.Account, error)
}

type stores struct {
	accounts accountStore
	ledger   ledgerservice.Repo
	sessions sessionservice.Repo
}

func openStores(config configpkg.Config) (*sql.DB, stores, error) {
	if config.DBDriver == configpkg.DriverMemory {
		ms := memstore.New()

		return nil, stores{
			accounts: ms.Accounts(),
			ledger:   ms.Ledger(),
			sessions: ms.Sessions(),
		}, nil
	}

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		return nil, stores{}, fmt.Errorf("cannot connect to database: %w", err)
	}

	if config.MigrateOnStart {
		if err := db.Migrate(conn); err != nil {
			conn.Close()
			return nil, stores{}, fmt.Errorf("cannot migrate database: %w", err)
		}
	}

	return conn, stores{
		accounts: accountrepo.NewRepoPGS(conn),
		ledger:   ledgerrepo.NewRepoPGS(conn),
		sessions: sessionrepo.NewRepoPGS(conn),
	}, nil
}

// New creates Server type with instantiated domains and routes.
func New(ctx context.Context, config configpkg.Config, logger zerolog.Logger) (*Server, error) {
	tokenMaker, err := tokenpkg.NewMaker(config.TokenKind, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	if err := web.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("cannot register validators: %w", err)
	}

	conn, st, err := openStores(config)
	if err != nil {
		return nil, err
	}

	server := &Server{
		DB:     conn,
		Config: config,
	}

	if config.RedisURL != "" {
		server.Redis, err = middleware.NewRedisClient(ctx, config.RedisURL)
		if err != nil {
			server.Close()
			return nil, err
		}
	}

	sessionService, err := sessionservice.New(st.sessions, config, tokenMaker)
	if err != nil {
		server.Close()
		return nil, errors.New("cannot initialize session service")
	}

	accountService := accountservice.New(st.accounts, cardalloc.New(st.accounts))
	ledgerService := ledgerservice.New(st.ledger, st.accounts)

	accountHandler := accountdelivery.NewHandler(accountService, sessionService)
	ledgerHandler := ledgerdelivery.NewHandler(ledgerService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.POST("/accounts", accountHandler.Register)
	engine.POST("/accounts/login", accountHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	authRoutes := engine.Group("/", middleware.AuthMiddleware(tokenMaker))
	authRoutes.GET("/accounts/me", accountHandler.Me)
	authRoutes.GET("/ledger/balance", ledgerHandler.Balance)
	authRoutes.GET("/ledger/history", ledgerHandler.History)

	mutating := authRoutes.Group("/ledger")
	if server.Redis != nil {
		mutating.Use(middleware.Idempotency(server.Redis, config.IdempotencyTTL))
	}

	mutating.POST("/deposit", ledgerHandler.Deposit)
	mutating.POST("/withdraw", ledgerHandler.Withdraw)
	mutating.POST("/transfer", ledgerHandler.Transfer)

	engine.GET("/admin/accounts", middleware.AdminKey(config.AdminAPIKey), accountHandler.List)

	server.Engine = engine

	return server, nil
}
