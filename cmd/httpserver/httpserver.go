// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/financas/ledger-api/internal/accountdelivery"
	"github.com/financas/ledger-api/internal/accountrepo"
	"github.com/financas/ledger-api/internal/accountservice"
	"github.com/financas/ledger-api/internal/middleware"
	"github.com/financas/ledger-api/internal/transactiondelivery"
	"github.com/financas/ledger-api/internal/transactionrepo"
	"github.com/financas/ledger-api/internal/transactionservice"
	"github.com/financas/ledger-api/pkg/configpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)

	accountService := accountservice.New(accountRepo)
	transactionService := transactionservice.New(transactionRepo)

	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	// The monthly route must be registered before the :id routes so that
	// "monthly" never binds as a transaction id.
	engine.GET("/transactions/monthly", transactionHandler.MonthlySummary)

	engine.GET("/transactions", transactionHandler.List)
	engine.POST("/transactions", transactionHandler.Create)
	engine.GET("/transactions/:id", transactionHandler.Get)
	engine.PUT("/transactions/:id", transactionHandler.Update)
	engine.DELETE("/transactions/:id", transactionHandler.Delete)

	engine.POST("/accounts", accountHandler.Create)
	engine.GET("/accounts", accountHandler.List)
	engine.GET("/accounts/:id", accountHandler.Get)
	engine.DELETE("/accounts/:id", accountHandler.Delete)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("transactiontype", transactiondelivery.ValidTransactionType)
		if err != nil {
			return nil, errors.New("cannot register transaction type validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
