// Package server is the wiring layer: it assembles the storage pool, the
// session machinery, the request pipeline, and the route table, and owns
// startup and graceful shutdown.
//
// COMPOSITION ROOT:
// Every dependency is constructed here and injected downward — the handler
// gets repository interfaces, the pipeline gets the session manager, and
// nobody reaches for a global. The explicit interceptor slice below is the
// single place the request-processing order can be read (and changed).
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snippetbox/internal/config"
	"github.com/sakif/snippetbox/internal/handler"
	"github.com/sakif/snippetbox/internal/middleware"
	"github.com/sakif/snippetbox/internal/pipeline"
	"github.com/sakif/snippetbox/internal/render"
	"github.com/sakif/snippetbox/internal/repository/sqlstore"
	"github.com/sakif/snippetbox/internal/session"
	"github.com/sakif/snippetbox/web"
)

// Server owns the router and every long-lived resource behind it. The
// database pool and the sweeper are created in New and released, in the
// right order, by Start's shutdown path.
type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	db      *sqlstore.DB
	sweeper *session.Sweeper
}

// New wires the dependency graph:
//
//	sqlstore.DB → repositories + session store
//	session.Manager/Sweeper → pipeline session stage
//	handler.Handler → routes
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqlstore.New(sqlstore.Config{
		Driver:     cfg.DBDriver,
		DSN:        cfg.DBDSN,
		BcryptCost: cfg.BcryptCost,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	renderer, err := render.New(web.Files)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	sessions := session.NewManager(db, cfg.SessionLifetime, cfg.CookieSecure)

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		sweeper: session.NewSweeper(db, cfg.SweepInterval, logger),
	}

	s.setupRoutes(sessions, renderer)
	return s, nil
}

// setupRoutes applies the pipeline and registers the route table.
//
// The interceptor order is load-bearing: the IP tag must precede logging,
// headers must go on before anything can write, the timeout must bound the
// storage work the later stages do, and auth can only resolve once the
// session is loaded. Panic isolation lives in the pipeline runner itself,
// outside all of them.
func (s *Server) setupRoutes(sessions *session.Manager, renderer *render.Renderer) {
	p := pipeline.New(s.logger,
		pipeline.ClientIP{},
		middleware.RequestLog{Logger: s.logger},
		pipeline.SecureHeaders{},
		pipeline.Timeout{Duration: s.config.RequestTimeout},
		pipeline.SessionLoad{Manager: sessions, Logger: s.logger},
		pipeline.AuthResolve{Users: s.db.Users(), Logger: s.logger},
	)
	s.router.Use(p.Then)

	s.router.Handle("/static/*", http.FileServerFS(web.Files))

	h := handler.New(s.db.Snippets(), s.db.Users(), sessions, renderer, s.logger)

	s.router.Get("/", h.Home)
	s.router.Get("/snippet/view/{id}", h.SnippetView)
	s.router.Get("/user/signup", h.UserSignupForm)
	s.router.Post("/user/signup", h.UserSignupPost)
	s.router.Get("/user/login", h.UserLoginForm)
	s.router.Post("/user/login", h.UserLoginPost)

	// Protected routes: anonymous requests are redirected to the login
	// page before any handler runs.
	s.router.Group(func(r chi.Router) {
		r.Use(pipeline.RequireAuth)
		r.Get("/snippet/create", h.SnippetCreateForm)
		r.Post("/snippet/create", h.SnippetCreatePost)
		r.Post("/user/logout", h.UserLogoutPost)
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down in
// strict order: stop accepting and drain in-flight requests, stop the
// session sweeper, and only then close the pool both of them were using.
func (s *Server) Start() error {
	defer s.db.Close()

	s.sweeper.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("driver", s.config.DBDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			s.sweeper.Stop()
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.sweeper.Stop()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	s.sweeper.Stop()
	return nil
}
