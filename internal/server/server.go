package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/config"
	mongodoc "github.com/bolsatrabajo/api/internal/infrastructure/mongo"
	"github.com/bolsatrabajo/api/internal/infrastructure/storage"
	adminhttp "github.com/bolsatrabajo/api/internal/interfaces/http/admin"
	commonhttp "github.com/bolsatrabajo/api/internal/interfaces/http/common"
	companyhttp "github.com/bolsatrabajo/api/internal/interfaces/http/company"
	uploadhttp "github.com/bolsatrabajo/api/internal/interfaces/http/upload"
	surveyapp "github.com/bolsatrabajo/api/internal/survey/application"
	surveydomain "github.com/bolsatrabajo/api/internal/survey/domain"
	uploadapp "github.com/bolsatrabajo/api/internal/upload/application"
	uploaddomain "github.com/bolsatrabajo/api/internal/upload/domain"
)

// limiterIdle is how long a client address may stay quiet before its bucket
// is dropped.
const limiterIdle = 2 * time.Hour

// Server is the composition root: it owns the Mongo client, builds the
// application services and mounts the HTTP handler sets.
type Server struct {
	logger         *log.Logger
	client         *mongo.Client
	database       *mongo.Database
	collections    mongodoc.Collections
	location       *time.Location
	jwtConfigs     []config.JWTConfig
	jwtAudience    string
	addr           string
	allowedOrigins []string
	limiter        *commonhttp.IPRateLimiter
	companyHandler *companyhttp.Handler
	adminHandler   *adminhttp.Handler
	uploadHandler  *uploadhttp.Handler
}

// Run prepares indexes, mounts routes and serves until SIGINT/SIGTERM.
func (s *Server) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err := mongodoc.EnsureIndexes(ctx, s.database, s.collections)
	cancel()
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@hourly", func() {
		if removed := s.limiter.Sweep(limiterIdle); removed > 0 {
			s.logger.Printf("rate limiter: dropped %d idle clients", removed)
		}
	}); err != nil {
		return fmt.Errorf("schedule limiter sweep: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s)
	return nil
}

// Routes builds the router with every handler set mounted.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	s.companyHandler.Register(router, s.authMiddleware)
	s.uploadHandler.Register(router, s.authMiddleware, s.limiter.Middleware(s.logger))
	router.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(commonhttp.RequireRole(s.logger, uploaddomain.RoleCoordinator))
		s.adminHandler.Register(r)
	})
	return router
}

// withCORS returns a middleware adding CORS headers for allowed origins.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	_, ok := allowed[origin]
	return ok
}

// healthHandler pings MongoDB.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			s.logger.Printf("health check: mongo ping failed: %v", err)
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().In(s.location).Format(time.RFC3339),
		})
	}
}

// authMiddleware verifies the bearer token and stores the caller identity in
// the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			commonhttp.WriteError(s.logger, w, r, apperror.Unauthenticated("bearer token required"))
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			commonhttp.WriteError(s.logger, w, r, apperror.Unauthenticated("empty token"))
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			commonhttp.WriteError(s.logger, w, r, apperror.Unauthenticated(err.Error()))
			return
		}
		role, ok := uploaddomain.ParseRole(claims.Role)
		if !ok {
			commonhttp.WriteError(s.logger, w, r, apperror.Unauthenticated("unknown role"))
			return
		}

		identity := commonhttp.Identity{
			ID:    claims.Subject,
			Role:  role,
			Email: claims.Email,
		}
		next.ServeHTTP(w, r.WithContext(commonhttp.ContextWithIdentity(r.Context(), identity)))
	})
}

// parseAuthToken tries every configured secret in turn and checks issuer and
// audience.
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if len(s.jwtConfigs) == 0 {
		return nil, errors.New("authentication is not configured")
	}

	for _, cfg := range s.jwtConfigs {
		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return cfg.Secret, nil
		}, jwt.WithLeeway(30*time.Second))

		if err != nil || !token.Valid {
			continue
		}
		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if s.jwtAudience != "" && !contains(claims.Audience, s.jwtAudience) {
			continue
		}

		return claims, nil
	}

	return nil, errors.New("invalid access token")
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

type authClaims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// shutdown disconnects the Mongo client.
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("mongo disconnect failed: %v", err)
	}
}

// waitForShutdown blocks until the server fails or a termination signal
// arrives, then drains connections.
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Fatalf("server stopped unexpectedly: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("server shutdown failed: %v", err)
		}
	}

	srv.shutdown(context.Background())
}

// New builds the repositories, services and handlers from cfg.
func New(cfg config.Config, client *mongo.Client) (*Server, error) {
	policy, err := surveydomain.NewHiringPolicy(cfg.HiringPolicy)
	if err != nil {
		return nil, err
	}
	files, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	names := mongodoc.Collections{
		Surveys:      cfg.SurveyCollection,
		Responses:    cfg.ResponseCollection,
		Applications: cfg.ApplicationCollection,
		Vacantes:     cfg.VacanteCollection,
		Users:        cfg.UserCollection,
		Companies:    cfg.CompanyCollection,
	}
	database := client.Database(cfg.MongoDatabase)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		cfg.ServerLog.Printf("timezone %s could not be loaded, using UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	surveyRepo := mongodoc.NewSurveyRepository(database, names.Surveys)
	responseRepo := mongodoc.NewResponseRepository(database, names.Responses)
	hiringRepo := mongodoc.NewHiringRepository(database, names)
	resultRepo := mongodoc.NewResultRepository(database, names.Responses)
	directoryRepo := mongodoc.NewDirectoryRepository(database, names)

	opts := surveyapp.Options{HiringPolicy: policy, EnforceWindow: cfg.EnforceSurveyWindow}

	srv := &Server{
		logger:         cfg.ServerLog,
		client:         client,
		database:       database,
		collections:    names,
		location:       loc,
		jwtConfigs:     append([]config.JWTConfig(nil), cfg.JWTConfigs...),
		jwtAudience:    cfg.JWTAudience,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		limiter:        commonhttp.NewIPRateLimiter(cfg.UploadRatePerSecond, cfg.UploadRateBurst),
	}
	srv.companyHandler = companyhttp.NewHandler(companyhttp.Config{
		Logger:        cfg.ServerLog,
		Surveys:       surveyapp.NewCompanySurveyService(surveyRepo, responseRepo, hiringRepo, opts),
		Notifications: surveyapp.NewNotificationService(surveyRepo, responseRepo, hiringRepo, opts),
		Responses:     surveyapp.NewResponseService(surveyRepo, responseRepo, hiringRepo, opts),
	})
	srv.adminHandler = adminhttp.NewHandler(adminhttp.Config{
		Logger:  cfg.ServerLog,
		Catalog: surveyapp.NewCatalogService(surveyRepo, responseRepo, opts),
		Results: surveyapp.NewResultService(surveyRepo, resultRepo),
	})
	srv.uploadHandler = uploadhttp.NewHandler(uploadhttp.Config{
		Logger:     cfg.ServerLog,
		Authorizer: uploadapp.NewAuthorizer(directoryRepo),
		Uploads: uploadapp.NewUploadService(uploadapp.UploadConfig{
			Directory: directoryRepo,
			Files:     files,
			MaxBytes:  cfg.UploadMaxBytes,
			Logger:    cfg.ServerLog,
		}),
		Files:    files,
		MaxBytes: cfg.UploadMaxBytes,
	})

	return srv, nil
}
