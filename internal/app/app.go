package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"agrocommunity_backend/internal/auth"
	"agrocommunity_backend/internal/config"
	"agrocommunity_backend/internal/email"
	"agrocommunity_backend/internal/handlers"
	"agrocommunity_backend/internal/imageprocessor"
	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/metrics"
	"agrocommunity_backend/internal/middleware"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/internal/routes"
	"agrocommunity_backend/internal/services"
	"agrocommunity_backend/internal/storage"
	"agrocommunity_backend/internal/validator"
	"agrocommunity_backend/pkg/apperrors"
	"agrocommunity_backend/ws"

	"github.com/gin-gonic/gin"
)

// Dependencies are the external collaborators of the router. Nil fields are
// built from the configuration.
type Dependencies struct {
	Repos   *repositories.Repositories
	Mailer  email.Sender
	Storage storage.Storage
	Metrics *metrics.Metrics
}

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	repos, closeDB, err := openRepositories(cfg)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer closeDB()

	if err := seedFirstAdmin(context.Background(), repos.Users, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	mailer, err := newMailer(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize mail", "error", err)
	}

	ginRouter, err := SetupRouter(cfg, Dependencies{Repos: repos, Mailer: mailer})
	if err != nil {
		logger.Fatal("Failed to build router", "error", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	apperrors.SetDebug(!cfg.IsProduction())

	if deps.Repos == nil {
		deps.Repos = repositories.NewMemoryRepositories()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Mailer == nil {
		deps.Mailer = email.LogSender{}
	}
	if deps.Storage == nil {
		store, err := storage.NewStorage(storageConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		deps.Storage = store
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		ActivationSecret: cfg.Auth.ActivationSecret,
		AccessSecret:     cfg.Auth.AccessSecret,
		RefreshSecret:    cfg.Auth.RefreshSecret,
		ActivationTTL:    cfg.Auth.ActivationTTL,
		AccessTTL:        cfg.Auth.AccessTTL,
		RefreshTTL:       cfg.Auth.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init tokens: %w", err)
	}

	presence := ws.NewPresenceRegistry(deps.Metrics)
	wsHandler := ws.NewWebSocketHandler(presence, ws.HandlerConfig{
		SendBuffer:     cfg.Realtime.SendBuffer,
		PingPeriod:     cfg.Realtime.PingPeriod,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// 1. Services
	serviceContainer := initializeServices(cfg, deps, tokens, presence)

	// 2. Handlers
	session := middleware.NewSessionMiddleware(tokens, deps.Repos.Users, middleware.CookieConfig{
		Secure: cfg.Auth.SecureCookies,
		Domain: cfg.Auth.CookieDomain,
	})
	appHandlers := initializeHandlers(cfg, serviceContainer, session)

	// 3. Gin
	ginRouter := initializeGinRouter(cfg, deps.Metrics)

	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, session, deps.Metrics, staticMount(cfg, deps.Storage))
	return ginRouter, nil
}

func initializeServices(cfg *config.Config, deps Dependencies, tokens *auth.TokenService, presence *ws.PresenceRegistry) *services.ServiceContainer {
	return services.NewServiceContainer(services.ContainerDeps{
		Repos:    deps.Repos,
		Tokens:   tokens,
		Mailer:   deps.Mailer,
		Storage:  deps.Storage,
		Images:   imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.ImageMaxSide),
		Presence: presence,
		Metrics:  deps.Metrics,
	})
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer, session *middleware.SessionMiddleware) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, svc.Auth, session),
		UserHandler:    handlers.NewUserHandler(baseHandler, svc.User),
		PostHandler:    handlers.NewPostHandler(baseHandler, svc.Post, cfg.Upload.MaxSize),
		MessageHandler: handlers.NewMessageHandler(baseHandler, svc.Message),
	}
}

func initializeGinRouter(cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxSize
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(m.Middleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.TimeoutMiddleware(cfg.Server.RequestTimeout))
	return router
}

func newMailer(cfg *config.Config) (email.Sender, error) {
	if cfg.Email.Driver != "smtp" {
		logger.Warn("Mail delivery disabled, activation codes are logged", "driver", cfg.Email.Driver)
		return email.LogSender{}, nil
	}

	templates, err := email.NewDefaultTemplateManager()
	if err != nil {
		return nil, err
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
		From:     mail.Address{Name: cfg.Email.FromName, Address: cfg.Email.FromEmail},
	}, templates)
}

func storageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	}
}

// staticMount serves local uploads when their public URL is a path on this
// server.
func staticMount(cfg *config.Config, store storage.Storage) routes.StaticMount {
	local, ok := store.(*storage.LocalStorage)
	if !ok || !strings.HasPrefix(cfg.Storage.BaseURL, "/") {
		return routes.StaticMount{}
	}
	return routes.StaticMount{URL: cfg.Storage.BaseURL, Dir: local.BasePath()}
}

// seedFirstAdmin creates the admin account from configuration once.
func seedFirstAdmin(ctx context.Context, users repositories.UserRepository, cfg *config.Config) error {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.Admin.Email))
	if adminEmail == "" || cfg.Admin.Password == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	exists, err := users.ExistsByEmail(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if exists {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Username:     cfg.Admin.Username,
		Name:         "Administrator",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		IsVerified:   true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return nil
}
