// Package app assembles the help desk from configuration.
package app

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

// Services holds the business layer bound to one document.
type Services struct {
	Users      repository.UserRepository
	Dispatcher events.Dispatcher

	Auth       *service.AuthService
	Tickets    *service.TicketService
	Comments   *service.CommentService
	UserSvc    *service.UserService
	Categories *service.CategoryService
	Dashboard  *service.DashboardService
}

// Document is what the services need from the document client.
type Document interface {
	repository.Document
	service.StoreInspector
}

// NewServices wires repositories and services over doc.
func NewServices(doc Document, cfg *config.Config, logger *zap.Logger) *Services {
	userRepo := repository.NewUserRepository(doc)
	ticketRepo := repository.NewTicketRepository(doc)
	commentRepo := repository.NewCommentRepository(doc)
	categoryRepo := repository.NewCategoryRepository(doc)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, logger.Named("notifications"), cfg.Notification)

	var credentials service.CredentialProvider = auth.DemoProvider{}
	if cfg.Auth.Provider == config.AuthProviderBcrypt {
		credentials = auth.BcryptProvider{Cost: cfg.Auth.BcryptCost}
	}

	return &Services{
		Users:      userRepo,
		Dispatcher: dispatcher,
		Auth: service.NewAuthService(service.AuthDependencies{
			UserRepo:    userRepo,
			Credentials: credentials,
			Tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
			Logger:      logger,
		}),
		Tickets: service.NewTicketService(service.TicketDependencies{
			TicketRepo:      ticketRepo,
			UserRepo:        userRepo,
			Dispatcher:      dispatcher,
			Logger:          logger,
			DefaultCategory: cfg.Tickets.DefaultCategory,
		}),
		Comments: service.NewCommentService(service.CommentDependencies{
			CommentRepo: commentRepo,
			TicketRepo:  ticketRepo,
			UserRepo:    userRepo,
			Dispatcher:  dispatcher,
			Logger:      logger,
		}),
		UserSvc:    service.NewUserService(userRepo),
		Categories: service.NewCategoryService(categoryRepo),
		Dashboard: service.NewDashboardService(service.DashboardDependencies{
			UserRepo:     userRepo,
			TicketRepo:   ticketRepo,
			CommentRepo:  commentRepo,
			CategoryRepo: categoryRepo,
			Store:        doc,
		}),
	}
}

// NewServer builds the Fiber app with middlewares and routes registered.
// deps are extra readiness checks keyed by name.
func NewServer(cfg *config.Config, svc *Services, store handlers.StoreProber, deps map[string]handlers.Pinger, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, deps),
		Auth:           handlers.NewAuthHandler(svc.Auth),
		Users:          handlers.NewUsersHandler(svc.UserSvc),
		Categories:     handlers.NewCategoriesHandler(svc.Categories),
		Tickets:        handlers.NewTicketsHandler(svc.Tickets),
		Comments:       handlers.NewCommentsHandler(svc.Comments),
		Admin:          handlers.NewAdminHandler(svc.Dashboard),
		AuthMiddleware: auth.NewAuthMiddleware(svc.Auth.TokenManager(), svc.Users),
		Metrics:        metrics,
	})
	return app
}

// ReadinessDeps lists the optional infrastructure of store for /health/ready.
func ReadinessDeps(store *Store) map[string]handlers.Pinger {
	deps := map[string]handlers.Pinger{}
	if store.Postgres != nil && store.Postgres.Pool != nil {
		deps["postgres"] = store.Postgres
	}
	if store.Redis != nil {
		deps["redis"] = store.Redis
	}
	return deps
}
