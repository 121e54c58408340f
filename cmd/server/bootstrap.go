package main

import (
	"context"

	"github.com/surveydesk/backend/internal/config"
	"github.com/surveydesk/backend/internal/handlers"
	"github.com/surveydesk/backend/internal/middleware"
	"github.com/surveydesk/backend/internal/models"
	"github.com/surveydesk/backend/internal/services"
	"github.com/surveydesk/backend/internal/utils"
	"github.com/surveydesk/backend/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds the handlers and shared middleware state of the server.
type appServices struct {
	cfg              *config.Config
	loginLimiter     *middleware.RateLimiter
	accounts         *services.UserService
	healthHandler    *handlers.HealthHandler
	authHandler      *handlers.AuthHandler
	surveyHandler    *handlers.SurveyHandler
	dashboardHandler *handlers.DashboardHandler
	userHandler      *handlers.UserHandler
}

// bootstrap opens and migrates the database, seeds the admin account and
// builds the application services.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	svc := newAppServices(models.GetDB(), cfg)

	created, err := services.NewAuthService(models.GetDB(), &cfg.JWT).CreateAdminIfNotExists(context.Background(), &cfg.Admin)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	} else if created {
		logger.Info().Str("email", cfg.Admin.Email).Msg("Created default admin user")
	}

	return svc
}

func newAppServices(db *gorm.DB, cfg *config.Config) *appServices {
	surveyService := services.NewSurveyService(db, cfg.Display.Location())
	userService := services.NewUserService(db)
	authService := services.NewAuthService(db, &cfg.JWT)
	if ldapService := services.NewLDAPService(&cfg.LDAP); ldapService != nil {
		authService.UseDirectory(ldapService)
		logger.Info().Str("host", cfg.LDAP.Host).Msg("LDAP sign-in enabled")
	}
	return &appServices{
		cfg:              cfg,
		loginLimiter:     middleware.NewRateLimiter(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst),
		accounts:         userService,
		healthHandler:    handlers.NewHealthHandler(db),
		authHandler:      handlers.NewAuthHandler(authService),
		surveyHandler:    handlers.NewSurveyHandler(surveyService),
		dashboardHandler: handlers.NewDashboardHandler(surveyService),
		userHandler:      handlers.NewUserHandler(userService),
	}
}

// close releases background resources and the connection pool.
func (s *appServices) close() {
	s.loginLimiter.Stop()
	if err := models.CloseDB(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close database")
	}
}
