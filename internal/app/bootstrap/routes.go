// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/reservehub/reservehub/internal/app/features/authgoogle"
	bookingsfeature "github.com/reservehub/reservehub/internal/app/features/bookings"
	dashboardfeature "github.com/reservehub/reservehub/internal/app/features/dashboard"
	errorsfeature "github.com/reservehub/reservehub/internal/app/features/errors"
	healthfeature "github.com/reservehub/reservehub/internal/app/features/health"
	loginfeature "github.com/reservehub/reservehub/internal/app/features/login"
	logoutfeature "github.com/reservehub/reservehub/internal/app/features/logout"
	organizationsfeature "github.com/reservehub/reservehub/internal/app/features/organizations"
	resourcesfeature "github.com/reservehub/reservehub/internal/app/features/resources"
	schedulefeature "github.com/reservehub/reservehub/internal/app/features/schedule"
	"github.com/reservehub/reservehub/internal/app/store/audit"
	oauthstatestore "github.com/reservehub/reservehub/internal/app/store/oauthstate"
	userstore "github.com/reservehub/reservehub/internal/app/store/users"
	"github.com/reservehub/reservehub/internal/app/system/auditlog"
	"github.com/reservehub/reservehub/internal/app/system/auth"
	"github.com/reservehub/reservehub/internal/app/system/sweeper"
	"github.com/reservehub/reservehub/internal/app/system/tasks"
	"github.com/reservehub/reservehub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Background work started by BuildHandler and stopped by Shutdown.
var (
	sweepWorker *workers.Sweep
	scheduler   *tasks.Scheduler
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. ReserveHub applies session middleware
// and mounts feature routers for authentication, tenant administration,
// the schedule template, the resource catalog, bookings, and the
// dashboard. The background sweeper and the scheduled jobs start here as
// well, once everything they depend on exists.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data
	// on each request. Role changes and disabled accounts take effect
	// immediately instead of at next sign-in.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Local file storage for resource images.
	store, err := storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Audit trail: auth events plus booking and catalog mutations.
	auditLog := auditlog.New(audit.New(db), logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Uploaded resource images
	r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, auditLog, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	googleHandler := authgooglefeature.NewHandler(db, sessionMgr, errLog,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Tenant administration
	orgHandler := organizationsfeature.NewHandler(db, auditLog, errLog, logger)
	r.Mount("/organizations", organizationsfeature.Routes(orgHandler, sessionMgr))

	// Schedule template
	scheduleHandler := schedulefeature.NewHandler(db, errLog, logger)
	r.Mount("/schedule", schedulefeature.Routes(scheduleHandler, sessionMgr))

	// Resource catalog
	resourcesHandler := resourcesfeature.NewHandler(db, store, auditLog, errLog, logger)
	r.Mount("/resources", resourcesfeature.Routes(resourcesHandler, sessionMgr))

	// Bookings
	bookingsHandler := bookingsfeature.NewHandler(db, auditLog, errLog, logger)
	r.Mount("/bookings", bookingsfeature.Routes(bookingsHandler, sessionMgr))

	// Dashboard
	dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Background consistency sweeps and scheduled cleanup.
	sweepWorker = workers.NewSweep(sweeper.New(db, logger), logger, appCfg.SweepInterval)
	sweepWorker.Start()

	scheduler = tasks.NewScheduler(logger)
	scheduler.Add(tasks.OAuthStateCleanupJob(oauthstatestore.New(db), logger))
	scheduler.Start()

	return r, nil
}
