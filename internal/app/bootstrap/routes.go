// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	aboutfeature "github.com/dalemusser/standhub/internal/app/features/about"
	authgooglefeature "github.com/dalemusser/standhub/internal/app/features/authgoogle"
	dashboardfeature "github.com/dalemusser/standhub/internal/app/features/dashboard"
	deskcalcfeature "github.com/dalemusser/standhub/internal/app/features/deskcalc"
	errorsfeature "github.com/dalemusser/standhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/standhub/internal/app/features/health"
	homefeature "github.com/dalemusser/standhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/standhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/standhub/internal/app/features/logout"
	notificationsfeature "github.com/dalemusser/standhub/internal/app/features/notifications"
	settingsfeature "github.com/dalemusser/standhub/internal/app/features/settings"
	signupfeature "github.com/dalemusser/standhub/internal/app/features/signup"
	statsfeature "github.com/dalemusser/standhub/internal/app/features/stats"
	teamsfeature "github.com/dalemusser/standhub/internal/app/features/teams"
	"github.com/dalemusser/standhub/internal/app/membership"
	auditstore "github.com/dalemusser/standhub/internal/app/store/audit"
	joinrequeststore "github.com/dalemusser/standhub/internal/app/store/joinrequests"
	notificationstore "github.com/dalemusser/standhub/internal/app/store/notifications"
	oauthstatestore "github.com/dalemusser/standhub/internal/app/store/oauthstate"
	standingstore "github.com/dalemusser/standhub/internal/app/store/standing"
	teamstore "github.com/dalemusser/standhub/internal/app/store/teams"
	userstore "github.com/dalemusser/standhub/internal/app/store/users"
	"github.com/dalemusser/standhub/internal/app/system/auditlog"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/viewdata"
	"github.com/dalemusser/standhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	// Each views package registers its template set in init.
	_ "github.com/dalemusser/standhub/internal/app/features/about/views"
	_ "github.com/dalemusser/standhub/internal/app/features/dashboard/views"
	_ "github.com/dalemusser/standhub/internal/app/features/deskcalc/views"
	_ "github.com/dalemusser/standhub/internal/app/features/home/views"
	_ "github.com/dalemusser/standhub/internal/app/features/login/views"
	_ "github.com/dalemusser/standhub/internal/app/features/notifications/views"
	_ "github.com/dalemusser/standhub/internal/app/features/settings/views"
	_ "github.com/dalemusser/standhub/internal/app/features/signup/views"
	_ "github.com/dalemusser/standhub/internal/app/features/stats/views"
	_ "github.com/dalemusser/standhub/internal/app/features/teams/views"
)

// staleWorker is started in BuildHandler and stopped in Shutdown.
var staleWorker *workers.StaleDeskCloser

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// StandHub initializes the template engine, applies session and CSRF
// middleware, and mounts feature routers for all application areas:
// home, signup, login, Google sign-in, dashboard, teams, notifications,
// stats, and settings.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.StandHubMongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Disabled accounts and username changes take effect
	// immediately instead of waiting for the cookie to expire.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Stores.
	users := userstore.New(db)
	teams := teamstore.New(db)
	standing := standingstore.New(db)
	notifs := notificationstore.New(db)
	requests := joinrequeststore.New(db)
	oauthStates := oauthstatestore.New(db)

	// Audit trail: MongoDB + structured logs, modes from config.
	auditLog := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth: appCfg.AuditLogAuth,
		Team: appCfg.AuditLogTeam,
	})

	// The membership coordinator owns every team mutation.
	coordinator := membership.New(db, logger, auditLog)

	// Unread-badge count for the shared layout.
	viewdata.SetUnreadCounter(func(ctx context.Context, userID primitive.ObjectID) int64 {
		n, err := notifs.CountUnread(ctx, userID)
		if err != nil {
			logger.Warn("unread count failed", zap.Error(err))
			return 0
		}
		return n
	})

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	googleHandler := authgooglefeature.NewHandler(
		users, sessionMgr, auditLog, oauthStates,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for all form posts.
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.StandHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	aboutHandler := aboutfeature.NewHandler(logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	deskcalcHandler := deskcalcfeature.NewHandler(logger)
	r.Mount("/deskcalc", deskcalcfeature.Routes(deskcalcHandler))

	// Authentication
	signupHandler := signupfeature.NewHandler(users, sessionMgr, auditLog, errLog, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(users, sessionMgr, auditLog, errLog, logger, googleHandler.IsConfigured())
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Standing desk tracking
	dashboardHandler := dashboardfeature.NewHandler(standing, teams, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	statsHandler := statsfeature.NewHandler(standing, teams, users, errLog, logger)
	r.Mount("/stats", statsfeature.Routes(statsHandler, sessionMgr))

	// Teams and membership
	teamsHandler := teamsfeature.NewHandler(teams, users, requests, coordinator, auditLog, errLog, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler, sessionMgr))

	notificationsHandler := notificationsfeature.NewHandler(notifs, teams, coordinator, errLog, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	// Account settings
	settingsHandler := settingsfeature.NewHandler(
		users, standing, notifs, requests, coordinator, sessionMgr, auditLog, errLog, logger)
	r.Mount("/settings", settingsfeature.Routes(settingsHandler, sessionMgr))

	// Close standing sessions whose owner forgot to press stop.
	staleWorker = workers.NewStaleDeskCloser(standing, logger, appCfg.StaleSweepInterval, appCfg.StaleMaxAge)
	staleWorker.Start()

	return r, nil
}
