// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/standhub/internal/app/store/audit"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (signup, login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Team controls logging for membership events (create, join, leave, succession).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Team string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// NewCorrelationID mints an ID that ties together the audit events of a
// single multi-step operation.
func NewCorrelationID() string {
	return uuid.NewString()
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TeamID != nil {
		fields = append(fields, zap.String("team_id", event.TeamID.Hex()))
	}
	if event.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", event.CorrelationID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth, audit.CategoryAccount:
		setting = l.config.Auth
	case audit.CategoryTeam:
		setting = l.config.Team
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication events ---

// Signup logs a new account registration.
func (l *Logger) Signup(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignup,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"auth_method": authMethod,
			"email":       email,
		},
	})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"auth_method": authMethod,
		},
	})
}

// LoginFailedUserNotFound logs a failed login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user not found",
		Details: map[string]string{
			"attempted_email": attemptedEmail,
		},
	})
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "wrong password",
	})
}

// LoginFailedUserDisabled logs a failed login against a disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserDisabled,
		UserID:        &userID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user disabled",
	})
}

// GoogleLinked logs the first Google sign-in that created or linked an account.
func (l *Logger) GoogleLinked(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventGoogleLinked,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"email": email,
		},
	})
}

// Logout logs a user logout. Accepts the string ID from SessionUser.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Account events ---

// UsernameChanged logs a username edit.
func (l *Logger) UsernameChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID, from, to string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventUsernameChanged,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"from": from,
			"to":   to,
		},
	})
}

// AccountDeleted logs an account deletion with its cascade correlation ID.
func (l *Logger) AccountDeleted(ctx context.Context, r *http.Request, userID primitive.ObjectID, correlationID string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAccount,
		EventType:     audit.EventAccountDeleted,
		UserID:        &userID,
		CorrelationID: correlationID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
	})
}

// --- Team events ---

// TeamCreated logs a new team with its creator as admin.
func (l *Logger) TeamCreated(ctx context.Context, r *http.Request, userID, teamID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTeam,
		EventType: audit.EventTeamCreated,
		UserID:    &userID,
		TeamID:    &teamID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"name": name,
		},
	})
}

// TeamLeft logs a member departure from a team.
func (l *Logger) TeamLeft(ctx context.Context, userID, teamID primitive.ObjectID, correlationID string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryTeam,
		EventType:     audit.EventTeamLeft,
		UserID:        &userID,
		TeamID:        &teamID,
		CorrelationID: correlationID,
		Success:       true,
	})
}

// TeamDeleted logs the removal of a team that became empty.
func (l *Logger) TeamDeleted(ctx context.Context, teamID primitive.ObjectID, correlationID string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryTeam,
		EventType:     audit.EventTeamDeleted,
		TeamID:        &teamID,
		CorrelationID: correlationID,
		Success:       true,
	})
}

// AdminSucceeded logs an admin handover after the previous admin left.
func (l *Logger) AdminSucceeded(ctx context.Context, newAdminID, teamID primitive.ObjectID, correlationID string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryTeam,
		EventType:     audit.EventAdminSucceeded,
		UserID:        &newAdminID,
		TeamID:        &teamID,
		CorrelationID: correlationID,
		Success:       true,
	})
}

// JoinRequested logs a pending join request.
func (l *Logger) JoinRequested(ctx context.Context, r *http.Request, userID, teamID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTeam,
		EventType: audit.EventJoinRequested,
		UserID:    &userID,
		TeamID:    &teamID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// RequestResolved logs an admin accepting or rejecting a join request.
// accepted selects the event type; actorID is the resolving admin.
func (l *Logger) RequestResolved(ctx context.Context, r *http.Request, actorID, requesterID, teamID primitive.ObjectID, accepted bool, correlationID string) {
	et := audit.EventRequestRejected
	if accepted {
		et = audit.EventRequestAccepted
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryTeam,
		EventType:     et,
		UserID:        &requesterID,
		ActorID:       &actorID,
		TeamID:        &teamID,
		CorrelationID: correlationID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
	})
}
