package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Action names a user-visible state change worth keeping an audit trail of.
type Action string

const (
	ActionWizardStarted      Action = "wizard_started"
	ActionPortfolioCreated   Action = "portfolio_created"
	ActionPortfolioPublished Action = "portfolio_published"
	ActionDraftSaved         Action = "draft_saved"
	ActionPortfolioUpdated   Action = "portfolio_updated"
	ActionPortfolioDeleted   Action = "portfolio_deleted"
	ActionDomainAdded        Action = "domain_added"
	ActionDomainRemoved      Action = "domain_removed"
	ActionDeployed           Action = "portfolio_deployed"
	ActionExported           Action = "portfolio_exported"
	ActionRateLimited        Action = "rate_limit_triggered"
	ActionUnauthorized       Action = "unauthorized_access"
)

// Event is a single audit record.
type Event struct {
	Timestamp   time.Time
	Action      Action
	UserID      string
	PortfolioID string
	IP          string
	RequestID   string
	Details     map[string]any
}

// Logger writes audit events as structured zap entries.
type Logger struct {
	zap         *zap.Logger
	environment string
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// New builds a production zap logger tagged with the service environment.
func New(environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zl, err := config.Build(zap.AddCaller())
	if err != nil {
		zl, _ = zap.NewProduction()
	}

	return &Logger{
		zap:         zl.Named("audit"),
		environment: environment,
	}
}

// NewWithZap wraps an existing zap logger (tests use zaptest/observer cores).
func NewWithZap(zl *zap.Logger, environment string) *Logger {
	return &Logger{zap: zl, environment: environment}
}

// SetDefault installs the process-wide audit logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default returns the process-wide audit logger, creating a development one
// on first use.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New("development")
	}
	return defaultLogger
}

// Log writes one event. A nil Logger discards it.
func (l *Logger) Log(_ context.Context, event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	level := zapcore.InfoLevel
	switch event.Action {
	case ActionRateLimited:
		level = zapcore.WarnLevel
	case ActionUnauthorized:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("env", l.environment),
		zap.String("action", string(event.Action)),
		zap.Time("at", event.Timestamp),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user", HashValue(event.UserID)))
	}
	if event.PortfolioID != "" {
		fields = append(fields, zap.String("portfolio_id", event.PortfolioID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	l.zap.Log(level, string(event.Action), fields...)
}

// Record is shorthand for the common user/portfolio event.
func (l *Logger) Record(ctx context.Context, action Action, userID, portfolioID string, details map[string]any) {
	l.Log(ctx, Event{
		Action:      action,
		UserID:      userID,
		PortfolioID: portfolioID,
		Details:     details,
	})
}

func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// HashValue returns a short stable digest so user IDs stay out of log sinks.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
