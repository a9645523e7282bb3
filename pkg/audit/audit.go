package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType names an auditable action.
type EventType string

const (
	EventJobCreated           EventType = "job_created"
	EventApplicationSubmitted EventType = "application_submitted"
	EventApplicationRejected  EventType = "application_rejected"
	EventLoginSuccess         EventType = "login_success"
	EventLoginFailed          EventType = "login_failed"
	EventLogout               EventType = "logout"
	EventExport               EventType = "applicants_exported"
)

// Event is one audit record. Subject values are masked before they are
// written.
type Event struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "job", "admin"
	SubjectValue string
	IP           string
	RequestID    string
	Details      map[string]interface{}
}

// Logger writes audit events as structured zap entries, separate from the
// application log.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// New builds a production zap logger writing JSON to stdout.
func New(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewWithLogger(logger, serviceName, environment)
}

func NewWithLogger(logger *zap.Logger, serviceName, environment string) *Logger {
	return &Logger{zapLogger: logger, serviceName: serviceName, environment: environment}
}

// Nop discards every event.
func Nop() *Logger {
	return NewWithLogger(zap.NewNop(), "", "")
}

func levelFor(t EventType) zapcore.Level {
	switch t {
	case EventLoginFailed, EventApplicationRejected:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("event", string(event.Event)),
		zap.Time("at", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields,
			zap.String("subject_type", event.SubjectType),
			zap.String("subject_value", maskValue(event.SubjectType, event.SubjectValue)),
		)
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

	l.zapLogger.Log(levelFor(event.Event), string(event.Event), fields...)
}

func (l *Logger) JobCreated(ctx context.Context, slug, actor string) {
	l.Log(ctx, Event{
		Event:        EventJobCreated,
		SubjectType:  "job",
		SubjectValue: slug,
		Details:      map[string]interface{}{"actor": MaskEmail(actor)},
	})
}

func (l *Logger) ApplicationSubmitted(ctx context.Context, jobSlug, email string) {
	l.Log(ctx, Event{
		Event:        EventApplicationSubmitted,
		SubjectType:  "email",
		SubjectValue: email,
		Details:      map[string]interface{}{"job": jobSlug},
	})
}

func (l *Logger) ApplicationRejected(ctx context.Context, jobSlug string, violations int) {
	l.Log(ctx, Event{
		Event:        EventApplicationRejected,
		SubjectType:  "job",
		SubjectValue: jobSlug,
		Details:      map[string]interface{}{"violations": violations},
	})
}

func (l *Logger) LoginSuccess(ctx context.Context, email, ip, requestID string) {
	l.Log(ctx, Event{Event: EventLoginSuccess, SubjectType: "email", SubjectValue: email, IP: ip, RequestID: requestID})
}

func (l *Logger) LoginFailed(ctx context.Context, email, ip, requestID, reason string) {
	l.Log(ctx, Event{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: email,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"reason": reason},
	})
}

func (l *Logger) Logout(ctx context.Context, email string) {
	l.Log(ctx, Event{Event: EventLogout, SubjectType: "email", SubjectValue: email})
}

func (l *Logger) ApplicantsExported(ctx context.Context, jobSlug string, rows int) {
	l.Log(ctx, Event{
		Event:        EventExport,
		SubjectType:  "job",
		SubjectValue: jobSlug,
		Details:      map[string]interface{}{"rows": rows},
	})
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com").
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***" + email[1:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue creates a short SHA256 fingerprint of a value.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "job":
		return value
	default:
		return HashValue(value)
	}
}
