// Package audit logs security-relevant events in structured JSON for
// SIEM consumption.
package audit

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SecurityEventType categorizes security events for filtering and alerting.
type SecurityEventType string

const (
	// EventUnsafeQueryRejected is logged when a generated query fails
	// safety validation (non-SELECT, forbidden keyword, injection).
	EventUnsafeQueryRejected SecurityEventType = "unsafe_query_rejected"
	// EventLoginFailure is logged for failed credential checks.
	EventLoginFailure SecurityEventType = "login_failure"
)

// SecurityAuditor logs security events under a dedicated namespace so
// SIEM pipelines can filter them from regular application logs.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates an auditor on the security_audit namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// UnsafeQueryRejected records a query that failed safety validation.
// The query text is logged as-is; it never executed.
func (a *SecurityAuditor) UnsafeQueryRejected(userID, profileID uuid.UUID, query, reason string) {
	a.logger.Warn("security event",
		zap.String("event_type", string(EventUnsafeQueryRejected)),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("user_id", userID.String()),
		zap.String("profile_id", profileID.String()),
		zap.String("query", query),
		zap.String("reason", reason),
		zap.String("severity", "warning"))
}

// LoginFailure records a failed credential check. Only the email is
// logged, never the submitted password.
func (a *SecurityAuditor) LoginFailure(email string) {
	a.logger.Warn("security event",
		zap.String("event_type", string(EventLoginFailure)),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("email", email),
		zap.String("severity", "warning"))
}
