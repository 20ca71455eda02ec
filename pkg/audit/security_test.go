package audit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestUnsafeQueryRejectedEvent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	auditor := NewSecurityAuditor(zap.New(core))

	userID := uuid.New()
	profileID := uuid.New()
	auditor.UnsafeQueryRejected(userID, profileID, "DROP TABLE users", "only SELECT statements are allowed")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, string(EventUnsafeQueryRejected), fields["event_type"])
	assert.Equal(t, userID.String(), fields["user_id"])
	assert.Equal(t, "DROP TABLE users", fields["query"])
	assert.Equal(t, "security_audit", entries[0].LoggerName)
}

func TestLoginFailureEventOmitsPassword(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	auditor := NewSecurityAuditor(zap.New(core))

	auditor.LoginFailure("user@example.com")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, string(EventLoginFailure), fields["event_type"])
	assert.Equal(t, "user@example.com", fields["email"])
	assert.NotContains(t, fields, "password")
}

func TestNilLoggerIsSafe(t *testing.T) {
	auditor := NewSecurityAuditor(nil)
	assert.NotPanics(t, func() {
		auditor.LoginFailure("user@example.com")
	})
}
