package mysql

import (
	"context"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/models"
)

func TestConnect_MissingParameters(t *testing.T) {
	tests := []struct {
		name    string
		profile models.ConnectionProfile
	}{
		{"no host", models.ConnectionProfile{Port: 3306, Database: "d", Username: "u"}},
		{"no port", models.ConnectionProfile{Host: "h", Database: "d", Username: "u"}},
		{"no database", models.ConnectionProfile{Host: "h", Port: 3306, Username: "u"}},
		{"no username", models.ConnectionProfile{Host: "h", Port: 3306, Database: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&tt.profile, zap.NewNop())
			err := c.Connect(context.Background())
			require.Error(t, err)
			assert.Equal(t, apperrors.KindMissingParameters, apperrors.KindOf(err))
		})
	}
}

func TestClassifyConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{"access denied", &gomysql.MySQLError{Number: 1045, Message: "Access denied"}, apperrors.KindAuthenticationFailed},
		{"unknown database", &gomysql.MySQLError{Number: 1049, Message: "Unknown database"}, apperrors.KindDatabaseNotFound},
		{"other server error", &gomysql.MySQLError{Number: 1044, Message: "denied to user"}, apperrors.KindConnectionFailed},
		{"timeout", context.DeadlineExceeded, apperrors.KindServerUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.KindOf(classifyConnectError(tt.err)))
		})
	}
}

func TestIsTextualType(t *testing.T) {
	assert.True(t, isTextualType("VARCHAR"))
	assert.True(t, isTextualType("DECIMAL"))
	assert.False(t, isTextualType("BIGINT"))
	assert.False(t, isTextualType("BLOB"))
}

func TestDisconnect_WhenNotConnected(t *testing.T) {
	c := New(&models.ConnectionProfile{}, zap.NewNop())
	assert.NotPanics(t, c.Disconnect)
}
