package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService("test-secret", time.Hour)
	require.NoError(t, err)
	return s
}

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService("", time.Hour)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	s := newTestService(t)

	hash, err := s.HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, s.CheckPassword(hash, "hunter2"))
	assert.False(t, s.CheckPassword(hash, "wrong"))
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestService(t)
	userID := uuid.New()

	token, err := s.IssueToken(userID)
	require.NoError(t, err)

	got, err := s.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	s := newTestService(t)
	other, err := NewService("other-secret", time.Hour)
	require.NoError(t, err)

	token, err := other.IssueToken(uuid.New())
	require.NoError(t, err)

	_, err = s.VerifyToken(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthenticationFailed, apperrors.KindOf(err))
}

func TestVerifyToken_Expired(t *testing.T) {
	s, err := NewService("test-secret", -time.Minute)
	require.NoError(t, err)
	// NewService clamps non-positive TTLs, so force expiry directly.
	s.tokenTTL = -time.Minute

	token, err := s.IssueToken(uuid.New())
	require.NoError(t, err)

	_, err = s.VerifyToken(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthenticationFailed, apperrors.KindOf(err))
}

func TestVerifyToken_Garbage(t *testing.T) {
	s := newTestService(t)
	_, err := s.VerifyToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthenticationFailed, apperrors.KindOf(err))
}
