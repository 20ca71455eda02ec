package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
)

type contextKey string

// userIDKey carries the authenticated user ID through request contexts.
const userIDKey contextKey = "auth.userID"

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the authenticated user ID from the context.
// Returns uuid.Nil and false when the request is not authenticated.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// RequireUserID extracts the authenticated user ID or fails with an
// authentication error.
func RequireUserID(ctx context.Context) (uuid.UUID, error) {
	id, ok := GetUserID(ctx)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperrors.New(apperrors.KindAuthenticationFailed, "authentication required")
	}
	return id, nil
}
