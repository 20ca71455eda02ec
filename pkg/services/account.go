package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/audit"
	"github.com/vizquery/vizquery-engine/pkg/auth"
	"github.com/vizquery/vizquery-engine/pkg/email"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/repositories"
)

// PasswordResetMessage is returned for every reset request, whether or
// not the account exists, so the endpoint cannot be used to probe for
// registered addresses.
const PasswordResetMessage = "If the email is registered, a reset link has been sent."

// AccountService manages user registration and sessions.
type AccountService interface {
	// Register creates an account and returns a session token.
	Register(ctx context.Context, emailAddr, password string) (*models.User, string, error)

	// Login verifies credentials and returns a session token.
	Login(ctx context.Context, emailAddr, password string) (*models.User, string, error)

	// RequestPasswordReset sends a reset token when the account exists.
	// The returned message is identical either way.
	RequestPasswordReset(ctx context.Context, emailAddr string) string

	// ResetPassword sets a new password using a reset token.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type accountService struct {
	users   repositories.UserRepository
	auth    *auth.Service
	mailer  email.Mailer
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

// NewAccountService creates an account service with its dependencies.
func NewAccountService(users repositories.UserRepository, authSvc *auth.Service, mailer email.Mailer, logger *zap.Logger) AccountService {
	return &accountService{
		users:   users,
		auth:    authSvc,
		mailer:  mailer,
		auditor: audit.NewSecurityAuditor(logger),
		logger:  logger.Named("accounts"),
	}
}

func (s *accountService) Register(ctx context.Context, emailAddr, password string) (*models.User, string, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return nil, "", apperrors.New(apperrors.KindMissingParameters, "a valid email is required")
	}
	if len(password) < 8 {
		return nil, "", apperrors.New(apperrors.KindMissingParameters, "password must be at least 8 characters")
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{Email: emailAddr, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	// Welcome mail is fire-and-forget.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mailer.SendWelcome(ctx, user.Email); err != nil {
			s.logger.Warn("failed to send welcome mail", zap.Error(err))
		}
	}()

	return user, token, nil
}

func (s *accountService) Login(ctx context.Context, emailAddr, password string) (*models.User, string, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		// Unknown account and wrong password are indistinguishable to
		// the caller.
		s.auditor.LoginFailure(emailAddr)
		return nil, "", apperrors.New(apperrors.KindAuthenticationFailed, "invalid email or password")
	}
	if !s.auth.CheckPassword(user.PasswordHash, password) {
		s.auditor.LoginFailure(emailAddr)
		return nil, "", apperrors.New(apperrors.KindAuthenticationFailed, "invalid email or password")
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *accountService) RequestPasswordReset(ctx context.Context, emailAddr string) string {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return PasswordResetMessage
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		s.logger.Warn("failed to issue reset token", zap.Error(err))
		return PasswordResetMessage
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
			s.logger.Warn("failed to send reset mail", zap.Error(err))
		}
	}()

	return PasswordResetMessage
}

func (s *accountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.New(apperrors.KindMissingParameters, "password must be at least 8 characters")
	}

	userID, err := s.auth.VerifyToken(token)
	if err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

var _ AccountService = (*accountService)(nil)
