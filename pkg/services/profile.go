package services

import (
	"context"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/adapters/connector"
	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/logging"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/repositories"
	"github.com/vizquery/vizquery-engine/pkg/schema"
)

// ProfileService manages connection profiles. A profile is only stored
// after its connection has been verified.
type ProfileService interface {
	// Create verifies connectivity and stores the profile.
	Create(ctx context.Context, profile *models.ConnectionProfile) (*models.ConnectionProfile, error)

	// Get retrieves an active profile owned by userID.
	Get(ctx context.Context, userID, id uuid.UUID) (*models.ConnectionProfile, error)

	// List retrieves all active profiles owned by userID.
	List(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionProfile, error)

	// Delete soft-deletes a profile. For file sources the uploaded file
	// is removed from disk as well.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// DescribeSchema connects to the profile's source and returns its
	// normalized schema.
	DescribeSchema(ctx context.Context, userID, id uuid.UUID) (schema.Schema, error)

	// TestConnection verifies a profile's connection without storing
	// it and returns the source schema on success.
	TestConnection(ctx context.Context, profile *models.ConnectionProfile) (schema.Schema, error)
}

type profileService struct {
	repo    repositories.ProfileRepository
	factory connector.Factory
	logger  *zap.Logger
}

// NewProfileService creates a profile service with its dependencies.
func NewProfileService(repo repositories.ProfileRepository, factory connector.Factory, logger *zap.Logger) ProfileService {
	return &profileService{
		repo:    repo,
		factory: factory,
		logger:  logger.Named("profiles"),
	}
}

func (s *profileService) Create(ctx context.Context, profile *models.ConnectionProfile) (*models.ConnectionProfile, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	if _, err := s.TestConnection(ctx, profile); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("created connection profile",
		zap.String("id", profile.ID.String()),
		zap.String("source_kind", profile.SourceKind))
	return profile, nil
}

func (s *profileService) Get(ctx context.Context, userID, id uuid.UUID) (*models.ConnectionProfile, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *profileService) List(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionProfile, error) {
	return s.repo.List(ctx, userID)
}

func (s *profileService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	profile, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, userID, id); err != nil {
		return err
	}

	// The uploaded file is the source itself, so it goes with the
	// profile. A removal failure is logged, not surfaced.
	if profile.SourceKind == models.SourceKindFile && profile.FilePath != "" {
		if err := os.Remove(profile.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove uploaded file",
				zap.String("path", profile.FilePath),
				zap.Error(err))
		}
	}
	return nil
}

func (s *profileService) DescribeSchema(ctx context.Context, userID, id uuid.UUID) (schema.Schema, error) {
	profile, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	conn, err := s.factory.New(profile)
	if err != nil {
		return nil, err
	}
	defer conn.Disconnect()

	return conn.DescribeSchema(ctx)
}

func (s *profileService) TestConnection(ctx context.Context, profile *models.ConnectionProfile) (schema.Schema, error) {
	conn, err := s.factory.New(profile)
	if err != nil {
		return nil, err
	}
	defer conn.Disconnect()

	if err := conn.Connect(ctx); err != nil {
		s.logger.Info("connection test failed",
			zap.String("source_kind", profile.SourceKind),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	return conn.DescribeSchema(ctx)
}

func validateProfile(p *models.ConnectionProfile) error {
	if p.Name == "" {
		return apperrors.New(apperrors.KindMissingParameters, "profile name is required")
	}
	if !models.ValidSourceKind(p.SourceKind) {
		return apperrors.Newf(apperrors.KindMissingParameters, "unknown source kind: %s", p.SourceKind)
	}
	switch p.SourceKind {
	case models.SourceKindFile:
		if p.FilePath == "" {
			return apperrors.New(apperrors.KindMissingParameters, "file path is required")
		}
	case models.SourceKindRelational:
		if p.Host == "" || p.Port == 0 || p.Database == "" || p.Username == "" {
			return apperrors.New(apperrors.KindMissingParameters, "host, port, database and username are required")
		}
	case models.SourceKindDocument:
		if p.Host == "" || p.Port == 0 || p.Database == "" {
			return apperrors.New(apperrors.KindMissingParameters, "host, port and database are required")
		}
	}
	return nil
}

var _ ProfileService = (*profileService)(nil)
