package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/crypto"
	"github.com/vizquery/vizquery-engine/pkg/database"
	"github.com/vizquery/vizquery-engine/pkg/models"
)

// ProfileRepository defines connection profile data access. Deletion is
// soft: rows are flagged inactive, never removed.
type ProfileRepository interface {
	// Create inserts a new profile. Returns a Conflict error if the
	// owner already has an active profile with the same name.
	Create(ctx context.Context, profile *models.ConnectionProfile) error

	// GetByID retrieves an active profile owned by userID.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ConnectionProfile, error)

	// List retrieves all active profiles owned by userID.
	List(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionProfile, error)

	// Update modifies connection fields of an active profile.
	Update(ctx context.Context, profile *models.ConnectionProfile) error

	// Deactivate soft-deletes an active profile owned by userID.
	Deactivate(ctx context.Context, userID, id uuid.UUID) error
}

type profileRepository struct {
	db     *database.DB
	cipher *crypto.CredentialCipher
}

// NewProfileRepository creates a profile repository. Source passwords
// are encrypted with cipher before they are stored.
func NewProfileRepository(db *database.DB, cipher *crypto.CredentialCipher) ProfileRepository {
	return &profileRepository{db: db, cipher: cipher}
}

const profileColumns = `id, user_id, name, source_kind, host, port, database_name,
	username, password, file_path, is_active, created_at, updated_at`

func (r *profileRepository) scanProfile(row pgx.Row) (*models.ConnectionProfile, error) {
	var p models.ConnectionProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.SourceKind,
		&p.Host,
		&p.Port,
		&p.Database,
		&p.Username,
		&p.Password,
		&p.FilePath,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	password, err := r.cipher.Decrypt(p.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt stored credentials: %w", err)
	}
	p.Password = password
	return &p, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.ConnectionProfile) error {
	password, err := r.cipher.Encrypt(profile.Password)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	now := time.Now()
	profile.IsActive = true
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
		INSERT INTO connection_profiles
			(user_id, name, source_kind, host, port, database_name, username, password, file_path, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	err = r.db.QueryRow(ctx, query,
		profile.UserID,
		profile.Name,
		profile.SourceKind,
		profile.Host,
		profile.Port,
		profile.Database,
		profile.Username,
		password,
		profile.FilePath,
		profile.IsActive,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Scan(&profile.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.New(apperrors.KindConflict, "a profile with this name already exists")
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ConnectionProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM connection_profiles
		WHERE user_id = $1 AND id = $2 AND is_active`, profileColumns)

	p, err := r.scanProfile(r.db.QueryRow(ctx, query, userID, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.New(apperrors.KindNotFound, "connection profile not found")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (r *profileRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM connection_profiles
		WHERE user_id = $1 AND is_active
		ORDER BY created_at DESC`, profileColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.ConnectionProfile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.ConnectionProfile) error {
	password, err := r.cipher.Encrypt(profile.Password)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	query := `
		UPDATE connection_profiles
		SET name = $3, host = $4, port = $5, database_name = $6, username = $7,
			password = $8, file_path = $9, updated_at = $10
		WHERE user_id = $1 AND id = $2 AND is_active`

	result, err := r.db.Exec(ctx, query,
		profile.UserID,
		profile.ID,
		profile.Name,
		profile.Host,
		profile.Port,
		profile.Database,
		profile.Username,
		password,
		profile.FilePath,
		time.Now(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.New(apperrors.KindConflict, "a profile with this name already exists")
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.New(apperrors.KindNotFound, "connection profile not found")
	}
	return nil
}

func (r *profileRepository) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE connection_profiles
		SET is_active = false, updated_at = $3
		WHERE user_id = $1 AND id = $2 AND is_active`

	result, err := r.db.Exec(ctx, query, userID, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to deactivate profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.New(apperrors.KindNotFound, "connection profile not found")
	}
	return nil
}

// Ensure profileRepository implements ProfileRepository at compile time.
var _ ProfileRepository = (*profileRepository)(nil)
