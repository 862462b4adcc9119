package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type profileRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProfileRepository creates a PostgreSQL-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProfileRepository {
	return &profileRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "profile").Logger(),
	}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	query := `
		SELECT user_id, name, email, phone, address, is_admin, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var p model.UserProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.IsAdmin, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query profile")
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	return &p, nil
}

func (r *profileRepository) Save(ctx context.Context, p *model.UserProfile) error {
	query := `
		INSERT INTO profiles (user_id, name, email, phone, address, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
		    address = EXCLUDED.address, updated_at = NOW()
		RETURNING is_admin, updated_at
	`

	err := r.pool.QueryRow(ctx, query, p.UserID, p.Name, p.Email, p.Phone, p.Address).
		Scan(&p.IsAdmin, &p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", p.UserID).Msg("failed to save profile")
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// SetAdmin creates the profile if needed so that admins can be granted
// before their first sign-in.
func (r *profileRepository) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	query := `
		INSERT INTO profiles (user_id, is_admin)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET is_admin = EXCLUDED.is_admin, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, userID, isAdmin); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to set admin flag")
		return fmt.Errorf("failed to set admin flag: %w", err)
	}

	r.logger.Info().Str("user_id", userID).Bool("is_admin", isAdmin).Msg("admin flag updated")
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to delete profile")
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
