package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

type BlocklistRepository struct {
	DB *sql.DB
}

func NewBlocklistRepository(db *sql.DB) *BlocklistRepository {
	return &BlocklistRepository{DB: db}
}

// RegisterBounce espelha entity.NextBounceState em SQL para que o upsert
// seja uma única instrução: hard bounce salta direto pro limiar, soft
// incrementa, e a razão escala pra bounce_auto ao cruzar o limiar.
func (r *BlocklistRepository) RegisterBounce(ctx context.Context, userID, email string, hard bool) error {
	email = entity.NormalizeEmail(email)

	increment := 1
	if hard {
		increment = entity.HardBounceCount
	}

	query := `
		INSERT INTO email_blocklist (user_id, email, bounce_count, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id, email) DO UPDATE SET
			bounce_count = CASE
				WHEN email_blocklist.reason = $6 THEN email_blocklist.bounce_count
				WHEN $5 THEN GREATEST(email_blocklist.bounce_count + 1, $3)
				ELSE email_blocklist.bounce_count + 1
			END,
			reason = CASE
				WHEN email_blocklist.reason = $6 THEN email_blocklist.reason
				WHEN $5 OR email_blocklist.bounce_count + 1 >= $7 THEN $8
				ELSE email_blocklist.reason
			END,
			updated_at = NOW()
	`

	_, err := r.DB.ExecContext(ctx, query,
		userID, email, increment, entity.BlockReasonBounce,
		hard, entity.BlockReasonSpam, entity.BlockThreshold, entity.BlockReasonBounceAuto,
	)
	if err != nil {
		return fmt.Errorf("erro ao registrar bounce: %w", err)
	}
	return nil
}

// RegisterSpam é terminal: marca o contador sentinela e a razão spam,
// sobrescrevendo qualquer histórico de bounce.
func (r *BlocklistRepository) RegisterSpam(ctx context.Context, userID, email string) error {
	email = entity.NormalizeEmail(email)

	query := `
		INSERT INTO email_blocklist (user_id, email, bounce_count, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id, email) DO UPDATE SET
			bounce_count = $3,
			reason = $4,
			updated_at = NOW()
	`

	_, err := r.DB.ExecContext(ctx, query, userID, email, entity.SpamBounceCount, entity.BlockReasonSpam)
	if err != nil {
		return fmt.Errorf("erro ao registrar spam: %w", err)
	}
	return nil
}

func (r *BlocklistRepository) IsBlocked(ctx context.Context, userID, email string) (bool, error) {
	query := `
		SELECT 1 FROM email_blocklist
		WHERE user_id = $1 AND email = $2 AND bounce_count >= $3
	`

	var one int
	err := r.DB.QueryRowContext(ctx, query, userID, entity.NormalizeEmail(email), entity.BlockThreshold).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *BlocklistRepository) Find(ctx context.Context, userID, email string) (*entity.EmailBlocklistEntry, error) {
	query := `
		SELECT user_id, email, bounce_count, reason, created_at, updated_at
		FROM email_blocklist
		WHERE user_id = $1 AND email = $2
	`

	var entry entity.EmailBlocklistEntry
	err := r.DB.QueryRowContext(ctx, query, userID, entity.NormalizeEmail(email)).Scan(
		&entry.UserID, &entry.Email, &entry.BounceCount, &entry.Reason, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
