package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

type IntegrationRepository struct {
	DB *sql.DB
}

func NewIntegrationRepository(db *sql.DB) *IntegrationRepository {
	return &IntegrationRepository{DB: db}
}

// UpsertStatus cria ou atualiza a integração do usuário com o provedor.
// Reconexões reaproveitam a linha e trocam o account_id.
func (r *IntegrationRepository) UpsertStatus(ctx context.Context, userID, provider, accountID, status string) error {
	query := `
		INSERT INTO integrations (user_id, provider, account_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id, provider) DO UPDATE SET
			account_id = $3,
			status = $4,
			updated_at = NOW()
	`

	_, err := r.DB.ExecContext(ctx, query, userID, provider, accountID, status)
	if err != nil {
		return fmt.Errorf("erro ao atualizar integração: %w", err)
	}
	return nil
}

func (r *IntegrationRepository) FindByAccountID(ctx context.Context, accountID string) (*entity.Integration, error) {
	query := `
		SELECT user_id, provider, account_id, status, created_at, updated_at
		FROM integrations
		WHERE account_id = $1
	`

	var integration entity.Integration
	err := r.DB.QueryRowContext(ctx, query, accountID).Scan(
		&integration.UserID, &integration.Provider, &integration.AccountID, &integration.Status,
		&integration.CreatedAt, &integration.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &integration, nil
}
