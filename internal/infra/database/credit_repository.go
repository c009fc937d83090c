package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

type CreditRepository struct {
	DB *sql.DB
}

func NewCreditRepository(db *sql.DB) *CreditRepository {
	return &CreditRepository{DB: db}
}

// Deduct debita atomicamente: o WHERE balance >= amount garante que o
// saldo nunca fica negativo mesmo sob requisições concorrentes. Zero
// linhas afetadas significa saldo insuficiente, não erro de banco.
func (r *CreditRepository) Deduct(ctx context.Context, userID, creditType string, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("valor de débito inválido: %d", amount)
	}

	query := `
		UPDATE credit_balances SET
			balance = balance - $3,
			updated_at = NOW()
		WHERE user_id = $1 AND credit_type = $2 AND balance >= $3
		RETURNING balance
	`

	var remaining int
	err := r.DB.QueryRowContext(ctx, query, userID, creditType, amount).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.InsufficientBalance, nil
	}
	if err != nil {
		return 0, fmt.Errorf("erro ao debitar créditos: %w", err)
	}
	return remaining, nil
}

func (r *CreditRepository) Balance(ctx context.Context, userID, creditType string) (int, error) {
	query := `SELECT balance FROM credit_balances WHERE user_id = $1 AND credit_type = $2`

	var balance int
	err := r.DB.QueryRowContext(ctx, query, userID, creditType).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("erro ao consultar saldo: %w", err)
	}
	return balance, nil
}
