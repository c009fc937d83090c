package entity

import (
	"context"
	"time"
)

// Tipos de crédito consumível
const (
	CreditLeads = "leads"
	CreditEmail = "email"
	CreditPhone = "phone"
)

// InsufficientBalance é o sentinela retornado pelo deduct atômico quando o
// saldo não cobre o débito. O saldo em si nunca fica negativo.
const InsufficientBalance = -1

// CreditTypeForField mapeia o campo do cascade para o tipo de crédito cobrado.
func CreditTypeForField(field string) string {
	if field == FieldPhone {
		return CreditPhone
	}
	return CreditEmail
}

type CreditBalance struct {
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"` // leads | email | phone
	Balance   int       `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreditRepositoryInterface interface {
	// Deduct é a ÚNICA mutação de saldo: "debita se suficiente" numa
	// escrita condicional atômica. Retorna o novo saldo, ou
	// InsufficientBalance se o saldo não cobria o valor. Nunca implemente
	// como ler-saldo-depois-escrever: dois cascades concorrentes passariam
	// os dois pela checagem e gastariam além de zero.
	Deduct(ctx context.Context, userID, creditType string, amount int) (int, error)

	Balance(ctx context.Context, userID, creditType string) (int, error)
}
