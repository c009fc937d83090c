package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Provedores de conta conectável
const (
	ProviderLinkedIn = "linkedin"
	ProviderWhatsApp = "whatsapp"
	ProviderEmail    = "email"
)

// Status da conexão de conta
const (
	IntegrationConnected      = "connected"
	IntegrationDisconnected   = "disconnected"
	IntegrationExpired        = "expired"
	IntegrationCreationFailed = "creation_failed"
)

// Integration é o registro por-usuário-por-provedor de uma conta conectada
// (LinkedIn, WhatsApp ou caixa de email).
type Integration struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Provider  string    `json:"provider"`
	AccountID string    `json:"account_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrBadAccountName = errors.New("nome de conta fora do formato {provider}-{userId}")

// ParseAccountName decodifica o campo composto "{provider}-{userId}" dos
// webhooks de conexão de conta. O userId é um UUID e UUID contém hífens,
// então só o PRIMEIRO segmento é o provedor; o resto, rejuntado, é o id.
func ParseAccountName(name string) (provider, userID string, err error) {
	idx := strings.Index(name, "-")
	if idx <= 0 || idx == len(name)-1 {
		return "", "", ErrBadAccountName
	}
	return name[:idx], name[idx+1:], nil
}

type IntegrationRepositoryInterface interface {
	UpsertStatus(ctx context.Context, userID, provider, accountID, status string) error
	FindByAccountID(ctx context.Context, accountID string) (*Integration, error)
}
