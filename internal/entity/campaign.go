package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Canais de campanha
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
	ChannelLinkedIn = "linkedin"
)

// Status base de entrega do destinatário
const (
	RecipientPending   = "pending"
	RecipientSent      = "sent"
	RecipientDelivered = "delivered"
	RecipientFailed    = "failed"
	RecipientBounced   = "bounced"
	RecipientAccepted  = "accepted" // convite aceito (só LinkedIn)
	RecipientReplied   = "replied"
)

// Overlays: flags com timestamp que COEXISTEM com o status base.
// Um destinatário pode estar delivered E opened E clicked ao mesmo tempo.
const (
	OverlayOpened   = "opened"
	OverlayClicked  = "clicked"
	OverlayReplied  = "replied"
	OverlayAccepted = "accepted"
)

// Contadores agregados da campanha (monotônicos, nunca decrementam)
const (
	CounterSent      = "total_sent"
	CounterDelivered = "total_delivered"
	CounterOpened    = "total_opened"
	CounterReplied   = "total_replied"
	CounterFailed    = "total_failed"
	CounterAccepted  = "total_accepted"
	CounterClicked   = "total_clicked"
)

// allowedPrior define o reticulado de transições do status base:
// só avança a partir de um estado anterior permitido. Webhook repetido
// (replay) não encontra linha no estado anterior e afeta zero linhas.
var allowedPrior = map[string][]string{
	RecipientSent:      {RecipientPending},
	RecipientDelivered: {RecipientSent},
	RecipientFailed:    {RecipientPending, RecipientSent},
	RecipientBounced:   {RecipientSent, RecipientDelivered},
	RecipientAccepted:  {RecipientSent, RecipientDelivered},
	RecipientReplied:   {RecipientSent, RecipientDelivered, RecipientAccepted},
}

// AllowedPrior retorna os status a partir dos quais 'to' pode ser atingido.
func AllowedPrior(to string) []string {
	return allowedPrior[to]
}

// CanAdvance informa se o status base pode avançar de 'from' para 'to'.
func CanAdvance(from, to string) bool {
	for _, s := range allowedPrior[to] {
		if s == from {
			return true
		}
	}
	return false
}

// CounterFor mapeia um evento canônico para o contador agregado que ele
// alimenta. Eventos sem contador (ex: delayed) retornam "".
func CounterFor(eventType string) string {
	switch eventType {
	case EventSent:
		return CounterSent
	case EventDelivered:
		return CounterDelivered
	case EventOpened:
		return CounterOpened
	case EventClicked:
		return CounterClicked
	case EventReplied:
		return CounterReplied
	case EventAccepted:
		return CounterAccepted
	case EventFailed, EventBounced:
		return CounterFailed
	}
	return ""
}

// Entidade: Campaign (agregado com contadores cumulativos)
type Campaign struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Channel string `json:"channel"` // whatsapp | email | linkedin

	TotalSent      int `json:"total_sent"`
	TotalDelivered int `json:"total_delivered"`
	TotalOpened    int `json:"total_opened"`
	TotalReplied   int `json:"total_replied"`
	TotalFailed    int `json:"total_failed"`
	TotalAccepted  int `json:"total_accepted"`
	TotalClicked   int `json:"total_clicked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCampaign(userID, name, channel string) *Campaign {
	return &Campaign{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Channel:   channel,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Entidade: CampaignRecipient (um contato dentro de uma campanha).
// Criado com status pending no enfileiramento do envio; depois disso só
// muda por ingestão de webhook.
type CampaignRecipient struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	ContactID  string `json:"contact_id"`
	UserID     string `json:"user_id"`
	Channel    string `json:"channel"`
	Address    string `json:"address"` // email, telefone ou URL do LinkedIn

	Status string `json:"status"`

	SentAt      *time.Time `json:"sent_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	OpenedAt    *time.Time `json:"opened_at,omitempty"`
	RepliedAt   *time.Time `json:"replied_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	ClickedAt   *time.Time `json:"clicked_at,omitempty"`

	// ID da mensagem no provedor (email_id do Resend, message_id do Unipile).
	// Caminho autoritativo de resolução do webhook de email.
	ProviderMessageID string `json:"provider_message_id,omitempty"`

	// Último payload bruto de webhook aplicado, para auditoria.
	LastPayload []byte `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCampaignRecipient(campaignID, contactID, userID, channel, address string) *CampaignRecipient {
	return &CampaignRecipient{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		ContactID:  contactID,
		UserID:     userID,
		Channel:    channel,
		Address:    address,
		Status:     RecipientPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// TransitionCount é o resultado de uma transição em lote: quantas linhas
// realmente mudaram, por campanha. Os contadores do agregado são alimentados
// por ESTA contagem, nunca pelo payload do provedor.
type TransitionCount struct {
	CampaignID string
	Rows       int
}

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *Campaign) error
	FindByID(ctx context.Context, id string) (*Campaign, error)
	IncrementCounter(ctx context.Context, campaignID, counter string, n int) error
}

type CampaignRecipientRepositoryInterface interface {
	Create(ctx context.Context, r *CampaignRecipient) error
	FindByID(ctx context.Context, id string) (*CampaignRecipient, error)
	ListPending(ctx context.Context, campaignID string) ([]*CampaignRecipient, error)

	FindByProviderMessageID(ctx context.Context, providerMessageID string) (*CampaignRecipient, error)
	ListOpenByAddress(ctx context.Context, userID, address string) ([]*CampaignRecipient, error)
	SetProviderMessageID(ctx context.Context, recipientID, providerMessageID string) error

	// Advance move o status base para frente, guardado pelos estados
	// anteriores permitidos. Retorna linhas afetadas (0 em replay).
	Advance(ctx context.Context, recipientID, to string, payload []byte) (int, error)

	// AdvanceByContact transiciona todos os destinatários abertos de um
	// contato (caminho do webhook de mensageria, que não conhece o
	// recipient individual). Retorna contagem por campanha.
	AdvanceByContact(ctx context.Context, userID, contactID, to string, payload []byte) ([]TransitionCount, error)

	// SetOverlay grava o timestamp do overlay somente se ainda for NULL
	// (primeira ocorrência vence; open repetido afeta zero linhas).
	SetOverlay(ctx context.Context, recipientID, overlay string, payload []byte) (int, error)
	SetOverlayByContact(ctx context.Context, userID, contactID, overlay string, payload []byte) ([]TransitionCount, error)
}
