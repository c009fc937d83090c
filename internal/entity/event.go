package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tipos de evento canônico. Todo webhook de provedor é traduzido para um
// destes ANTES de qualquer mutação de estado — formato bruto do provedor
// não passa da fronteira de ingestão.
const (
	EventSent      = "sent"
	EventDelivered = "delivered"
	EventOpened    = "opened"
	EventClicked   = "clicked"
	EventBounced   = "bounced"
	EventSpam      = "spam"
	EventDelayed   = "delayed"
	EventReplied   = "replied"
	EventAccepted  = "accepted"
	EventFailed    = "failed"
)

// CanonicalEvent é uma linha imutável do log de eventos agnóstico a canal.
// É gravada para TODO evento mapeado, mesmo quando nenhum destinatário de
// campanha pôde ser resolvido — este log é a fonte de verdade da analytics.
type CanonicalEvent struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	ContactID string            `json:"contact_id,omitempty"`
	Channel   string            `json:"channel"`
	EventType string            `json:"event_type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewCanonicalEvent(userID, contactID, channel, eventType string, metadata map[string]string) *CanonicalEvent {
	return &CanonicalEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		ContactID: contactID,
		Channel:   channel,
		EventType: eventType,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
}

type EventRepositoryInterface interface {
	Append(ctx context.Context, e *CanonicalEvent) error
}
