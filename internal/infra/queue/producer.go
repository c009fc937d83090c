package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DispatchPayload é um envio de campanha para UM destinatário. O worker
// consome, roteia pelo canal e marca a transição pending→sent.
type DispatchPayload struct {
	RecipientID string `json:"recipient_id"`
	CampaignID  string `json:"campaign_id"`
	ContactID   string `json:"contact_id"`
	UserID      string `json:"user_id"`

	Channel string `json:"channel"` // whatsapp | email | linkedin
	Address string `json:"address"`

	// Conta conectada que envia (canais de mensageria).
	AccountID string `json:"account_id,omitempty"`

	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
	From    string `json:"from,omitempty"`
}

// ScrapePayload é o job grátis de scrape de perfil disparado no
// salvar-na-lista. Best-effort: o resultado volta pelo webhook do Apify.
type ScrapePayload struct {
	ContactID  string `json:"contact_id"`
	UserID     string `json:"user_id"`
	ProfileURL string `json:"profile_url"`
	Field      string `json:"field"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Conn: conn, Ch: ch}
}

func (p *RabbitMQProducer) PublishDispatch(ctx context.Context, payload DispatchPayload) error {
	return p.publish(ctx, DispatchKey, payload)
}

func (p *RabbitMQProducer) PublishScrape(ctx context.Context, payload ScrapePayload) error {
	return p.publish(ctx, ScrapeKey, payload)
}

func (p *RabbitMQProducer) publish(ctx context.Context, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Mensagem salva no disco (segurança!)
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %v", err)
	}

	return nil
}
