package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/http/middleware"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/resend"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/unipile"
)

// MessagingClient é o contrato do canal de mensageria (LinkedIn/WhatsApp).
type MessagingClient interface {
	SendMessage(ctx context.Context, input unipile.SendInput) (string, error)
}

// EmailClient é o contrato do canal de email.
type EmailClient interface {
	Send(ctx context.Context, input resend.SendInput) (string, error)
}

// DispatchWorker consome a fila de envios de campanha e roteia por canal.
// É ele quem materializa pending→sent e alimenta total_sent — sempre pela
// contagem de linhas que a transição realmente afetou.
type DispatchWorker struct {
	Channel    *amqp.Channel
	Messaging  MessagingClient
	Email      EmailClient
	Recipients entity.CampaignRecipientRepositoryInterface
	Campaigns  entity.CampaignRepositoryInterface
	Blocklist  entity.BlocklistRepositoryInterface
}

func NewDispatchWorker(
	ch *amqp.Channel,
	messaging MessagingClient,
	email EmailClient,
	recipients entity.CampaignRecipientRepositoryInterface,
	campaigns entity.CampaignRepositoryInterface,
	blocklist entity.BlocklistRepositoryInterface,
) *DispatchWorker {
	return &DispatchWorker{
		Channel:    ch,
		Messaging:  messaging,
		Email:      email,
		Recipients: recipients,
		Campaigns:  campaigns,
		Blocklist:  blocklist,
	}
}

func (w *DispatchWorker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload DispatchPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [DISPATCH] JSON Inválido: %s", err)
				// Mensagem podre (malformada). Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			log.Printf("📤 [DISPATCH] Enviando para recipient %s via %s", payload.RecipientID, payload.Channel)

			if err := w.ProcessDispatch(context.Background(), payload); err != nil {
				log.Printf("❌ [DISPATCH] Erro no envio: %s", err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Dispatch worker rodando e aguardando na fila '%s'", queueName)
	<-forever
}

// ProcessDispatch faz um envio. Erro de canal vira transição para failed
// (com contador) E erro retornado, para a mensagem cair na DLQ.
func (w *DispatchWorker) ProcessDispatch(ctx context.Context, payload DispatchPayload) error {
	// Endereço bloqueado nunca recebe envio; transiciona direto pra failed.
	if payload.Channel == entity.ChannelEmail {
		blocked, err := w.Blocklist.IsBlocked(ctx, payload.UserID, payload.Address)
		if err != nil {
			log.Printf("⚠️ [DISPATCH] Erro na checagem de blocklist: %v", err)
		}
		if blocked {
			log.Printf("🚫 [DISPATCH] Endereço %s bloqueado, pulando envio", payload.Address)
			w.markFailed(ctx, payload)
			return nil // ack: não é erro transitório, reenfileirar não ajuda
		}
	}

	providerMessageID, err := w.send(ctx, payload)
	if err != nil {
		middleware.RecordIntegrationError(payload.Channel)
		w.markFailed(ctx, payload)
		return err
	}

	if providerMessageID != "" {
		if err := w.Recipients.SetProviderMessageID(ctx, payload.RecipientID, providerMessageID); err != nil {
			log.Printf("⚠️ [DISPATCH] Erro ao guardar provider_message_id: %v", err)
		}
	}

	n, err := w.Recipients.Advance(ctx, payload.RecipientID, entity.RecipientSent, nil)
	if err != nil {
		return err
	}
	if n > 0 {
		if err := w.Campaigns.IncrementCounter(ctx, payload.CampaignID, entity.CounterSent, n); err != nil {
			log.Printf("⚠️ [DISPATCH] Erro ao incrementar total_sent: %v", err)
		}
		middleware.RecordCampaignTransition(payload.Channel, entity.RecipientSent, n)
	}

	log.Printf("✅ [DISPATCH] Recipient %s enviado (%s)", payload.RecipientID, payload.Channel)
	return nil
}

func (w *DispatchWorker) send(ctx context.Context, payload DispatchPayload) (string, error) {
	switch payload.Channel {
	case entity.ChannelEmail:
		return w.Email.Send(ctx, resend.SendInput{
			From:    payload.From,
			To:      payload.Address,
			Subject: payload.Subject,
			HTML:    payload.Body,
		})

	case entity.ChannelLinkedIn, entity.ChannelWhatsApp:
		return w.Messaging.SendMessage(ctx, unipile.SendInput{
			AccountID:  payload.AccountID,
			AttendeeID: payload.Address,
			Text:       payload.Body,
		})

	default:
		log.Printf("⚠️ [DISPATCH] Canal desconhecido: %s. Apenas logando.", payload.Channel)
		return "", nil
	}
}

func (w *DispatchWorker) markFailed(ctx context.Context, payload DispatchPayload) {
	n, err := w.Recipients.Advance(ctx, payload.RecipientID, entity.RecipientFailed, nil)
	if err != nil {
		log.Printf("❌ [DISPATCH] Erro ao marcar failed: %v", err)
		return
	}
	if n > 0 {
		if err := w.Campaigns.IncrementCounter(ctx, payload.CampaignID, entity.CounterFailed, n); err != nil {
			log.Printf("⚠️ [DISPATCH] Erro ao incrementar total_failed: %v", err)
		}
		middleware.RecordCampaignTransition(payload.Channel, entity.RecipientFailed, n)
	}
}
