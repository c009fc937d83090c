package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apify"
)

// ScrapeSubmitter dispara runs do scraper (só o submit; o resultado volta
// pelo webhook de conclusão).
type ScrapeSubmitter interface {
	SubmitRun(ctx context.Context, input apify.RunInput) (*apify.RunOutput, error)
}

// ScrapeWorker consome os jobs grátis de scrape disparados no
// salvar-na-lista. Reivindica o campo antes de submeter — o mesmo claim do
// cascade pago, então os dois caminhos nunca processam o campo em dobro.
type ScrapeWorker struct {
	Channel  *amqp.Channel
	Scraper  ScrapeSubmitter
	Contacts entity.ContactRepositoryInterface

	// Base da URL que o Apify chama na conclusão do run.
	CallbackBaseURL string
}

func NewScrapeWorker(ch *amqp.Channel, scraper ScrapeSubmitter, contacts entity.ContactRepositoryInterface, callbackBaseURL string) *ScrapeWorker {
	return &ScrapeWorker{
		Channel:         ch,
		Scraper:         scraper,
		Contacts:        contacts,
		CallbackBaseURL: callbackBaseURL,
	}
}

func (w *ScrapeWorker) Start(queueName string) {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("❌ Falha ao registrar consumidor de scrape: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload ScrapePayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [SCRAPE] JSON Inválido: %s", err)
				d.Nack(false, false)
				continue
			}

			if err := w.ProcessScrape(context.Background(), payload); err != nil {
				log.Printf("❌ [SCRAPE] Erro no job: %s", err)
				// Best-effort: não reenfileira, o enriquecimento pago ainda
				// pode ser disparado pelo usuário depois.
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Scrape worker rodando e aguardando na fila '%s'", queueName)
	<-forever
}

func (w *ScrapeWorker) ProcessScrape(ctx context.Context, payload ScrapePayload) error {
	if payload.ProfileURL == "" {
		log.Printf("⚠️ [SCRAPE] Contato %s sem URL de perfil, pulando", payload.ContactID)
		return nil
	}

	field := payload.Field
	if field == "" {
		field = entity.FieldEmail
	}

	claimed, err := w.Contacts.ClaimField(ctx, payload.ContactID, field)
	if err != nil {
		return fmt.Errorf("erro ao reivindicar campo: %w", err)
	}
	if !claimed {
		log.Printf("⚠️ [SCRAPE] Campo %s de %s já reivindicado, pulando", field, payload.ContactID)
		return nil
	}

	if err := w.Contacts.MarkProcessing(ctx, payload.ContactID); err != nil {
		return err
	}

	webhook := fmt.Sprintf("%s/webhooks/apify?itemId=%s&field=%s",
		w.CallbackBaseURL, url.QueryEscape(payload.ContactID), field)

	run, err := w.Scraper.SubmitRun(ctx, apify.RunInput{
		ProfileURL: payload.ProfileURL,
		WebhookURL: webhook,
	})
	if err != nil {
		// Submit falhou: solta o claim para o cascade pago poder tentar.
		_ = w.Contacts.ReleaseClaim(ctx, payload.ContactID, field)
		return err
	}

	log.Printf("🕷️ [SCRAPE] Run %s submetido para contato %s", run.RunID, payload.ContactID)
	return nil
}
