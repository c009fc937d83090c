package usecase

import (
	"context"

	"github.com/xavierca1/prospec-crm/internal/infra/integration/apify"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apollo"
	"github.com/xavierca1/prospec-crm/internal/infra/mail"
	"github.com/xavierca1/prospec-crm/internal/infra/queue"
)

// ProfileScrapeProvider é o provedor de scrape de perfil (Apify).
// FetchProfile embute o ciclo submit/poll/dataset com orçamento de tempo;
// DatasetItems é usado pelo ingestor do webhook de conclusão.
type ProfileScrapeProvider interface {
	FetchProfile(ctx context.Context, profileURL string) (*apify.ProfileData, error)
	SubmitRun(ctx context.Context, input apify.RunInput) (*apify.RunOutput, error)
	DatasetItems(ctx context.Context, datasetID string) ([]apify.DatasetItem, error)
}

// ContactMatchProvider é o provedor de people match (Apollo): email é
// síncrono, telefone é assíncrono via callback.
type ContactMatchProvider interface {
	MatchEmail(ctx context.Context, input apollo.MatchInput) (*apollo.MatchOutput, error)
	MatchPhoneAsync(ctx context.Context, input apollo.MatchInput, callbackURL string) error
}

type QueueProducerInterface interface {
	PublishDispatch(ctx context.Context, payload queue.DispatchPayload) error
	PublishScrape(ctx context.Context, payload queue.ScrapePayload) error
}

// CreditAlertSender avisa o operador quando o saldo de um usuário zera.
type CreditAlertSender interface {
	SendLowCreditAlert(data mail.LowCreditData) error
}
