package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apify"
)

type ProfileScrapeInput struct {
	ContactID string // itemId da callback URL
	Field     string // campo pedido no disparo do run
	EventType string // ACTOR.RUN.SUCCEEDED etc
	RunID     string
	DatasetID string
}

// CompleteProfileScrapeUseCase ingere a conclusão de um run do Apify. Este
// ingestor É a ponte para o cascade de fallback: run que falhou ou não
// trouxe o campo pedido cai síncronamente no Apollo, dentro do próprio
// tratamento do webhook.
type CompleteProfileScrapeUseCase struct {
	Contacts entity.ContactRepositoryInterface
	Scraper  ProfileScrapeProvider
	Enricher *EnrichContactUseCase
}

func NewCompleteProfileScrapeUseCase(
	contacts entity.ContactRepositoryInterface,
	scraper ProfileScrapeProvider,
	enricher *EnrichContactUseCase,
) *CompleteProfileScrapeUseCase {
	return &CompleteProfileScrapeUseCase{Contacts: contacts, Scraper: scraper, Enricher: enricher}
}

func (uc *CompleteProfileScrapeUseCase) Execute(ctx context.Context, input ProfileScrapeInput) (*IngestOutput, error) {
	if input.ContactID == "" {
		return &IngestOutput{OK: true, Skipped: true}, nil
	}
	field := input.Field
	if field == "" {
		field = entity.FieldEmail
	}

	contact, err := uc.Contacts.FindByID(ctx, input.ContactID)
	if err != nil || contact == nil {
		log.Printf("⚠️ [APIFY-HOOK] Contato %s não encontrado, pulando", input.ContactID)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	enrichInput := EnrichInput{
		UserID:      contact.UserID,
		ContactID:   contact.ID,
		Field:       field,
		Identifiers: entity.IdentifiersFromContact(contact),
	}

	// Run que não terminou em sucesso vira miss e cai direto no fallback.
	if input.EventType != "ACTOR.RUN.SUCCEEDED" {
		log.Printf("⚠️ [APIFY-HOOK] Run %s terminou em %s, acionando fallback", input.RunID, input.EventType)
		_ = uc.Contacts.SetApifyOutcome(ctx, contact.ID, true, false)
		out, err := uc.Enricher.ApolloFallback(ctx, enrichInput, "apify_"+input.EventType)
		if err != nil {
			log.Printf("❌ [APIFY-HOOK] Fallback falhou: %v", err)
		} else {
			log.Printf("🔁 [APIFY-HOOK] Fallback terminou em %s", out.Status)
		}
		return &IngestOutput{OK: true}, nil
	}

	items, err := uc.Scraper.DatasetItems(ctx, input.DatasetID)
	if err != nil || len(items) == 0 {
		log.Printf("⚠️ [APIFY-HOOK] Dataset %s ilegível ou vazio: %v", input.DatasetID, err)
		_ = uc.Contacts.SetApifyOutcome(ctx, contact.ID, true, false)
		out, ferr := uc.Enricher.ApolloFallback(ctx, enrichInput, ReasonApifyMiss)
		if ferr == nil {
			log.Printf("🔁 [APIFY-HOOK] Fallback terminou em %s", out.Status)
		}
		return &IngestOutput{OK: true}, nil
	}

	// Extração por lista ordenada de sinônimos: o schema do scraper não é
	// estável entre versões.
	profile := apify.ExtractProfile(items[0])
	_ = uc.Contacts.SetApifyOutcome(ctx, contact.ID, true, profile.Email != "")

	value, other, otherValue := profile.Email, entity.FieldPhone, profile.Phone
	if field == entity.FieldPhone {
		value, other, otherValue = profile.Phone, entity.FieldEmail, profile.Email
	}

	if value != "" {
		// Campo pedido veio no dataset: finaliza pelo Apify e o segundo
		// provedor nunca é chamado (short-circuit de custo).
		result := entity.EnrichmentResult{
			Field:  field,
			Value:  value,
			Source: entity.SourceApify,
			Status: entity.EnrichmentDone,
			Reason: ReasonFoundByApify,
		}
		if err := uc.Contacts.SaveEnrichment(ctx, contact.ID, result); err != nil {
			log.Printf("❌ [APIFY-HOOK] Erro ao salvar resultado: %v", err)
		}
		_ = uc.Contacts.SetApolloTrail(ctx, contact.ID, false, ReasonFoundByApify)
		if otherValue != "" {
			_ = uc.Contacts.SavePartialField(ctx, contact.ID, other, otherValue)
		}
		log.Printf("✅ [APIFY-HOOK] %s de %s resolvido pelo dataset", field, contact.ID)
		return &IngestOutput{OK: true}, nil
	}

	// Campo pedido faltou: salva o que veio do outro campo e cai no fallback.
	if otherValue != "" {
		_ = uc.Contacts.SavePartialField(ctx, contact.ID, other, otherValue)
	}
	out, err := uc.Enricher.ApolloFallback(ctx, enrichInput, ReasonApifyMiss)
	if err != nil {
		log.Printf("❌ [APIFY-HOOK] Fallback falhou: %v", err)
	} else {
		log.Printf("🔁 [APIFY-HOOK] Fallback terminou em %s", out.Status)
	}
	return &IngestOutput{OK: true}, nil
}
