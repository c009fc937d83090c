package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

// De-para dos eventos do provedor de mensageria → evento canônico.
var messagingEventMap = map[string]string{
	"message_delivered": entity.EventDelivered,
	"message_read":      entity.EventOpened,
	"message_received":  entity.EventReplied,
	"message_failed":    entity.EventFailed,
	"relation_accepted": entity.EventAccepted,
}

type MessagingEventInput struct {
	AccountID  string // conta conectada que recebeu o evento
	Event      string // tipo cru do provedor
	ProviderID string // identificador do contato NO provedor (handle/URN)
	RawPayload []byte
}

// IngestMessagingEventUseCase dobra eventos de entrega/leitura/resposta do
// canal LinkedIn/WhatsApp no estado de campanha. O provedor manda um handle
// pelado e nós guardamos URL completa, então a resolução é por containment
// de substring nos dois sentidos — heurística assumida, pode multi-casar; o
// replay continua seguro porque as transições são guardadas por estado.
type IngestMessagingEventUseCase struct {
	Integrations entity.IntegrationRepositoryInterface
	Contacts     entity.ContactRepositoryInterface
	Recipients   entity.CampaignRecipientRepositoryInterface
	Campaigns    entity.CampaignRepositoryInterface
	Events       entity.EventRepositoryInterface
}

func NewIngestMessagingEventUseCase(
	integrations entity.IntegrationRepositoryInterface,
	contacts entity.ContactRepositoryInterface,
	recipients entity.CampaignRecipientRepositoryInterface,
	campaigns entity.CampaignRepositoryInterface,
	events entity.EventRepositoryInterface,
) *IngestMessagingEventUseCase {
	return &IngestMessagingEventUseCase{
		Integrations: integrations,
		Contacts:     contacts,
		Recipients:   recipients,
		Campaigns:    campaigns,
		Events:       events,
	}
}

func (uc *IngestMessagingEventUseCase) Execute(ctx context.Context, input MessagingEventInput) (*IngestOutput, error) {
	canonical, ok := messagingEventMap[input.Event]
	if !ok {
		log.Printf("⚠️ [MSG-HOOK] Evento não mapeado %q, descartando", input.Event)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	integration, err := uc.Integrations.FindByAccountID(ctx, input.AccountID)
	if err != nil || integration == nil {
		log.Printf("⚠️ [MSG-HOOK] Conta %s não resolvida, reconhecendo e pulando", input.AccountID)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	handle := NormalizeProviderHandle(input.ProviderID)
	if handle == "" {
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	contacts, err := uc.Contacts.FindByLinkedInHandle(ctx, integration.UserID, handle)
	if err != nil {
		log.Printf("❌ [MSG-HOOK] Erro na resolução de contato: %v", err)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	matched := 0
	for _, contact := range contacts {
		counts, err := uc.applyToContact(ctx, canonical, integration.UserID, contact.ID, input.RawPayload)
		if err != nil {
			log.Printf("❌ [MSG-HOOK] Erro ao aplicar %s em %s: %v", canonical, contact.ID, err)
			continue
		}
		for _, tc := range counts {
			matched += tc.Rows
			uc.bumpCounter(ctx, tc.CampaignID, entity.CounterFor(canonical), tc.Rows)
		}

		event := entity.NewCanonicalEvent(integration.UserID, contact.ID, integration.Provider, canonical, map[string]string{
			"provider_id": input.ProviderID,
			"account_id":  input.AccountID,
		})
		if err := uc.Events.Append(ctx, event); err != nil {
			log.Printf("❌ [MSG-HOOK] Erro ao gravar log de eventos: %v", err)
		}
	}

	if len(contacts) == 0 {
		// Sem contato casado o evento ainda entra no log, sem contact_id.
		event := entity.NewCanonicalEvent(integration.UserID, "", integration.Provider, canonical, map[string]string{
			"provider_id": input.ProviderID,
			"account_id":  input.AccountID,
		})
		if err := uc.Events.Append(ctx, event); err != nil {
			log.Printf("❌ [MSG-HOOK] Erro ao gravar log de eventos: %v", err)
		}
	}

	return &IngestOutput{OK: true, Skipped: matched == 0}, nil
}

// applyToContact transiciona todos os destinatários abertos do contato.
// Leitura vira overlay (opened coexiste com o status de entrega); o resto
// avança o status base guardado pelos estados anteriores permitidos.
func (uc *IngestMessagingEventUseCase) applyToContact(ctx context.Context, canonical, userID, contactID string, payload []byte) ([]entity.TransitionCount, error) {
	if canonical == entity.EventOpened {
		return uc.Recipients.SetOverlayByContact(ctx, userID, contactID, entity.OverlayOpened, payload)
	}

	to := map[string]string{
		entity.EventDelivered: entity.RecipientDelivered,
		entity.EventReplied:   entity.RecipientReplied,
		entity.EventFailed:    entity.RecipientFailed,
		entity.EventAccepted:  entity.RecipientAccepted,
	}[canonical]

	return uc.Recipients.AdvanceByContact(ctx, userID, contactID, to, payload)
}

func (uc *IngestMessagingEventUseCase) bumpCounter(ctx context.Context, campaignID, counter string, n int) {
	if n <= 0 || counter == "" {
		return
	}
	if err := uc.Campaigns.IncrementCounter(ctx, campaignID, counter, n); err != nil {
		log.Printf("❌ [MSG-HOOK] Erro ao incrementar %s: %v", counter, err)
	}
}

// NormalizeProviderHandle limpa o identificador que o provedor manda antes
// do match por substring: tira esquema/barras e baixa a caixa.
func NormalizeProviderHandle(providerID string) string {
	h := strings.TrimSpace(strings.ToLower(providerID))
	h = strings.TrimPrefix(h, "https://")
	h = strings.TrimPrefix(h, "http://")
	h = strings.TrimPrefix(h, "www.")
	return strings.Trim(h, "/")
}
