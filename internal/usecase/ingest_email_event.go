package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

// Tabela fixa de-para: tipo de evento do provedor de email → evento
// canônico. Tipo fora da tabela é reconhecido e descartado.
var emailEventMap = map[string]string{
	"email.sent":             entity.EventSent,
	"email.delivered":        entity.EventDelivered,
	"email.opened":           entity.EventOpened,
	"email.clicked":          entity.EventClicked,
	"email.bounced":          entity.EventBounced,
	"email.complained":       entity.EventSpam,
	"email.delivery_delayed": entity.EventDelayed,
}

type EmailEventInput struct {
	UserID     string
	Type       string // tipo cru do provedor
	EmailID    string
	To         []string
	HardBounce bool
	RawPayload []byte
}

// IngestEmailEventUseCase dobra eventos do canal de email no estado dos
// destinatários, nos contadores do agregado, na blocklist e no log de
// eventos canônico. Toda mutação é idempotente sob replay: transições são
// guardadas por estado anterior e overlays por "timestamp ainda NULL", e o
// incremento de contador vem da contagem de linhas que ESTA chamada mudou.
type IngestEmailEventUseCase struct {
	Recipients entity.CampaignRecipientRepositoryInterface
	Campaigns  entity.CampaignRepositoryInterface
	Blocklist  entity.BlocklistRepositoryInterface
	Events     entity.EventRepositoryInterface
}

func NewIngestEmailEventUseCase(
	recipients entity.CampaignRecipientRepositoryInterface,
	campaigns entity.CampaignRepositoryInterface,
	blocklist entity.BlocklistRepositoryInterface,
	events entity.EventRepositoryInterface,
) *IngestEmailEventUseCase {
	return &IngestEmailEventUseCase{
		Recipients: recipients,
		Campaigns:  campaigns,
		Blocklist:  blocklist,
		Events:     events,
	}
}

func (uc *IngestEmailEventUseCase) Execute(ctx context.Context, input EmailEventInput) (*IngestOutput, error) {
	canonical, ok := emailEventMap[input.Type]
	if !ok {
		log.Printf("⚠️ [EMAIL-HOOK] Tipo não mapeado %q, descartando", input.Type)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	address := ""
	if len(input.To) > 0 {
		address = entity.NormalizeEmail(input.To[0])
	}

	// Resolução: (1) email_id do provedor contra o registro de envio —
	// autoritativo quando existe; (2) endereço do destinatário entre os
	// contatos do mesmo usuário — melhor esforço, pode casar vários.
	recipients := uc.resolveRecipients(ctx, input, address)

	contactID := ""
	if len(recipients) > 0 {
		contactID = recipients[0].ContactID
	}

	for _, r := range recipients {
		uc.applyToRecipient(ctx, canonical, r, input.RawPayload)
	}

	// Blocklist independe de destinatário resolvido: bounce é do endereço.
	if address != "" {
		switch canonical {
		case entity.EventBounced:
			if err := uc.Blocklist.RegisterBounce(ctx, input.UserID, address, input.HardBounce); err != nil {
				log.Printf("❌ [EMAIL-HOOK] Erro na blocklist: %v", err)
			}
		case entity.EventSpam:
			if err := uc.Blocklist.RegisterSpam(ctx, input.UserID, address); err != nil {
				log.Printf("❌ [EMAIL-HOOK] Erro na blocklist (spam): %v", err)
			}
		}
	}

	// Log de eventos: uma linha imutável por evento mapeado, mesmo quando
	// nenhum destinatário foi resolvido. Fonte de verdade da analytics.
	event := entity.NewCanonicalEvent(input.UserID, contactID, entity.ChannelEmail, canonical, map[string]string{
		"email_id": input.EmailID,
		"to":       address,
	})
	if err := uc.Events.Append(ctx, event); err != nil {
		log.Printf("❌ [EMAIL-HOOK] Erro ao gravar log de eventos: %v", err)
	}

	return &IngestOutput{OK: true, Skipped: len(recipients) == 0}, nil
}

func (uc *IngestEmailEventUseCase) resolveRecipients(ctx context.Context, input EmailEventInput, address string) []*entity.CampaignRecipient {
	if input.EmailID != "" {
		r, err := uc.Recipients.FindByProviderMessageID(ctx, input.EmailID)
		if err != nil {
			log.Printf("⚠️ [EMAIL-HOOK] Erro na busca por email_id: %v", err)
		}
		if r != nil {
			return []*entity.CampaignRecipient{r}
		}
	}

	if address == "" {
		return nil
	}
	rs, err := uc.Recipients.ListOpenByAddress(ctx, input.UserID, address)
	if err != nil {
		log.Printf("⚠️ [EMAIL-HOOK] Erro na busca por endereço: %v", err)
		return nil
	}
	return rs
}

func (uc *IngestEmailEventUseCase) applyToRecipient(ctx context.Context, canonical string, r *entity.CampaignRecipient, payload []byte) {
	switch canonical {
	case entity.EventSent, entity.EventDelivered, entity.EventBounced:
		to := entity.RecipientSent
		if canonical == entity.EventDelivered {
			to = entity.RecipientDelivered
		} else if canonical == entity.EventBounced {
			to = entity.RecipientBounced
		}

		n, err := uc.Recipients.Advance(ctx, r.ID, to, payload)
		if err != nil {
			log.Printf("❌ [EMAIL-HOOK] Erro na transição %s: %v", to, err)
			return
		}
		uc.bumpCounter(ctx, r.CampaignID, entity.CounterFor(canonical), n)

	case entity.EventOpened, entity.EventClicked:
		// Primeira ocorrência vence: o timestamp só escreve se estiver
		// NULL, e o contador só sobe nessa primeira transição.
		n, err := uc.Recipients.SetOverlay(ctx, r.ID, canonical, payload)
		if err != nil {
			log.Printf("❌ [EMAIL-HOOK] Erro no overlay %s: %v", canonical, err)
			return
		}
		uc.bumpCounter(ctx, r.CampaignID, entity.CounterFor(canonical), n)

	case entity.EventDelayed, entity.EventSpam:
		// Sem transição de destinatário; delayed é só log, spam é blocklist.
	}
}

func (uc *IngestEmailEventUseCase) bumpCounter(ctx context.Context, campaignID, counter string, n int) {
	if n <= 0 || counter == "" {
		return
	}
	if err := uc.Campaigns.IncrementCounter(ctx, campaignID, counter, n); err != nil {
		log.Printf("❌ [EMAIL-HOOK] Erro ao incrementar %s: %v", counter, err)
	}
}
