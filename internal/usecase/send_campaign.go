package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/queue"
)

type SendCampaignInput struct {
	CampaignID string `json:"campaign_id"`
	AccountID  string `json:"account_id,omitempty"` // conta conectada (mensageria)
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body"`
	From       string `json:"from,omitempty"`
}

type SendCampaignOutput struct {
	Enqueued int `json:"enqueued"`
}

// SendCampaignUseCase enfileira um envio por destinatário pendente. O
// worker da fila faz o envio de fato e materializa pending→sent; daqui em
// diante o estado da campanha só muda por webhook.
type SendCampaignUseCase struct {
	Campaigns  entity.CampaignRepositoryInterface
	Recipients entity.CampaignRecipientRepositoryInterface
	Producer   QueueProducerInterface
}

func NewSendCampaignUseCase(
	campaigns entity.CampaignRepositoryInterface,
	recipients entity.CampaignRecipientRepositoryInterface,
	producer QueueProducerInterface,
) *SendCampaignUseCase {
	return &SendCampaignUseCase{Campaigns: campaigns, Recipients: recipients, Producer: producer}
}

func (uc *SendCampaignUseCase) Execute(ctx context.Context, input SendCampaignInput) (*SendCampaignOutput, error) {
	campaign, err := uc.Campaigns.FindByID(ctx, input.CampaignID)
	if err != nil {
		return nil, technical("campaign_lookup_failed", "campanha não encontrada", err)
	}

	pending, err := uc.Recipients.ListPending(ctx, campaign.ID)
	if err != nil {
		return nil, technical("list_recipients_failed", "erro ao listar destinatários", err)
	}

	enqueued := 0
	for _, r := range pending {
		payload := queue.DispatchPayload{
			RecipientID: r.ID,
			CampaignID:  campaign.ID,
			ContactID:   r.ContactID,
			UserID:      r.UserID,
			Channel:     campaign.Channel,
			Address:     r.Address,
			AccountID:   input.AccountID,
			Subject:     input.Subject,
			Body:        input.Body,
			From:        input.From,
		}

		if err := uc.Producer.PublishDispatch(ctx, payload); err != nil {
			log.Printf("⚠️ CRITICAL: destinatário %s não enfileirado: %v", r.ID, err)
			continue
		}
		enqueued++
	}

	log.Printf("🚀 Campanha %s: %d/%d destinatários enfileirados", campaign.ID, enqueued, len(pending))
	return &SendCampaignOutput{Enqueued: enqueued}, nil
}
