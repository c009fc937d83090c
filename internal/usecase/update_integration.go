package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

type AccountStatusInput struct {
	Name      string // composto "{provider}-{userId}"
	AccountID string
	Status    string // connected | disconnected | expired | creation_failed
}

// UpdateIntegrationStatusUseCase roteia eventos de conexão de conta para o
// registro por-usuário-por-provedor. Nome fora do formato é reconhecido e
// ignorado de propósito — o sistema upstream está fora do nosso controle.
type UpdateIntegrationStatusUseCase struct {
	Integrations entity.IntegrationRepositoryInterface
}

func NewUpdateIntegrationStatusUseCase(integrations entity.IntegrationRepositoryInterface) *UpdateIntegrationStatusUseCase {
	return &UpdateIntegrationStatusUseCase{Integrations: integrations}
}

var validIntegrationStatus = map[string]bool{
	entity.IntegrationConnected:      true,
	entity.IntegrationDisconnected:   true,
	entity.IntegrationExpired:        true,
	entity.IntegrationCreationFailed: true,
}

func (uc *UpdateIntegrationStatusUseCase) Execute(ctx context.Context, input AccountStatusInput) (*IngestOutput, error) {
	provider, userID, err := entity.ParseAccountName(input.Name)
	if err != nil {
		log.Printf("⚠️ [ACCOUNT-HOOK] Nome %q fora do formato, ignorando", input.Name)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	if !validIntegrationStatus[input.Status] {
		log.Printf("⚠️ [ACCOUNT-HOOK] Status %q desconhecido, ignorando", input.Status)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	if err := uc.Integrations.UpsertStatus(ctx, userID, provider, input.AccountID, input.Status); err != nil {
		log.Printf("❌ [ACCOUNT-HOOK] Erro ao atualizar integração: %v", err)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	log.Printf("🔌 [ACCOUNT-HOOK] Integração %s/%s → %s", userID, provider, input.Status)
	return &IngestOutput{OK: true}, nil
}
