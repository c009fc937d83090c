package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

// BatchEnrichUseCase roda o mesmo cascade sobre até 100 contatos com
// fan-out limitado. Falha de um contato não derruba os outros da onda.
type BatchEnrichUseCase struct {
	Contacts entity.ContactRepositoryInterface
	Credits  entity.CreditRepositoryInterface
	Enricher *EnrichContactUseCase
}

func NewBatchEnrichUseCase(
	contacts entity.ContactRepositoryInterface,
	credits entity.CreditRepositoryInterface,
	enricher *EnrichContactUseCase,
) *BatchEnrichUseCase {
	return &BatchEnrichUseCase{Contacts: contacts, Credits: credits, Enricher: enricher}
}

func (uc *BatchEnrichUseCase) Execute(ctx context.Context, input BatchEnrichInput) (*BatchEnrichOutput, error) {
	if len(input.ContactIDs) == 0 {
		return nil, &DomainError{Code: "empty_batch", Message: "nenhum contato informado"}
	}
	if len(input.ContactIDs) > MaxBatchSize {
		return nil, &DomainError{Code: "batch_too_large", Message: fmt.Sprintf("lote máximo é %d contatos", MaxBatchSize)}
	}
	if input.Field != entity.FieldEmail && input.Field != entity.FieldPhone {
		return nil, &DomainError{Code: "invalid_field", Message: "field deve ser email ou phone"}
	}

	contacts, err := uc.Contacts.FindByIDs(ctx, input.ContactIDs)
	if err != nil {
		return nil, technical("contact_lookup_failed", "erro ao carregar contatos", err)
	}

	// Pré-filtro: quem já tem valor E claim não entra de novo no cascade.
	var eligible []*entity.Contact
	var skipped []string
	for _, c := range contacts {
		if c.FieldValue(input.Field) != "" && c.CheckedAt(input.Field) != nil {
			skipped = append(skipped, c.ID)
			continue
		}
		eligible = append(eligible, c)
	}

	if len(eligible) == 0 {
		return &BatchEnrichOutput{Results: map[string]*EnrichOutput{}, Skipped: skipped}, nil
	}

	// Pré-checagem de créditos: ou o lote inteiro cabe no saldo, ou nada
	// roda. Melhor falhar atômico do que gastar metade e parar no meio.
	needed := len(eligible) * CostPerEnrichment
	balance, err := uc.Credits.Balance(ctx, input.UserID, entity.CreditTypeForField(input.Field))
	if err != nil {
		return nil, technical("balance_lookup_failed", "erro ao consultar saldo", err)
	}
	if balance < needed {
		return nil, &DomainError{
			Code:    ReasonInsufficientCredits,
			Message: fmt.Sprintf("lote precisa de %d créditos, saldo é %d", needed, balance),
		}
	}

	log.Printf("🚚 [BATCH] Enriquecendo %d contatos (%d pulados, fan-out %d)", len(eligible), len(skipped), BatchConcurrency)

	results := make(map[string]*EnrichOutput, len(eligible))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, BatchConcurrency)

	for _, contact := range eligible {
		wg.Add(1)
		go func(c *entity.Contact) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			out, err := uc.Enricher.Execute(ctx, EnrichInput{
				UserID:      input.UserID,
				ContactID:   c.ID,
				Field:       input.Field,
				Identifiers: entity.IdentifiersFromContact(c),
			})
			if err != nil {
				// Falha isolada: registra como erro deste contato e segue.
				log.Printf("❌ [BATCH] Contato %s falhou: %v", c.ID, err)
				out = &EnrichOutput{Status: entity.EnrichmentError, Reason: err.Error()}
			}

			mu.Lock()
			results[c.ID] = out
			mu.Unlock()
		}(contact)
	}
	wg.Wait()

	return &BatchEnrichOutput{Results: results, Skipped: skipped}, nil
}
