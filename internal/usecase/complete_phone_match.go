package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apollo"
	"github.com/xavierca1/prospec-crm/internal/infra/mail"
)

type PhoneMatchInput struct {
	ContactID  string // itemId da callback URL
	SearchType string // precisa ser "phone"
	Person     *apollo.Person
}

// CompletePhoneMatchUseCase é o estado terminal do caminho assíncrono de
// telefone: o callback do Apollo chega aqui e finaliza o registro. Nenhum
// outro provedor é tentado depois desta etapa do cascade.
type CompletePhoneMatchUseCase struct {
	Contacts entity.ContactRepositoryInterface
	Credits  entity.CreditRepositoryInterface

	// Opcional: aviso pro operador quando o saldo zera no débito.
	Alerts CreditAlertSender
}

func NewCompletePhoneMatchUseCase(
	contacts entity.ContactRepositoryInterface,
	credits entity.CreditRepositoryInterface,
) *CompletePhoneMatchUseCase {
	return &CompletePhoneMatchUseCase{Contacts: contacts, Credits: credits}
}

func (uc *CompletePhoneMatchUseCase) Execute(ctx context.Context, input PhoneMatchInput) (*IngestOutput, error) {
	if input.SearchType != "phone" || input.ContactID == "" {
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	contact, err := uc.Contacts.FindByID(ctx, input.ContactID)
	if err != nil || contact == nil {
		log.Printf("⚠️ [APOLLO-HOOK] Contato %s não encontrado, pulando", input.ContactID)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}

	// Primeiro número mobile; na falta, o primeiro disponível.
	number := ""
	if input.Person != nil {
		number = apollo.PickPhoneNumber(input.Person.PhoneNumbers)
	}

	if number == "" {
		// Finaliza done sem source: o cascade rodou até o fim e não achou.
		result := entity.EnrichmentResult{Field: entity.FieldPhone, Status: entity.EnrichmentDone}
		if err := uc.Contacts.SaveEnrichment(ctx, contact.ID, result); err != nil {
			log.Printf("❌ [APOLLO-HOOK] Erro ao finalizar sem número: %v", err)
		}
		return &IngestOutput{OK: true}, nil
	}

	// O achado pago só é commitado se o crédito puder ser cobrado.
	newBalance, err := uc.Credits.Deduct(ctx, contact.UserID, entity.CreditPhone, CostPerEnrichment)
	if err != nil {
		log.Printf("❌ [APOLLO-HOOK] Erro no ledger: %v", err)
		return &IngestOutput{OK: true, Skipped: true}, nil
	}
	if newBalance == entity.InsufficientBalance {
		log.Printf("⚠️ [APOLLO-HOOK] Créditos insuficientes, número descartado para %s", contact.ID)
		result := entity.EnrichmentResult{Field: entity.FieldPhone, Status: entity.EnrichmentError, Reason: ReasonInsufficientCredits}
		if err := uc.Contacts.SaveEnrichment(ctx, contact.ID, result); err != nil {
			log.Printf("❌ [APOLLO-HOOK] Erro ao salvar insuficiência: %v", err)
		}
		return &IngestOutput{OK: true}, nil
	}

	if uc.Alerts != nil && newBalance == 0 {
		if err := uc.Alerts.SendLowCreditAlert(mail.LowCreditData{
			UserID:     contact.UserID,
			CreditType: entity.CreditPhone,
			Balance:    newBalance,
		}); err != nil {
			log.Printf("⚠️ [APOLLO-HOOK] Erro ao enviar alerta de saldo: %v", err)
		}
	}

	result := entity.EnrichmentResult{
		Field:  entity.FieldPhone,
		Value:  number,
		Source: entity.SourceApollo,
		Status: entity.EnrichmentDone,
	}
	if err := uc.Contacts.SaveEnrichment(ctx, contact.ID, result); err != nil {
		log.Printf("❌ [APOLLO-HOOK] Erro ao salvar telefone: %v", err)
	}

	log.Printf("✅ [APOLLO-HOOK] Telefone de %s finalizado (saldo: %d)", contact.ID, newBalance)
	return &IngestOutput{OK: true}, nil
}
