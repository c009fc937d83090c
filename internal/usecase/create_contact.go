package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/queue"
)

// CreateContactUseCase é a fronteira do salvar-na-lista: persiste o
// contato e dispara o scrape de perfil grátis, best-effort e sem bloquear
// a resposta — falha na fila não derruba o save.
type CreateContactUseCase struct {
	Contacts entity.ContactRepositoryInterface
	Producer QueueProducerInterface
}

func NewCreateContactUseCase(contacts entity.ContactRepositoryInterface, producer QueueProducerInterface) *CreateContactUseCase {
	return &CreateContactUseCase{Contacts: contacts, Producer: producer}
}

func (uc *CreateContactUseCase) Execute(ctx context.Context, input CreateContactInput) (*entity.Contact, error) {
	contact, err := entity.NewContact(input.UserID, input.Type, input.Name, input.Company, input.Title, input.LinkedInURL)
	if err != nil {
		return nil, &DomainError{Code: "invalid_contact", Message: err.Error()}
	}

	if err := uc.Contacts.Create(ctx, contact); err != nil {
		return nil, technical("contact_save_failed", "erro ao salvar contato", err)
	}

	if contact.LinkedInURL != "" {
		payload := queue.ScrapePayload{
			ContactID:  contact.ID,
			UserID:     contact.UserID,
			ProfileURL: contact.LinkedInURL,
			Field:      entity.FieldEmail,
		}
		if err := uc.Producer.PublishScrape(ctx, payload); err != nil {
			log.Printf("⚠️ [CONTACT] Scrape de %s não enfileirado: %v", contact.ID, err)
		}
	}

	return contact, nil
}
