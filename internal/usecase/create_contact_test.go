package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/queue"
)

// TestCreateContactEnqueuesScrape - Contato com URL de LinkedIn dispara o
// scrape grátis na fila logo no save.
func TestCreateContactEnqueuesScrape(t *testing.T) {
	ctx := context.Background()
	mockContacts := new(MockContactRepository)
	mockProducer := new(MockQueueProducer)

	mockContacts.On("Create", ctx, mock.Anything).Return(nil)
	mockProducer.On("PublishScrape", ctx, mock.MatchedBy(func(p queue.ScrapePayload) bool {
		return p.ProfileURL == "https://linkedin.com/in/maria-souza" && p.Field == entity.FieldEmail
	})).Return(nil)

	uc := NewCreateContactUseCase(mockContacts, mockProducer)

	contact, err := uc.Execute(ctx, CreateContactInput{
		UserID: "user-1", Type: entity.ContactTypeLead, Name: "Maria Souza",
		Company: "Acme", LinkedInURL: "https://linkedin.com/in/maria-souza",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, contact.ID)
	mockProducer.AssertCalled(t, "PublishScrape", ctx, mock.Anything)
}

// TestCreateContactWithoutURLSkipsScrape
func TestCreateContactWithoutURLSkipsScrape(t *testing.T) {
	ctx := context.Background()
	mockContacts := new(MockContactRepository)
	mockProducer := new(MockQueueProducer)

	mockContacts.On("Create", ctx, mock.Anything).Return(nil)

	uc := NewCreateContactUseCase(mockContacts, mockProducer)

	_, err := uc.Execute(ctx, CreateContactInput{
		UserID: "user-1", Type: entity.ContactTypeLead, Name: "Maria Souza", Company: "Acme",
	})

	assert.NoError(t, err)
	mockProducer.AssertNotCalled(t, "PublishScrape", mock.Anything, mock.Anything)
}

// TestCreateContactQueueFailureDoesNotFailSave - Fila fora do ar não
// derruba o save do contato.
func TestCreateContactQueueFailureDoesNotFailSave(t *testing.T) {
	ctx := context.Background()
	mockContacts := new(MockContactRepository)
	mockProducer := new(MockQueueProducer)

	mockContacts.On("Create", ctx, mock.Anything).Return(nil)
	mockProducer.On("PublishScrape", ctx, mock.Anything).Return(errors.New("rabbitmq fora"))

	uc := NewCreateContactUseCase(mockContacts, mockProducer)

	contact, err := uc.Execute(ctx, CreateContactInput{
		UserID: "user-1", Type: entity.ContactTypeLead, Name: "Maria Souza",
		Company: "Acme", LinkedInURL: "https://linkedin.com/in/maria-souza",
	})

	assert.NoError(t, err)
	assert.NotNil(t, contact)
}

// TestUpdateIntegrationParsesCompositeName - Nome "{provider}-{userId}" é
// quebrado no primeiro hífen (o UUID tem hífens).
func TestUpdateIntegrationParsesCompositeName(t *testing.T) {
	ctx := context.Background()
	mockIntegrations := new(MockIntegrationRepository)

	mockIntegrations.On("UpsertStatus", ctx, "3f1e2d00-aaaa-bbbb-cccc-000011112222", entity.ProviderLinkedIn, "acc-1", entity.IntegrationConnected).Return(nil)

	uc := NewUpdateIntegrationStatusUseCase(mockIntegrations)

	output, err := uc.Execute(ctx, AccountStatusInput{
		Name:      "linkedin-3f1e2d00-aaaa-bbbb-cccc-000011112222",
		AccountID: "acc-1",
		Status:    entity.IntegrationConnected,
	})

	assert.NoError(t, err)
	assert.False(t, output.Skipped)
	mockIntegrations.AssertCalled(t, "UpsertStatus", ctx, "3f1e2d00-aaaa-bbbb-cccc-000011112222", entity.ProviderLinkedIn, "acc-1", entity.IntegrationConnected)
}

// TestUpdateIntegrationBadNameIsSkipped - Nome fora do formato é
// reconhecido e ignorado, nunca erro.
func TestUpdateIntegrationBadNameIsSkipped(t *testing.T) {
	ctx := context.Background()
	mockIntegrations := new(MockIntegrationRepository)

	uc := NewUpdateIntegrationStatusUseCase(mockIntegrations)

	output, err := uc.Execute(ctx, AccountStatusInput{
		Name: "semformato", AccountID: "acc-1", Status: entity.IntegrationConnected,
	})

	assert.NoError(t, err)
	assert.True(t, output.Skipped)
	mockIntegrations.AssertNotCalled(t, "UpsertStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
