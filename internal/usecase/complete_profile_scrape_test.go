package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apify"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apollo"
)

func scrapeContact() *entity.Contact {
	return &entity.Contact{
		ID: "c-1", UserID: "user-1",
		Name: "Maria Souza", Company: "Acme",
		LinkedInURL: "https://linkedin.com/in/maria-souza",
	}
}

// TestScrapeSucceededWithEmailFinishesByApify - Dataset trouxe o campo
// pedido: finaliza pelo Apify, fallback nunca roda, crédito não é gasto.
func TestScrapeSucceededWithEmailFinishesByApify(t *testing.T) {
	ctx := context.Background()
	mockContacts := new(MockContactRepository)
	mockCredits := new(MockCreditRepository)
	mockScraper := new(MockScrapeProvider)
	mockMatcher := new(MockMatchProvider)

	mockContacts.On("FindByID", ctx, "c-1").Return(scrapeContact(), nil)
	mockScraper.On("DatasetItems", ctx, "ds-1").Return([]apify.DatasetItem{
		{"email": "maria@acme.com", "mobileNumber": "+5511988880000"},
	}, nil)
	mockContacts.On("SetApifyOutcome", ctx, "c-1", true, true).Return(nil)
	mockContacts.On("SaveEnrichment", ctx, "c-1", mock.MatchedBy(func(r entity.EnrichmentResult) bool {
		return r.Source == entity.SourceApify && r.Value == "maria@acme.com"
	})).Return(nil)
	mockContacts.On("SetApolloTrail", ctx, "c-1", false, ReasonFoundByApify).Return(nil)
	mockContacts.On("SavePartialField", ctx, "c-1", entity.FieldPhone, "+5511988880000").Return(nil)

	enricher := newEnrichUC(mockContacts, mockCredits, mockScraper, mockMatcher)
	uc := NewCompleteProfileScrapeUseCase(mockContacts, mockScraper, enricher)

	output, err := uc.Execute(ctx, ProfileScrapeInput{
		ContactID: "c-1", Field: entity.FieldEmail,
		EventType: "ACTOR.RUN.SUCCEEDED", RunID: "run-1", DatasetID: "ds-1",
	})

	assert.NoError(t, err)
	assert.True(t, output.OK)
	mockMatcher.AssertNotCalled(t, "MatchEmail", mock.Anything, mock.Anything)
	mockCredits.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestScrapeFailedRunFallsBack - Run que terminou em falha vira miss e o
// fallback pago roda dentro do próprio tratamento do webhook.
func TestScrapeFailedRunFallsBack(t *testing.T) {
	ctx := context.Background()
	mockContacts := new(MockContactRepository)
	mockCredits := new(MockCreditRepository)
	mockScraper := new(MockScrapeProvider)
	mockMatcher := new(MockMatchProvider)

	mockContacts.On("FindByID", ctx, "c-1").Return(scrapeContact(), nil)
	mockContacts.On("SetApifyOutcome", ctx, "c-1", true, false).Return(nil)
	mockContacts.On("SetApolloTrail", ctx, "c-1", true, "apify_ACTOR.RUN.FAILED").Return(nil)
	mockMatcher.On("MatchEmail", ctx, mock.Anything).Return(&apollo.MatchOutput{Email: "maria@acme.com"}, nil)
	mockCredits.On("Deduct", ctx, "user-1", entity.CreditEmail, CostPerEnrichment).Return(3, nil)
	mockContacts.On("SaveEnrichment", ctx, "c-1", mock.MatchedBy(func(r entity.EnrichmentResult) bool {
		return r.Source == entity.SourceApollo
	})).Return(nil)

	enricher := newEnrichUC(mockContacts, mockCredits, mockScraper, mockMatcher)
	uc := NewCompleteProfileScrapeUseCase(mockContacts, mockScraper, enricher)

	output, err := uc.Execute(ctx, ProfileScrapeInput{
		ContactID: "c-1", Field: entity.FieldEmail,
		EventType: "ACTOR.RUN.FAILED", RunID: "run-1",
	})

	assert.NoError(t, err)
	assert.True(t, output.OK)
	mockScraper.AssertNotCalled(t, "DatasetItems", mock.Anything, mock.Anything)
	mockMatcher.AssertCalled(t, "MatchEmail", ctx, mock.Anything)
}

// TestScrapeMissingFieldSavesPartialAndFallsBack - Dataset só trouxe o
// outro campo: o parcial é salvo e o pedido cai no fallback.
func TestScrapeMissingFieldSavesPartialAndFallsBack(t *testing.T) {
	ctx := context.Background()
	mockContacts := new(MockContactRepository)
	mockCredits := new(MockCreditRepository)
	mockScraper := new(MockScrapeProvider)
	mockMatcher := new(MockMatchProvider)

	mockContacts.On("FindByID", ctx, "c-1").Return(scrapeContact(), nil)
	mockScraper.On("DatasetItems", ctx, "ds-1").Return([]apify.DatasetItem{
		{"phone": "+5511988880000"},
	}, nil)
	mockContacts.On("SetApifyOutcome", ctx, "c-1", true, false).Return(nil)
	mockContacts.On("SavePartialField", ctx, "c-1", entity.FieldPhone, "+5511988880000").Return(nil)
	mockContacts.On("SetApolloTrail", ctx, "c-1", true, ReasonApifyMiss).Return(nil)
	mockMatcher.On("MatchEmail", ctx, mock.Anything).Return(&apollo.MatchOutput{}, nil)
	mockContacts.On("SaveEnrichment", ctx, "c-1", mock.MatchedBy(func(r entity.EnrichmentResult) bool {
		return r.Status == entity.EnrichmentNotFound
	})).Return(nil)

	enricher := newEnrichUC(mockContacts, mockCredits, mockScraper, mockMatcher)
	uc := NewCompleteProfileScrapeUseCase(mockContacts, mockScraper, enricher)

	output, err := uc.Execute(ctx, ProfileScrapeInput{
		ContactID: "c-1", Field: entity.FieldEmail,
		EventType: "ACTOR.RUN.SUCCEEDED", DatasetID: "ds-1",
	})

	assert.NoError(t, err)
	assert.True(t, output.OK)
	mockContacts.AssertCalled(t, "SavePartialField", ctx, "c-1", entity.FieldPhone, "+5511988880000")
}

// TestScrapeUnknownContactIsSkipped
func TestScrapeUnknownContactIsSkipped(t *testing.T) {
	ctx := context.Background()
	mockContacts := new(MockContactRepository)
	mockScraper := new(MockScrapeProvider)

	mockContacts.On("FindByID", ctx, "c-ghost").Return(nil, nil)

	uc := NewCompleteProfileScrapeUseCase(mockContacts, mockScraper, nil)

	output, err := uc.Execute(ctx, ProfileScrapeInput{
		ContactID: "c-ghost", EventType: "ACTOR.RUN.SUCCEEDED",
	})

	assert.NoError(t, err)
	assert.True(t, output.Skipped)
	mockScraper.AssertNotCalled(t, "DatasetItems", mock.Anything, mock.Anything)
}
