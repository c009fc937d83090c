package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apify"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apollo"
	"github.com/xavierca1/prospec-crm/internal/infra/mail"
	"github.com/xavierca1/prospec-crm/internal/infra/queue"
)

// MockContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContactRepository) FindByID(ctx context.Context, id string) (*entity.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Contact, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Contact), args.Error(1)
}

func (m *MockContactRepository) ClaimField(ctx context.Context, contactID, field string) (bool, error) {
	args := m.Called(ctx, contactID, field)
	return args.Bool(0), args.Error(1)
}

func (m *MockContactRepository) ReleaseClaim(ctx context.Context, contactID, field string) error {
	args := m.Called(ctx, contactID, field)
	return args.Error(0)
}

func (m *MockContactRepository) MarkProcessing(ctx context.Context, contactID string) error {
	args := m.Called(ctx, contactID)
	return args.Error(0)
}

func (m *MockContactRepository) SaveEnrichment(ctx context.Context, contactID string, result entity.EnrichmentResult) error {
	args := m.Called(ctx, contactID, result)
	return args.Error(0)
}

func (m *MockContactRepository) SavePartialField(ctx context.Context, contactID, field, value string) error {
	args := m.Called(ctx, contactID, field, value)
	return args.Error(0)
}

func (m *MockContactRepository) SetApifyOutcome(ctx context.Context, contactID string, finished, emailFound bool) error {
	args := m.Called(ctx, contactID, finished, emailFound)
	return args.Error(0)
}

func (m *MockContactRepository) SetApolloTrail(ctx context.Context, contactID string, called bool, reason string) error {
	args := m.Called(ctx, contactID, called, reason)
	return args.Error(0)
}

func (m *MockContactRepository) FindByLinkedInHandle(ctx context.Context, userID, handle string) ([]*entity.Contact, error) {
	args := m.Called(ctx, userID, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByEmail(ctx context.Context, userID, email string) ([]*entity.Contact, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Contact), args.Error(1)
}

func (m *MockContactRepository) ListStuckProcessing(ctx context.Context, olderThan time.Duration) ([]*entity.Contact, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Contact), args.Error(1)
}

// MockCreditRepository
type MockCreditRepository struct {
	mock.Mock
}

func (m *MockCreditRepository) Deduct(ctx context.Context, userID, creditType string, amount int) (int, error) {
	args := m.Called(ctx, userID, creditType, amount)
	return args.Int(0), args.Error(1)
}

func (m *MockCreditRepository) Balance(ctx context.Context, userID, creditType string) (int, error) {
	args := m.Called(ctx, userID, creditType)
	return args.Int(0), args.Error(1)
}

// MockCampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(ctx context.Context, c *entity.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCampaignRepository) FindByID(ctx context.Context, id string) (*entity.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) IncrementCounter(ctx context.Context, campaignID, counter string, n int) error {
	args := m.Called(ctx, campaignID, counter, n)
	return args.Error(0)
}

// MockRecipientRepository
type MockRecipientRepository struct {
	mock.Mock
}

func (m *MockRecipientRepository) Create(ctx context.Context, r *entity.CampaignRecipient) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecipientRepository) FindByID(ctx context.Context, id string) (*entity.CampaignRecipient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CampaignRecipient), args.Error(1)
}

func (m *MockRecipientRepository) ListPending(ctx context.Context, campaignID string) ([]*entity.CampaignRecipient, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.CampaignRecipient), args.Error(1)
}

func (m *MockRecipientRepository) FindByProviderMessageID(ctx context.Context, providerMessageID string) (*entity.CampaignRecipient, error) {
	args := m.Called(ctx, providerMessageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CampaignRecipient), args.Error(1)
}

func (m *MockRecipientRepository) ListOpenByAddress(ctx context.Context, userID, address string) ([]*entity.CampaignRecipient, error) {
	args := m.Called(ctx, userID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.CampaignRecipient), args.Error(1)
}

func (m *MockRecipientRepository) SetProviderMessageID(ctx context.Context, recipientID, providerMessageID string) error {
	args := m.Called(ctx, recipientID, providerMessageID)
	return args.Error(0)
}

func (m *MockRecipientRepository) Advance(ctx context.Context, recipientID, to string, payload []byte) (int, error) {
	args := m.Called(ctx, recipientID, to, payload)
	return args.Int(0), args.Error(1)
}

func (m *MockRecipientRepository) AdvanceByContact(ctx context.Context, userID, contactID, to string, payload []byte) ([]entity.TransitionCount, error) {
	args := m.Called(ctx, userID, contactID, to, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TransitionCount), args.Error(1)
}

func (m *MockRecipientRepository) SetOverlay(ctx context.Context, recipientID, overlay string, payload []byte) (int, error) {
	args := m.Called(ctx, recipientID, overlay, payload)
	return args.Int(0), args.Error(1)
}

func (m *MockRecipientRepository) SetOverlayByContact(ctx context.Context, userID, contactID, overlay string, payload []byte) ([]entity.TransitionCount, error) {
	args := m.Called(ctx, userID, contactID, overlay, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TransitionCount), args.Error(1)
}

// MockBlocklistRepository
type MockBlocklistRepository struct {
	mock.Mock
}

func (m *MockBlocklistRepository) RegisterBounce(ctx context.Context, userID, email string, hard bool) error {
	args := m.Called(ctx, userID, email, hard)
	return args.Error(0)
}

func (m *MockBlocklistRepository) RegisterSpam(ctx context.Context, userID, email string) error {
	args := m.Called(ctx, userID, email)
	return args.Error(0)
}

func (m *MockBlocklistRepository) IsBlocked(ctx context.Context, userID, email string) (bool, error) {
	args := m.Called(ctx, userID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlocklistRepository) Find(ctx context.Context, userID, email string) (*entity.EmailBlocklistEntry, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EmailBlocklistEntry), args.Error(1)
}

// MockEventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Append(ctx context.Context, e *entity.CanonicalEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockIntegrationRepository
type MockIntegrationRepository struct {
	mock.Mock
}

func (m *MockIntegrationRepository) UpsertStatus(ctx context.Context, userID, provider, accountID, status string) error {
	args := m.Called(ctx, userID, provider, accountID, status)
	return args.Error(0)
}

func (m *MockIntegrationRepository) FindByAccountID(ctx context.Context, accountID string) (*entity.Integration, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Integration), args.Error(1)
}

// MockScrapeProvider
type MockScrapeProvider struct {
	mock.Mock
}

func (m *MockScrapeProvider) FetchProfile(ctx context.Context, profileURL string) (*apify.ProfileData, error) {
	args := m.Called(ctx, profileURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apify.ProfileData), args.Error(1)
}

func (m *MockScrapeProvider) SubmitRun(ctx context.Context, input apify.RunInput) (*apify.RunOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apify.RunOutput), args.Error(1)
}

func (m *MockScrapeProvider) DatasetItems(ctx context.Context, datasetID string) ([]apify.DatasetItem, error) {
	args := m.Called(ctx, datasetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]apify.DatasetItem), args.Error(1)
}

// MockMatchProvider
type MockMatchProvider struct {
	mock.Mock
}

func (m *MockMatchProvider) MatchEmail(ctx context.Context, input apollo.MatchInput) (*apollo.MatchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apollo.MatchOutput), args.Error(1)
}

func (m *MockMatchProvider) MatchPhoneAsync(ctx context.Context, input apollo.MatchInput, callbackURL string) error {
	args := m.Called(ctx, input, callbackURL)
	return args.Error(0)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishDispatch(ctx context.Context, payload queue.DispatchPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockQueueProducer) PublishScrape(ctx context.Context, payload queue.ScrapePayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockCreditAlertSender
type MockCreditAlertSender struct {
	mock.Mock
}

func (m *MockCreditAlertSender) SendLowCreditAlert(data mail.LowCreditData) error {
	args := m.Called(data)
	return args.Error(0)
}
