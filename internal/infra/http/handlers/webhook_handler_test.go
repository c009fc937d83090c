package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/usecase"
)

type MockIntegrationRepository struct{ mock.Mock }

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

// TestWebhooksMalformedJSONAlwaysAck - Contrato dos webhooks: payload
// ilegível NUNCA vira 4xx/5xx (o provedor re-entregaria ou desabilitaria o
// endpoint). Responde 200 com skipped. Nenhum usecase é tocado, então o
// handler pode ser construído vazio.
func TestWebhooksMalformedJSONAlwaysAck(t *testing.T) {
	handler := NewWebhookHandler(nil, nil, nil, nil, nil)

	routes := map[string]http.HandlerFunc{
		"/webhooks/apify":     handler.HandleApify,
		"/webhooks/apollo":    handler.HandleApollo,
		"/webhooks/messaging": handler.HandleMessaging,
		"/webhooks/email":     handler.HandleEmail,
		"/webhooks/accounts":  handler.HandleAccountStatus,
	}

	for path, fn := range routes {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{nao é json"))
		rec := httptest.NewRecorder()

		fn(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "rota: %s", path)
		assert.JSONEq(t, `{"ok":true,"skipped":true}`, rec.Body.String(), "rota: %s", path)
	}
}

// TestAccountStatusWebhookConnects - Caminho completo: evento de conta
// criada atualiza a integração do usuário decodificado do name composto.
func TestAccountStatusWebhookConnects(t *testing.T) {
	mockIntegrations := new(MockIntegrationRepository)
	mockIntegrations.On("UpsertStatus", mock.Anything,
		"3f1e2d00-aaaa-bbbb-cccc-000011112222", entity.ProviderLinkedIn, "acc-77", entity.IntegrationConnected,
	).Return(nil)

	handler := NewWebhookHandler(nil, nil, nil, nil, usecase.NewUpdateIntegrationStatusUseCase(mockIntegrations))

	body := `{"status":"connected","account_id":"acc-77","name":"linkedin-3f1e2d00-aaaa-bbbb-cccc-000011112222"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/accounts", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleAccountStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	mockIntegrations.AssertExpectations(t)
}

// TestAccountStatusWebhookBadNameIsSkipped - Name fora do formato
// {provider}-{userId} é reconhecido e descartado, nunca erro HTTP.
func TestAccountStatusWebhookBadNameIsSkipped(t *testing.T) {
	mockIntegrations := new(MockIntegrationRepository)

	handler := NewWebhookHandler(nil, nil, nil, nil, usecase.NewUpdateIntegrationStatusUseCase(mockIntegrations))

	body := `{"status":"connected","account_id":"acc-77","name":"semformato"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/accounts", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleAccountStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"skipped":true}`, rec.Body.String())
	mockIntegrations.AssertNotCalled(t, "UpsertStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
