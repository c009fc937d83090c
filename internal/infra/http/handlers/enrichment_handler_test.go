package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apify"
	"github.com/xavierca1/prospec-crm/internal/usecase"
)

// TestEnrichmentInvalidFieldReturns422 - Erro de domínio vira 422 com código
// legível. O campo é validado antes de qualquer dependência ser tocada.
func TestEnrichmentInvalidFieldReturns422(t *testing.T) {
	handler := NewEnrichmentHandler(
		usecase.NewEnrichContactUseCase(nil, nil, nil, nil, "https://api.example.com"),
		nil,
	)

	body := `{"user_id":"user-1","contact_id":"c-1","field":"cpf"}`
	req := httptest.NewRequest(http.MethodPost, "/enrichments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_field")
}

// TestEnrichmentMalformedJSONReturns400 - Diferente dos webhooks, a API
// interna pode (e deve) devolver 400 para o chamador corrigir o request.
func TestEnrichmentMalformedJSONReturns400(t *testing.T) {
	handler := NewEnrichmentHandler(
		usecase.NewEnrichContactUseCase(nil, nil, nil, nil, "https://api.example.com"),
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/enrichments", strings.NewReader("{quebrado"))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestBatchEnrichmentTooLargeReturns422 - Limite de lote também é erro de
// domínio, nunca 500.
func TestBatchEnrichmentTooLargeReturns422(t *testing.T) {
	handler := NewEnrichmentHandler(nil, usecase.NewBatchEnrichUseCase(nil, nil, nil))

	ids := make([]string, 0, usecase.MaxBatchSize+1)
	for i := 0; i <= usecase.MaxBatchSize; i++ {
		ids = append(ids, "c-x")
	}
	body, _ := json.Marshal(map[string]interface{}{
		"user_id":     "user-1",
		"contact_ids": ids,
		"field":       "email",
	})

	req := httptest.NewRequest(http.MethodPost, "/enrichments/batch", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()

	handler.HandleBatch(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "batch_too_large")
}

// claimErrorRepo força falha de banco no claim; nenhum outro método é tocado.
type claimErrorRepo struct{ entity.ContactRepositoryInterface }

func (claimErrorRepo) ClaimField(ctx context.Context, contactID, field string) (bool, error) {
	return false, errors.New("connection refused")
}

// TestEnrichmentTechnicalErrorReturns500 - Falha de infraestrutura vira 500
// com código estruturado; a causa crua fica fora da resposta.
func TestEnrichmentTechnicalErrorReturns500(t *testing.T) {
	handler := NewEnrichmentHandler(
		usecase.NewEnrichContactUseCase(claimErrorRepo{}, nil, nil, nil, "https://api.example.com"),
		nil,
	)

	body := `{"user_id":"user-1","contact_id":"c-1","field":"email","identifiers":{"first_name":"Maria","last_name":"Souza","company":"Acme"}}`
	req := httptest.NewRequest(http.MethodPost, "/enrichments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "claim_failed")
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

// apifyHitRepo aceita o claim e engole as escritas do caminho do scrape.
type apifyHitRepo struct{ entity.ContactRepositoryInterface }

func (apifyHitRepo) ClaimField(ctx context.Context, contactID, field string) (bool, error) {
	return true, nil
}
func (apifyHitRepo) MarkProcessing(ctx context.Context, contactID string) error          { return nil }
func (apifyHitRepo) SetApifyOutcome(ctx context.Context, id string, f, e bool) error     { return nil }
func (apifyHitRepo) SavePartialField(ctx context.Context, id, field, value string) error { return nil }
func (apifyHitRepo) SaveEnrichment(ctx context.Context, id string, r entity.EnrichmentResult) error {
	return nil
}
func (apifyHitRepo) SetApolloTrail(ctx context.Context, id string, c bool, reason string) error {
	return nil
}

type scraperStub struct{ profile apify.ProfileData }

func (s scraperStub) FetchProfile(ctx context.Context, profileURL string) (*apify.ProfileData, error) {
	p := s.profile
	return &p, nil
}
func (s scraperStub) SubmitRun(ctx context.Context, input apify.RunInput) (*apify.RunOutput, error) {
	return nil, nil
}
func (s scraperStub) DatasetItems(ctx context.Context, datasetID string) ([]apify.DatasetItem, error) {
	return nil, nil
}

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	assert.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			match := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
					break
				}
			}
			if match {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

// TestEnrichmentApifyHitDoesNotCountCredits - Achado pelo scrape grátis não
// cobra crédito, então a métrica de gasto não pode subir.
func TestEnrichmentApifyHitDoesNotCountCredits(t *testing.T) {
	handler := NewEnrichmentHandler(
		usecase.NewEnrichContactUseCase(
			apifyHitRepo{},
			nil,
			scraperStub{profile: apify.ProfileData{Email: "maria.souza@acme.com"}},
			nil,
			"https://api.example.com",
		),
		nil,
	)

	before := counterValue(t, "credits_spent_total", map[string]string{"credit_type": entity.CreditEmail})

	body := `{"user_id":"user-1","contact_id":"c-1","field":"email","identifiers":{"first_name":"Maria","last_name":"Souza","company":"Acme","linkedin_url":"https://linkedin.com/in/maria-souza"}}`
	req := httptest.NewRequest(http.MethodPost, "/enrichments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), entity.SourceApify)

	after := counterValue(t, "credits_spent_total", map[string]string{"credit_type": entity.CreditEmail})
	assert.Equal(t, before, after)
}
