package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/xavierca1/prospec-crm/internal/infra/http/middleware"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apollo"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/resend"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/unipile"
	"github.com/xavierca1/prospec-crm/internal/usecase"
)

// WebhookHandler recebe todos os callbacks externos. Contrato único: SEMPRE
// responder 200 — erro 4xx/5xx faz o provedor re-entregar ou desabilitar o
// endpoint. Evento que não dá pra resolver é reconhecido e descartado com
// {ok:true, skipped:true}.
type WebhookHandler struct {
	ProfileScrapeUC *usecase.CompleteProfileScrapeUseCase
	PhoneMatchUC    *usecase.CompletePhoneMatchUseCase
	MessagingUC     *usecase.IngestMessagingEventUseCase
	EmailUC         *usecase.IngestEmailEventUseCase
	IntegrationUC   *usecase.UpdateIntegrationStatusUseCase
}

func NewWebhookHandler(
	profileScrapeUC *usecase.CompleteProfileScrapeUseCase,
	phoneMatchUC *usecase.CompletePhoneMatchUseCase,
	messagingUC *usecase.IngestMessagingEventUseCase,
	emailUC *usecase.IngestEmailEventUseCase,
	integrationUC *usecase.UpdateIntegrationStatusUseCase,
) *WebhookHandler {
	return &WebhookHandler{
		ProfileScrapeUC: profileScrapeUC,
		PhoneMatchUC:    phoneMatchUC,
		MessagingUC:     messagingUC,
		EmailUC:         emailUC,
		IntegrationUC:   integrationUC,
	}
}

// HandleApify (POST /webhooks/apify?itemId=&field=)
// Conclusão de run de scrape de perfil.
func (h *WebhookHandler) HandleApify(w http.ResponseWriter, r *http.Request) {
	var event struct {
		EventType string `json:"eventType"`
		Resource  struct {
			ID               string `json:"id"`
			DefaultDatasetID string `json:"defaultDatasetId"`
		} `json:"resource"`
	}

	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Printf("⚠️ [APIFY-HOOK] Payload ilegível: %v", err)
		writeAck(w, true)
		return
	}

	middleware.RecordWebhookEvent("apify", event.EventType)

	output, err := h.ProfileScrapeUC.Execute(r.Context(), usecase.ProfileScrapeInput{
		ContactID: r.URL.Query().Get("itemId"),
		Field:     r.URL.Query().Get("field"),
		EventType: event.EventType,
		RunID:     event.Resource.ID,
		DatasetID: event.Resource.DefaultDatasetID,
	})
	if err != nil {
		log.Printf("❌ [APIFY-HOOK] Erro: %v", err)
		writeAck(w, true)
		return
	}

	writeIngestAck(w, output)
}

// HandleApollo (POST /webhooks/apollo?itemId=&field=&searchType=)
// Callback assíncrona da busca de telefone.
func (h *WebhookHandler) HandleApollo(w http.ResponseWriter, r *http.Request) {
	var payload apollo.CallbackPayload

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("⚠️ [APOLLO-HOOK] Payload ilegível: %v", err)
		writeAck(w, true)
		return
	}

	middleware.RecordWebhookEvent("apollo", r.URL.Query().Get("searchType"))

	output, err := h.PhoneMatchUC.Execute(r.Context(), usecase.PhoneMatchInput{
		ContactID:  r.URL.Query().Get("itemId"),
		SearchType: r.URL.Query().Get("searchType"),
		Person:     payload.FirstPerson(),
	})
	if err != nil {
		log.Printf("❌ [APOLLO-HOOK] Erro: %v", err)
		writeAck(w, true)
		return
	}

	writeIngestAck(w, output)
}

// HandleMessaging (POST /webhooks/messaging)
// Eventos de entrega/leitura/resposta dos canais LinkedIn e WhatsApp.
func (h *WebhookHandler) HandleMessaging(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeAck(w, true)
		return
	}

	var event unipile.WebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		log.Printf("⚠️ [MSG-HOOK] Payload ilegível: %v", err)
		writeAck(w, true)
		return
	}

	middleware.RecordWebhookEvent("unipile", event.Event)

	output, err := h.MessagingUC.Execute(r.Context(), usecase.MessagingEventInput{
		AccountID:  event.Data.AccountID,
		Event:      event.Event,
		ProviderID: event.Data.ProviderID,
		RawPayload: raw,
	})
	if err != nil {
		log.Printf("❌ [MSG-HOOK] Erro: %v", err)
		writeAck(w, true)
		return
	}

	writeIngestAck(w, output)
}

// HandleEmail (POST /webhooks/email?userId=)
// Eventos do provedor de email transacional.
func (h *WebhookHandler) HandleEmail(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeAck(w, true)
		return
	}

	var event resend.WebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		log.Printf("⚠️ [EMAIL-HOOK] Payload ilegível: %v", err)
		writeAck(w, true)
		return
	}

	middleware.RecordWebhookEvent("resend", event.Type)

	output, err := h.EmailUC.Execute(r.Context(), usecase.EmailEventInput{
		UserID:     r.URL.Query().Get("userId"),
		Type:       event.Type,
		EmailID:    event.Data.EmailID,
		To:         event.Data.To,
		HardBounce: event.Data.IsHardBounce(),
		RawPayload: raw,
	})
	if err != nil {
		log.Printf("❌ [EMAIL-HOOK] Erro: %v", err)
		writeAck(w, true)
		return
	}

	writeIngestAck(w, output)
}

// HandleAccountStatus (POST /webhooks/accounts)
// Ciclo de vida das contas conectadas (criada, desconectada, expirada).
func (h *WebhookHandler) HandleAccountStatus(w http.ResponseWriter, r *http.Request) {
	var event unipile.AccountStatusEvent

	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Printf("⚠️ [ACCOUNT-HOOK] Payload ilegível: %v", err)
		writeAck(w, true)
		return
	}

	middleware.RecordWebhookEvent("unipile", "account_status")

	output, err := h.IntegrationUC.Execute(r.Context(), usecase.AccountStatusInput{
		Name:      event.Name,
		AccountID: event.AccountID,
		Status:    event.Status,
	})
	if err != nil {
		log.Printf("❌ [ACCOUNT-HOOK] Erro: %v", err)
		writeAck(w, true)
		return
	}

	writeIngestAck(w, output)
}

func writeAck(w http.ResponseWriter, skipped bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if skipped {
		json.NewEncoder(w).Encode(map[string]bool{"ok": true, "skipped": true})
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func writeIngestAck(w http.ResponseWriter, output *usecase.IngestOutput) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(output)
}
