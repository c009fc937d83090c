package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/usecase"
)

type CampaignHandler struct {
	SendCampaignUC *usecase.SendCampaignUseCase
	CampaignRepo   entity.CampaignRepositoryInterface
	RecipientRepo  entity.CampaignRecipientRepositoryInterface
	ContactRepo    entity.ContactRepositoryInterface
}

func NewCampaignHandler(
	sendUC *usecase.SendCampaignUseCase,
	campaignRepo entity.CampaignRepositoryInterface,
	recipientRepo entity.CampaignRecipientRepositoryInterface,
	contactRepo entity.ContactRepositoryInterface,
) *CampaignHandler {
	return &CampaignHandler{
		SendCampaignUC: sendUC,
		CampaignRepo:   campaignRepo,
		RecipientRepo:  recipientRepo,
		ContactRepo:    contactRepo,
	}
}

type createCampaignRequest struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	Channel    string   `json:"channel"`
	ContactIDs []string `json:"contact_ids"`
}

// CreateHandler (POST /campaigns) — cria a campanha e materializa um
// destinatário pending por contato. O endereço segue o canal: email usa o
// email do contato, whatsapp usa o telefone, linkedin usa a URL do perfil.
func (h *CampaignHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.Channel == "" {
		http.Error(w, "user_id e channel são obrigatórios", http.StatusBadRequest)
		return
	}

	campaign := entity.NewCampaign(req.UserID, req.Name, req.Channel)
	if err := h.CampaignRepo.Create(r.Context(), campaign); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	contacts, err := h.ContactRepo.FindByIDs(r.Context(), req.ContactIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	created := 0
	for _, contact := range contacts {
		var address string
		switch req.Channel {
		case entity.ChannelEmail:
			address = contact.Email
		case entity.ChannelWhatsApp:
			address = contact.Phone
		default:
			address = contact.LinkedInURL
		}
		if address == "" {
			continue
		}

		recipient := entity.NewCampaignRecipient(campaign.ID, contact.ID, req.UserID, req.Channel, address)
		if err := h.RecipientRepo.Create(r.Context(), recipient); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		created++
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign":   campaign,
		"recipients": created,
	})
}

// SendHandler (POST /campaigns/{id}/send) — enfileira o envio dos pendentes.
func (h *CampaignHandler) SendHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	if campaignID == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}

	var input usecase.SendCampaignInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "JSON inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	input.CampaignID = campaignID

	output, err := h.SendCampaignUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(output)
}

// GetHandler (GET /campaigns/{id}) — agregado com os contadores.
func (h *CampaignHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	if campaignID == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}

	campaign, err := h.CampaignRepo.FindByID(r.Context(), campaignID)
	if err != nil {
		http.Error(w, "campanha não encontrada", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}
