package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/usecase"
)

type ContactHandler struct {
	CreateContactUC *usecase.CreateContactUseCase
	ContactRepo     entity.ContactRepositoryInterface
}

func NewContactHandler(createUC *usecase.CreateContactUseCase, contactRepo entity.ContactRepositoryInterface) *ContactHandler {
	return &ContactHandler{
		CreateContactUC: createUC,
		ContactRepo:     contactRepo,
	}
}

// Handle (POST /contacts) — salva um contato na lista. Se tiver URL de
// LinkedIn, o scrape de perfil entra na fila em background.
func (h *ContactHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateContactInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "JSON inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	output, err := h.CreateContactUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(output)
}

// GetHandler (GET /contacts/{id})
func (h *ContactHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "id")
	if contactID == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}

	contact, err := h.ContactRepo.FindByID(r.Context(), contactID)
	if err != nil {
		http.Error(w, "contato não encontrado", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contact)
}
