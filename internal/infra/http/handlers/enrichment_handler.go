package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/http/middleware"
	"github.com/xavierca1/prospec-crm/internal/usecase"
)

type EnrichmentHandler struct {
	EnrichUC *usecase.EnrichContactUseCase
	BatchUC  *usecase.BatchEnrichUseCase
}

func NewEnrichmentHandler(enrichUC *usecase.EnrichContactUseCase, batchUC *usecase.BatchEnrichUseCase) *EnrichmentHandler {
	return &EnrichmentHandler{
		EnrichUC: enrichUC,
		BatchUC:  batchUC,
	}
}

// Handle (POST /enrichments) — enriquece um único contato.
func (h *EnrichmentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.EnrichInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "JSON inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	output, err := h.EnrichUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordEnrichment(input.Field, output.Source, output.Status)
	// Só o fallback pago debita crédito; achado via scrape não conta gasto.
	if output.Found && output.Source == entity.SourceApollo {
		middleware.RecordCreditsSpent(entity.CreditTypeForField(input.Field), usecase.CostPerEnrichment)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(output)
}

// HandleBatch (POST /enrichments/batch) — enriquece até 100 contatos.
func (h *EnrichmentHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var input usecase.BatchEnrichInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "JSON inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	output, err := h.BatchUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(output)
}

// Erros de domínio viram 422 com código legível; falha técnica vira 500
// com o mesmo formato (a causa crua fica só no log, nunca na resposta).
func writeUseCaseError(w http.ResponseWriter, err error) {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    domainErr.Code,
			"message": domainErr.Message,
		})
		return
	}

	var techErr *usecase.TechnicalError
	if errors.As(err, &techErr) {
		log.Printf("❌ [HTTP] Falha técnica (%s): %v", techErr.Code, techErr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    techErr.Code,
			"message": techErr.Message,
		})
		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}
