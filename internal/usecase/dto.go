package usecase

import "github.com/xavierca1/prospec-crm/internal/entity"

// Custo fixo de um enriquecimento pago (em créditos do tipo do campo).
const CostPerEnrichment = 1

// Limite do lote e fan-out de chamadas simultâneas a provedor.
const (
	MaxBatchSize     = 100
	BatchConcurrency = 5
)

// Códigos de motivo que voltam no resultado (nunca como panic/erro cru).
const (
	ReasonNoStrongIdentifiers = "no_strong_identifiers"
	ReasonInsufficientCredits = "insufficient_credits"
	ReasonNoLinkedInURL       = "no_linkedin_url"
	ReasonApifyMiss           = "apify_miss"
	ReasonFoundByApify        = "found_by_apify"
)

type EnrichInput struct {
	UserID      string             `json:"user_id"`
	ContactID   string             `json:"contact_id"`
	Field       string             `json:"field"` // email | phone
	Identifiers entity.Identifiers `json:"identifiers"`
}

type EnrichOutput struct {
	Found          bool   `json:"found"`
	Value          string `json:"value,omitempty"`
	Source         string `json:"source,omitempty"` // apify | apollo
	Status         string `json:"status"`           // processing | done | not_found | error
	Reason         string `json:"reason,omitempty"`
	AlreadyChecked bool   `json:"already_checked,omitempty"`
}

type BatchEnrichInput struct {
	UserID     string   `json:"user_id"`
	Field      string   `json:"field"`
	ContactIDs []string `json:"contact_ids"`
}

type BatchEnrichOutput struct {
	// Resultados por contato elegível.
	Results map[string]*EnrichOutput `json:"results"`
	// Contatos pulados no pré-filtro (já têm valor e claim).
	Skipped []string `json:"skipped,omitempty"`
}

type CreateContactInput struct {
	UserID      string `json:"user_id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Title       string `json:"title"`
	LinkedInURL string `json:"linkedin_url"`
}

// IngestOutput é a resposta padrão de todo ingestor de webhook. Webhook
// nunca vê erro nosso: irresolvível vira skipped=true com 200.
type IngestOutput struct {
	OK      bool `json:"ok"`
	Skipped bool `json:"skipped,omitempty"`
}
