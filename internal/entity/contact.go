package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!
)

// Tipos de contato salvos numa lista
const (
	ContactTypeLead    = "lead"
	ContactTypeAccount = "account"
)

// Status do ciclo de enriquecimento
const (
	EnrichmentNone       = "none"
	EnrichmentProcessing = "processing"
	EnrichmentDone       = "done"
	EnrichmentNotFound   = "not_found"
	EnrichmentError      = "error"
)

// Origem do dado enriquecido
const (
	SourceApify  = "apify"
	SourceApollo = "apollo"
)

// Campos alvo do cascade de enriquecimento
const (
	FieldEmail = "email"
	FieldPhone = "phone"
)

// Value Object: Identifiers
// Par de identificadores fortes exigido antes de gastar chamada paga:
// (nome + sobrenome) E (empresa OU domínio).
type Identifiers struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company"`
	Domain      string `json:"domain"`
	LinkedInURL string `json:"linkedin_url"`
}

func (i Identifiers) Strong() bool {
	if strings.TrimSpace(i.FirstName) == "" || strings.TrimSpace(i.LastName) == "" {
		return false
	}
	return strings.TrimSpace(i.Company) != "" || strings.TrimSpace(i.Domain) != ""
}

// Entidade: Contact (um registro por prospect salvo numa lista)
type Contact struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Type        string `json:"type"` // lead | account
	Name        string `json:"name"`
	Company     string `json:"company"`
	Title       string `json:"title"`
	LinkedInURL string `json:"linkedin_url,omitempty"`

	// Saídas do enriquecimento
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	EnrichmentSource string `json:"enrichment_source,omitempty"` // apify | apollo
	EnrichmentStatus string `json:"enrichment_status"`

	// Guardas de processamento: escritas UMA única vez, no momento em que
	// o cascade do campo é reivindicado. Funcionam como lock de escritor
	// único e marcador de "nunca reprocessar".
	EmailCheckedAt *time.Time `json:"email_checked_at,omitempty"`
	PhoneCheckedAt *time.Time `json:"phone_checked_at,omitempty"`

	// Trilha de diagnóstico
	ApolloCalled    bool   `json:"apollo_called"`
	ApolloReason    string `json:"apollo_reason,omitempty"`
	ApifyFinished   bool   `json:"apify_finished"`
	ApifyEmailFound bool   `json:"apify_email_found"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewContact(userID, contactType, name, company, title, linkedinURL string) (*Contact, error) {
	contact := &Contact{
		ID:               uuid.New().String(),
		UserID:           userID,
		Type:             contactType,
		Name:             name,
		Company:          company,
		Title:            title,
		LinkedInURL:      linkedinURL,
		EnrichmentStatus: EnrichmentNone,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := contact.Validate(); err != nil {
		return nil, err
	}

	return contact, nil
}

func (c *Contact) Validate() error {
	if c.UserID == "" {
		return errors.New("user_id is required")
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Type != ContactTypeLead && c.Type != ContactTypeAccount {
		return errors.New("type must be lead or account")
	}
	return nil
}

// FieldValue retorna o valor atual do campo de enriquecimento pedido.
func (c *Contact) FieldValue(field string) string {
	if field == FieldPhone {
		return c.Phone
	}
	return c.Email
}

// CheckedAt retorna o timestamp de claim do campo pedido.
func (c *Contact) CheckedAt(field string) *time.Time {
	if field == FieldPhone {
		return c.PhoneCheckedAt
	}
	return c.EmailCheckedAt
}

// IdentifiersFromContact monta os identificadores a partir do registro salvo.
// O nome completo é quebrado em primeiro nome + resto.
func IdentifiersFromContact(c *Contact) Identifiers {
	first, last := splitName(c.Name)
	return Identifiers{
		FirstName:   first,
		LastName:    last,
		Company:     c.Company,
		LinkedInURL: c.LinkedInURL,
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// EnrichmentResult é o desfecho persistido de um cascade.
type EnrichmentResult struct {
	Field  string
	Value  string
	Source string
	Status string
	Reason string
}

type ContactRepositoryInterface interface {
	Create(ctx context.Context, c *Contact) error
	FindByID(ctx context.Context, id string) (*Contact, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Contact, error)

	// ClaimField é o lock de claim: UPDATE condicional que seta
	// {field}_checked_at somente se ainda for NULL. Retorna false se outro
	// chamador já reivindicou (ou completou) o campo.
	ClaimField(ctx context.Context, contactID, field string) (bool, error)

	// ReleaseClaim limpa o claim após falha de provedor, para o campo não
	// ficar travado para sempre por flakiness alheia.
	ReleaseClaim(ctx context.Context, contactID, field string) error

	MarkProcessing(ctx context.Context, contactID string) error
	SaveEnrichment(ctx context.Context, contactID string, result EnrichmentResult) error

	// SavePartialField grava oportunisticamente o outro campo quando o
	// scrape trouxe dado extra. Só escreve se a coluna estiver vazia.
	SavePartialField(ctx context.Context, contactID, field, value string) error

	SetApifyOutcome(ctx context.Context, contactID string, finished, emailFound bool) error
	SetApolloTrail(ctx context.Context, contactID string, called bool, reason string) error

	// FindByLinkedInHandle resolve o identificador do provedor de mensageria
	// contra as URLs salvas (containment bidirecional, ver webhook Unipile).
	FindByLinkedInHandle(ctx context.Context, userID, handle string) ([]*Contact, error)
	FindByEmail(ctx context.Context, userID, email string) ([]*Contact, error)

	ListStuckProcessing(ctx context.Context, olderThan time.Duration) ([]*Contact, error)
}
