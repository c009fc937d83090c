package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/prospec-crm/internal/entity"
)

type ContactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

// Colunas de claim por campo. Whitelist: nada de interpolar input do
// usuário em nome de coluna.
var checkedAtColumn = map[string]string{
	entity.FieldEmail: "email_checked_at",
	entity.FieldPhone: "phone_checked_at",
}

var valueColumn = map[string]string{
	entity.FieldEmail: "email",
	entity.FieldPhone: "phone",
}

func (r *ContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	query := `
		INSERT INTO contacts (
			id, user_id, type, name, company, title, linkedin_url,
			enrichment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.UserID,
		c.Type,
		c.Name,
		nullString(c.Company),
		nullString(c.Title),
		nullString(c.LinkedInURL),
		c.EnrichmentStatus,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao inserir contato: %w", err)
	}
	return nil
}

const contactColumns = `
	id, user_id, type, name,
	COALESCE(company, ''), COALESCE(title, ''), COALESCE(linkedin_url, ''),
	COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(enrichment_source, ''), enrichment_status,
	email_checked_at, phone_checked_at,
	apollo_called, COALESCE(apollo_reason, ''), apify_finished, apify_email_found,
	created_at, updated_at
`

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*entity.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	return scanContact(r.DB.QueryRowContext(ctx, query, id))
}

func (r *ContactRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

// ClaimField é o lock de claim do cascade: escreve o checked_at SOMENTE se
// ainda for NULL. Zero linhas afetadas = outro processo já reivindicou.
// Correto entre processos porque a atomicidade é do UPDATE condicional do
// banco, não de mutex de aplicação.
func (r *ContactRepository) ClaimField(ctx context.Context, contactID, field string) (bool, error) {
	col, ok := checkedAtColumn[field]
	if !ok {
		return false, fmt.Errorf("campo inválido: %s", field)
	}

	query := fmt.Sprintf(`UPDATE contacts SET %s = NOW(), updated_at = NOW() WHERE id = $1 AND %s IS NULL`, col, col)

	res, err := r.DB.ExecContext(ctx, query, contactID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ReleaseClaim solta o lock após falha de provedor. Só este caminho limpa
// o checked_at — miss legítimo (not_found) mantém o claim para sempre.
func (r *ContactRepository) ReleaseClaim(ctx context.Context, contactID, field string) error {
	col, ok := checkedAtColumn[field]
	if !ok {
		return fmt.Errorf("campo inválido: %s", field)
	}

	query := fmt.Sprintf(`UPDATE contacts SET %s = NULL, updated_at = NOW() WHERE id = $1`, col)
	_, err := r.DB.ExecContext(ctx, query, contactID)
	return err
}

func (r *ContactRepository) MarkProcessing(ctx context.Context, contactID string) error {
	query := `UPDATE contacts SET enrichment_status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, contactID, entity.EnrichmentProcessing)
	return err
}

func (r *ContactRepository) SaveEnrichment(ctx context.Context, contactID string, result entity.EnrichmentResult) error {
	col, ok := valueColumn[result.Field]
	if !ok {
		return fmt.Errorf("campo inválido: %s", result.Field)
	}

	query := fmt.Sprintf(`
		UPDATE contacts SET
			%s = COALESCE(NULLIF($2, ''), %s),
			enrichment_source = COALESCE(NULLIF($3, ''), enrichment_source),
			enrichment_status = $4,
			apollo_reason = COALESCE(NULLIF($5, ''), apollo_reason),
			updated_at = NOW()
		WHERE id = $1
	`, col, col)

	_, err := r.DB.ExecContext(ctx, query, contactID, result.Value, result.Source, result.Status, result.Reason)
	return err
}

// SavePartialField grava dado oportunista do outro campo sem mexer em
// status nem source. Só escreve se a coluna ainda estiver vazia.
func (r *ContactRepository) SavePartialField(ctx context.Context, contactID, field, value string) error {
	col, ok := valueColumn[field]
	if !ok {
		return fmt.Errorf("campo inválido: %s", field)
	}

	query := fmt.Sprintf(`UPDATE contacts SET %s = $2, updated_at = NOW() WHERE id = $1 AND (%s IS NULL OR %s = '')`, col, col, col)
	_, err := r.DB.ExecContext(ctx, query, contactID, value)
	return err
}

func (r *ContactRepository) SetApifyOutcome(ctx context.Context, contactID string, finished, emailFound bool) error {
	query := `UPDATE contacts SET apify_finished = $2, apify_email_found = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, contactID, finished, emailFound)
	return err
}

func (r *ContactRepository) SetApolloTrail(ctx context.Context, contactID string, called bool, reason string) error {
	query := `UPDATE contacts SET apollo_called = $2, apollo_reason = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, contactID, called, reason)
	return err
}

// FindByLinkedInHandle resolve o identificador que o provedor de
// mensageria mandou contra as URLs salvas. Containment bidirecional: o
// provedor manda handle pelado e nós guardamos URL completa (e vice-versa).
func (r *ContactRepository) FindByLinkedInHandle(ctx context.Context, userID, handle string) ([]*entity.Contact, error) {
	query := `SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		  AND linkedin_url IS NOT NULL
		  AND (LOWER(linkedin_url) LIKE '%' || $2 || '%' OR $2 LIKE '%' || LOWER(linkedin_url) || '%')`

	rows, err := r.DB.QueryContext(ctx, query, userID, handle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

func (r *ContactRepository) FindByEmail(ctx context.Context, userID, email string) ([]*entity.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 AND LOWER(email) = LOWER($2)`
	rows, err := r.DB.QueryContext(ctx, query, userID, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

// ListStuckProcessing lista contatos presos em processing há mais tempo
// que o limiar. Diagnóstico do sweeper: NUNCA limpa claim daqui.
func (r *ContactRepository) ListStuckProcessing(ctx context.Context, olderThan time.Duration) ([]*entity.Contact, error) {
	query := `SELECT ` + contactColumns + `
		FROM contacts
		WHERE enrichment_status = $1 AND updated_at < NOW() - ($2 * INTERVAL '1 second')`

	rows, err := r.DB.QueryContext(ctx, query, entity.EnrichmentProcessing, int(olderThan.Seconds()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row rowScanner) (*entity.Contact, error) {
	var c entity.Contact
	err := row.Scan(
		&c.ID, &c.UserID, &c.Type, &c.Name,
		&c.Company, &c.Title, &c.LinkedInURL,
		&c.Email, &c.Phone,
		&c.EnrichmentSource, &c.EnrichmentStatus,
		&c.EmailCheckedAt, &c.PhoneCheckedAt,
		&c.ApolloCalled, &c.ApolloReason, &c.ApifyFinished, &c.ApifyEmailFound,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("contato não encontrado: %w", err)
	}
	return &c, nil
}

func scanContacts(rows *sql.Rows) ([]*entity.Contact, error) {
	var contacts []*entity.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
