package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/xavierca1/prospec-crm/internal/entity"
)

type CampaignRecipientRepository struct {
	DB *sql.DB
}

func NewCampaignRecipientRepository(db *sql.DB) *CampaignRecipientRepository {
	return &CampaignRecipientRepository{DB: db}
}

// Coluna de timestamp escrita em cada transição de status base.
var statusTimestampColumn = map[string]string{
	entity.RecipientSent:      "sent_at",
	entity.RecipientDelivered: "delivered_at",
	entity.RecipientFailed:    "failed_at",
	entity.RecipientBounced:   "failed_at",
	entity.RecipientAccepted:  "accepted_at",
	entity.RecipientReplied:   "replied_at",
}

// Colunas de overlay (primeira escrita vence).
var overlayColumn = map[string]string{
	entity.OverlayOpened:   "opened_at",
	entity.OverlayClicked:  "clicked_at",
	entity.OverlayReplied:  "replied_at",
	entity.OverlayAccepted: "accepted_at",
}

func (r *CampaignRecipientRepository) Create(ctx context.Context, rec *entity.CampaignRecipient) error {
	query := `
		INSERT INTO campaign_recipients (
			id, campaign_id, contact_id, user_id, channel, address, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID, rec.CampaignID, rec.ContactID, rec.UserID, rec.Channel, rec.Address, rec.Status,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao criar destinatário: %w", err)
	}
	return nil
}

const recipientColumns = `
	id, campaign_id, contact_id, user_id, channel, address, status,
	sent_at, delivered_at, opened_at, replied_at, failed_at, accepted_at, clicked_at,
	COALESCE(provider_message_id, ''), created_at, updated_at
`

func (r *CampaignRecipientRepository) FindByID(ctx context.Context, id string) (*entity.CampaignRecipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM campaign_recipients WHERE id = $1`
	return scanRecipient(r.DB.QueryRowContext(ctx, query, id))
}

func (r *CampaignRecipientRepository) ListPending(ctx context.Context, campaignID string) ([]*entity.CampaignRecipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM campaign_recipients WHERE campaign_id = $1 AND status = $2`
	rows, err := r.DB.QueryContext(ctx, query, campaignID, entity.RecipientPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecipients(rows)
}

// FindByProviderMessageID é a resolução autoritativa do webhook de email.
// Ausência não é erro: o chamador cai pro match por endereço.
func (r *CampaignRecipientRepository) FindByProviderMessageID(ctx context.Context, providerMessageID string) (*entity.CampaignRecipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM campaign_recipients WHERE provider_message_id = $1`
	rec, err := scanRecipient(r.DB.QueryRowContext(ctx, query, providerMessageID))
	if err != nil {
		return nil, nil
	}
	return rec, nil
}

func (r *CampaignRecipientRepository) ListOpenByAddress(ctx context.Context, userID, address string) ([]*entity.CampaignRecipient, error) {
	query := `SELECT ` + recipientColumns + `
		FROM campaign_recipients
		WHERE user_id = $1 AND LOWER(address) = LOWER($2)
		  AND status NOT IN ($3, $4)`

	rows, err := r.DB.QueryContext(ctx, query, userID, address, entity.RecipientFailed, entity.RecipientBounced)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecipients(rows)
}

func (r *CampaignRecipientRepository) SetProviderMessageID(ctx context.Context, recipientID, providerMessageID string) error {
	query := `UPDATE campaign_recipients SET provider_message_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, recipientID, providerMessageID)
	return err
}

// Advance move o status base para frente, guardado pelos estados
// anteriores permitidos do reticulado. Replay do mesmo webhook não acha a
// linha no estado anterior e afeta zero linhas — e zero linhas significa
// zero nos contadores.
func (r *CampaignRecipientRepository) Advance(ctx context.Context, recipientID, to string, payload []byte) (int, error) {
	col, ok := statusTimestampColumn[to]
	if !ok {
		return 0, fmt.Errorf("status inválido: %s", to)
	}
	priors := entity.AllowedPrior(to)

	query := fmt.Sprintf(`
		UPDATE campaign_recipients SET
			status = $1,
			%s = NOW(),
			last_payload = COALESCE($2, last_payload),
			updated_at = NOW()
		WHERE id = $3 AND status = ANY($4)
	`, col)

	res, err := r.DB.ExecContext(ctx, query, to, payload, recipientID, pq.Array(priors))
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

// AdvanceByContact transiciona todos os destinatários abertos do contato
// (o webhook de mensageria não conhece o recipient). RETURNING agrupa a
// contagem por campanha para alimentar os contadores certos.
func (r *CampaignRecipientRepository) AdvanceByContact(ctx context.Context, userID, contactID, to string, payload []byte) ([]entity.TransitionCount, error) {
	col, ok := statusTimestampColumn[to]
	if !ok {
		return nil, fmt.Errorf("status inválido: %s", to)
	}
	priors := entity.AllowedPrior(to)

	query := fmt.Sprintf(`
		UPDATE campaign_recipients SET
			status = $1,
			%s = NOW(),
			last_payload = COALESCE($2, last_payload),
			updated_at = NOW()
		WHERE user_id = $3 AND contact_id = $4 AND status = ANY($5)
		RETURNING campaign_id
	`, col)

	rows, err := r.DB.QueryContext(ctx, query, to, payload, userID, contactID, pq.Array(priors))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return countByCampaign(rows)
}

// SetOverlay escreve o timestamp do overlay SOMENTE se ainda for NULL.
// Primeira ocorrência vence: open repetido afeta zero linhas e não
// re-incrementa contador. O status base não é tocado — overlay coexiste.
func (r *CampaignRecipientRepository) SetOverlay(ctx context.Context, recipientID, overlay string, payload []byte) (int, error) {
	col, ok := overlayColumn[overlay]
	if !ok {
		return 0, fmt.Errorf("overlay inválido: %s", overlay)
	}

	query := fmt.Sprintf(`
		UPDATE campaign_recipients SET
			%s = NOW(),
			last_payload = COALESCE($1, last_payload),
			updated_at = NOW()
		WHERE id = $2 AND %s IS NULL
	`, col, col)

	res, err := r.DB.ExecContext(ctx, query, payload, recipientID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

func (r *CampaignRecipientRepository) SetOverlayByContact(ctx context.Context, userID, contactID, overlay string, payload []byte) ([]entity.TransitionCount, error) {
	col, ok := overlayColumn[overlay]
	if !ok {
		return nil, fmt.Errorf("overlay inválido: %s", overlay)
	}

	query := fmt.Sprintf(`
		UPDATE campaign_recipients SET
			%s = NOW(),
			last_payload = COALESCE($1, last_payload),
			updated_at = NOW()
		WHERE user_id = $2 AND contact_id = $3 AND %s IS NULL
		  AND status NOT IN ($4, $5)
		RETURNING campaign_id
	`, col, col)

	rows, err := r.DB.QueryContext(ctx, query, payload, userID, contactID, entity.RecipientPending, entity.RecipientFailed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return countByCampaign(rows)
}

func countByCampaign(rows *sql.Rows) ([]entity.TransitionCount, error) {
	counts := map[string]int{}
	var order []string
	for rows.Next() {
		var campaignID string
		if err := rows.Scan(&campaignID); err != nil {
			return nil, err
		}
		if _, seen := counts[campaignID]; !seen {
			order = append(order, campaignID)
		}
		counts[campaignID]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]entity.TransitionCount, 0, len(order))
	for _, id := range order {
		result = append(result, entity.TransitionCount{CampaignID: id, Rows: counts[id]})
	}
	return result, nil
}

func scanRecipient(row rowScanner) (*entity.CampaignRecipient, error) {
	var rec entity.CampaignRecipient
	err := row.Scan(
		&rec.ID, &rec.CampaignID, &rec.ContactID, &rec.UserID, &rec.Channel, &rec.Address, &rec.Status,
		&rec.SentAt, &rec.DeliveredAt, &rec.OpenedAt, &rec.RepliedAt, &rec.FailedAt, &rec.AcceptedAt, &rec.ClickedAt,
		&rec.ProviderMessageID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("destinatário não encontrado: %w", err)
	}
	return &rec, nil
}

func scanRecipients(rows *sql.Rows) ([]*entity.CampaignRecipient, error) {
	var recipients []*entity.CampaignRecipient
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}
