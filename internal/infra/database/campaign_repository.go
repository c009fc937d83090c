package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

type CampaignRepository struct {
	DB *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{DB: db}
}

func (r *CampaignRepository) Create(ctx context.Context, c *entity.Campaign) error {
	query := `
		INSERT INTO campaigns (id, user_id, name, channel, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.UserID, c.Name, c.Channel, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao criar campanha: %w", err)
	}
	return nil
}

func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*entity.Campaign, error) {
	query := `
		SELECT id, user_id, name, channel,
			total_sent, total_delivered, total_opened, total_replied,
			total_failed, total_accepted, total_clicked,
			created_at, updated_at
		FROM campaigns WHERE id = $1
	`

	var c entity.Campaign
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Channel,
		&c.TotalSent, &c.TotalDelivered, &c.TotalOpened, &c.TotalReplied,
		&c.TotalFailed, &c.TotalAccepted, &c.TotalClicked,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("campanha não encontrada: %w", err)
	}
	return &c, nil
}

// Whitelist de contadores — o nome da coluna nunca vem de payload.
var counterColumn = map[string]bool{
	entity.CounterSent:      true,
	entity.CounterDelivered: true,
	entity.CounterOpened:    true,
	entity.CounterReplied:   true,
	entity.CounterFailed:    true,
	entity.CounterAccepted:  true,
	entity.CounterClicked:   true,
}

// IncrementCounter soma n ao contador do agregado. n vem SEMPRE da
// contagem de linhas que a transição desta chamada afetou, nunca do
// payload do provedor — é isso que mantém os contadores monotônicos e sem
// dupla contagem sob replay.
func (r *CampaignRepository) IncrementCounter(ctx context.Context, campaignID, counter string, n int) error {
	if !counterColumn[counter] {
		return fmt.Errorf("contador inválido: %s", counter)
	}
	if n <= 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE campaigns SET %s = %s + $2, updated_at = NOW() WHERE id = $1`, counter, counter)
	_, err := r.DB.ExecContext(ctx, query, campaignID, n)
	return err
}
