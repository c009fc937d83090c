package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

type EventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{DB: db}
}

// Append grava no log canônico. Append-only: nada atualiza ou remove
// eventos depois de gravados.
func (r *EventRepository) Append(ctx context.Context, event *entity.CanonicalEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("erro ao serializar metadata do evento: %w", err)
	}

	query := `
		INSERT INTO campaign_events (id, user_id, contact_id, channel, event_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.DB.ExecContext(ctx, query,
		event.ID, event.UserID, nullString(event.ContactID), event.Channel, event.EventType,
		metadata, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao gravar evento: %w", err)
	}
	return nil
}
