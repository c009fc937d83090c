package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/mail"
)

// AlertSender é o contrato do aviso pro operador.
type AlertSender interface {
	SendStaleEnrichmentAlert(data mail.StaleEnrichmentData) error
}

// StaleEnrichmentWorker varre contatos presos em processing (webhook do
// provedor nunca chegou). Só OBSERVA e avisa: claims nunca são liberados
// aqui — liberar claim de quem ainda pode receber callback duplicaria
// chamada paga de provedor.
type StaleEnrichmentWorker struct {
	contacts     entity.ContactRepositoryInterface
	alerts       AlertSender
	staleWindow  time.Duration
	tickInterval time.Duration

	// Evita re-alertar o mesmo contato a cada tick.
	alerted map[string]bool
}

func NewStaleEnrichmentWorker(contacts entity.ContactRepositoryInterface, alerts AlertSender) *StaleEnrichmentWorker {
	return &StaleEnrichmentWorker{
		contacts:     contacts,
		alerts:       alerts,
		staleWindow:  30 * time.Minute,
		tickInterval: 5 * time.Minute,
		alerted:      make(map[string]bool),
	}
}

func (w *StaleEnrichmentWorker) Start(ctx context.Context) {
	log.Println("🕒 Stale Enrichment Worker iniciado (30min window)")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Stale Enrichment Worker encerrado")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *StaleEnrichmentWorker) sweep(ctx context.Context) {
	stuck, err := w.contacts.ListStuckProcessing(ctx, w.staleWindow)
	if err != nil {
		log.Printf("❌ Erro ao buscar enriquecimentos travados: %v", err)
		return
	}

	var fresh []mail.StaleContact
	for _, contact := range stuck {
		if w.alerted[contact.ID] {
			continue
		}
		w.alerted[contact.ID] = true

		field := entity.FieldEmail
		if contact.PhoneCheckedAt != nil && contact.EmailCheckedAt == nil {
			field = entity.FieldPhone
		}

		log.Printf("⏱️ Enriquecimento travado: contact=%s field=%s", contact.ID, field)
		fresh = append(fresh, mail.StaleContact{
			ID:    contact.ID,
			Name:  contact.Name,
			Field: field,
		})
	}

	if len(fresh) == 0 {
		return
	}

	if w.alerts != nil {
		if err := w.alerts.SendStaleEnrichmentAlert(mail.StaleEnrichmentData{
			Count:    len(fresh),
			Contacts: fresh,
		}); err != nil {
			log.Printf("⚠️ Erro ao enviar alerta de travados: %v", err)
		}
	}

	log.Printf("✅ %d enriquecimento(s) travados reportados", len(fresh))
}
