package resend

// SendInput é um email de campanha de saída.
type SendInput struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// WebhookEvent é o evento cru postado pelo Resend. O tipo é mapeado para o
// evento canônico por uma tabela fixa no usecase de ingestão; tipos fora da
// tabela são reconhecidos e descartados.
type WebhookEvent struct {
	Type      string           `json:"type"` // email.sent, email.delivered, ...
	CreatedAt string           `json:"created_at"`
	Data      WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	EmailID string   `json:"email_id"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Bounce  *Bounce  `json:"bounce,omitempty"`
}

type Bounce struct {
	// "Permanent" = hard bounce; "Transient" = soft.
	Type string `json:"type"`
}

// IsHardBounce: sem informação de tipo tratamos como soft, que é o lado
// conservador (não bloqueia o endereço de primeira).
func (d WebhookEventData) IsHardBounce() bool {
	return d.Bounce != nil && d.Bounce.Type == "Permanent"
}

// Wire types

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendEmailResponse struct {
	ID string `json:"id"`
}
