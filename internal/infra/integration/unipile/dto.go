package unipile

// SendInput é uma mensagem de saída num canal de mensageria (LinkedIn ou
// WhatsApp), enviada pela conta conectada do usuário.
type SendInput struct {
	AccountID  string // conta conectada que envia
	AttendeeID string // identificador do destinatário no provedor
	Text       string
}

// Eventos crus que o Unipile posta no nosso webhook. O data carrega um
// identificador do PROVEDOR (handle/URN), não o nosso id interno.
type WebhookEvent struct {
	Event string           `json:"event"`
	Data  WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	AccountID  string `json:"account_id"`
	ProviderID string `json:"provider_id"`
	MessageID  string `json:"message_id"`
	ChatID     string `json:"chat_id"`
}

// AccountStatusEvent é o webhook de conexão de conta. O name vem no formato
// composto "{provider}-{userId}".
type AccountStatusEvent struct {
	Status    string `json:"status"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

// Wire types

type sendMessageRequest struct {
	AttendeesIDs []string `json:"attendees_ids"`
	AccountID    string   `json:"account_id"`
	Text         string   `json:"text"`
}

type sendMessageResponse struct {
	MessageID string `json:"message_id"`
	ChatID    string `json:"chat_id"`
}
