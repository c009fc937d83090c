package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/prospec-crm/internal/entity"
)

type campaignRepoStub struct{ entity.CampaignRepositoryInterface }

func (campaignRepoStub) Create(ctx context.Context, c *entity.Campaign) error { return nil }

type contactFinderStub struct {
	entity.ContactRepositoryInterface
	contacts []*entity.Contact
}

func (s contactFinderStub) FindByIDs(ctx context.Context, ids []string) ([]*entity.Contact, error) {
	return s.contacts, nil
}

type recipientCaptureRepo struct {
	entity.CampaignRecipientRepositoryInterface
	created []*entity.CampaignRecipient
}

func (r *recipientCaptureRepo) Create(ctx context.Context, rec *entity.CampaignRecipient) error {
	r.created = append(r.created, rec)
	return nil
}

// TestCreateCampaignWhatsAppAddressesPhone - Canal whatsapp endereça o
// telefone do contato, mesmo quando há URL de LinkedIn; contato sem telefone
// fica de fora em vez de gerar destinatário inalcançável.
func TestCreateCampaignWhatsAppAddressesPhone(t *testing.T) {
	recipients := &recipientCaptureRepo{}
	handler := NewCampaignHandler(nil, campaignRepoStub{}, recipients, contactFinderStub{
		contacts: []*entity.Contact{
			{ID: "c-1", Phone: "+5511999998888", LinkedInURL: "https://linkedin.com/in/maria-souza"},
			{ID: "c-2", LinkedInURL: "https://linkedin.com/in/joao-prado"},
		},
	})

	body := `{"user_id":"user-1","name":"Follow-up Q3","channel":"whatsapp","contact_ids":["c-1","c-2"]}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateHandler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, recipients.created, 1)
	assert.Equal(t, "c-1", recipients.created[0].ContactID)
	assert.Equal(t, "+5511999998888", recipients.created[0].Address)
	assert.Equal(t, entity.ChannelWhatsApp, recipients.created[0].Channel)
	assert.Contains(t, rec.Body.String(), `"recipients":1`)
}

// TestCreateCampaignLinkedInAddressesProfileURL - Canal linkedin segue
// endereçando a URL do perfil.
func TestCreateCampaignLinkedInAddressesProfileURL(t *testing.T) {
	recipients := &recipientCaptureRepo{}
	handler := NewCampaignHandler(nil, campaignRepoStub{}, recipients, contactFinderStub{
		contacts: []*entity.Contact{
			{ID: "c-1", Phone: "+5511999998888", LinkedInURL: "https://linkedin.com/in/maria-souza"},
		},
	})

	body := `{"user_id":"user-1","name":"Conexões","channel":"linkedin","contact_ids":["c-1"]}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateHandler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, recipients.created, 1)
	assert.Equal(t, "https://linkedin.com/in/maria-souza", recipients.created[0].Address)
}
