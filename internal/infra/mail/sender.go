package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

// Templates inline: são emails de operação, não de marketing — sem arquivo
// externo pra deploy esquecer.
const staleEnrichmentTemplate = `
<h2>Enriquecimentos travados em processing</h2>
<p>{{.Count}} contato(s) estão em processing há mais tempo que o limite:</p>
<ul>
{{range .Contacts}}<li>{{.Name}} ({{.ID}}) — campo {{.Field}}</li>
{{end}}</ul>
<p>Nenhum claim foi liberado automaticamente. Investigue o provedor antes de reprocessar.</p>
`

const lowCreditTemplate = `
<h2>Saldo baixo de créditos</h2>
<p>Usuário {{.UserID}} está com {{.Balance}} crédito(s) do tipo {{.CreditType}}.</p>
`

func NewEmailSender(host string, port int, user, password, alertFrom, alertTo string) *EmailSender {
	return &EmailSender{
		Host:      host,
		Port:      port,
		User:      user,
		Password:  password,
		AlertFrom: alertFrom,
		AlertTo:   alertTo,
	}
}

// SendStaleEnrichmentAlert avisa o operador sobre contatos presos em
// processing. O alerta é informativo: o sweep nunca mexe nos claims.
func (s *EmailSender) SendStaleEnrichmentAlert(data StaleEnrichmentData) error {
	subject := fmt.Sprintf("⚠️ %d enriquecimento(s) travados em processing", data.Count)
	return s.sendAlert(subject, staleEnrichmentTemplate, data)
}

func (s *EmailSender) SendLowCreditAlert(data LowCreditData) error {
	subject := fmt.Sprintf("⚠️ Saldo baixo: %s com %d crédito(s) %s", data.UserID, data.Balance, data.CreditType)
	return s.sendAlert(subject, lowCreditTemplate, data)
}

func (s *EmailSender) sendAlert(subject, tmpl string, data interface{}) error {
	t, err := template.New("alert").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("erro ao processar template de alerta: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.AlertFrom)
	m.SetHeader("To", s.AlertTo)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
