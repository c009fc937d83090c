package apollo

// MatchInput são os identificadores fortes enviados ao people match.
type MatchInput struct {
	FirstName        string
	LastName         string
	OrganizationName string
	Domain           string
}

// MatchOutput é a resposta síncrona do reveal de email.
type MatchOutput struct {
	Email           string
	CandidateEmails []string
}

// FirstEmail devolve o primeiro endereço não vazio da lista de candidatos
// (o campo direto tem precedência).
func (o *MatchOutput) FirstEmail() string {
	if o == nil {
		return ""
	}
	if o.Email != "" {
		return o.Email
	}
	for _, e := range o.CandidateEmails {
		if e != "" {
			return e
		}
	}
	return ""
}

// PhoneNumber é um número dentro do objeto person entregue no callback
// assíncrono do reveal de telefone.
type PhoneNumber struct {
	Type            string `json:"type"` // mobile, work_hq, other...
	SanitizedNumber string `json:"sanitized_number"`
	RawNumber       string `json:"raw_number"`
}

// Person é o objeto entregue fora de banda pelo callback de telefone.
type Person struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	PhoneNumbers []PhoneNumber `json:"phone_numbers"`
}

// PickPhoneNumber escolhe o primeiro número mobile; na falta, o primeiro
// número disponível. Vazio se a lista não trouxe nada aproveitável.
func PickPhoneNumber(numbers []PhoneNumber) string {
	for _, n := range numbers {
		if n.Type == "mobile" && n.SanitizedNumber != "" {
			return n.SanitizedNumber
		}
	}
	for _, n := range numbers {
		if n.SanitizedNumber != "" {
			return n.SanitizedNumber
		}
		if n.RawNumber != "" {
			return n.RawNumber
		}
	}
	return ""
}

// Wire types

type matchRequest struct {
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	OrganizationName    string `json:"organization_name,omitempty"`
	Domain              string `json:"domain,omitempty"`
	RevealPersonalEmail bool   `json:"reveal_personal_emails,omitempty"`
	RevealPhoneNumber   bool   `json:"reveal_phone_number,omitempty"`
	WebhookURL          string `json:"webhook_url,omitempty"`
}

type matchResponse struct {
	Person struct {
		Email          string   `json:"email"`
		PersonalEmails []string `json:"personal_emails"`
	} `json:"person"`
}

// CallbackPayload é o corpo POSTado pelo Apollo na nossa callback URL.
type CallbackPayload struct {
	People []Person `json:"people"`
	Person *Person  `json:"person"`
}

// FirstPerson aceita os dois formatos que o Apollo manda (lista ou objeto).
func (p *CallbackPayload) FirstPerson() *Person {
	if p.Person != nil {
		return p.Person
	}
	if len(p.People) > 0 {
		return &p.People[0]
	}
	return nil
}
