package mail

type StaleEnrichmentData struct {
	Count    int
	Contacts []StaleContact
}

type StaleContact struct {
	ID    string
	Name  string
	Field string
}

type LowCreditData struct {
	UserID     string
	CreditType string
	Balance    int
}

type EmailSender struct {
	Host      string
	Port      int
	User      string
	Password  string
	AlertTo   string
	AlertFrom string
}
