package apify

// Status terminais de um run do Apify
const (
	RunSucceeded = "SUCCEEDED"
	RunFailed    = "FAILED"
	RunAborted   = "ABORTED"
	RunTimedOut  = "TIMED-OUT"
	RunRunning   = "RUNNING"
	RunReady     = "READY"
)

// IsTerminal informa se o run parou de rodar (sucesso ou não).
func IsTerminal(status string) bool {
	switch status {
	case RunSucceeded, RunFailed, RunAborted, RunTimedOut:
		return true
	}
	return false
}

type RunInput struct {
	ProfileURL string
	// WebhookURL opcional: se preenchida, o Apify nos chama de volta no
	// fim do run em vez de dependermos só do polling.
	WebhookURL string
}

type RunOutput struct {
	RunID     string
	DatasetID string
	Status    string
}

// DatasetItem é um item cru do dataset. O schema do scraper NÃO é estável
// entre atores/versões, então a extração vai por lista ordenada de
// sinônimos de chave, nunca por acesso direto.
type DatasetItem map[string]interface{}

// Listas ordenadas de sinônimos por campo. A ordem importa: a primeira
// chave presente com valor não vazio vence.
var (
	emailKeys = []string{"email", "workEmail", "email_address", "contactEmail", "emails"}
	phoneKeys = []string{"mobileNumber", "phone", "phoneNumber", "phone_number", "phones"}

	nameKeys     = []string{"fullName", "name", "full_name"}
	titleKeys    = []string{"headline", "title", "jobTitle", "position"}
	companyKeys  = []string{"companyName", "company", "organization"}
	locationKeys = []string{"location", "addressWithCountry", "city"}
	photoKeys    = []string{"profilePic", "photoUrl", "pictureUrl", "avatar"}
)

// ProfileData é o perfil normalizado extraído de um item do dataset.
type ProfileData struct {
	Email    string
	Phone    string
	Name     string
	Title    string
	Company  string
	Location string
	PhotoURL string
}

func ExtractEmail(item DatasetItem) string {
	return extractFirst(item, emailKeys)
}

func ExtractPhone(item DatasetItem) string {
	return extractFirst(item, phoneKeys)
}

// ExtractProfile normaliza um item cru num ProfileData.
func ExtractProfile(item DatasetItem) *ProfileData {
	return &ProfileData{
		Email:    extractFirst(item, emailKeys),
		Phone:    extractFirst(item, phoneKeys),
		Name:     extractFirst(item, nameKeys),
		Title:    extractFirst(item, titleKeys),
		Company:  extractFirst(item, companyKeys),
		Location: extractFirst(item, locationKeys),
		PhotoURL: extractFirst(item, photoKeys),
	}
}

// extractFirst percorre a lista de sinônimos e devolve o primeiro valor
// não vazio. Valores podem vir como string ou como lista (pega o primeiro
// elemento string da lista).
func extractFirst(item DatasetItem, keys []string) string {
	for _, k := range keys {
		v, ok := item[k]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case []interface{}:
			for _, el := range val {
				if s, ok := el.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// Wire types da API do Apify

type runResponse struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

type runRequest struct {
	ProfileURLs []string `json:"profileUrls"`
}
