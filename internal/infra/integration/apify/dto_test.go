package apify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExtractFirstSynonymOrder - A primeira chave presente da lista de
// sinônimos vence, mesmo que outra venha depois no item.
func TestExtractFirstSynonymOrder(t *testing.T) {
	item := DatasetItem{
		"workEmail": "work@acme.com",
		"email":     "direto@acme.com",
	}
	assert.Equal(t, "direto@acme.com", ExtractEmail(item))

	// chave preferida presente mas vazia: cai para a próxima
	item = DatasetItem{
		"email":     "",
		"workEmail": "work@acme.com",
	}
	assert.Equal(t, "work@acme.com", ExtractEmail(item))
}

// TestExtractFirstListValue - Valores podem vir como lista; pega o primeiro
// elemento string não vazio.
func TestExtractFirstListValue(t *testing.T) {
	item := DatasetItem{
		"emails": []interface{}{"", "lista@acme.com", "segundo@acme.com"},
	}
	assert.Equal(t, "lista@acme.com", ExtractEmail(item))

	// lista só com lixo: nada extraído
	item = DatasetItem{
		"phones": []interface{}{nil, 42, ""},
	}
	assert.Equal(t, "", ExtractPhone(item))
}

func TestExtractFirstMissingAndNil(t *testing.T) {
	assert.Equal(t, "", ExtractEmail(DatasetItem{}))
	assert.Equal(t, "", ExtractEmail(DatasetItem{"email": nil}))
	// tipo inesperado é ignorado sem pânico
	assert.Equal(t, "", ExtractEmail(DatasetItem{"email": 123}))
}

// TestExtractProfile - Normalização completa de um item cru do scraper.
func TestExtractProfile(t *testing.T) {
	item := DatasetItem{
		"fullName":           "Maria Souza",
		"headline":           "CTO",
		"companyName":        "Acme",
		"addressWithCountry": "São Paulo, Brazil",
		"mobileNumber":       "+5511988880000",
		"profilePic":         "https://img.example.com/maria.jpg",
	}

	profile := ExtractProfile(item)
	assert.Equal(t, "Maria Souza", profile.Name)
	assert.Equal(t, "CTO", profile.Title)
	assert.Equal(t, "Acme", profile.Company)
	assert.Equal(t, "São Paulo, Brazil", profile.Location)
	assert.Equal(t, "+5511988880000", profile.Phone)
	assert.Equal(t, "https://img.example.com/maria.jpg", profile.PhotoURL)
	assert.Equal(t, "", profile.Email)
}

// TestIsTerminal - Run parado (com ou sem sucesso) vs ainda rodando.
func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(RunSucceeded))
	assert.True(t, IsTerminal(RunFailed))
	assert.True(t, IsTerminal(RunAborted))
	assert.True(t, IsTerminal(RunTimedOut))

	assert.False(t, IsTerminal(RunRunning))
	assert.False(t, IsTerminal(RunReady))
	assert.False(t, IsTerminal(""))
}
