package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// MatchEmail: reveal de email é síncrono — a resposta já traz os candidatos.
func (c *Client) MatchEmail(ctx context.Context, input MatchInput) (*MatchOutput, error) {
	payload := matchRequest{
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		OrganizationName:    input.OrganizationName,
		Domain:              input.Domain,
		RevealPersonalEmail: true,
	}

	var response matchResponse
	if err := c.post(ctx, "/v1/people/match", payload, &response); err != nil {
		return nil, err
	}

	return &MatchOutput{
		Email:           response.Person.Email,
		CandidateEmails: response.Person.PersonalEmails,
	}, nil
}

// MatchPhoneAsync: o reveal de telefone é inerentemente assíncrono (lookup
// de operadora), então vai com callback URL parametrizada por contato e
// campo. O resultado chega depois, no ingestor de conclusão.
func (c *Client) MatchPhoneAsync(ctx context.Context, input MatchInput, callbackURL string) error {
	payload := matchRequest{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		OrganizationName:  input.OrganizationName,
		Domain:            input.Domain,
		RevealPhoneNumber: true,
		WebhookURL:        callbackURL,
	}

	return c.post(ctx, "/v1/people/match", payload, nil)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao marshal apollo: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request apollo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("❌ ERRO API APOLLO (Status %d): %s\n", resp.StatusCode, string(body))
		return fmt.Errorf("api apollo rejeitou (status %d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("erro ao ler resposta apollo: %w", err)
	}
	return nil
}

// setHeaders centraliza os headers obrigatórios
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
}
