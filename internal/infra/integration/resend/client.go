package resend

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

// Send dispara o email e retorna o email_id do provedor. Esse id é o
// caminho autoritativo de resolução quando os webhooks chegarem.
func (c *Client) Send(ctx context.Context, input SendInput) (string, error) {
	payload := sendEmailRequest{
		From:    input.From,
		To:      []string{input.To},
		Subject: input.Subject,
		HTML:    input.HTML,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("erro ao marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/emails", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("erro request resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("❌ ERRO API RESEND (Status %d): %s\n", resp.StatusCode, string(body))
		return "", fmt.Errorf("api resend rejeitou (status %d)", resp.StatusCode)
	}

	var response sendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("erro ao ler resposta resend: %w", err)
	}

	return response.ID, nil
}

// setHeaders centraliza os headers obrigatórios
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
