package unipile

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
	token   string
	http    *http.Client
}

func NewClient(token, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SendMessage envia uma mensagem pela conta conectada e retorna o id da
// mensagem no provedor (usado depois para casar webhooks de entrega).
func (c *Client) SendMessage(ctx context.Context, input SendInput) (string, error) {
	payload := sendMessageRequest{
		AttendeesIDs: []string{input.AttendeeID},
		AccountID:    input.AccountID,
		Text:         input.Text,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("erro ao marshal mensagem: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/chats", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("erro request unipile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("❌ ERRO API UNIPILE (Status %d): %s\n", resp.StatusCode, string(body))
		return "", fmt.Errorf("api unipile rejeitou (status %d)", resp.StatusCode)
	}

	var response sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("erro ao ler resposta unipile: %w", err)
	}

	return response.MessageID, nil
}

// setHeaders centraliza os headers obrigatórios
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-API-KEY", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
