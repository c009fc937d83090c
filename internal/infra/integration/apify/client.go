package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	baseURL string
	token   string
	actorID string
	http    *http.Client

	// Orçamento do loop de polling. Estourou o orçamento = mesma coisa
	// que o provedor ter falhado: vira miss e cai pro fallback.
	pollInterval time.Duration
	pollBudget   time.Duration
}

func NewClient(token, baseURL, actorID string) *Client {
	return &Client{
		baseURL:      baseURL,
		token:        token,
		actorID:      actorID,
		http:         &http.Client{Timeout: 30 * time.Second},
		pollInterval: 5 * time.Second,
		pollBudget:   2 * time.Minute,
	}
}

// SubmitRun dispara um run do scraper para a URL de perfil. Se
// input.WebhookURL estiver preenchida, o Apify notifica o fim do run lá.
func (c *Client) SubmitRun(ctx context.Context, input RunInput) (*RunOutput, error) {
	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s", c.baseURL, c.actorID, c.token)
	if input.WebhookURL != "" {
		endpoint += "&webhooks=" + url.QueryEscape(webhookSpec(input.WebhookURL))
	}

	jsonBody, err := json.Marshal(runRequest{ProfileURLs: []string{input.ProfileURL}})
	if err != nil {
		return nil, fmt.Errorf("erro ao marshal run: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request apify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("❌ ERRO SUBMIT APIFY: %s\n", string(body))
		return nil, fmt.Errorf("apify rejeitou o run (status %d)", resp.StatusCode)
	}

	var response runResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("erro decode apify: %w", err)
	}

	return &RunOutput{
		RunID:     response.Data.ID,
		DatasetID: response.Data.DefaultDatasetID,
		Status:    response.Data.Status,
	}, nil
}

// PollRun consulta o status atual de um run.
func (c *Client) PollRun(ctx context.Context, runID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v2/actor-runs/%s?token=%s", c.baseURL, runID, c.token)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("erro poll apify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("poll apify falhou (status %d)", resp.StatusCode)
	}

	var response runResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("erro decode poll: %w", err)
	}
	return response.Data.Status, nil
}

// WaitRun faz o poll em intervalo fixo até o run terminar ou o orçamento
// de relógio estourar. Estouro retorna RunTimedOut sem erro: quem chama
// trata igual a falha explícita do provedor.
func (c *Client) WaitRun(ctx context.Context, runID string) (string, error) {
	deadline := time.Now().Add(c.pollBudget)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.PollRun(ctx, runID)
		if err != nil {
			return "", err
		}
		if IsTerminal(status) {
			return status, nil
		}
		if time.Now().After(deadline) {
			return RunTimedOut, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// DatasetItems lê os itens crus do dataset do run.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]DatasetItem, error) {
	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?token=%s", c.baseURL, datasetID, c.token)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro dataset apify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("leitura do dataset falhou (status %d)", resp.StatusCode)
	}

	var items []DatasetItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("erro decode dataset: %w", err)
	}
	return items, nil
}

// FetchProfile roda o ciclo completo síncrono: submit, poll até terminar,
// lê o dataset e extrai o perfil. Usado pelo orquestrador; o caminho via
// webhook usa SubmitRun + o ingestor de conclusão.
func (c *Client) FetchProfile(ctx context.Context, profileURL string) (*ProfileData, error) {
	run, err := c.SubmitRun(ctx, RunInput{ProfileURL: profileURL})
	if err != nil {
		return nil, err
	}

	status, err := c.WaitRun(ctx, run.RunID)
	if err != nil {
		return nil, err
	}
	if status != RunSucceeded {
		return nil, fmt.Errorf("run apify terminou em %s", status)
	}

	items, err := c.DatasetItems(ctx, run.DatasetID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("dataset apify vazio")
	}

	return ExtractProfile(items[0]), nil
}

// webhookSpec monta o JSON de webhook que o Apify espera no query param.
func webhookSpec(webhookURL string) string {
	spec := []map[string]interface{}{
		{
			"eventTypes": []string{"ACTOR.RUN.SUCCEEDED", "ACTOR.RUN.FAILED", "ACTOR.RUN.ABORTED", "ACTOR.RUN.TIMED_OUT"},
			"requestUrl": webhookURL,
		},
	}
	b, _ := json.Marshal(spec)
	return string(b)
}
