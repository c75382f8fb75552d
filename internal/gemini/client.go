// Package gemini реализует клиент внешнего API генерации текста и разбор
// его ответов в доменные структуры поста.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/reddigen-backend/internal/config"
)

// Доменные ошибки, в которые отображаются HTTP-статусы провайдера.
// Повторных попыток клиент не делает.
var (
	ErrBadRequest   = errors.New("gemini: bad request")
	ErrUnauthorized = errors.New("gemini: api key invalid or unauthorized")
	ErrRateLimited  = errors.New("gemini: rate limit exceeded")
	ErrServer       = errors.New("gemini: server error")
	ErrEmptyReply   = errors.New("gemini: empty reply")
)

// Client обращается к API генерации текста по HTTP.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент с фиксированным таймаутом запроса.
func NewClient(cfg config.Gemini) *Client {
	timeout := cfg.GeminiTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     cfg.GeminiAPIKey,
		apiURL:     cfg.GeminiAPIURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate отправляет промпт провайдеру с ограниченной температурой и
// лимитом токенов, возвращает сырой текст ответа модели.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	const op = "gemini.Generate"

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"?key="+c.apiKey, &buf)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %w", op, mapStatus(resp.StatusCode))
	}

	var response generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyReply)
	}
	text := response.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyReply)
	}
	return text, nil
}

func mapStatus(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return ErrBadRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return fmt.Errorf("unexpected status: %d", status)
	}
}
