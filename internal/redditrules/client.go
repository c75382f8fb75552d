// Package redditrules реализует клиент публичной ленты правил сабреддита
// и преобразование ответа в текстовый блок для промпта.
package redditrules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Доменные ошибки ленты правил.
var (
	ErrNotFound = errors.New("subreddit not found")
	ErrPrivate  = errors.New("subreddit is private")
)

// DefaultRulesText возвращается, когда сабреддит не публикует правил.
const DefaultRulesText = "No specific rules found. Standard Reddit etiquette applies."

// Client загружает правила сабреддита из публичной ленты reddit.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient создаёт новый клиент ленты правил.
func NewClient() *Client {
	return &Client{
		baseURL:    "https://www.reddit.com",
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL создаёт клиент с переопределенным адресом ленты.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

type rulesResponse struct {
	Rules []struct {
		ShortName   string `json:"short_name"`
		Description string `json:"description"`
	} `json:"rules"`
}

// Normalize приводит имя сабреддита к каноническому виду:
// нижний регистр без префикса "r/".
func Normalize(subreddit string) string {
	return strings.TrimPrefix(strings.ToLower(subreddit), "r/")
}

// Fetch возвращает правила сабреддита одним текстовым блоком.
func (c *Client) Fetch(ctx context.Context, subreddit string) (string, error) {
	const op = "redditrules.Fetch"

	url := fmt.Sprintf("%s/r/%s/about/rules.json", c.baseURL, Normalize(subreddit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("%s: %w", op, ErrNotFound)
	case http.StatusForbidden:
		return "", fmt.Errorf("%s: %w", op, ErrPrivate)
	default:
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var payload rulesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var sb strings.Builder
	for i, rule := range payload.Rules {
		fmt.Fprintf(&sb, "**Rule %d: %s**\n%s\n\n", i+1, rule.ShortName, rule.Description)
	}
	if sb.Len() == 0 {
		return DefaultRulesText, nil
	}
	return sb.String(), nil
}
