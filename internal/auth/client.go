package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client обращается к HTTP API провайдера аутентификации: обмен
// access-токена на пользователя и административные операции,
// требующие сервисного ключа.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера аутентификации.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path, bearer string, body any) (*http.Request, error) {
	url := c.baseURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Verify обменивает access-токен на пользователя через GET /auth/v1/user.
// Реализует интерфейс TokenVerifier.
func (c *Client) Verify(ctx context.Context, token string) (*AuthUser, error) {
	const op = "auth.Client.Verify"

	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/user", token, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return &user, nil
}

// AdminUpdatePassword меняет пароль пользователя через админский API
// провайдера с сервисным ключом.
func (c *Client) AdminUpdatePassword(ctx context.Context, userID, newPassword string) error {
	const op = "auth.Client.AdminUpdatePassword"

	req, err := c.newRequest(ctx, http.MethodPut, "/auth/v1/admin/users/"+userID, c.serviceKey,
		map[string]string{"password": newPassword})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	return nil
}

// AdminDeleteUser удаляет учетную запись пользователя у провайдера.
func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	const op = "auth.Client.AdminDeleteUser"

	req, err := c.newRequest(ctx, http.MethodDelete, "/auth/v1/admin/users/"+userID, c.serviceKey, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	return nil
}

var _ TokenVerifier = (*Client)(nil)
