// Package github consulta la API pública de GitHub por los repos de un
// usuario. Es un pass-through de mejor esfuerzo: sin retry, sin cache.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoProfile cubre transporte caído y cualquier status distinto de 200.
var ErrNoProfile = errors.New("no github profile found")

// Client define la interfaz del lookup de repositorios.
type Client interface {
	Repos(ctx context.Context, username string) (json.RawMessage, error)
}

// HTTPClient implementa Client contra la REST API de GitHub.
type HTTPClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
	logger       *zap.Logger
}

// NewHTTPClient construye un cliente apuntando a la API de GitHub.
func NewHTTPClient(baseURL, clientID, clientSecret string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
}

// Repos devuelve el body JSON del upstream sin tocarlo.
func (c *HTTPClient) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("per_page", "5")
	params.Set("sort", "created:asc")
	if c.clientID != "" {
		params.Set("client_id", c.clientID)
	}
	if c.clientSecret != "" {
		params.Set("client_secret", c.clientSecret)
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "devconnect")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("github request failed", zap.String("username", username), zap.Error(err))
		}
		return nil, ErrNoProfile
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrNoProfile
	}

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Warn("github non-200 response",
				zap.String("username", username),
				zap.Int("status", resp.StatusCode),
			)
		}
		return nil, ErrNoProfile
	}

	return json.RawMessage(body), nil
}
