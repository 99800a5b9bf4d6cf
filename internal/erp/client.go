package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"storeapi/internal/pkg/httpclient"
)

// Client talks to the ERP that owns authoritative stock levels. The access
// token is cached on the client with its expiry and refreshed lazily with a
// safety margin; a 401 from a dependent call invalidates it explicitly.
type Client struct {
	baseURL  string
	username string
	password string
	client   *httpclient.Client
	logger   *zap.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

const tokenSafetyMargin = time.Minute

// New creates a new ERP client.
func New(baseURL, username, password string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		client:   httpclient.New().WithTimeout(15 * time.Second),
		logger:   logger,
	}
}

// Enabled reports whether the ERP integration is configured at all.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

func (c *Client) ensureAuth(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp.Add(-tokenSafetyMargin)) {
		return c.token, nil
	}
	if err := c.authenticateLocked(ctx); err != nil {
		return "", err
	}
	return c.token, nil
}

func (c *Client) authenticateLocked(ctx context.Context) error {
	resp, err := c.client.Request().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"username": c.username,
			"password": c.password,
		}).
		Post(c.baseURL + "/api/auth/token")
	if err != nil {
		return fmt.Errorf("erp auth failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("erp auth failed with status %d", resp.StatusCode())
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("erp auth parse error: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("erp auth: no access_token in response")
	}

	expiresIn := result.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	c.token = result.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExp = time.Time{}
	c.mu.Unlock()
}

// ProductStock fetches the current stock level for a SKU. Retries once
// after invalidating the token when the ERP answers 401.
func (c *Client) ProductStock(ctx context.Context, sku string) (int, error) {
	stock, status, err := c.fetchStock(ctx, sku)
	if err != nil {
		return 0, err
	}
	if status == 401 {
		c.logger.Debug("erp token rejected, re-authenticating", zap.String("sku", sku))
		c.invalidateToken()
		stock, status, err = c.fetchStock(ctx, sku)
		if err != nil {
			return 0, err
		}
	}
	if status != 200 {
		return 0, fmt.Errorf("erp stock lookup for %s failed with status %d", sku, status)
	}
	return stock, nil
}

func (c *Client) fetchStock(ctx context.Context, sku string) (int, int, error) {
	token, err := c.ensureAuth(ctx)
	if err != nil {
		return 0, 0, err
	}

	resp, err := c.client.Request().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		Get(c.baseURL + "/api/products/" + sku + "/stock")
	if err != nil {
		return 0, 0, fmt.Errorf("erp stock request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, resp.StatusCode(), nil
	}

	var result struct {
		Stock int `json:"stock"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return 0, 0, fmt.Errorf("erp stock parse error: %w", err)
	}
	return result.Stock, 200, nil
}
