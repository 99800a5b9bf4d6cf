package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storeapi/internal/pkg/httpclient"
)

// Client talks to the SmartPay hosted-payment gateway. One instance per
// config snapshot; call sites build it fresh from current store settings.
type Client struct {
	cfg    Config
	logger *zap.Logger
	json   *httpclient.Client
	soap   *httpclient.Client
}

// New creates a gateway client.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.attemptTimeout()
	return &Client{
		cfg:    cfg,
		logger: logger,
		json:   httpclient.New().WithTimeout(timeout),
		soap:   httpclient.New().WithTimeout(timeout).WithoutRedirects(),
	}
}

// PaymentResult is the outcome of a successful gateway invocation.
type PaymentResult struct {
	PaymentURL string
	Candidate  string
	Transport  string
	RawBody    string
}

// CreatePayment builds the request and tries candidates in order, one at a
// time: an early success must short-circuit later attempts, and the
// provider penalizes concurrent duplicate submissions. JSON candidates
// first; when the preference allows it and every JSON candidate soft-fails,
// the SOAP fallback runs.
func (c *Client) CreatePayment(ctx context.Context, snap OrderSnapshot, ov Overrides) (*PaymentResult, error) {
	if !c.cfg.Enabled {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(c.cfg.Secret) == "" {
		return nil, ErrMissingSecret
	}

	req := BuildRequest(snap, c.cfg, ov)
	candidates := ResolveCandidates(c.cfg.BaseURL, c.cfg.ForceTest)
	transport := c.cfg.transport()

	var jsonErr error
	if transport == TransportJSON || transport == TransportAuto {
		res, err := c.tryJSON(ctx, req, candidates)
		if err == nil {
			return res, nil
		}
		var exhausted *ExhaustedError
		if transport == TransportJSON || !errors.As(err, &exhausted) {
			// hard failure, or caller pinned the transport
			return nil, err
		}
		jsonErr = err
	}

	res, err := c.trySOAP(ctx, req, candidates)
	if err == nil {
		return res, nil
	}
	if jsonErr != nil {
		return nil, fmt.Errorf("soap fallback failed after json candidates exhausted: %w", err)
	}
	return nil, err
}

func (c *Client) tryJSON(ctx context.Context, req Request, candidates []string) (*PaymentResult, error) {
	payload := req.WireMap()
	var lastErr error

	for _, cand := range candidates {
		resp, err := c.json.Request().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post(cand)
		if err != nil {
			c.logger.Debug("gateway candidate unreachable",
				zap.String("candidate", cand), zap.Error(err))
			lastErr = err
			continue
		}

		status := resp.StatusCode()
		body := resp.Body()

		if status >= 200 && status < 300 {
			if u := ExtractURL(body); u != "" {
				c.logger.Info("gateway payment url obtained",
					zap.String("candidate", cand), zap.String("transport", TransportJSON))
				return &PaymentResult{
					PaymentURL: u,
					Candidate:  cand,
					Transport:  TransportJSON,
					RawBody:    string(body),
				}, nil
			}
			return nil, &UnparseableError{Candidate: cand, Body: truncate(string(body), 500)}
		}

		if LooksLikeHTMLError(resp.Header().Get("Content-Type"), body) {
			// wrong endpoint shape, not a rejected request
			c.logger.Debug("gateway candidate served an error page, skipping",
				zap.String("candidate", cand), zap.Int("status", status))
			lastErr = fmt.Errorf("candidate %s answered %d with an error page", cand, status)
			continue
		}

		return nil, &RejectionError{
			StatusCode: status,
			Detail:     ExtractErrorDetail(body),
			Candidate:  cand,
		}
	}

	return nil, &ExhaustedError{Transport: TransportJSON, Last: lastErr}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
