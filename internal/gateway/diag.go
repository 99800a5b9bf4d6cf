package gateway

import (
	"context"
	"time"

	"storeapi/internal/pkg/httpclient"
	"storeapi/internal/pkg/utils"
)

// ProbeResult is one candidate's connectivity check outcome.
type ProbeResult struct {
	Candidate  string `json:"candidate"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Candidates previews the resolved endpoint list without any network call.
func (c *Client) Candidates() []string {
	return ResolveCandidates(c.cfg.BaseURL, c.cfg.ForceTest)
}

// Probe checks reachability of the first limit candidates with a short
// per-attempt timeout. Support tooling only; the status code is reported
// as-is, a 404 or 405 still proves the host answers.
func (c *Client) Probe(ctx context.Context, limit int) []ProbeResult {
	candidates := c.Candidates()
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	probe := httpclient.New().WithTimeout(3 * time.Second).WithoutRedirects()
	results := make([]ProbeResult, 0, limit)
	for _, cand := range candidates[:limit] {
		start := time.Now()
		resp, err := probe.Request().SetContext(ctx).Get(cand)
		r := ProbeResult{
			Candidate:  cand,
			DurationMS: time.Since(start).Milliseconds(),
		}
		if err != nil {
			r.Error = err.Error()
		} else {
			r.StatusCode = resp.StatusCode()
		}
		results = append(results, r)
	}
	return results
}

// PreviewPayload renders the exact outgoing payload for support debugging,
// with the shared secret masked. Never returns the secret in cleartext.
func (c *Client) PreviewPayload(snap OrderSnapshot, ov Overrides) map[string]interface{} {
	req := BuildRequest(snap, c.cfg, ov)
	m := req.WireMap()
	if _, ok := m["token"]; ok {
		m["token"] = utils.MaskSecret(c.cfg.Secret)
	}
	return m
}
