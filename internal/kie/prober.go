package kie

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// requestSpec describes one logical HTTP operation, reusable across every
// candidate URL for that operation.
type requestSpec struct {
	method      string
	body        []byte
	contentType string
	// timeout overrides the config's per-attempt timeout when positive.
	timeout time.Duration
}

// probeResult is the outcome of a single HTTP attempt. json is always
// populated: bodies that fail to parse are wrapped as {"raw": <text>} so that
// malformed-but-successful responses from exotic providers do not break the
// flow. Callers probe fields instead of assuming structure.
type probeResult struct {
	ok     bool
	status int
	body   []byte
	json   gjson.Result
}

func (c *Client) fetchJSON(ctx context.Context, cfg Config, url string, spec requestSpec) (probeResult, error) {
	timeout := spec.timeout
	if timeout <= 0 {
		timeout = cfg.timeout()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if len(spec.body) > 0 {
		reader = bytes.NewReader(spec.body)
	}
	req, err := http.NewRequestWithContext(ctx, spec.method, url, reader)
	if err != nil {
		return probeResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if spec.contentType != "" {
		req.Header.Set("Content-Type", spec.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return probeResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return probeResult{}, err
	}

	return probeResult{
		ok:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		status: resp.StatusCode,
		body:   raw,
		json:   parseBody(raw),
	}, nil
}

func parseBody(raw []byte) gjson.Result {
	if gjson.ValidBytes(raw) {
		return gjson.ParseBytes(raw)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(raw)})
	return gjson.ParseBytes(wrapped)
}

// tryEndpoints attempts each candidate URL in order and returns the first
// success. A transport error, timeout or non-2xx status abandons the
// candidate and moves on; there is no retry of the same URL. This is endpoint
// discovery for a gateway that renames routes between versions, not a backoff
// mechanism.
func (c *Client) tryEndpoints(ctx context.Context, cfg Config, op string, candidates []string, spec requestSpec) (probeResult, error) {
	for _, url := range candidates {
		result, err := c.fetchJSON(ctx, cfg, url, spec)
		if err != nil {
			if ctx.Err() != nil {
				return probeResult{}, ctx.Err()
			}
			c.logger.Debug().Err(err).Str("url", url).Msg("kie: candidate attempt failed")
			continue
		}
		if result.ok {
			return result, nil
		}
		c.logger.Debug().Int("status", result.status).Str("url", url).Msg("kie: candidate rejected")
	}
	return probeResult{}, &AllCandidatesFailedError{Op: op, URLs: candidates}
}

// firstString walks paths in priority order and returns the first value that
// is a non-empty JSON string.
func firstString(doc gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := doc.Get(path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// firstScalar is like firstString but also accepts numeric identifiers, which
// some providers emit for task ids.
func firstScalar(doc gjson.Result, paths ...string) string {
	for _, path := range paths {
		v := doc.Get(path)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
		if v.Type == gjson.Number {
			return v.String()
		}
	}
	return ""
}
