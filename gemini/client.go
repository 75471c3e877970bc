/*
Package gemini is the enrichment collaborator: a client for the Google
Generative Language API.

PURPOSE:
  Produces the structured coaching content attached to the application's
  cycles: the cycle-close report, free-text transaction parsing, behavioral
  analysis, and assistant answers. Every operation asks the model for a
  strict JSON response via responseSchema and decodes it into Go types.

RELIABILITY:
  Calls are wrapped with bounded retries (429/5xx only) and inherit the
  caller's context deadline. The lifecycle manager treats any error as
  "no report"; nothing here is allowed to block an archival beyond its
  timeout.

CACHING:
  Responses are cached by a content fingerprint of the transaction set
  with a short TTL. This is a cache wrapper, not a cache engine: no
  eviction policy, no capacity bound beyond the TTL sweep.
*/
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrNoAPIKey is returned when the client is constructed without a key.
var ErrNoAPIKey = errors.New("gemini: api key not configured")

// ErrEmptyResponse is returned when the model answers with no candidates.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Client calls the Generative Language REST API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry

	reports  *cache
	analyses *cache
	queries  *cache
}

// New creates a client. model may be "" for DefaultModel.
func New(apiKey, model string, log *logrus.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		log:        log.WithField("component", "gemini"),
		reports:    newCache(15 * time.Minute),
		analyses:   newCache(15 * time.Minute),
		queries:    newCache(10 * time.Minute),
	}, nil
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type generateRequest struct {
	SystemInstruction *content          `json:"system_instruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
	Temperature      *float64       `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// apiError carries the HTTP status for retry classification.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gemini: api status %d: %s", e.Status, e.Body)
}

// =============================================================================
// TRANSPORT
// =============================================================================

// generate performs one generateContent call and returns the first
// candidate's text. Retries on rate limiting and server errors.
func (c *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var text string
	err = retry.Do(
		func() error {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return &apiError{Status: resp.StatusCode, Body: truncate(string(respBody), 200)}
			}

			var decoded generateResponse
			if err := json.Unmarshal(respBody, &decoded); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
				return ErrEmptyResponse
			}
			text = decoded.Candidates[0].Content.Parts[0].Text
			return nil
		},
		retry.RetryIf(func(err error) bool {
			var apiErr *apiError
			if errors.As(err, &apiErr) {
				if apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500 {
					c.log.WithField("status", apiErr.Status).Warn("transient api error, will retry")
					return true
				}
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
