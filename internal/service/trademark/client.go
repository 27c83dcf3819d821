package trademark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/pkg/errors"
)

// Client queries a word-mark search API. A mark with any result is TAKEN.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

type searchResponse struct {
	Results []json.RawMessage `json:"results"`
}

// NewClient returns nil when apiKey is empty.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = constants.APIConfig.TrademarkBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: constants.APIConfig.TrademarkTimeout,
		},
		logger: logger,
	}
}

func (c *Client) Check(ctx context.Context, text string) (domain.AvailabilityStatus, error) {
	endpoint := c.baseURL + "?criteria=" + url.QueryEscape(text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", errors.NewAPIError("failed to create request", 500, map[string]any{
			"text": text,
		}).WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewAPIError("trademark request failed", 500, map[string]any{
			"text": text,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.NewAPIError(
			fmt.Sprintf("trademark API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"text": text,
				"body": string(bodyBytes),
			},
		)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.NewAPIError("failed to decode trademark response", 500, map[string]any{
			"text": text,
		}).WithCause(err)
	}

	if len(payload.Results) > 0 {
		return domain.StatusTaken, nil
	}
	return domain.StatusAvailable, nil
}
