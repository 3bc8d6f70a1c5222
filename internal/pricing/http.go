package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultTimeout = 5 * time.Second

// HTTPClient reads spot prices from a Coinbase-style API:
// GET {base}/v2/prices/{NAME}-USD/spot returns {"data":{"amount":"1234.56"}}.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type spotResponse struct {
	Data struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	} `json:"data"`
}

func (c *HTTPClient) CurrentPrice(ctx context.Context, cryptoName string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v2/prices/%s-USD/spot", c.baseURL, url.PathEscape(strings.ToUpper(cryptoName)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch %s price: %w", cryptoName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("fetch %s price: status %d: %s", cryptoName, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var spot spotResponse
	if err := json.NewDecoder(resp.Body).Decode(&spot); err != nil {
		return decimal.Zero, fmt.Errorf("decode %s price: %w", cryptoName, err)
	}
	return spot.Data.Amount, nil
}
