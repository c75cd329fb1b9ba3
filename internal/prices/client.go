package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client fetches USD prices from the aggregator price API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://price.jup.ag/v4"
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("price api http %d", e.StatusCode)
	}
	return fmt.Sprintf("price api http %d: %s", e.StatusCode, b)
}

// Datum is one price record keyed by mint address in the API response.
type Datum struct {
	ID            string  `json:"id"`
	MintSymbol    string  `json:"mintSymbol"`
	VsToken       string  `json:"vsToken"`
	VsTokenSymbol string  `json:"vsTokenSymbol"`
	Price         float64 `json:"price"`
}

type priceResponse struct {
	Data      map[string]Datum `json:"data"`
	TimeTaken float64          `json:"timeTaken,omitempty"`
}

// Fetch requests prices for up to the upstream batch limit of addresses.
// Addresses missing from the response are returned in failed; they are
// per-address misses, not an error for the batch.
func (c *Client) Fetch(ctx context.Context, addresses []string) (map[string]Entry, []string, error) {
	if len(addresses) == 0 {
		return map[string]Entry{}, nil, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(addresses, ","))

	u := c.BaseURL + "/price?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out priceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	now := time.Now().UnixMilli()
	resolved := make(map[string]Entry, len(addresses))
	var failed []string

	for _, addr := range addresses {
		datum, ok := out.Data[addr]
		if !ok {
			failed = append(failed, addr)
			continue
		}
		resolved[datum.ID] = Entry{USD: datum.Price, ObservedAt: now}
	}

	return resolved, failed, nil
}
