// Package square is a thin client for the third-party catalog/checkout
// provider. The backend never stores catalog data of record, it proxies and
// caches what the provider returns.
package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:          200,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP: &http.Client{
			Transport: transport,
			Timeout:   15 * time.Second,
		},
	}
}

type Variation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
}

type Item struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url"`
	Variations  []Variation `json:"variations"`
	TaxIDs      []string    `json:"tax_ids"`
}

type CartItem struct {
	Name      string    `json:"name"`
	Variation Variation `json:"variation"`
	TaxIDs    []string  `json:"tax_ids"`
	Quantity  string    `json:"quantity"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("square: encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("square: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("square: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("square: %s %s: unexpected status %d", method, path, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("square: decode response: %w", err)
		}
	}
	return nil
}

// FullCatalog fetches every item the provider knows about.
func (c *Client) FullCatalog(ctx context.Context) ([]Item, error) {
	var out struct {
		Items []Item `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/catalog/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateCheckout asks the provider for a hosted checkout page for the cart
// and returns its URL.
func (c *Client) CreateCheckout(ctx context.Context, cart Cart) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/checkout", cart, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// EnsureCustomer creates a customer record at the provider and returns its
// id, so later checkouts can be tied back to the account.
func (c *Client) EnsureCustomer(ctx context.Context, email, firstName, lastName string) (string, error) {
	body := map[string]string{
		"email_address": email,
		"given_name":    firstName,
		"family_name":   lastName,
	}
	var out struct {
		Customer struct {
			ID string `json:"id"`
		} `json:"customer"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/customers", body, &out); err != nil {
		return "", err
	}
	return out.Customer.ID, nil
}
