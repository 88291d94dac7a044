package square

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeProvider(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/catalog/list", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"items": []Item{
				{
					ID:       "item_1",
					Name:     "Dark Roast",
					ImageURL: "https://img.example.com/dark.jpg",
					Variations: []Variation{
						{ID: "var_1", Name: "12oz", PriceCents: 1499, Currency: "USD"},
					},
					TaxIDs: []string{"tax_1"},
				},
				{ID: "item_2", Name: "Light Roast", ImageURL: "https://img.example.com/light.jpg"},
			},
		})
	})
	mux.HandleFunc("/v2/checkout", func(w http.ResponseWriter, r *http.Request) {
		var cart Cart
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cart))
		assert.NotEmpty(t, cart.Items)
		json.NewEncoder(w).Encode(map[string]string{"url": "https://checkout.example.com/abc"})
	})
	mux.HandleFunc("/v2/customers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"customer": map[string]string{"id": "cust_123"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFullCatalog(t *testing.T) {
	t.Parallel()
	srv := newFakeProvider(t)
	c := New(srv.URL, "test-token")

	items, err := c.FullCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Dark Roast", items[0].Name)
	assert.NotEmpty(t, items[0].ImageURL)
	require.Len(t, items[0].Variations, 1)
	assert.EqualValues(t, 1499, items[0].Variations[0].PriceCents)
}

func TestCreateCheckout(t *testing.T) {
	t.Parallel()
	srv := newFakeProvider(t)
	c := New(srv.URL, "test-token")

	cart := Cart{Items: []CartItem{{
		Name:      "Dark Roast",
		Variation: Variation{ID: "var_1", Name: "12oz", PriceCents: 1499, Currency: "USD"},
		TaxIDs:    []string{"tax_1"},
		Quantity:  "1",
	}}}

	url, err := c.CreateCheckout(context.Background(), cart)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/abc", url)
}

func TestEnsureCustomer(t *testing.T) {
	t.Parallel()
	srv := newFakeProvider(t)
	c := New(srv.URL, "test-token")

	id, err := c.EnsureCustomer(context.Background(), "alice@example.com", "alice", "smith")
	require.NoError(t, err)
	assert.Equal(t, "cust_123", id)
}

func TestUpstreamErrorStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "test-token")
	_, err := c.FullCatalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
