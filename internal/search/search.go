// Package search keeps an Elasticsearch mirror of the provider catalog so
// customers can query it without round-tripping to the third-party API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/brewhollow/shop-backend/internal/square"
)

// IndexItems upserts catalog items into the index, keyed by item id.
func IndexItems(ctx context.Context, es *elasticsearch.Client, index string, items []square.Item) error {
	for _, item := range items {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(item); err != nil {
			return fmt.Errorf("index %s: encode: %w", item.ID, err)
		}

		req := esapi.IndexRequest{
			Index:      index,
			DocumentID: item.ID,
			Body:       &buf,
		}
		res, err := req.Do(ctx, es)
		if err != nil {
			return fmt.Errorf("index %s: %w", item.ID, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("index %s: %s", item.ID, res.Status())
		}
	}
	return nil
}

func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []square.Item, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source square.Item `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	items := make([]square.Item, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}
