package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/wine_shop/internal/models"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

func NewClient(ctx context.Context, cfg Config, l *slog.Logger) (*elasticsearch.Client, error) {
	l.Info("es_connect", "url", cfg.URL, "user", cfg.User)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: create client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}

	l.Info("es_connected", "url", cfg.URL)
	return client, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	return fmt.Errorf("es: %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}

// WineIndex keeps a searchable copy of wines. Search results carry only ids;
// callers load the wines from the database.
type WineIndex struct {
	ES    *elasticsearch.Client
	Index string
}

type wineDoc struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ProductCode  string `json:"product_code"`
	Color        string `json:"color"`
	SugarContent string `json:"sugar_content"`
	Price        string `json:"price"`
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "long"},
      "name":          {"type": "text"},
      "description":   {"type": "text"},
      "product_code":  {"type": "keyword"},
      "color":         {"type": "keyword"},
      "sugar_content": {"type": "keyword"},
      "price":         {"type": "scaled_float", "scaling_factor": 100}
    }
  }
}`

// EnsureIndex creates the index with its mapping unless it already exists.
func (w *WineIndex) EnsureIndex(ctx context.Context) error {
	res, err := w.ES.Indices.Exists([]string{w.Index}, w.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es: index exists: %s", res.Status())
	}

	res, err = w.ES.Indices.Create(w.Index,
		w.ES.Indices.Create.WithContext(ctx),
		w.ES.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("es: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (w *WineIndex) IndexWine(ctx context.Context, wine *models.Wine) error {
	doc := wineDoc{
		ID:           wine.ID,
		Name:         wine.Name,
		ProductCode:  wine.ProductCode,
		Color:        wine.Color,
		SugarContent: wine.SugarContent,
		Price:        wine.Price.StringFixed(2),
	}
	if wine.Description != nil {
		doc.Description = *wine.Description
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("es: encode wine: %w", err)
	}

	res, err := w.ES.Index(w.Index, &buf,
		w.ES.Index.WithContext(ctx),
		w.ES.Index.WithDocumentID(strconv.FormatUint(uint64(wine.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("es: index wine: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index wine", res)
	}
	return nil
}

func (w *WineIndex) DeleteWine(ctx context.Context, id uint) error {
	res, err := w.ES.Delete(w.Index, strconv.FormatUint(uint64(id), 10), w.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete wine: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete wine", res)
	}
	return nil
}

func (w *WineIndex) SearchWines(ctx context.Context, q string, offset, limit int) (int64, []uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"_source": []string{"id"},
		"from":    offset,
		"size":    limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := w.ES.Search(
		w.ES.Search.WithContext(ctx),
		w.ES.Search.WithIndex(w.Index),
		w.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return r.Hits.Total.Value, ids, nil
}
