// Package search keeps an Elasticsearch index of products.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

type ClientConfig struct {
	URL      string
	Username string
	Password string
}

// NewClient connects and checks the cluster answers.
func NewClient(ctx context.Context, cfg ClientConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}
	return client, nil
}

type Document struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Composition          string   `json:"composition"`
	Manufacturer         string   `json:"manufacturer"`
	Tags                 []string `json:"tags"`
	Price                int64    `json:"price"`
	RequiresPrescription bool     `json:"requires_prescription"`
	IsActive             bool     `json:"is_active"`
	BrandID              string   `json:"brand_id,omitempty"`
	CategoryID           string   `json:"category_id,omitempty"`
}

func DocumentFrom(p *models.Product) Document {
	d := Document{
		Name:                 p.Name,
		Description:          p.Description,
		Composition:          p.Composition,
		Manufacturer:         p.Manufacturer,
		Tags:                 p.Tags,
		Price:                p.Price,
		RequiresPrescription: p.RequiresPrescription,
		IsActive:             p.IsActive,
	}
	if p.BrandID != nil {
		d.BrandID = p.BrandID.String()
	}
	if p.CategoryID != nil {
		d.CategoryID = p.CategoryID.String()
	}
	return d
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "name":                  {"type": "text"},
      "description":           {"type": "text"},
      "composition":           {"type": "text"},
      "manufacturer":          {"type": "text"},
      "tags":                  {"type": "keyword"},
      "price":                 {"type": "long"},
      "requires_prescription": {"type": "boolean"},
      "is_active":             {"type": "boolean"},
      "brand_id":              {"type": "keyword"},
      "category_id":           {"type": "keyword"}
    }
  }
}`

type ProductIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewProductIndex(es *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (p *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := p.es.Indices.Exists([]string{p.index}, p.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = p.es.Indices.Create(p.index,
		p.es.Indices.Create.WithContext(ctx),
		p.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("es: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: create index: %s: %s", res.Status(), body)
	}
	return nil
}

func (p *ProductIndex) Index(ctx context.Context, prod *models.Product) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(DocumentFrom(prod)); err != nil {
		return fmt.Errorf("es: encode: %w", err)
	}

	res, err := p.es.Index(p.index, &buf,
		p.es.Index.WithContext(ctx),
		p.es.Index.WithDocumentID(prod.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("es: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index: %s", res.Status())
	}
	return nil
}

func (p *ProductIndex) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := p.es.Delete(p.index, id.String(), p.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es: delete: %s", res.Status())
	}
	return nil
}

// Search returns the ids of matching active products in relevance order.
func (p *ProductIndex) Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(QueryBody(query, from, size)); err != nil {
		return 0, nil, fmt.Errorf("es: encode: %w", err)
	}

	res, err := p.es.Search(
		p.es.Search.WithContext(ctx),
		p.es.Search.WithIndex(p.index),
		p.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es: search: %s", res.Status())
	}

	return decodeHits(res.Body)
}

func QueryBody(query string, from, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description", "composition", "manufacturer", "tags"},
						"fuzziness": "AUTO",
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"is_active": true}},
				},
			},
		},
		"_source": false,
		"from":    from,
		"size":    size,
	}
}

func decodeHits(r io.Reader) (int64, []uuid.UUID, error) {
	var body struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return 0, nil, fmt.Errorf("es: decode: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return body.Hits.Total.Value, ids, nil
}
