// Package search keeps an Elasticsearch index of products for name search.
package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
)

const callTimeout = 3 * time.Second

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

type ProductIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewProductIndex(es *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{es: es, index: index}
}

type productDoc struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        string    `json:"tags"`
	ShopID      string    `json:"shop_id"`
	Beneficiary string    `json:"beneficiary"`
	CreatedAt   time.Time `json:"created_at"`
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *ProductIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := i.es.Indices.Exists([]string{i.index}, i.es.Indices.Exists.WithContext(c))
	if err != nil {
		return errors.Wrap(err, "es index exists")
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := `{"mappings":{"properties":{
		"name":{"type":"text"},
		"description":{"type":"text"},
		"category":{"type":"keyword"},
		"tags":{"type":"text"},
		"shop_id":{"type":"keyword"},
		"beneficiary":{"type":"keyword"},
		"created_at":{"type":"date"}}}}`
	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithContext(c),
		i.es.Indices.Create.WithBody(strings.NewReader(mapping)))
	if err != nil {
		return errors.Wrap(err, "es create index")
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return errors.Errorf("es create index: %s", res.Status())
	}
	return nil
}

// Index upserts the searchable fields of p.
func (i *ProductIndex) Index(ctx context.Context, p *entity.Product) error {
	doc := productDoc{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Tags:        p.Tags,
		ShopID:      p.ShopID.Hex(),
		Beneficiary: p.Beneficiary,
		CreatedAt:   p.CreatedAt,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.index, DocumentID: p.ID.Hex(), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return errors.Wrap(err, "es index product")
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return errors.Errorf("es index product: %s", res.Status())
	}
	return nil
}

// Delete removes the product document. A missing document is not an error.
func (i *ProductIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return errors.Wrap(err, "es delete product")
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return errors.Errorf("es delete product: %s", res.Status())
	}
	return nil
}

// Search returns the ids of products matching q, best match first.
func (i *ProductIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^3", "tags^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := i.es.Search(i.es.Search.WithContext(c), i.es.Search.WithIndex(i.index), i.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, errors.Wrap(err, "es search products")
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.Errorf("es search products: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "es decode search")
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
