package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// AccountsMapping is the index mapping used by EnsureIndex.
const AccountsMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "long"},
      "username":   {"type": "keyword"},
      "email":      {"type": "keyword"},
      "first_name": {"type": "text"},
      "last_name":  {"type": "text"},
      "role":       {"type": "keyword"},
      "is_active":  {"type": "boolean"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

// AccountIndexer mirrors accounts into an Elasticsearch index.
type AccountIndexer struct {
	es    *elasticsearch.Client
	index string
}

var _ application.AccountIndexer = (*AccountIndexer)(nil)

func NewAccountIndexer(es *elasticsearch.Client, index string) *AccountIndexer {
	return &AccountIndexer{es: es, index: index}
}

type accountDoc struct {
	application.AccountHit
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (i *AccountIndexer) Index(ctx context.Context, a *entity.Account) error {
	b, err := json.Marshal(accountDoc{
		AccountHit: application.HitFromAccount(a),
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: strconv.FormatInt(a.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (i *AccountIndexer) Remove(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over names, email and username.
func (i *AccountIndexer) Search(ctx context.Context, q string, size int) ([]application.AccountHit, error) {
	body, err := json.Marshal(searchQuery(q, size))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := i.es.Search(
		i.es.Search.WithContext(c),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source application.AccountHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]application.AccountHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func searchQuery(q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "username^2", "first_name", "last_name"},
				"type":   "phrase_prefix",
			},
		},
		"sort": []any{map[string]any{"id": "asc"}},
		"size": size,
	}
}
