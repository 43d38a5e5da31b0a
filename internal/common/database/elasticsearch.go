// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"strings"

	"bluemedix-workflow/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// Elasticsearch indexes one document per run.
type Elasticsearch struct {
	Client *elasticsearch.Client
	nodes  string
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*Elasticsearch, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Elasticsearch{Client: es, nodes: strings.Join(cfg.Addresses, ",")}, nil
}

func (e *Elasticsearch) Kind() string { return "elasticsearch" }

func (e *Elasticsearch) Ping(ctx context.Context) error {
	res, err := e.Client.Ping(e.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch at %s unreachable: %w", e.nodes, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch at %s answered %s", e.nodes, res.Status())
	}
	return nil
}

// Close is a no-op; the client keeps no connections beyond its HTTP transport.
func (e *Elasticsearch) Close() error { return nil }
