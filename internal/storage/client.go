// Package storage provides the Elasticsearch-backed article index.
package storage

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	es "github.com/elastic/go-elasticsearch/v8"
)

// DefaultIndexName is the single shared index for all categories.
const DefaultIndexName = "prothomalo_articles"

// Config holds Elasticsearch connection settings.
type Config struct {
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	APIKey    string   `yaml:"api_key"`
	IndexName string   `yaml:"index_name"`
	// InsecureSkipVerify disables TLS certificate verification for
	// development clusters with self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// NewConfig returns an Elasticsearch configuration with default values.
func NewConfig() *Config {
	return &Config{
		Addresses: []string{"http://localhost:9200"},
		IndexName: DefaultIndexName,
	}
}

// NewClient creates an Elasticsearch client from the configuration.
func NewClient(cfg *Config) (*es.Client, error) {
	if cfg == nil {
		return nil, errors.New("elasticsearch configuration is required")
	}
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("at least one elasticsearch address is required")
	}

	clientConfig := es.Config{
		Addresses: cfg.Addresses,
	}

	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	} else if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	if cfg.InsecureSkipVerify {
		clientConfig.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				//nolint:gosec // configurable for development clusters
				InsecureSkipVerify: true,
			},
		}
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return client, nil
}
