// Package opensearch provides the OpenSearch-backed passage retriever. It is
// the reference implementation of the engine's retrieval collaborator; the
// engine core never depends on this package.
package opensearch

import (
	"context"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/pkg/errors"
)

// ClientConfig holds the connection parameters.
type ClientConfig struct {
	Addresses           []string
	Username            string
	Password            string
	MaxRetries          int
	RetryBackoff        time.Duration
	RequestTimeout      time.Duration
	MaxIdleConnsPerHost int
}

// Client wraps the OpenSearch connection.
type Client struct {
	os     *opensearch.Client
	config ClientConfig
	log    logging.Logger
}

// NewClient builds and verifies an OpenSearch connection.
func NewClient(ctx context.Context, cfg ClientConfig, log logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "opensearch addresses are required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = 10
	}

	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  func(int) time.Duration { return cfg.RetryBackoff },
		RetryOnStatus: []int{429, 502, 503, 504},
		Transport: &http.Transport{
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRetrievalUnavailable, "creating opensearch client")
	}

	c := &Client{os: osClient, config: cfg, log: log.Named("opensearch")}
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.os.Ping(c.os.Ping.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeRetrievalUnavailable, "pinging opensearch")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.New(errors.ErrCodeRetrievalUnavailable, "opensearch ping returned error").
			WithDetail(resp.Status())
	}
	return nil
}
