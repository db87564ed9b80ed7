// Package embedding generates vector embeddings for entity text via an
// OpenAI-compatible embeddings endpoint.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-kgraph/pkg/logging"
)

// Client turns text into embedding vectors
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

var validate = validator.New()

// Config holds embedding endpoint settings
type Config struct {
	BaseURL string `validate:"required,url"`
	APIKey  string `validate:"required"`
	Model   string `validate:"required"`
	// Dimensions is the requested vector width; must match the store-side
	// vector index
	Dimensions int           `validate:"min=1"`
	Timeout    time.Duration `validate:"min=0"`
}

// DefaultConfig returns the settings matching the store's default vector
// index
func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://api.openai.com/v1",
		Model:      "text-embedding-3-small",
		Dimensions: 384,
		Timeout:    30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from KGRAPH_EMBEDDING_* variables, falling
// back to OPENAI_API_KEY for the key
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("KGRAPH_EMBEDDING_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("KGRAPH_EMBEDDING_API_KEY"); v != "" {
		cfg.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("KGRAPH_EMBEDDING_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("KGRAPH_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Dimensions = n
		}
	}
	return cfg
}

// Validate checks the config via struct tags
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid embedding config: %w", err)
	}
	return nil
}

// HTTPClient is the production Client over the OpenAI embeddings API
type HTTPClient struct {
	cfg    Config
	client *http.Client
	logger logging.Logger
}

// NewHTTPClient builds a client from a validated config
func NewHTTPClient(cfg Config, logger logging.Logger) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logging.OrNop(logger).With(logging.Component("embedding-client")),
	}, nil
}

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the vector for one text
func (c *HTTPClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns vectors for several texts in one request, in input order
func (c *HTTPClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts to embed")
	}

	body, err := json.Marshal(embeddingRequest{
		Input:      texts,
		Model:      c.cfg.Model,
		Dimensions: c.cfg.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("encode embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, detail)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding endpoint returned %d vectors for %d inputs", len(parsed.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding endpoint returned out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	c.logger.Debug("embeddings generated",
		logging.Count(len(texts)),
		logging.Latency(time.Since(start)))
	return vectors, nil
}
