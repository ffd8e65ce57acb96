// Package client provides a Go client for the article registry HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/article-registry/internal/article"
	"github.com/yourusername/article-registry/internal/storage"
)

// Client is an interface for calling the article registry API.
type Client interface {
	List(ctx context.Context) (storage.Document, error)
	Create(ctx context.Context, fields article.Article) (article.Article, error)
	Update(ctx context.Context, a article.Article) (article.Article, error)
	Delete(ctx context.Context, id int) error
}

// APIError is a non-200 response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("article api error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the service error it was produced from.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return article.ErrNotFound
	case http.StatusBadRequest:
		return article.ErrBadRequest
	default:
		return nil
	}
}

// httpClient is the concrete implementation of Client.
type httpClient struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// result mirrors the server's mutating response envelope.
type result struct {
	Success bool             `json:"success"`
	Article *article.Article `json:"article,omitempty"`
	Message string           `json:"message,omitempty"`
}

// NewClient creates a client for the resource at endpoint, for example
// http://localhost:8080/api/articles.
func NewClient(endpoint string) Client {
	return NewClientWithLogger(endpoint, slog.Default())
}

// NewClientWithLogger creates a client with a custom logger.
func NewClientWithLogger(endpoint string, logger *slog.Logger) Client {
	return &httpClient{
		client:   &http.Client{Timeout: 30 * time.Second},
		endpoint: strings.TrimRight(endpoint, "/"),
		logger:   logger.With("component", "client"),
	}
}

// List fetches the whole document.
func (c *httpClient) List(ctx context.Context) (storage.Document, error) {
	var doc storage.Document
	if err := c.do(ctx, http.MethodGet, c.endpoint, nil, &doc); err != nil {
		return storage.Document{}, err
	}
	if doc.Articles == nil {
		doc.Articles = []storage.Article{}
	}
	return doc, nil
}

// Create submits a new article and returns it with its assigned id.
func (c *httpClient) Create(ctx context.Context, fields article.Article) (article.Article, error) {
	return c.write(ctx, http.MethodPost, fields)
}

// Update replaces an existing article.
func (c *httpClient) Update(ctx context.Context, a article.Article) (article.Article, error) {
	return c.write(ctx, http.MethodPut, a)
}

// Delete removes the article with the given id.
func (c *httpClient) Delete(ctx context.Context, id int) error {
	u := c.endpoint + "?" + url.Values{"id": {strconv.Itoa(id)}}.Encode()
	var res result
	return c.do(ctx, http.MethodDelete, u, nil, &res)
}

func (c *httpClient) write(ctx context.Context, method string, a article.Article) (article.Article, error) {
	jsonData, err := json.Marshal(a)
	if err != nil {
		return article.Article{}, err
	}

	var res result
	if err := c.do(ctx, method, c.endpoint, jsonData, &res); err != nil {
		return article.Article{}, err
	}
	if res.Article == nil {
		return article.Article{}, fmt.Errorf("%s response has no article", method)
	}
	return *res.Article, nil
}

func (c *httpClient) do(ctx context.Context, method, target string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to create HTTP request", "error", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.ErrorContext(ctx, "HTTP request failed",
			"method", method,
			"error", err,
			"duration_ms", duration.Milliseconds())
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.DebugContext(ctx, "Received response from article API",
		"method", method,
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to read response body", "error", err)
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var res result
		message := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &res) == nil && res.Message != "" {
			message = res.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.ErrorContext(ctx, "Failed to unmarshal response", "error", err)
		return err
	}
	return nil
}

var _ Client = &httpClient{}
