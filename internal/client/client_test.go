package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/article-registry/internal/article"
	"github.com/yourusername/article-registry/internal/server"
	"github.com/yourusername/article-registry/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T) (Client, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore(storage.Document{})
	svc := article.NewService(store, article.WithLogger(quietLogger()))
	srv := server.New(server.Config{BasePath: "/api/articles"}, svc, quietLogger())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewClientWithLogger(ts.URL+"/api/articles/", quietLogger()), store
}

func TestClientRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	doc, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Articles)

	created, err := c.Create(ctx, article.Article{
		Authors:    "A. Smith",
		Keywords:   []string{"x"},
		Models:     []string{"m"},
		Techniques: []string{"t"},
		Results:    []string{"r"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	created.Title = storage.String("Changed")
	updated, err := c.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created, updated)

	doc, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []article.Article{created}, doc.Articles)

	require.NoError(t, c.Delete(ctx, 1))

	doc, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Articles)
}

func TestClientErrors(t *testing.T) {
	c, store := newTestClient(t)
	ctx := context.Background()

	_, err := c.Update(ctx, article.Article{ID: 4, Authors: "A"})
	assert.ErrorIs(t, err, article.ErrNotFound)

	err = c.Delete(ctx, 0)
	assert.ErrorIs(t, err, article.ErrBadRequest)

	err = c.Delete(ctx, 4)
	assert.ErrorIs(t, err, article.ErrNotFound)

	store.FailReplaces(errors.New("disk full"))
	_, err = c.Create(ctx, article.Article{Authors: "A"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to save article", apiErr.Message)
}

func TestClientNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer ts.Close()

	c := NewClientWithLogger(ts.URL, quietLogger())
	_, err := c.List(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "status 502")
}
