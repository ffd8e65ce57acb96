package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/article-registry/internal/storage"
)

func TestWriteCSV(t *testing.T) {
	doc := storage.Document{Articles: []storage.Article{
		{
			ID:         2,
			Authors:    "Smith, A.",
			Title:      storage.String("On \"quotes\""),
			DOI:        storage.String("10.1/abc"),
			Keywords:   []string{"x", "y"},
			Models:     []string{"m"},
			Techniques: []string{"t"},
			Results:    []string{"r1", "r2"},
			Notes:      storage.String("line one\nline two"),
		},
		{ID: 1, Authors: "B"},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, doc))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err, "output is not valid CSV")
	require.Len(t, records, 3, "want header plus 2 rows")

	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"2", "Smith, A.", "On \"quotes\"", "10.1/abc", "x;y", "m", "t", "r1;r2", "line one\nline two"}, records[1])
	assert.Equal(t, []string{"1", "B", "", "", "", "", "", "", ""}, records[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, storage.EmptyDocument()))

	assert.Equal(t, "id,authors,title,doi,keywords,models,techniques,results,notes\n", buf.String())
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "articles.csv")
	doc := storage.Document{Articles: []storage.Article{{ID: 1, Authors: "A"}}}

	require.NoError(t, WriteCSVFile(path, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,authors,title,doi,keywords,models,techniques,results,notes\n1,A,,,,,,,\n", string(data))
}

func TestWriteCSVFileBlockedPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	assert.Error(t, WriteCSVFile(filepath.Join(blocker, "articles.csv"), storage.EmptyDocument()))
}
