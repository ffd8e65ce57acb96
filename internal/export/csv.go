// Package export renders the article document in tabular formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourusername/article-registry/internal/storage"
)

// ListSeparator joins list fields inside a single CSV cell.
const ListSeparator = ";"

// Header is the CSV header row.
var Header = []string{"id", "authors", "title", "doi", "keywords", "models", "techniques", "results", "notes"}

// WriteCSV writes every article in doc as one CSV row, in document order.
func WriteCSV(w io.Writer, doc storage.Document) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}

	for _, a := range doc.Articles {
		row := []string{
			strconv.Itoa(a.ID),
			a.Authors,
			storage.StringValue(a.Title),
			storage.StringValue(a.DOI),
			strings.Join(a.Keywords, ListSeparator),
			strings.Join(a.Models, ListSeparator),
			strings.Join(a.Techniques, ListSeparator),
			strings.Join(a.Results, ListSeparator),
			storage.StringValue(a.Notes),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the CSV export to path, creating parent directories.
func WriteCSVFile(path string, doc storage.Document) error {
	dir := filepath.Dir(path)
	// #nosec G301 -- 0755 is appropriate for output directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// #nosec G304 -- path is user-provided output file path
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(file, doc); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
