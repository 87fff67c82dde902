// Package loader parses uploaded files into tabular datasets. CSV, JSON and
// Excel sources are supported; format selection happens on file extension.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/datalens/backend/internal/domain/shared"
)

// Loader parses files into tables using a shared column classifier.
type Loader struct {
	classifier *dataset.Classifier
	maxRows    int
}

// New creates a loader. maxRows caps the number of data rows read from a
// file; zero means unlimited.
func New(classifier *dataset.Classifier, maxRows int) *Loader {
	return &Loader{classifier: classifier, maxRows: maxRows}
}

// SupportedExtensions lists the file extensions Load accepts.
func SupportedExtensions() []string {
	return []string{".csv", ".json", ".xlsx", ".xls"}
}

// Load parses r into a table, picking the parser from the filename extension.
func (l *Loader) Load(filename string, r io.Reader) (*dataset.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return l.LoadCSV(r)
	case ".json":
		return l.LoadJSON(r)
	case ".xlsx", ".xls":
		return l.LoadExcel(r)
	default:
		return nil, shared.NewDomainError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("unsupported file type %q, expected one of %s",
				filepath.Ext(filename), strings.Join(SupportedExtensions(), ", ")))
	}
}
