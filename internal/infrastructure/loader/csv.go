package loader

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/datalens/backend/internal/domain/shared"
)

// LoadCSV parses a CSV stream with a header row into a table. Short records
// are padded with missing cells; quoting follows RFC 4180.
func (l *Loader) LoadCSV(r io.Reader) (*dataset.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, shared.NewDomainError("EMPTY_FILE", "file contains no data")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", len(records)+2, err)
		}
		records = append(records, record)
		if l.maxRows > 0 && len(records) >= l.maxRows {
			break
		}
	}

	return dataset.BuildTable(header, records, l.classifier)
}
