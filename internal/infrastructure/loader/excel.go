package loader

import (
	"fmt"
	"io"

	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/datalens/backend/internal/domain/shared"
	"github.com/xuri/excelize/v2"
)

// LoadExcel parses the first sheet of an xlsx workbook into a table. The
// first row is treated as the header; empty header cells get positional
// names.
func (l *Loader) LoadExcel(r io.Reader) (*dataset.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_EXCEL", "failed to open workbook: "+err.Error())
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, shared.NewDomainError("EMPTY_FILE", "workbook contains no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, shared.NewDomainError("EMPTY_FILE", "file contains no data")
	}

	header := rows[0]
	for i, name := range header {
		if name == "" {
			header[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	records := rows[1:]
	if l.maxRows > 0 && len(records) > l.maxRows {
		records = records[:l.maxRows]
	}

	return dataset.BuildTable(header, records, l.classifier)
}
