package dataset

import (
	"strconv"
	"strings"

	"github.com/datalens/backend/internal/domain/shared"
)

// Cell is a single nullable value. Cells keep the textual form produced by
// the loader; numeric interpretation happens per column kind.
type Cell struct {
	Value string
	Null  bool
}

// Column is an ordered sequence of cells with a name and an inferred kind.
type Column struct {
	Name  string
	Kind  ColumnKind
	Cells []Cell
}

// Len returns the number of cells (including missing ones).
func (c *Column) Len() int {
	return len(c.Cells)
}

// MissingCount returns the number of null cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.Null {
			n++
		}
	}
	return n
}

// DistinctCount returns the number of distinct non-missing values.
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{}, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.Null {
			seen[cell.Value] = struct{}{}
		}
	}
	return len(seen)
}

// Floats returns the parsed non-missing numeric values and their original row
// indices. Cells that fail to parse are skipped; for columns classified
// numeric every non-missing cell parses by construction.
func (c *Column) Floats() ([]float64, []int) {
	values := make([]float64, 0, len(c.Cells))
	rows := make([]int, 0, len(c.Cells))
	for i, cell := range c.Cells {
		if cell.Null {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell.Value), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
		rows = append(rows, i)
	}
	return values, rows
}

// Strings returns the non-missing values in row order.
func (c *Column) Strings() []string {
	values := make([]string, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.Null {
			values = append(values, cell.Value)
		}
	}
	return values
}

// Table is an immutable in-memory rectangular dataset. Columns are named,
// typed and share the same row count.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable validates the column set and builds a table. Column names must be
// unique, kinds must be known and every column must have the same length.
func NewTable(columns []Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "table must have at least one column")
	}

	rows := columns[0].Len()
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if col.Name == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "column name must not be empty")
		}
		if !col.Kind.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "column "+col.Name+" has unknown kind "+col.Kind.String())
		}
		if _, dup := index[col.Name]; dup {
			return nil, shared.NewDomainError("INVALID_INPUT", "duplicate column name: "+col.Name)
		}
		if col.Len() != rows {
			return nil, shared.NewDomainError("INVALID_INPUT", "column "+col.Name+" has mismatched row count")
		}
		index[col.Name] = i
	}

	return &Table{columns: columns, index: index, rows: rows}, nil
}

// BuildTable constructs a table from column names and row-major records,
// classifying every column with the given classifier. Records shorter than
// the header are padded with missing cells. A nil classifier uses defaults.
func BuildTable(names []string, records [][]string, classifier *Classifier) (*Table, error) {
	if classifier == nil {
		classifier = NewClassifier(DefaultClassifierConfig())
	}

	columns := make([]Column, len(names))
	for i, name := range names {
		cells := make([]Cell, len(records))
		raw := make([]string, len(records))
		for r, record := range records {
			var v string
			if i < len(record) {
				v = record[i]
			}
			raw[r] = v
			if IsMissing(v) {
				cells[r] = Cell{Null: true}
			} else {
				cells[r] = Cell{Value: v}
			}
		}
		columns[i] = Column{
			Name:  name,
			Kind:  classifier.Classify(raw),
			Cells: cells,
		}
	}

	return NewTable(columns)
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return t.rows
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Columns returns the columns in declaration order.
func (t *Table) Columns() []Column {
	return t.columns
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.columns[i], true
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.columns))
	for c := range t.columns {
		row[c] = t.columns[c].Cells[i]
	}
	return row
}

// DuplicateRowCount counts rows that are fully identical to an earlier row
// across all columns. Missing cells in the same column compare equal.
func (t *Table) DuplicateRowCount() int {
	seen := make(map[string]struct{}, t.rows)
	dups := 0
	var sb strings.Builder
	for r := 0; r < t.rows; r++ {
		sb.Reset()
		for c := range t.columns {
			cell := t.columns[c].Cells[r]
			if cell.Null {
				sb.WriteByte('n')
			} else {
				// Length-prefixed so cell values cannot collide across
				// cell boundaries regardless of their content.
				sb.WriteByte('v')
				sb.WriteString(strconv.Itoa(len(cell.Value)))
				sb.WriteByte(':')
				sb.WriteString(cell.Value)
			}
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			dups++
		} else {
			seen[key] = struct{}{}
		}
	}
	return dups
}

// EstimatedBytes approximates the in-memory footprint of the cell data.
func (t *Table) EstimatedBytes() int64 {
	const cellOverhead = 24 // string header + null flag, padded
	var total int64
	for _, col := range t.columns {
		total += int64(len(col.Name))
		for _, cell := range col.Cells {
			total += cellOverhead + int64(len(cell.Value))
		}
	}
	return total
}
