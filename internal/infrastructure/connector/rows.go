package connector

import (
	"database/sql"
)

// scanRows reads up to maxRows rows into string records. SQL NULL scans to
// an empty cell, which the dataset layer treats as missing.
func scanRows(rows *sql.Rows, maxRows int) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &ResultSet{Columns: columns}
	holders := make([]any, len(columns))
	values := make([]sql.NullString, len(columns))
	for i := range holders {
		holders[i] = &values[i]
	}

	for rows.Next() {
		if len(result.Records) >= maxRows {
			result.Truncated = true
			break
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, err
		}
		record := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			}
		}
		result.Records = append(result.Records, record)
	}
	return result, rows.Err()
}
