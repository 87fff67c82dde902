package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/datalens/backend/internal/domain/shared"
)

// LoadJSON parses a JSON array of flat objects into a table. Column order
// follows first appearance of each key across the records. Nested values are
// rejected; null becomes a missing cell.
func (l *Loader) LoadJSON(r io.Reader) (*dataset.Table, error) {
	var raw []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, shared.NewDomainError("INVALID_JSON", "expected a JSON array of objects: "+err.Error())
	}
	if len(raw) == 0 {
		return nil, shared.NewDomainError("EMPTY_FILE", "file contains no data")
	}
	if l.maxRows > 0 && len(raw) > l.maxRows {
		raw = raw[:l.maxRows]
	}

	var names []string
	index := map[string]int{}
	rows := make([]map[string]*string, 0, len(raw))

	for i, msg := range raw {
		keys, values, err := decodeFlatObject(msg)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_JSON",
				fmt.Sprintf("record %d: %s", i, err.Error()))
		}
		row := make(map[string]*string, len(keys))
		for j, key := range keys {
			if _, ok := index[key]; !ok {
				index[key] = len(names)
				names = append(names, key)
			}
			row[key] = values[j]
		}
		rows = append(rows, row)
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		record := make([]string, len(names))
		for j, name := range names {
			if v, ok := row[name]; ok && v != nil {
				record[j] = *v
			}
		}
		records[i] = record
	}

	return dataset.BuildTable(names, records, l.classifier)
}

// decodeFlatObject decodes a single JSON object preserving key order.
// Scalar values are stringified; null yields a nil pointer.
func decodeFlatObject(msg json.RawMessage) ([]string, []*string, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected an object, got %v", tok)
	}

	var keys []string
	var values []*string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		switch v := valTok.(type) {
		case nil:
			keys = append(keys, key)
			values = append(values, nil)
		case string:
			keys = append(keys, key)
			values = append(values, &v)
		case json.Number:
			s := v.String()
			keys = append(keys, key)
			values = append(values, &s)
		case bool:
			s := strconv.FormatBool(v)
			keys = append(keys, key)
			values = append(values, &s)
		case json.Delim:
			return nil, nil, fmt.Errorf("field %q is nested, only flat objects are supported", key)
		default:
			return nil, nil, fmt.Errorf("field %q has unsupported type", key)
		}
	}
	return keys, values, nil
}
