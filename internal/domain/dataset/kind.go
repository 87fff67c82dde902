package dataset

// ColumnKind is the inferred semantic type of a column.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindDatetime    ColumnKind = "datetime"
	KindBoolean     ColumnKind = "boolean"
	KindText        ColumnKind = "text"
)

// String returns the wire representation of the kind.
func (k ColumnKind) String() string {
	return string(k)
}

// IsValid reports whether k is one of the known kinds.
func (k ColumnKind) IsValid() bool {
	switch k {
	case KindNumeric, KindCategorical, KindDatetime, KindBoolean, KindText:
		return true
	}
	return false
}
