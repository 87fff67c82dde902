package eda

// Report types returned by the engine. Everything here serializes to JSON
// without NaN or Inf: undefined metrics are nil pointers, which encode as
// null.

// ColumnInfo describes one column in the info report.
type ColumnInfo struct {
	Name              string  `json:"name"`
	Kind              string  `json:"kind"`
	MissingCount      int     `json:"missing_count"`
	MissingPercentage float64 `json:"missing_percentage"`
	DistinctCount     int     `json:"distinct_count"`
}

// InfoReport is the dataset overview.
type InfoReport struct {
	RowCount      int          `json:"row_count"`
	ColumnCount   int          `json:"column_count"`
	Columns       []ColumnInfo `json:"columns"`
	MemoryUsageMB float64      `json:"memory_usage_mb"`
	DuplicateRows int          `json:"duplicate_rows"`
	Message       string       `json:"message"`
}

// NumericStats holds descriptive statistics for a numeric column.
type NumericStats struct {
	Count    int      `json:"count"`
	Mean     *float64 `json:"mean"`
	Std      *float64 `json:"std"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Median   *float64 `json:"median"`
	Q25      *float64 `json:"q25"`
	Q75      *float64 `json:"q75"`
	Skewness *float64 `json:"skewness"`
	Kurtosis *float64 `json:"kurtosis"`
}

// ValueCount is a single value with its frequency.
type ValueCount struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CategoricalStats holds statistics for categorical and text columns. Mode
// ties break by first-encountered order.
type CategoricalStats struct {
	Count         int          `json:"count"`
	DistinctCount int          `json:"distinct_count"`
	Mode          *string      `json:"mode"`
	TopValues     []ValueCount `json:"top_values"`
}

// OrderedStats holds statistics for datetime and boolean columns, where only
// ordering is well-defined.
type OrderedStats struct {
	Count         int     `json:"count"`
	DistinctCount int     `json:"distinct_count"`
	Min           *string `json:"min"`
	Max           *string `json:"max"`
}

// ColumnStatistics is the per-column entry of the statistics report; exactly
// one of the kind-specific blocks is set.
type ColumnStatistics struct {
	Name        string            `json:"name"`
	Kind        string            `json:"kind"`
	Numeric     *NumericStats     `json:"numeric,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty"`
	Ordered     *OrderedStats     `json:"ordered,omitempty"`
}

// StatisticsReport covers every analyzed column.
type StatisticsReport struct {
	Columns         []ColumnStatistics `json:"columns"`
	ColumnsAnalyzed []string           `json:"columns_analyzed"`
	Message         string             `json:"message"`
}

// CorrelationPair names one off-diagonal pair with its coefficient.
type CorrelationPair struct {
	Column1     string  `json:"column1"`
	Column2     string  `json:"column2"`
	Correlation float64 `json:"correlation"`
}

// CorrelationReport holds the symmetric Pearson matrix. Zero-variance pairs
// are null; the diagonal is exactly 1.
type CorrelationReport struct {
	Columns  []string                       `json:"columns"`
	Matrix   map[string]map[string]*float64 `json:"correlation_matrix"`
	TopPairs []CorrelationPair              `json:"top_pairs"`
	Method   string                         `json:"method"`
	Message  string                         `json:"message"`
}

// ColumnQuality is the per-column entry of the quality report.
type ColumnQuality struct {
	Name              string  `json:"name"`
	Kind              string  `json:"kind"`
	MissingCount      int     `json:"missing_count"`
	MissingPercentage float64 `json:"missing_percentage"`
	DistinctCount     int     `json:"distinct_count"`
	UniquePercentage  float64 `json:"unique_percentage"`
	Consistent        bool    `json:"consistent"`
}

// QualityReport summarizes data quality with a weighted 0-100 score.
type QualityReport struct {
	TotalRows           int             `json:"total_rows"`
	TotalColumns        int             `json:"total_columns"`
	TotalCells          int             `json:"total_cells"`
	MissingCells        int             `json:"missing_cells"`
	MissingPercentage   float64         `json:"missing_percentage"`
	DuplicateRows       int             `json:"duplicate_rows"`
	DuplicatePercentage float64         `json:"duplicate_percentage"`
	Columns             []ColumnQuality `json:"column_quality"`
	QualityScore        float64         `json:"quality_score"`
	Message             string          `json:"message"`
}

// ValueCountsReport lists the most frequent values of one column.
type ValueCountsReport struct {
	Column        string       `json:"column"`
	TotalDistinct int          `json:"total_distinct"`
	NonMissing    int          `json:"non_missing"`
	Values        []ValueCount `json:"value_counts"`
	Other         *ValueCount  `json:"other,omitempty"`
	Message       string       `json:"message"`
}

// Bounds is an inclusive value interval.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ZScoreParams records the parameters the z-score method ran with.
type ZScoreParams struct {
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Threshold float64 `json:"threshold"`
}

// OutlierRow is a flagged row with the method(s) that triggered.
type OutlierRow struct {
	RowIndex int      `json:"row_index"`
	Value    float64  `json:"value"`
	Methods  []string `json:"methods"`
}

// OutlierReport is the result of outlier detection on one column.
type OutlierReport struct {
	Column            string        `json:"column"`
	Method            string        `json:"method"`
	OutlierCount      int           `json:"outlier_count"`
	OutlierPercentage float64       `json:"outlier_percentage"`
	IQRBounds         *Bounds       `json:"iqr_bounds,omitempty"`
	ZScore            *ZScoreParams `json:"zscore,omitempty"`
	Outliers          []OutlierRow  `json:"outliers"`
	Truncated         bool          `json:"truncated"`
	Message           string        `json:"message"`
}

// FullReport composes the individual reports. Correlations is omitted when
// fewer than two numeric columns exist.
type FullReport struct {
	Info         *InfoReport        `json:"basic_info"`
	Statistics   *StatisticsReport  `json:"statistics"`
	Correlations *CorrelationReport `json:"correlations,omitempty"`
	Quality      *QualityReport     `json:"data_quality"`
	Message      string             `json:"message"`
}
