package eda

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/datalens/backend/internal/application/session"
	"github.com/datalens/backend/internal/domain/dataset"
)

// Config holds the engine's policy knobs with documented defaults.
type Config struct {
	// TopKPairs caps the strongest-correlation pair list.
	TopKPairs int
	// ValueCountsTopN is the default top_n for value counts.
	ValueCountsTopN int
	// OutlierReportLimit caps the flagged-row list in outlier reports.
	OutlierReportLimit int
	// ZScoreThreshold is the |z| cutoff for the zscore method.
	ZScoreThreshold float64
	// IQRMultiplier widens the quartile bounds for the iqr method.
	IQRMultiplier float64
	// Quality score weights, applied to completeness, uniqueness and
	// consistency in that order.
	CompletenessWeight float64
	UniquenessWeight   float64
	ConsistencyWeight  float64
	// DateLayouts order datetime columns for min/max reporting.
	DateLayouts []string
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		TopKPairs:          10,
		ValueCountsTopN:    20,
		OutlierReportLimit: 100,
		ZScoreThreshold:    3,
		IQRMultiplier:      1.5,
		CompletenessWeight: 0.5,
		UniquenessWeight:   0.3,
		ConsistencyWeight:  0.2,
		DateLayouts:        dataset.DefaultClassifierConfig().DateLayouts,
	}
}

// Service is the stateless EDA engine. All operations compute over the
// snapshot held by the session at call time; the service itself carries no
// mutable state.
type Service struct {
	session *session.Session
	cfg     Config
}

// NewService creates an engine bound to a session. Zero config fields fall
// back to defaults.
func NewService(sess *session.Session, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.TopKPairs <= 0 {
		cfg.TopKPairs = def.TopKPairs
	}
	if cfg.ValueCountsTopN <= 0 {
		cfg.ValueCountsTopN = def.ValueCountsTopN
	}
	if cfg.OutlierReportLimit <= 0 {
		cfg.OutlierReportLimit = def.OutlierReportLimit
	}
	if cfg.ZScoreThreshold <= 0 {
		cfg.ZScoreThreshold = def.ZScoreThreshold
	}
	if cfg.IQRMultiplier <= 0 {
		cfg.IQRMultiplier = def.IQRMultiplier
	}
	if cfg.CompletenessWeight+cfg.UniquenessWeight+cfg.ConsistencyWeight == 0 {
		cfg.CompletenessWeight = def.CompletenessWeight
		cfg.UniquenessWeight = def.UniquenessWeight
		cfg.ConsistencyWeight = def.ConsistencyWeight
	}
	if len(cfg.DateLayouts) == 0 {
		cfg.DateLayouts = def.DateLayouts
	}
	return &Service{session: sess, cfg: cfg}
}

// DefaultValueCountsTopN exposes the configured default for the transport layer.
func (s *Service) DefaultValueCountsTopN() int {
	return s.cfg.ValueCountsTopN
}

func (s *Service) table() (*dataset.Table, error) {
	snap, err := s.session.Current()
	if err != nil {
		return nil, err
	}
	return snap.Table, nil
}

// Info returns the dataset overview: shape, per-column missing/distinct
// counts, duplicates and an approximate memory footprint.
func (s *Service) Info() (*InfoReport, error) {
	table, err := s.table()
	if err != nil {
		return nil, err
	}

	rows := table.RowCount()
	columns := make([]ColumnInfo, 0, table.ColumnCount())
	for _, col := range table.Columns() {
		missing := col.MissingCount()
		columns = append(columns, ColumnInfo{
			Name:              col.Name,
			Kind:              col.Kind.String(),
			MissingCount:      missing,
			MissingPercentage: percentage(missing, rows),
			DistinctCount:     col.DistinctCount(),
		})
	}

	memMB := round2(float64(table.EstimatedBytes()) / 1024 / 1024)
	return &InfoReport{
		RowCount:      rows,
		ColumnCount:   table.ColumnCount(),
		Columns:       columns,
		MemoryUsageMB: memMB,
		DuplicateRows: table.DuplicateRowCount(),
		Message:       fmt.Sprintf("Dataset: %d rows x %d columns, %.2f MB", rows, table.ColumnCount(), memMB),
	}, nil
}

// Statistics computes descriptive statistics per column. An empty filter
// analyzes every column; named columns must exist.
func (s *Service) Statistics(columns []string) (*StatisticsReport, error) {
	table, err := s.table()
	if err != nil {
		return nil, err
	}

	selected := table.Columns()
	if len(columns) > 0 {
		picked := make([]dataset.Column, 0, len(columns))
		for _, name := range columns {
			col, ok := table.Column(name)
			if !ok {
				return nil, dataset.NewColumnNotFoundError(name)
			}
			picked = append(picked, *col)
		}
		selected = picked
	}

	report := &StatisticsReport{
		Columns:         make([]ColumnStatistics, 0, len(selected)),
		ColumnsAnalyzed: make([]string, 0, len(selected)),
	}
	for i := range selected {
		col := &selected[i]
		entry := ColumnStatistics{Name: col.Name, Kind: col.Kind.String()}
		switch col.Kind {
		case dataset.KindNumeric:
			entry.Numeric = numericStats(col)
		case dataset.KindCategorical, dataset.KindText:
			entry.Categorical = categoricalStats(col)
		case dataset.KindDatetime:
			entry.Ordered = s.datetimeStats(col)
		case dataset.KindBoolean:
			entry.Ordered = booleanStats(col)
		}
		report.Columns = append(report.Columns, entry)
		report.ColumnsAnalyzed = append(report.ColumnsAnalyzed, col.Name)
	}
	report.Message = fmt.Sprintf("Computed statistics for %d columns", len(report.Columns))
	return report, nil
}

func numericStats(col *dataset.Column) *NumericStats {
	values, _ := col.Floats()
	stats := &NumericStats{Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	m := mean(values)
	sd := sampleStd(values, m)
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	stats.Mean = &m
	stats.Std = &sd
	stats.Min = &lo
	stats.Max = &hi

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	median := quantileSorted(sorted, 0.5)
	q25 := quantileSorted(sorted, 0.25)
	q75 := quantileSorted(sorted, 0.75)
	stats.Median = &median
	stats.Q25 = &q25
	stats.Q75 = &q75

	stats.Skewness = skewness(values)
	stats.Kurtosis = kurtosis(values)
	return stats
}

func categoricalStats(col *dataset.Column) *CategoricalStats {
	values := col.Strings()
	counts, order := frequency(values)
	stats := &CategoricalStats{
		Count:         len(values),
		DistinctCount: len(order),
	}
	if len(order) == 0 {
		return stats
	}
	ranked := rankByCount(counts, order)
	stats.Mode = &ranked[0]

	top := ranked
	if len(top) > 5 {
		top = top[:5]
	}
	for _, v := range top {
		stats.TopValues = append(stats.TopValues, ValueCount{
			Value:      v,
			Count:      counts[v],
			Percentage: percentage(counts[v], len(values)),
		})
	}
	return stats
}

func (s *Service) datetimeStats(col *dataset.Column) *OrderedStats {
	values := col.Strings()
	stats := &OrderedStats{Count: len(values), DistinctCount: col.DistinctCount()}
	if len(values) == 0 {
		return stats
	}

	layout := ""
	for _, l := range s.cfg.DateLayouts {
		if _, err := time.Parse(l, values[0]); err == nil {
			layout = l
			break
		}
	}
	if layout == "" {
		// Unparseable under the configured layouts; fall back to lexical order.
		return lexicalMinMax(values, stats)
	}

	minIdx, maxIdx := 0, 0
	minT, _ := time.Parse(layout, values[0])
	maxT := minT
	for i, v := range values[1:] {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		if t.Before(minT) {
			minT, minIdx = t, i+1
		}
		if t.After(maxT) {
			maxT, maxIdx = t, i+1
		}
	}
	stats.Min = &values[minIdx]
	stats.Max = &values[maxIdx]
	return stats
}

func booleanStats(col *dataset.Column) *OrderedStats {
	values := col.Strings()
	stats := &OrderedStats{Count: len(values), DistinctCount: col.DistinctCount()}
	if len(values) == 0 {
		return stats
	}
	return lexicalMinMax(values, stats)
}

func lexicalMinMax(values []string, stats *OrderedStats) *OrderedStats {
	minIdx, maxIdx := 0, 0
	for i, v := range values {
		if v < values[minIdx] {
			minIdx = i
		}
		if v > values[maxIdx] {
			maxIdx = i
		}
	}
	stats.Min = &values[minIdx]
	stats.Max = &values[maxIdx]
	return stats
}

// Correlations computes the pairwise Pearson matrix over numeric columns,
// using pairwise-complete observations. Zero-variance pairs are null.
func (s *Service) Correlations() (*CorrelationReport, error) {
	table, err := s.table()
	if err != nil {
		return nil, err
	}

	type series struct {
		name   string
		values []float64 // aligned to table rows, NaN when missing
	}
	numeric := make([]series, 0, table.ColumnCount())
	for _, col := range table.Columns() {
		if col.Kind != dataset.KindNumeric {
			continue
		}
		aligned := make([]float64, table.RowCount())
		for i := range aligned {
			aligned[i] = math.NaN()
		}
		values, rows := col.Floats()
		for i, r := range rows {
			aligned[r] = values[i]
		}
		numeric = append(numeric, series{name: col.Name, values: aligned})
	}
	if len(numeric) < 2 {
		return nil, dataset.ErrInsufficientNumericColumns
	}

	matrix := make(map[string]map[string]*float64, len(numeric))
	names := make([]string, len(numeric))
	for i, s := range numeric {
		names[i] = s.name
		matrix[s.name] = make(map[string]*float64, len(numeric))
	}

	one := 1.0
	var pairs []CorrelationPair
	for i := range numeric {
		matrix[numeric[i].name][numeric[i].name] = &one
		for j := i + 1; j < len(numeric); j++ {
			var x, y []float64
			for r := 0; r < table.RowCount(); r++ {
				a, b := numeric[i].values[r], numeric[j].values[r]
				if math.IsNaN(a) || math.IsNaN(b) {
					continue
				}
				x = append(x, a)
				y = append(y, b)
			}
			r, ok := pearson(x, y)
			if !ok {
				matrix[numeric[i].name][numeric[j].name] = nil
				matrix[numeric[j].name][numeric[i].name] = nil
				continue
			}
			v := round4(r)
			matrix[numeric[i].name][numeric[j].name] = &v
			matrix[numeric[j].name][numeric[i].name] = &v
			pairs = append(pairs, CorrelationPair{
				Column1:     numeric[i].name,
				Column2:     numeric[j].name,
				Correlation: v,
			})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		pa, pb := math.Abs(pairs[a].Correlation), math.Abs(pairs[b].Correlation)
		if pa != pb {
			return pa > pb
		}
		if pairs[a].Column1 != pairs[b].Column1 {
			return pairs[a].Column1 < pairs[b].Column1
		}
		return pairs[a].Column2 < pairs[b].Column2
	})
	if len(pairs) > s.cfg.TopKPairs {
		pairs = pairs[:s.cfg.TopKPairs]
	}

	return &CorrelationReport{
		Columns:  names,
		Matrix:   matrix,
		TopPairs: pairs,
		Method:   "pearson",
		Message:  fmt.Sprintf("Computed pearson correlations for %d columns", len(names)),
	}, nil
}

// Quality computes per-column quality metrics and the weighted overall score.
func (s *Service) Quality() (*QualityReport, error) {
	table, err := s.table()
	if err != nil {
		return nil, err
	}

	rows := table.RowCount()
	totalCells := rows * table.ColumnCount()
	missingCells := 0
	consistent := 0

	cols := table.Columns()
	columns := make([]ColumnQuality, 0, len(cols))
	for i := range cols {
		col := &cols[i]
		missing := col.MissingCount()
		missingCells += missing
		ok := isConsistent(col)
		if ok {
			consistent++
		}
		columns = append(columns, ColumnQuality{
			Name:              col.Name,
			Kind:              col.Kind.String(),
			MissingCount:      missing,
			MissingPercentage: percentage(missing, rows),
			DistinctCount:     col.DistinctCount(),
			UniquePercentage:  percentage(col.DistinctCount(), rows),
			Consistent:        ok,
		})
	}

	dups := table.DuplicateRowCount()
	completeness := 100 - percentage(missingCells, totalCells)
	uniqueness := 100 - percentage(dups, rows)
	consistency := percentage(consistent, table.ColumnCount())
	score := round2(s.cfg.CompletenessWeight*completeness +
		s.cfg.UniquenessWeight*uniqueness +
		s.cfg.ConsistencyWeight*consistency)

	return &QualityReport{
		TotalRows:           rows,
		TotalColumns:        table.ColumnCount(),
		TotalCells:          totalCells,
		MissingCells:        missingCells,
		MissingPercentage:   percentage(missingCells, totalCells),
		DuplicateRows:       dups,
		DuplicatePercentage: percentage(dups, rows),
		Columns:             columns,
		QualityScore:        score,
		Message:             fmt.Sprintf("Data quality: %.1f%% complete, score %.1f/100", completeness, score),
	}, nil
}

// isConsistent flags columns whose non-missing values mix numeric and
// non-numeric text, the usual sign of a numeric column that had to coerce.
// Numeric, boolean and datetime columns are uniform by construction.
func isConsistent(col *dataset.Column) bool {
	if col.Kind != dataset.KindText && col.Kind != dataset.KindCategorical {
		return true
	}
	values, _ := col.Floats()
	parsed := len(values)
	total := col.Len() - col.MissingCount()
	return parsed == 0 || parsed == total
}

// ValueCounts returns up to topN most frequent values of a column, with an
// "other" bucket when the distinct count exceeds topN. Ties break by
// first-encountered order.
func (s *Service) ValueCounts(column string, topN int) (*ValueCountsReport, error) {
	table, err := s.table()
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		return nil, dataset.NewInvalidParameterError("top_n must be positive")
	}
	col, ok := table.Column(column)
	if !ok {
		return nil, dataset.NewColumnNotFoundError(column)
	}

	values := col.Strings()
	counts, order := frequency(values)
	ranked := rankByCount(counts, order)

	report := &ValueCountsReport{
		Column:        column,
		TotalDistinct: len(ranked),
		NonMissing:    len(values),
		Message:       fmt.Sprintf("Top %d values for %s", topN, column),
	}

	top := ranked
	if len(top) > topN {
		top = top[:topN]
	}
	for _, v := range top {
		report.Values = append(report.Values, ValueCount{
			Value:      v,
			Count:      counts[v],
			Percentage: percentage(counts[v], len(values)),
		})
	}
	if len(ranked) > topN {
		other := 0
		for _, v := range ranked[topN:] {
			other += counts[v]
		}
		report.Other = &ValueCount{
			Value:      "other",
			Count:      other,
			Percentage: percentage(other, len(values)),
		}
	}
	return report, nil
}

// FullReport composes info, statistics, correlations and quality. The
// correlation section is omitted, not fatal, when fewer than two numeric
// columns exist.
func (s *Service) FullReport() (*FullReport, error) {
	if _, err := s.table(); err != nil {
		return nil, err
	}

	info, err := s.Info()
	if err != nil {
		return nil, err
	}
	stats, err := s.Statistics(nil)
	if err != nil {
		return nil, err
	}
	quality, err := s.Quality()
	if err != nil {
		return nil, err
	}

	report := &FullReport{
		Info:       info,
		Statistics: stats,
		Quality:    quality,
		Message:    "Complete EDA report generated",
	}
	corr, err := s.Correlations()
	if err == nil {
		report.Correlations = corr
	} else if err != dataset.ErrInsufficientNumericColumns {
		return nil, err
	}
	return report, nil
}

// frequency counts values preserving first-encounter order.
func frequency(values []string) (map[string]int, []string) {
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	return counts, order
}

// rankByCount sorts values by descending count; equal counts keep
// first-encounter order.
func rankByCount(counts map[string]int, order []string) []string {
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	return ranked
}
