package eda

import (
	"fmt"
	"math"
	"sort"

	"github.com/datalens/backend/internal/domain/dataset"
)

// Outlier detection methods.
const (
	MethodIQR    = "iqr"
	MethodZScore = "zscore"
	MethodBoth   = "both"
)

// Outliers detects outliers in a numeric column. method is one of iqr,
// zscore or both; an empty method defaults to both. With "both", a value is
// an outlier when either method flags it, annotated with the method(s) that
// triggered.
func (s *Service) Outliers(column, method string) (*OutlierReport, error) {
	table, err := s.table()
	if err != nil {
		return nil, err
	}

	if method == "" {
		method = MethodBoth
	}
	switch method {
	case MethodIQR, MethodZScore, MethodBoth:
	default:
		return nil, dataset.NewInvalidParameterError("unknown method: " + method)
	}

	col, ok := table.Column(column)
	if !ok {
		return nil, dataset.NewColumnNotFoundError(column)
	}
	if col.Kind != dataset.KindNumeric {
		return nil, dataset.NewNotNumericColumnError(column)
	}

	values, rows := col.Floats()
	report := &OutlierReport{
		Column:   column,
		Method:   method,
		Outliers: []OutlierRow{},
	}
	if len(values) == 0 {
		report.Message = fmt.Sprintf("Found 0 outliers in %s", column)
		return report, nil
	}

	var iqrBounds *Bounds
	if method == MethodIQR || method == MethodBoth {
		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)
		q1 := quantileSorted(sorted, 0.25)
		q3 := quantileSorted(sorted, 0.75)
		iqr := q3 - q1
		iqrBounds = &Bounds{
			Lower: q1 - s.cfg.IQRMultiplier*iqr,
			Upper: q3 + s.cfg.IQRMultiplier*iqr,
		}
		report.IQRBounds = iqrBounds
	}

	var zParams *ZScoreParams
	if method == MethodZScore || method == MethodBoth {
		m := mean(values)
		sd := sampleStd(values, m)
		zParams = &ZScoreParams{Mean: m, Std: sd, Threshold: s.cfg.ZScoreThreshold}
		report.ZScore = zParams
	}

	flagged := 0
	for i, v := range values {
		var methods []string
		if iqrBounds != nil && (v < iqrBounds.Lower || v > iqrBounds.Upper) {
			methods = append(methods, MethodIQR)
		}
		// A zero deviation flags nothing: every value is the mean.
		if zParams != nil && zParams.Std > 0 {
			if math.Abs((v-zParams.Mean)/zParams.Std) > zParams.Threshold {
				methods = append(methods, MethodZScore)
			}
		}
		if len(methods) == 0 {
			continue
		}
		flagged++
		if len(report.Outliers) < s.cfg.OutlierReportLimit {
			report.Outliers = append(report.Outliers, OutlierRow{
				RowIndex: rows[i],
				Value:    v,
				Methods:  methods,
			})
		} else {
			report.Truncated = true
		}
	}

	report.OutlierCount = flagged
	report.OutlierPercentage = percentage(flagged, len(values))
	report.Message = fmt.Sprintf("Found %d outliers (%.2f%%) in %s",
		flagged, report.OutlierPercentage, column)
	return report, nil
}
