package dataset

import (
	"strconv"
	"strings"
	"time"
)

// ClassifierConfig holds the type-inference policy knobs. The thresholds are
// heuristics, not laws; tests pin the documented defaults.
type ClassifierConfig struct {
	// CategoricalRatio is the distinct/non-missing ratio below which a
	// repeating column is considered categorical.
	CategoricalRatio float64
	// CategoricalMaxDistinct caps the absolute distinct count for the
	// categorical kind.
	CategoricalMaxDistinct int
	// DateLayouts are tried in order; a column is datetime only when every
	// non-missing value parses under a single layout.
	DateLayouts []string
}

// DefaultClassifierConfig returns the documented default policy.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		CategoricalRatio:       0.5,
		CategoricalMaxDistinct: 50,
		DateLayouts: []string{
			"2006-01-02",
			"2006-01-02 15:04:05",
			time.RFC3339,
			"01/02/2006",
			"2006/01/02",
		},
	}
}

// Classifier infers a semantic kind per column from raw values.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a classifier, filling zero config fields with defaults.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	def := DefaultClassifierConfig()
	if cfg.CategoricalRatio <= 0 {
		cfg.CategoricalRatio = def.CategoricalRatio
	}
	if cfg.CategoricalMaxDistinct <= 0 {
		cfg.CategoricalMaxDistinct = def.CategoricalMaxDistinct
	}
	if len(cfg.DateLayouts) == 0 {
		cfg.DateLayouts = def.DateLayouts
	}
	return &Classifier{cfg: cfg}
}

// IsMissing reports whether a raw value represents a missing cell.
func IsMissing(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "null", "nan", "none", "na":
		return true
	}
	return false
}

// Classify infers the kind of a column from its raw values. Missing values
// are excluded from sampling. The checks run in priority order: boolean,
// datetime, numeric, categorical, text. Classification is total and never
// fails; an all-missing column is text.
func (c *Classifier) Classify(values []string) ColumnKind {
	sample := make([]string, 0, len(values))
	for _, v := range values {
		if !IsMissing(v) {
			sample = append(sample, strings.TrimSpace(v))
		}
	}
	if len(sample) == 0 {
		return KindText
	}

	if isBoolean(sample) {
		return KindBoolean
	}
	if c.isDatetime(sample) {
		return KindDatetime
	}
	if isNumeric(sample) {
		return KindNumeric
	}
	if c.isCategorical(sample) {
		return KindCategorical
	}
	return KindText
}

// isBoolean accepts columns drawn entirely from {true,false} (case-insensitive)
// or entirely from {0,1}. The two literal sets are not mixed.
func isBoolean(sample []string) bool {
	wordSet, digitSet := true, true
	for _, v := range sample {
		switch strings.ToLower(v) {
		case "true", "false":
			digitSet = false
		case "0", "1":
			wordSet = false
		default:
			return false
		}
	}
	return wordSet || digitSet
}

// isDatetime requires a single layout to parse every value; mixing layouts
// within one column falls through to the next check.
func (c *Classifier) isDatetime(sample []string) bool {
	for _, layout := range c.cfg.DateLayouts {
		if _, err := time.Parse(layout, sample[0]); err != nil {
			continue
		}
		all := true
		for _, v := range sample[1:] {
			if _, err := time.Parse(layout, v); err != nil {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func isNumeric(sample []string) bool {
	for _, v := range sample {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return true
}

// isCategorical considers a column categorical when the distinct count is
// small: either the distinct/non-missing ratio falls below the threshold, or
// the column repeats at all while staying under the absolute cap. The second
// clause keeps small samples with repeats (e.g. 3 distinct out of 5)
// categorical even though their raw ratio exceeds the threshold.
func (c *Classifier) isCategorical(sample []string) bool {
	seen := make(map[string]struct{}, len(sample))
	for _, v := range sample {
		seen[v] = struct{}{}
	}
	distinct := len(seen)
	if distinct >= c.cfg.CategoricalMaxDistinct {
		return false
	}
	ratio := float64(distinct) / float64(len(sample))
	return ratio < c.cfg.CategoricalRatio || distinct < len(sample)
}
