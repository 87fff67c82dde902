package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalens/backend/internal/application/eda"
	"github.com/datalens/backend/internal/application/session"
	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/datalens/backend/internal/domain/shared"
)

func newTestService(t *testing.T, names []string, records [][]string) *Service {
	t.Helper()
	table, err := dataset.BuildTable(names, records, dataset.NewClassifier(dataset.ClassifierConfig{}))
	require.NoError(t, err)
	sess := session.New()
	sess.Replace(table, "test")
	return NewService(sess, eda.NewService(sess, eda.Config{}))
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestService_Create_Bar(t *testing.T) {
	svc := newTestService(t,
		[]string{"city", "sales"},
		[][]string{{"ny", "10"}, {"la", "20"}, {"ny", ""}})

	result, err := svc.Create(CreateRequest{Type: "bar", X: "city", Y: "sales"})

	require.NoError(t, err)
	assert.Equal(t, "bar", result.Type)
	assert.Equal(t, "bar chart", result.Title)

	require.Len(t, result.Figure.Data, 1)
	trace := result.Figure.Data[0]
	assert.Equal(t, "bar", trace["type"])
	assert.Equal(t, []any{"ny", "la", "ny"}, trace["x"])
	// Nulls stay aligned to rows so bars keep their x positions.
	assert.Equal(t, []any{10.0, 20.0, nil}, trace["y"])
	assert.Equal(t, map[string]any{"text": "bar chart"}, result.Figure.Layout["title"])
}

func TestService_Create_BarHorizontal(t *testing.T) {
	svc := newTestService(t,
		[]string{"city", "sales"},
		[][]string{{"ny", "10"}, {"la", "20"}})

	result, err := svc.Create(CreateRequest{Type: "bar", X: "city", Y: "sales", Orientation: "h"})

	require.NoError(t, err)
	trace := result.Figure.Data[0]
	assert.Equal(t, "h", trace["orientation"])
	assert.Equal(t, []any{10.0, 20.0}, trace["x"])
	assert.Equal(t, []any{"ny", "la"}, trace["y"])
}

func TestService_Create_LineAndScatterModes(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "y"},
		[][]string{{"1", "2"}, {"2", "4"}})

	line, err := svc.Create(CreateRequest{Type: "line", X: "x", Y: "y"})
	require.NoError(t, err)
	assert.Equal(t, "scatter", line.Figure.Data[0]["type"])
	assert.Equal(t, "lines", line.Figure.Data[0]["mode"])

	scatter, err := svc.Create(CreateRequest{Type: "scatter", X: "x", Y: "y"})
	require.NoError(t, err)
	assert.Equal(t, "markers", scatter.Figure.Data[0]["mode"])
}

func TestService_Create_Histogram(t *testing.T) {
	svc := newTestService(t,
		[]string{"amount"},
		[][]string{{"1"}, {"2"}, {"3"}})

	result, err := svc.Create(CreateRequest{Type: "histogram", Column: "amount", Bins: 5})

	require.NoError(t, err)
	trace := result.Figure.Data[0]
	assert.Equal(t, "histogram", trace["type"])
	assert.Equal(t, 5, trace["nbinsx"])
}

func TestService_Create_HistogramDefaultBins(t *testing.T) {
	svc := newTestService(t, []string{"amount"}, [][]string{{"1"}, {"2"}})

	result, err := svc.Create(CreateRequest{Type: "histogram", Column: "amount"})

	require.NoError(t, err)
	assert.Equal(t, 30, result.Figure.Data[0]["nbinsx"])
}

func TestService_Create_BoxGrouped(t *testing.T) {
	svc := newTestService(t,
		[]string{"city", "sales"},
		[][]string{{"ny", "10"}, {"la", "20"}, {"ny", "30"}})

	result, err := svc.Create(CreateRequest{Type: "box", Y: "sales", X: "city"})

	require.NoError(t, err)
	trace := result.Figure.Data[0]
	assert.Equal(t, "box", trace["type"])
	assert.Equal(t, []any{"ny", "la", "ny"}, trace["x"])
}

func TestService_Create_Heatmap(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "y"},
		[][]string{{"1", "2"}, {"2", "4"}, {"3", "6"}})

	result, err := svc.Create(CreateRequest{Type: "heatmap"})

	require.NoError(t, err)
	trace := result.Figure.Data[0]
	assert.Equal(t, "heatmap", trace["type"])
	assert.Equal(t, []string{"x", "y"}, trace["x"])

	z, ok := trace["z"].([][]*float64)
	require.True(t, ok)
	require.Len(t, z, 2)
	assert.Equal(t, 1.0, *z[0][0])
	assert.Equal(t, 1.0, *z[0][1])
}

func TestService_Create_HeatmapInsufficientNumericColumns(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "city"},
		[][]string{{"1", "ny"}, {"2", "la"}, {"3", "ny"}})

	_, err := svc.Create(CreateRequest{Type: "heatmap"})

	assertDomainCode(t, err, "INSUFFICIENT_NUMERIC_COLUMNS")
}

func TestService_Create_Pie(t *testing.T) {
	svc := newTestService(t,
		[]string{"city", "sales"},
		[][]string{{"ny", "10"}, {"la", "20"}})

	result, err := svc.Create(CreateRequest{Type: "pie", Values: "sales", Names: "city"})

	require.NoError(t, err)
	trace := result.Figure.Data[0]
	assert.Equal(t, "pie", trace["type"])
	assert.Equal(t, []any{10.0, 20.0}, trace["values"])
	assert.Equal(t, []any{"ny", "la"}, trace["labels"])
}

func TestService_Create_ScatterColorGroups(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "sales", "city"},
		[][]string{{"1", "10", "ny"}, {"2", "20", "la"}, {"3", "30", "ny"}})

	result, err := svc.Create(CreateRequest{Type: "scatter", X: "x", Y: "sales", Color: "city"})

	require.NoError(t, err)
	require.Len(t, result.Figure.Data, 2)

	// One trace per distinct color value, first-encountered order.
	ny := result.Figure.Data[0]
	assert.Equal(t, "ny", ny["name"])
	assert.Equal(t, []any{"1", "3"}, ny["x"])
	assert.Equal(t, []any{10.0, 30.0}, ny["y"])

	la := result.Figure.Data[1]
	assert.Equal(t, "la", la["name"])
	assert.Equal(t, []any{20.0}, la["y"])
}

func TestService_Create_ScatterSizeMarker(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "sales", "pop"},
		[][]string{{"1", "10", "100"}, {"2", "20", "400"}})

	result, err := svc.Create(CreateRequest{Type: "scatter", X: "x", Y: "sales", Size: "pop"})

	require.NoError(t, err)
	marker, ok := result.Figure.Data[0]["marker"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{100.0, 400.0}, marker["size"])
	assert.Equal(t, "area", marker["sizemode"])
}

func TestService_Create_ScatterSizeNonNumeric(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "sales", "city"},
		[][]string{{"1", "10", "ny"}, {"2", "20", "la"}, {"3", "30", "ny"}})

	_, err := svc.Create(CreateRequest{Type: "scatter", X: "x", Y: "sales", Size: "city"})

	assertDomainCode(t, err, "NOT_NUMERIC_COLUMN")
}

func TestService_Create_BarColorGroups(t *testing.T) {
	svc := newTestService(t,
		[]string{"month", "sales", "region"},
		[][]string{{"jan", "10", "east"}, {"jan", "20", "west"}, {"feb", "30", "east"}})

	result, err := svc.Create(CreateRequest{Type: "bar", X: "month", Y: "sales", Color: "region"})

	require.NoError(t, err)
	require.Len(t, result.Figure.Data, 2)
	assert.Equal(t, "east", result.Figure.Data[0]["name"])
	assert.Equal(t, []any{"jan", "feb"}, result.Figure.Data[0]["x"])
	assert.Equal(t, "relative", result.Figure.Layout["barmode"])
}

func TestService_Create_Distribution(t *testing.T) {
	svc := newTestService(t,
		[]string{"a", "b"},
		[][]string{{"1", "4"}, {"2", "5"}, {"3", "6"}})

	result, err := svc.Create(CreateRequest{Type: "distribution", Columns: []string{"a", "b"}})

	require.NoError(t, err)
	require.Len(t, result.Figure.Data, 2)

	first := result.Figure.Data[0]
	assert.Equal(t, "histogram", first["type"])
	assert.Equal(t, "x", first["xaxis"])

	second := result.Figure.Data[1]
	assert.Equal(t, "x2", second["xaxis"])
	assert.Equal(t, "y2", second["yaxis"])
	assert.Equal(t, []any{4.0, 5.0, 6.0}, second["x"])

	grid, ok := result.Figure.Layout["grid"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, grid["columns"])
	assert.Equal(t, false, result.Figure.Layout["showlegend"])
}

func TestService_Create_DistributionRequiresColumns(t *testing.T) {
	svc := newTestService(t, []string{"a"}, [][]string{{"1"}, {"2"}})

	_, err := svc.Create(CreateRequest{Type: "distribution"})

	assertDomainCode(t, err, "INVALID_PARAMETER")
}

func TestService_Create_DistributionNonNumericColumn(t *testing.T) {
	svc := newTestService(t,
		[]string{"a", "city"},
		[][]string{{"1", "ny"}, {"2", "la"}, {"3", "ny"}})

	_, err := svc.Create(CreateRequest{Type: "distribution", Columns: []string{"city"}})

	assertDomainCode(t, err, "NOT_NUMERIC_COLUMN")
}

func TestService_Create_PairPlotDefaultsToNumericColumns(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "y", "city"},
		[][]string{{"1", "2", "ny"}, {"2", "4", "la"}, {"3", "6", "ny"}})

	result, err := svc.Create(CreateRequest{Type: "pair_plot"})

	require.NoError(t, err)
	require.Len(t, result.Figure.Data, 1)
	trace := result.Figure.Data[0]
	assert.Equal(t, "splom", trace["type"])

	dims, ok := trace["dimensions"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, dims, 2)
	assert.Equal(t, "x", dims[0]["label"])
	assert.Equal(t, "y", dims[1]["label"])
	assert.Equal(t, []any{2.0, 4.0, 6.0}, dims[1]["values"])
}

func TestService_Create_PairPlotColorGroups(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "y", "city"},
		[][]string{{"1", "2", "ny"}, {"2", "4", "la"}, {"3", "6", "ny"}})

	result, err := svc.Create(CreateRequest{Type: "pair_plot", Color: "city"})

	require.NoError(t, err)
	require.Len(t, result.Figure.Data, 2)

	ny := result.Figure.Data[0]
	assert.Equal(t, "ny", ny["name"])
	dims, ok := ny["dimensions"].([]map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{1.0, 3.0}, dims[0]["values"])
}

func TestService_Create_PairPlotCapsDimensions(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	records := [][]string{
		{"1", "2", "3", "4", "5", "6", "7"},
		{"2", "3", "4", "5", "6", "7", "8"},
	}
	svc := newTestService(t, names, records)

	result, err := svc.Create(CreateRequest{Type: "pair_plot"})

	require.NoError(t, err)
	dims := result.Figure.Data[0]["dimensions"].([]map[string]any)
	assert.Len(t, dims, 6)
}

func TestService_Create_PairPlotInsufficientNumericColumns(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "city"},
		[][]string{{"1", "ny"}, {"2", "la"}, {"3", "ny"}})

	_, err := svc.Create(CreateRequest{Type: "pair_plot"})

	assertDomainCode(t, err, "INSUFFICIENT_NUMERIC_COLUMNS")
}

func TestService_Create_CustomTitle(t *testing.T) {
	svc := newTestService(t, []string{"x", "y"}, [][]string{{"1", "2"}, {"2", "4"}})

	result, err := svc.Create(CreateRequest{Type: "scatter", X: "x", Y: "y", Title: "growth"})

	require.NoError(t, err)
	assert.Equal(t, "growth", result.Title)
	assert.Equal(t, map[string]any{"text": "growth"}, result.Figure.Layout["title"])
}

func TestService_Create_UnknownType(t *testing.T) {
	svc := newTestService(t, []string{"x"}, [][]string{{"1"}})

	_, err := svc.Create(CreateRequest{Type: "sunburst"})

	assertDomainCode(t, err, "INVALID_PARAMETER")
}

func TestService_Create_ColumnNotFound(t *testing.T) {
	svc := newTestService(t, []string{"x", "y"}, [][]string{{"1", "2"}})

	_, err := svc.Create(CreateRequest{Type: "bar", X: "nope", Y: "y"})

	assertDomainCode(t, err, "COLUMN_NOT_FOUND")
}

func TestService_Create_NonNumericY(t *testing.T) {
	svc := newTestService(t,
		[]string{"x", "city"},
		[][]string{{"1", "ny"}, {"2", "la"}, {"3", "ny"}})

	_, err := svc.Create(CreateRequest{Type: "line", X: "x", Y: "city"})

	assertDomainCode(t, err, "NOT_NUMERIC_COLUMN")
}

func TestService_Create_NoDataLoaded(t *testing.T) {
	sess := session.New()
	svc := NewService(sess, eda.NewService(sess, eda.Config{}))

	_, err := svc.Create(CreateRequest{Type: "bar", X: "x", Y: "y"})

	assertDomainCode(t, err, "NO_DATA_LOADED")
}
