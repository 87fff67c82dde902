// Package chart builds plotly-compatible figure specifications from the
// active dataset. Rendering happens client-side; the service only assembles
// the figure JSON.
package chart

import (
	"strconv"

	"github.com/datalens/backend/internal/application/eda"
	"github.com/datalens/backend/internal/application/session"
	"github.com/datalens/backend/internal/domain/dataset"
)

// Figure is a plotly figure: a list of traces plus a layout.
type Figure struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

// CreateRequest selects a chart type and the columns that feed it. Color
// splits bar, line, scatter and pair plots into one trace per distinct value
// of the named column; Size maps a numeric column onto scatter marker sizes.
type CreateRequest struct {
	Type        string   `json:"type" binding:"required"`
	Title       string   `json:"title"`
	X           string   `json:"x"`
	Y           string   `json:"y"`
	Column      string   `json:"column"`
	Columns     []string `json:"columns"`
	Values      string   `json:"values"`
	Names       string   `json:"names"`
	Color       string   `json:"color"`
	Size        string   `json:"size"`
	Bins        int      `json:"bins"`
	Orientation string   `json:"orientation"`
}

// Result pairs the figure with its descriptive fields.
type Result struct {
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Figure *Figure `json:"figure"`
}

// Service builds chart specifications over the session's current table.
type Service struct {
	session *session.Session
	eda     *eda.Service
}

// NewService creates a chart service. The EDA engine supplies the
// correlation matrix for heatmaps.
func NewService(sess *session.Session, engine *eda.Service) *Service {
	return &Service{session: sess, eda: engine}
}

// Create builds the figure for the requested chart type.
func (s *Service) Create(req CreateRequest) (*Result, error) {
	snap, err := s.session.Current()
	if err != nil {
		return nil, err
	}
	table := snap.Table

	var fig *Figure
	switch req.Type {
	case "bar":
		fig, err = s.xyChart(table, req, "bar")
	case "line":
		fig, err = s.xyChart(table, req, "scatter", withMode("lines"))
	case "scatter":
		fig, err = s.xyChart(table, req, "scatter", withMode("markers"))
	case "histogram":
		fig, err = s.histogram(table, req)
	case "box":
		fig, err = s.box(table, req)
	case "heatmap":
		fig, err = s.heatmap(req)
	case "pie":
		fig, err = s.pie(table, req)
	case "distribution":
		fig, err = s.distribution(table, req)
	case "pair_plot":
		fig, err = s.pairPlot(table, req)
	default:
		return nil, dataset.NewInvalidParameterError("unknown chart type: " + req.Type)
	}
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = req.Type + " chart"
	}
	fig.Layout["title"] = map[string]any{"text": title}
	return &Result{Type: req.Type, Title: title, Figure: fig}, nil
}

type traceOption func(map[string]any)

func withMode(mode string) traceOption {
	return func(t map[string]any) {
		t["mode"] = mode
	}
}

func (s *Service) xyChart(table *dataset.Table, req CreateRequest, traceType string, opts ...traceOption) (*Figure, error) {
	xcol, ok := table.Column(req.X)
	if !ok {
		return nil, dataset.NewColumnNotFoundError(req.X)
	}
	ycol, ok := table.Column(req.Y)
	if !ok {
		return nil, dataset.NewColumnNotFoundError(req.Y)
	}
	if ycol.Kind != dataset.KindNumeric {
		return nil, dataset.NewNotNumericColumnError(req.Y)
	}

	xs := rawValues(xcol)
	ys := numericValues(ycol)

	var sizes []any
	if req.Size != "" {
		scol, ok := table.Column(req.Size)
		if !ok {
			return nil, dataset.NewColumnNotFoundError(req.Size)
		}
		if scol.Kind != dataset.KindNumeric {
			return nil, dataset.NewNotNumericColumnError(req.Size)
		}
		sizes = numericValues(scol)
	}

	buildTrace := func(name string, x, y, size []any) map[string]any {
		trace := map[string]any{
			"type": traceType,
			"x":    x,
			"y":    y,
			"name": name,
		}
		if size != nil {
			trace["marker"] = map[string]any{"size": size, "sizemode": "area"}
		}
		if traceType == "bar" && req.Orientation == "h" {
			trace["x"], trace["y"] = trace["y"], trace["x"]
			trace["orientation"] = "h"
		}
		for _, opt := range opts {
			opt(trace)
		}
		return trace
	}

	layout := map[string]any{
		"xaxis": map[string]any{"title": map[string]any{"text": req.X}},
		"yaxis": map[string]any{"title": map[string]any{"text": req.Y}},
	}

	if req.Color == "" {
		return newFigure(buildTrace(req.Y, xs, ys, sizes), layout), nil
	}

	groups, err := valueGroups(table, req.Color)
	if err != nil {
		return nil, err
	}
	traces := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		traces = append(traces, buildTrace(g.label, pick(xs, g.rows), pick(ys, g.rows), pick(sizes, g.rows)))
	}
	if traceType == "bar" {
		layout["barmode"] = "relative"
	}
	return &Figure{Data: traces, Layout: layout}, nil
}

// distribution builds side-by-side histograms for the requested columns,
// one subplot per column.
func (s *Service) distribution(table *dataset.Table, req CreateRequest) (*Figure, error) {
	if len(req.Columns) == 0 {
		return nil, dataset.NewInvalidParameterError("distribution requires at least one column")
	}
	traces := make([]map[string]any, 0, len(req.Columns))
	for i, name := range req.Columns {
		col, ok := table.Column(name)
		if !ok {
			return nil, dataset.NewColumnNotFoundError(name)
		}
		if col.Kind != dataset.KindNumeric {
			return nil, dataset.NewNotNumericColumnError(name)
		}
		traces = append(traces, map[string]any{
			"type":  "histogram",
			"x":     numericValues(col),
			"name":  name,
			"xaxis": axisRef("x", i),
			"yaxis": axisRef("y", i),
		})
	}
	layout := map[string]any{
		"grid":       map[string]any{"rows": 1, "columns": len(traces), "pattern": "independent"},
		"showlegend": false,
	}
	return &Figure{Data: traces, Layout: layout}, nil
}

// pairPlotMaxColumns caps the scatter-matrix dimensions to keep the figure
// readable.
const pairPlotMaxColumns = 6

// pairPlot builds a scatter matrix (splom) over the requested columns, or
// over all numeric columns when none are given.
func (s *Service) pairPlot(table *dataset.Table, req CreateRequest) (*Figure, error) {
	names := req.Columns
	if len(names) == 0 {
		for _, col := range table.Columns() {
			if col.Kind == dataset.KindNumeric {
				names = append(names, col.Name)
			}
		}
	}
	if len(names) > pairPlotMaxColumns {
		names = names[:pairPlotMaxColumns]
	}
	if len(names) < 2 {
		return nil, dataset.ErrInsufficientNumericColumns
	}

	cols := make([]*dataset.Column, 0, len(names))
	for _, name := range names {
		col, ok := table.Column(name)
		if !ok {
			return nil, dataset.NewColumnNotFoundError(name)
		}
		if col.Kind != dataset.KindNumeric {
			return nil, dataset.NewNotNumericColumnError(name)
		}
		cols = append(cols, col)
	}

	buildTrace := func(name string, rows []int) map[string]any {
		dims := make([]map[string]any, 0, len(cols))
		for i, col := range cols {
			values := numericValues(col)
			if rows != nil {
				values = pick(values, rows)
			}
			dims = append(dims, map[string]any{
				"label":  names[i],
				"values": values,
			})
		}
		return map[string]any{
			"type":       "splom",
			"dimensions": dims,
			"name":       name,
			"diagonal":   map[string]any{"visible": true},
		}
	}

	if req.Color == "" {
		return newFigure(buildTrace("", nil), map[string]any{}), nil
	}
	groups, err := valueGroups(table, req.Color)
	if err != nil {
		return nil, err
	}
	traces := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		traces = append(traces, buildTrace(g.label, g.rows))
	}
	return &Figure{Data: traces, Layout: map[string]any{}}, nil
}

// axisRef returns the plotly axis reference for subplot i ("x", "x2", ...).
func axisRef(axis string, i int) string {
	if i == 0 {
		return axis
	}
	return axis + strconv.Itoa(i+1)
}

type valueGroup struct {
	label string
	rows  []int
}

// valueGroups partitions row indices by the distinct non-missing values of a
// column, in first-encountered order.
func valueGroups(table *dataset.Table, name string) ([]valueGroup, error) {
	col, ok := table.Column(name)
	if !ok {
		return nil, dataset.NewColumnNotFoundError(name)
	}
	index := make(map[string]int)
	var groups []valueGroup
	for r, cell := range col.Cells {
		if cell.Null {
			continue
		}
		i, ok := index[cell.Value]
		if !ok {
			i = len(groups)
			index[cell.Value] = i
			groups = append(groups, valueGroup{label: cell.Value})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	return groups, nil
}

// pick selects the given row positions from a row-aligned slice.
func pick(values []any, rows []int) []any {
	if values == nil {
		return nil
	}
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}

func (s *Service) histogram(table *dataset.Table, req CreateRequest) (*Figure, error) {
	col, ok := table.Column(req.Column)
	if !ok {
		return nil, dataset.NewColumnNotFoundError(req.Column)
	}
	if col.Kind != dataset.KindNumeric {
		return nil, dataset.NewNotNumericColumnError(req.Column)
	}
	bins := req.Bins
	if bins <= 0 {
		bins = 30
	}
	trace := map[string]any{
		"type":   "histogram",
		"x":      numericValues(col),
		"nbinsx": bins,
		"name":   req.Column,
	}
	return newFigure(trace, map[string]any{
		"xaxis": map[string]any{"title": map[string]any{"text": req.Column}},
	}), nil
}

func (s *Service) box(table *dataset.Table, req CreateRequest) (*Figure, error) {
	ycol, ok := table.Column(req.Y)
	if !ok {
		return nil, dataset.NewColumnNotFoundError(req.Y)
	}
	if ycol.Kind != dataset.KindNumeric {
		return nil, dataset.NewNotNumericColumnError(req.Y)
	}
	trace := map[string]any{
		"type": "box",
		"y":    numericValues(ycol),
		"name": req.Y,
	}
	if req.X != "" {
		xcol, ok := table.Column(req.X)
		if !ok {
			return nil, dataset.NewColumnNotFoundError(req.X)
		}
		trace["x"] = rawValues(xcol)
	}
	return newFigure(trace, map[string]any{}), nil
}

func (s *Service) heatmap(req CreateRequest) (*Figure, error) {
	corr, err := s.eda.Correlations()
	if err != nil {
		return nil, err
	}
	z := make([][]*float64, len(corr.Columns))
	for i, row := range corr.Columns {
		z[i] = make([]*float64, len(corr.Columns))
		for j, col := range corr.Columns {
			z[i][j] = corr.Matrix[row][col]
		}
	}
	trace := map[string]any{
		"type":       "heatmap",
		"x":          corr.Columns,
		"y":          corr.Columns,
		"z":          z,
		"zmin":       -1,
		"zmax":       1,
		"colorscale": "RdBu",
	}
	return newFigure(trace, map[string]any{}), nil
}

func (s *Service) pie(table *dataset.Table, req CreateRequest) (*Figure, error) {
	vcol, ok := table.Column(req.Values)
	if !ok {
		return nil, dataset.NewColumnNotFoundError(req.Values)
	}
	if vcol.Kind != dataset.KindNumeric {
		return nil, dataset.NewNotNumericColumnError(req.Values)
	}
	ncol, ok := table.Column(req.Names)
	if !ok {
		return nil, dataset.NewColumnNotFoundError(req.Names)
	}
	trace := map[string]any{
		"type":   "pie",
		"values": numericValues(vcol),
		"labels": rawValues(ncol),
	}
	return newFigure(trace, map[string]any{}), nil
}

func newFigure(trace map[string]any, layout map[string]any) *Figure {
	return &Figure{Data: []map[string]any{trace}, Layout: layout}
}

// rawValues returns cell values aligned to rows, nulls as nil.
func rawValues(col *dataset.Column) []any {
	out := make([]any, col.Len())
	for i, cell := range col.Cells {
		if !cell.Null {
			out[i] = cell.Value
		}
	}
	return out
}

// numericValues returns parsed floats aligned to rows, nulls as nil.
func numericValues(col *dataset.Column) []any {
	out := make([]any, col.Len())
	values, rows := col.Floats()
	for i, r := range rows {
		out[r] = values[i]
	}
	return out
}
