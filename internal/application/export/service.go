// Package export generates report files from the active dataset: CSV and
// JSON exports, Excel workbooks, plain-text tables and rendered PDF reports.
// Files land in a configured directory and are served back by the transport
// layer.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/datalens/backend/internal/application/eda"
	"github.com/datalens/backend/internal/application/session"
	"github.com/datalens/backend/internal/domain/shared"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// PDFRenderer converts an HTML document to PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, html, title string) ([]byte, error)
}

// FileInfo describes a generated report file.
type FileInfo struct {
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Service writes report files for the session's current dataset.
type Service struct {
	session  *session.Session
	eda      *eda.Service
	renderer PDFRenderer
	dir      string
	logger   *zap.Logger

	mu       sync.Mutex
	sections []Section
}

// NewService creates an export service writing into dir. renderer may be nil,
// in which case PDF generation reports an error instead of rendering.
func NewService(sess *session.Session, engine *eda.Service, renderer PDFRenderer, dir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		session:  sess,
		eda:      engine,
		renderer: renderer,
		dir:      dir,
		logger:   logger,
	}
}

func (s *Service) snapshot() (*session.Snapshot, error) {
	return s.session.Current()
}

func (s *Service) newFilename(ext string) string {
	return fmt.Sprintf("report_%s.%s", time.Now().Format("20060102_150405"), ext)
}

func (s *Service) write(filename string, data []byte) (*FileInfo, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", filename, err)
	}
	s.logger.Info("Report generated",
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
	)
	return &FileInfo{Filename: filename, SizeBytes: int64(len(data)), CreatedAt: time.Now().UTC()}, nil
}

// CSV exports the full dataset as a CSV file with a header row. Missing
// cells are written empty.
func (s *Service) CSV() (*FileInfo, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(snap.Table.ColumnNames()); err != nil {
		return nil, err
	}
	for r := 0; r < snap.Table.RowCount(); r++ {
		record := make([]string, snap.Table.ColumnCount())
		for c, cell := range snap.Table.Row(r) {
			if !cell.Null {
				record[c] = cell.Value
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return s.write(s.newFilename("csv"), []byte(sb.String()))
}

// JSON exports the dataset as an array of row objects. Missing cells encode
// as null.
func (s *Service) JSON() (*FileInfo, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	names := snap.Table.ColumnNames()
	records := make([]map[string]any, 0, snap.Table.RowCount())
	for r := 0; r < snap.Table.RowCount(); r++ {
		record := make(map[string]any, len(names))
		for c, cell := range snap.Table.Row(r) {
			if cell.Null {
				record[names[c]] = nil
			} else {
				record[names[c]] = cell.Value
			}
		}
		records = append(records, record)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return s.write(s.newFilename("json"), data)
}

// Excel exports an xlsx workbook with a Data sheet and, when the dataset has
// numeric columns, a Statistics sheet.
func (s *Service) Excel() (*FileInfo, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	const dataSheet = "Data"
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, err
	}
	for c, name := range snap.Table.ColumnNames() {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(dataSheet, cell, name); err != nil {
			return nil, err
		}
	}
	for r := 0; r < snap.Table.RowCount(); r++ {
		for c, cellValue := range snap.Table.Row(r) {
			if cellValue.Null {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(dataSheet, cell, cellValue.Value); err != nil {
				return nil, err
			}
		}
	}

	if err := s.writeStatisticsSheet(f); err != nil {
		return nil, err
	}

	for _, section := range s.Sections() {
		sheet := sectionSheetName(section.Name)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, "A1", section.Name); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, "A2", section.Content); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	filename := s.newFilename("xlsx")
	path := filepath.Join(s.dir, filename)
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("writing %s: %w", filename, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Report generated",
		zap.String("filename", filename),
		zap.Int64("bytes", info.Size()),
	)
	return &FileInfo{Filename: filename, SizeBytes: info.Size(), CreatedAt: time.Now().UTC()}, nil
}

func (s *Service) writeStatisticsSheet(f *excelize.File) error {
	stats, err := s.eda.Statistics(nil)
	if err != nil {
		return err
	}

	const sheet = "Statistics"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	headers := []string{"column", "count", "mean", "std", "min", "q25", "median", "q75", "max"}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	row := 2
	for _, col := range stats.Columns {
		if col.Numeric == nil {
			continue
		}
		n := col.Numeric
		values := []any{
			col.Name, n.Count,
			deref(n.Mean), deref(n.Std), deref(n.Min),
			deref(n.Q25), deref(n.Median), deref(n.Q75), deref(n.Max),
		}
		for c, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Text exports the dataset as a rendered plain-text table.
func (s *Service) Text() (*FileInfo, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	var headers table.Row
	for _, name := range snap.Table.ColumnNames() {
		headers = append(headers, name)
	}

	t := table.NewWriter()
	t.AppendHeader(headers)
	for r := 0; r < snap.Table.RowCount(); r++ {
		var row table.Row
		for _, cell := range snap.Table.Row(r) {
			if cell.Null {
				row = append(row, "")
			} else {
				row = append(row, cell.Value)
			}
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	return s.write(s.newFilename("txt"), []byte(t.Render()+"\n"))
}

// PDF renders an HTML report of the dataset and its statistics to PDF.
func (s *Service) PDF(ctx context.Context, title string) (*FileInfo, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, shared.NewDomainError("RENDERER_UNAVAILABLE", "PDF rendering is not configured")
	}
	if title == "" {
		title = "Data Analysis Report"
	}

	html, err := s.reportHTML(snap, title)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.Render(ctx, html, title)
	if err != nil {
		return nil, err
	}
	return s.write(s.newFilename("pdf"), data)
}

// List enumerates previously generated report files, newest first.
func (s *Service) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []FileInfo{}, nil
		}
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Filename:  entry.Name(),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// Resolve maps a report filename to its path, rejecting anything that would
// escape the export directory.
func (s *Service) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", shared.NewDomainError("INVALID_INPUT", "invalid filename")
	}
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", shared.ErrNotFound
	}
	return path, nil
}
