package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/datalens/backend/internal/domain/shared"
)

// Section is a custom report section. Stored sections are rendered into
// subsequently generated PDF, Excel and summary reports.
type Section struct {
	Name    string `json:"section"`
	Content string `json:"content"`
}

// AddSection stores content under the given section name, replacing earlier
// content for the same name. Sections persist until ClearSections.
func (s *Service) AddSection(name, content string) error {
	if strings.TrimSpace(name) == "" {
		return shared.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sections {
		if s.sections[i].Name == name {
			s.sections[i].Content = content
			return nil
		}
	}
	s.sections = append(s.sections, Section{Name: name, Content: content})
	return nil
}

// Sections returns the stored sections in insertion order.
func (s *Service) Sections() []Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// ClearSections removes all stored report sections.
func (s *Service) ClearSections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = nil
}

// Summary writes a plain-text summary report combining the dataset overview,
// the given summary text, optional insights and the stored sections. Unlike
// the data exports it works without a loaded dataset.
func (s *Service) Summary(summary, insights string) (*FileInfo, error) {
	if strings.TrimSpace(summary) == "" {
		return nil, shared.ErrInvalidInput
	}

	rule := strings.Repeat("=", 60)
	divider := strings.Repeat("-", 40)

	var sb strings.Builder
	sb.WriteString(rule + "\n")
	sb.WriteString("DATA ANALYSIS SUMMARY REPORT\n")
	fmt.Fprintf(&sb, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString(rule + "\n\n")

	if snap, err := s.session.Current(); err == nil {
		sb.WriteString("DATASET OVERVIEW\n")
		sb.WriteString(divider + "\n")
		fmt.Fprintf(&sb, "Rows: %d\n", snap.Table.RowCount())
		fmt.Fprintf(&sb, "Columns: %d\n", snap.Table.ColumnCount())
		fmt.Fprintf(&sb, "Columns: %s\n\n", strings.Join(snap.Table.ColumnNames(), ", "))
	}

	sb.WriteString("SUMMARY\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(summary + "\n\n")

	if insights != "" {
		sb.WriteString("KEY INSIGHTS\n")
		sb.WriteString(divider + "\n")
		sb.WriteString(insights + "\n\n")
	}

	for _, section := range s.Sections() {
		fmt.Fprintf(&sb, "\n%s\n", strings.ToUpper(section.Name))
		sb.WriteString(divider + "\n")
		sb.WriteString(section.Content + "\n")
	}

	filename := fmt.Sprintf("summary_report_%s.txt", time.Now().Format("20060102_150405"))
	return s.write(filename, []byte(sb.String()))
}

// sectionSheetName derives a valid worksheet title from a section name.
// Excel limits titles to 31 characters and forbids a handful of characters.
func sectionSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if len(cleaned) > 31 {
		cleaned = cleaned[:31]
	}
	return cleaned
}
