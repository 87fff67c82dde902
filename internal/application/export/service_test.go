package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalens/backend/internal/application/eda"
	"github.com/datalens/backend/internal/application/session"
	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/datalens/backend/internal/domain/shared"
)

type stubRenderer struct {
	html  string
	title string
	data  []byte
	err   error
}

func (r *stubRenderer) Render(_ context.Context, html, title string) ([]byte, error) {
	r.html = html
	r.title = title
	return r.data, r.err
}

func newTestService(t *testing.T, renderer PDFRenderer) *Service {
	t.Helper()
	table, err := dataset.BuildTable(
		[]string{"city", "sales"},
		[][]string{
			{"ny", "10"},
			{"la", "20"},
			{"", "30"},
		},
		dataset.NewClassifier(dataset.ClassifierConfig{}),
	)
	require.NoError(t, err)
	sess := session.New()
	sess.Replace(table, "test")
	engine := eda.NewService(sess, eda.Config{})
	return NewService(sess, engine, renderer, t.TempDir(), nil)
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func readExport(t *testing.T, s *Service, info *FileInfo) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.dir, info.Filename))
	require.NoError(t, err)
	return string(data)
}

func TestService_CSV(t *testing.T) {
	svc := newTestService(t, nil)

	info, err := svc.CSV()

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Filename, "report_"))
	assert.True(t, strings.HasSuffix(info.Filename, ".csv"))
	assert.Positive(t, info.SizeBytes)

	content := readExport(t, svc, info)
	assert.Equal(t, "city,sales\nny,10\nla,20\n,30\n", content)
}

func TestService_JSON(t *testing.T) {
	svc := newTestService(t, nil)

	info, err := svc.JSON()

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(info.Filename, ".json"))

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(readExport(t, svc, info)), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "ny", records[0]["city"])
	assert.Equal(t, "10", records[0]["sales"])
	city, present := records[2]["city"]
	assert.True(t, present)
	assert.Nil(t, city)
}

func TestService_Excel(t *testing.T) {
	svc := newTestService(t, nil)

	info, err := svc.Excel()

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(info.Filename, ".xlsx"))
	assert.Positive(t, info.SizeBytes)
}

func TestService_Text(t *testing.T) {
	svc := newTestService(t, nil)

	info, err := svc.Text()

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(info.Filename, ".txt"))

	content := readExport(t, svc, info)
	// Header keeps the original case and every row is present.
	assert.Contains(t, content, "city")
	assert.Contains(t, content, "sales")
	assert.Contains(t, content, "ny")
	assert.Contains(t, content, "30")
	assert.True(t, strings.HasSuffix(content, "\n"))
}

func TestService_PDF(t *testing.T) {
	renderer := &stubRenderer{data: []byte("%PDF-1.4 fake")}
	svc := newTestService(t, renderer)

	info, err := svc.PDF(context.Background(), "Quarterly Review")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(info.Filename, ".pdf"))
	assert.Equal(t, "Quarterly Review", renderer.title)
	assert.Contains(t, renderer.html, "Quarterly Review")
	assert.Contains(t, renderer.html, "city")
	assert.Equal(t, "%PDF-1.4 fake", readExport(t, svc, info))
}

func TestService_PDF_DefaultTitle(t *testing.T) {
	renderer := &stubRenderer{data: []byte("pdf")}
	svc := newTestService(t, renderer)

	_, err := svc.PDF(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "Data Analysis Report", renderer.title)
}

func TestService_PDF_RendererUnavailable(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.PDF(context.Background(), "title")

	assertDomainCode(t, err, "RENDERER_UNAVAILABLE")
}

func TestService_PDF_RendererError(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("chrome crashed")}
	svc := newTestService(t, renderer)

	_, err := svc.PDF(context.Background(), "title")

	assert.EqualError(t, err, "chrome crashed")
}

func TestService_NoDataLoaded(t *testing.T) {
	sess := session.New()
	svc := NewService(sess, eda.NewService(sess, eda.Config{}), nil, t.TempDir(), nil)

	_, err := svc.CSV()
	assertDomainCode(t, err, "NO_DATA_LOADED")

	_, err = svc.JSON()
	assertDomainCode(t, err, "NO_DATA_LOADED")

	_, err = svc.Text()
	assertDomainCode(t, err, "NO_DATA_LOADED")
}

func TestService_List_NewestFirst(t *testing.T) {
	svc := newTestService(t, nil)

	older := filepath.Join(svc.dir, "report_old.csv")
	newer := filepath.Join(svc.dir, "report_new.csv")
	require.NoError(t, os.MkdirAll(svc.dir, 0o755))
	require.NoError(t, os.WriteFile(older, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("bb"), 0o644))
	now := time.Now()
	require.NoError(t, os.Chtimes(older, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(newer, now, now))

	files, err := svc.List()

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "report_new.csv", files[0].Filename)
	assert.Equal(t, "report_old.csv", files[1].Filename)
	assert.Equal(t, int64(2), files[0].SizeBytes)
}

func TestService_List_MissingDirectory(t *testing.T) {
	sess := session.New()
	svc := NewService(sess, nil, nil, filepath.Join(t.TempDir(), "absent"), nil)

	files, err := svc.List()

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestService_Resolve(t *testing.T) {
	svc := newTestService(t, nil)
	info, err := svc.CSV()
	require.NoError(t, err)

	path, err := svc.Resolve(info.Filename)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.dir, info.Filename), path)
}

func TestService_Resolve_RejectsTraversal(t *testing.T) {
	svc := newTestService(t, nil)

	for _, name := range []string{"", "../secret", "a/b.csv", ".hidden"} {
		_, err := svc.Resolve(name)
		assertDomainCode(t, err, "INVALID_INPUT")
	}
}

func TestService_Resolve_MissingFile(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Resolve("report_nope.csv")

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
