package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	inner := NewTestAPI()
	scoped := NewScopedAPI("grades", NewScopedAPI("driver", inner))

	scoped.ReportBroken("fetch-detail", "101")
	scoped.ReportCount("course-count", 3)

	broken := inner.Reports(REPORT_BROKEN)
	require.Len(t, broken, 1)
	require.Equal(t, "driver: grades: fetch-detail", broken[0].Id)
	require.Equal(t, []any{"101"}, broken[0].Params)

	require.True(t, inner.Has(REPORT_COUNT, "course-count"))
	require.False(t, inner.Has(REPORT_WARNING, "course-count"))
}

type memoryOutput struct {
	written map[string]string
}

func (m memoryOutput) Write(id, contents string) {
	m.written[id] = contents
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Portal", "kabinet")
		w.Write([]byte("<p>ok</p>"))
	}))
	defer server.Close()

	tel := NewTestAPI()
	output := memoryOutput{written: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	InstrumentResty(client, tel, output)

	res, err := client.R().SetFormData(map[string]string{"id": "101"}).Post("/studentEvaluationPopup")
	require.NoError(t, err)
	require.Equal(t, "<p>ok</p>", res.String())

	require.Len(t, output.written, 1)
	for _, contents := range output.written {
		require.Contains(t, contents, "/studentEvaluationPopup")
		require.Contains(t, contents, "<p>ok</p>")
	}
	require.NotEmpty(t, tel.Reports(REPORT_DEBUG))
}

func TestInstrumentRestyError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	tel := NewTestAPI()
	client := resty.New().SetBaseURL(server.URL)
	InstrumentResty(client, tel, nil)

	_, err := client.R().Get("/studentEvaluation")
	require.Error(t, err)
	require.True(t, tel.Has(REPORT_BROKEN, "portal_http.failure"), tel.String())
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "7.http"), []byte("old"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0644))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("1", "> GET /studentEvaluation")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{"1.http", "notes.txt"}, names)

	contents, err := os.ReadFile(filepath.Join(dir, "1.http"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(contents), "> GET"))
}

func TestDumpRedactsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "rotated-secret"})
		w.Write([]byte("<table></table>"))
	}))
	defer server.Close()

	output := memoryOutput{written: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	InstrumentResty(client, NewTestAPI(), output)

	_, err := client.R().SetHeader("Cookie", "PHPSESSID=browser-secret").Get("/studentEvaluation")
	require.NoError(t, err)

	contents := output.written["1"]
	require.Contains(t, contents, "> GET")
	require.Contains(t, contents, "<table></table>")
	require.Contains(t, contents, "<redacted>")
	require.NotContains(t, contents, "browser-secret")
	require.NotContains(t, contents, "rotated-secret")
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "kabinet-test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))

	_, err = Setup(context.Background(), "kabinet-test", Config{
		Traces: ExporterConfig{Protocol: "carrier-pigeon", Endpoint: "http://localhost:4318"},
	})
	require.Error(t, err)
}

func TestSlogAPI(t *testing.T) {
	var buf bytes.Buffer
	tel := SlogAPI{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	tel.ReportBroken("client.fetch-detail", errors.New("status 500"), "101")
	tel.ReportCount("driver.courses", 7)

	out := buf.String()
	require.Contains(t, out, "client.fetch-detail")
	require.Contains(t, out, `p0="status 500"`)
	require.Contains(t, out, "p1=101")
	require.Contains(t, out, "count=7")
}
