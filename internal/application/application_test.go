package application

import (
	"context"
	"fmt"
	"kabinet-assist/internal/components/chrono"
	"kabinet-assist/internal/components/telemetry"
	"kabinet-assist/internal/service"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func detailPage(absence string) string {
	cells := make([]string, 15)
	cells[4] = "8"
	cells[5] = "9"
	cells[9] = "40"
	cells[14] = absence
	return fmt.Sprintf(
		`<div id="finalEval"><table><tbody><tr><td>%s</td></tr></tbody></table></div>`,
		strings.Join(cells, "</td><td>"),
	)
}

func newPortal(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/az/studentEvaluation", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="/az/logout">Çıxış</a>
			<select id="eduYear"><option value="1001">2023/2024</option></select>
			<div id="studentEvaluation-grid"><table><tbody>
				<tr><td>1</td><td>101</td><td>Riyazi analiz</td><td>6</td><td>x</td><td>7</td></tr>
				<tr><td>2</td><td>102</td><td>Tarix</td><td>3</td><td>x</td><td>7</td></tr>
			</tbody></table></div>`)
	})
	mux.HandleFunc("/az/studentEvaluationPopup", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("id") == "102" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, detailPage("20"))
	})
	mux.HandleFunc("/az/getEduSemester", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<option value="">Seçin</option><option value="2">Yaz semestri</option>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestApplicationEndToEnd(t *testing.T) {
	portal := newPortal(t)
	delay := 0
	cfg := Config{Portal: PortalConfig{
		BaseUrl:           portal.URL + "/az",
		Cookie:            "PHPSESSID=abc",
		DelayMs:           &delay,
		RequestsPerSecond: 1000,
	}}

	app, err := New(cfg, chrono.NewFakeImpl(time.Now()), telemetry.NewTestAPI(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	years := app.Service.FetchAcademicYears(ctx)
	require.True(t, years.Success, years.Error)
	require.Len(t, years.Data, 1)

	semesters := app.Service.FetchSemesters(ctx, "1001")
	require.True(t, semesters.Success, semesters.Error)
	require.Len(t, semesters.Data, 1)

	res := app.Service.FetchCourseData(ctx, "1001", "2")
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Data, 2)
	require.Equal(t, "6", res.Data[0].AbsenceCount)
	require.Equal(t, "Error", res.Data[1].AbsencePercent)
	require.Equal(t, "-", res.Data[1].AbsenceCount)

	missing := app.Service.FetchCourseData(ctx, "1001", "")
	require.False(t, missing.Success)
	require.Equal(t, service.MessageMissingSelection, missing.Error)
}
