package grades

import (
	"context"
	"errors"
	"fmt"
	"kabinet-assist/internal/components/chrono"
	"kabinet-assist/internal/components/telemetry"
	"kabinet-assist/internal/scrapers/kabinet"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakePortal struct {
	listing    string
	listingErr error
	details    map[string]string
	detailErrs map[string]error
	onDetail   func(req kabinet.DetailRequest)

	detailCalls []string
}

func (p *fakePortal) FetchListing(ctx context.Context, year, semester string) (string, error) {
	return p.listing, p.listingErr
}

func (p *fakePortal) FetchDetail(ctx context.Context, req kabinet.DetailRequest) (string, error) {
	p.detailCalls = append(p.detailCalls, req.LessonId)
	if p.onDetail != nil {
		p.onDetail(req)
	}
	if err := p.detailErrs[req.LessonId]; err != nil {
		return "", err
	}
	return p.details[req.LessonId], nil
}

func courseRow(lessonId, name, credits string) string {
	return fmt.Sprintf(
		"<tr><td>1</td><td>%s</td><td>%s</td><td>%s</td><td>İmtahan</td><td>7</td></tr>",
		lessonId, name, credits,
	)
}

func listingPage(rows ...string) string {
	return fmt.Sprintf(
		`<html><body><a href="/az/logout">Çıxış</a><div id="studentEvaluation-grid"><table><tbody>%s</tbody></table></div></body></html>`,
		strings.Join(rows, ""),
	)
}

func detailPayload(colloquium, seminar, grade, absence string) string {
	cells := make([]string, 15)
	cells[4] = colloquium
	cells[5] = seminar
	cells[9] = grade
	cells[14] = absence
	return fmt.Sprintf(
		`<div id="finalEval"><table><tbody><tr><td>%s</td></tr></tbody></table></div>`,
		strings.Join(cells, "</td><td>"),
	)
}

type driverFixture struct {
	driver Driver
	clock  chrono.FakeImpl
	tel    telemetry.TestAPI
}

func newDriverFixture(t *testing.T, portal Portal) driverFixture {
	clock := chrono.NewFakeImpl(time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC))
	tel := telemetry.NewTestAPI()
	driver, err := NewDriver(
		portal,
		WithCustomTelemetryAPI(tel),
		WithCustomTimeAPI(clock),
	)
	require.NoError(t, err)
	return driverFixture{driver: driver, clock: clock, tel: tel}
}

func TestFetchCourseDataContainsDetailFailures(t *testing.T) {
	portal := &fakePortal{
		listing: listingPage(
			courseRow("101", "Riyazi analiz", "4"),
			courseRow("102", "Fizika", "6"),
			courseRow("103", "Tarix", "3"),
		),
		details: map[string]string{
			"101": detailPayload("8", "9", "45", "10"),
			"103": detailPayload("7", "6", "30", "13.32"),
		},
		detailErrs: map[string]error{
			"102": &kabinet.DetailFetchError{LessonId: "102", Cause: errors.New("connection reset")},
		},
	}
	f := newDriverFixture(t, portal)

	courses, err := f.driver.FetchCourseData(context.Background(), "1001", "2")
	require.NoError(t, err)

	expected := []EnrichedCourse{
		{
			CourseListingEntry: kabinet.CourseListingEntry{Name: "Riyazi analiz", Credits: "4", LessonId: "101", EduFormId: "7", RowIndex: 0},
			CourseDetail:       kabinet.CourseDetail{ColloquiumAverage: "8", SeminarAverage: "9", CurrentGrade: "45", AbsencePercent: "10"},
			AbsenceCount:       "3",
		},
		{
			CourseListingEntry: kabinet.CourseListingEntry{Name: "Fizika", Credits: "6", LessonId: "102", EduFormId: "7", RowIndex: 1},
			CourseDetail:       kabinet.ErrorDetail(),
			AbsenceCount:       "-",
		},
		{
			CourseListingEntry: kabinet.CourseListingEntry{Name: "Tarix", Credits: "3", LessonId: "103", EduFormId: "7", RowIndex: 2},
			CourseDetail:       kabinet.CourseDetail{ColloquiumAverage: "7", SeminarAverage: "6", CurrentGrade: "30", AbsencePercent: "13.32"},
			AbsenceCount:       "3",
		},
	}
	if diff := cmp.Diff(expected, courses); diff != "" {
		t.Fatalf("courses mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, []string{"101", "102", "103"}, portal.detailCalls)
	require.True(t, f.tel.Has(telemetry.REPORT_WARNING, "driver.fetch-detail"), f.tel.String())
}

func TestFetchCourseDataPausesBetweenDetails(t *testing.T) {
	portal := &fakePortal{
		listing: listingPage(
			courseRow("101", "A", "4"),
			courseRow("102", "B", "4"),
			courseRow("103", "C", "4"),
		),
	}
	f := newDriverFixture(t, portal)

	sleepsBefore := []int{}
	portal.onDetail = func(kabinet.DetailRequest) {
		sleepsBefore = append(sleepsBefore, len(f.clock.Sleeps()))
	}

	courses, err := f.driver.FetchCourseData(context.Background(), "1001", "2")
	require.NoError(t, err)
	require.Len(t, courses, 3)
	for _, c := range courses {
		require.Equal(t, kabinet.MissingDetail(), c.CourseDetail)
		require.Equal(t, "-", c.AbsenceCount)
	}

	// the pause happens after a request completes, never before the first one or after the last one
	require.Equal(t, []int{0, 1, 2}, sleepsBefore)
	require.Equal(t, []time.Duration{DefaultInterRequestDelay, DefaultInterRequestDelay}, f.clock.Sleeps())
}

func TestFetchCourseDataCustomDelay(t *testing.T) {
	portal := &fakePortal{
		listing: listingPage(courseRow("101", "A", "4"), courseRow("102", "B", "4")),
	}
	clock := chrono.NewFakeImpl(time.Now())
	driver, err := NewDriver(
		portal,
		WithCustomTelemetryAPI(telemetry.NewTestAPI()),
		WithCustomTimeAPI(clock),
		WithInterRequestDelay(time.Second),
	)
	require.NoError(t, err)

	_, err = driver.FetchCourseData(context.Background(), "1001", "2")
	require.NoError(t, err)
	require.Equal(t, []time.Duration{time.Second}, clock.Sleeps())
}

func TestFetchCourseDataMissingSelection(t *testing.T) {
	portal := &fakePortal{}
	f := newDriverFixture(t, portal)

	for _, selection := range [][2]string{{"", "2"}, {"1001", ""}, {" ", " "}} {
		_, err := f.driver.FetchCourseData(context.Background(), selection[0], selection[1])
		require.ErrorIs(t, err, ErrMissingSelection)
	}
	require.Empty(t, portal.detailCalls)
}

func TestFetchCourseDataListingFailure(t *testing.T) {
	f := newDriverFixture(t, &fakePortal{
		listingErr: &kabinet.TransportError{Endpoint: "/studentEvaluation", Status: 500},
	})

	_, err := f.driver.FetchCourseData(context.Background(), "1001", "2")
	var transportErr *kabinet.TransportError
	require.True(t, errors.As(err, &transportErr), err)
	require.Equal(t, 500, transportErr.Status)
}

func TestFetchCourseDataNotAuthenticated(t *testing.T) {
	f := newDriverFixture(t, &fakePortal{
		listing: `<html><body><form action="/az/login"><input type="password"></form></body></html>`,
	})

	_, err := f.driver.FetchCourseData(context.Background(), "1001", "2")
	require.ErrorIs(t, err, kabinet.ErrNotAuthenticated)
	require.NotErrorIs(t, err, kabinet.ErrStructureNotFound)
}

func TestFetchCourseDataStructureChanged(t *testing.T) {
	f := newDriverFixture(t, &fakePortal{
		listing: `<html><body><a href="/az/logout">Çıxış</a><table></table></body></html>`,
	})

	_, err := f.driver.FetchCourseData(context.Background(), "1001", "2")
	require.ErrorIs(t, err, kabinet.ErrStructureNotFound)
	require.NotErrorIs(t, err, kabinet.ErrNotAuthenticated)
}

func TestFetchCourseDataEmptySemester(t *testing.T) {
	portal := &fakePortal{
		listing: listingPage(`<tr><td colspan="6">Nəticə tapılmadı</td></tr>`),
	}
	f := newDriverFixture(t, portal)

	courses, err := f.driver.FetchCourseData(context.Background(), "1001", "2")
	require.NoError(t, err)
	require.NotNil(t, courses)
	require.Empty(t, courses)
	require.Empty(t, portal.detailCalls)
}

func TestFetchCourseDataReportsSkippedRows(t *testing.T) {
	portal := &fakePortal{
		listing: listingPage(
			courseRow("101", "Riyazi analiz", "6"),
			`<tr><td>1</td><td>102</td><td>Fizika</td></tr>`,
		),
		details: map[string]string{"101": detailPayload("8", "9", "50", "2")},
	}
	f := newDriverFixture(t, portal)

	courses, err := f.driver.FetchCourseData(context.Background(), "1001", "2")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.True(t, f.tel.Has(telemetry.REPORT_DEBUG, "skipped rows"), f.tel.String())
}

func TestFetchCourseDataCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	portal := &fakePortal{
		listing: listingPage(courseRow("101", "A", "4"), courseRow("102", "B", "4")),
		onDetail: func(kabinet.DetailRequest) {
			cancel()
		},
	}
	f := newDriverFixture(t, portal)

	_, err := f.driver.FetchCourseData(ctx, "1001", "2")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"101"}, portal.detailCalls)
}
