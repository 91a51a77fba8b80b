package telemetry

import (
	"fmt"
	"strings"
	"sync"
)

type ReportKind int

const (
	REPORT_BROKEN ReportKind = iota
	REPORT_WARNING
	REPORT_DEBUG
	REPORT_COUNT
)

// Report is a single call recorded by TestAPI.
type Report struct {
	Kind   ReportKind
	Id     string
	Params []any
}

// TestAPI implements API by recording every report in memory so tests
// can assert on what a component reported.
type TestAPI struct {
	lock    *sync.Mutex
	reports *[]Report
}

func NewTestAPI() TestAPI {
	return TestAPI{
		lock:    &sync.Mutex{},
		reports: &[]Report{},
	}
}

func (t TestAPI) record(kind ReportKind, id string, params []any) {
	t.lock.Lock()
	defer t.lock.Unlock()
	*t.reports = append(*t.reports, Report{Kind: kind, Id: id, Params: params})
}

func (t TestAPI) ReportBroken(id string, params ...any) {
	t.record(REPORT_BROKEN, id, params)
}

func (t TestAPI) ReportWarning(id string, params ...any) {
	t.record(REPORT_WARNING, id, params)
}

func (t TestAPI) ReportDebug(msg string, params ...any) {
	t.record(REPORT_DEBUG, msg, params)
}

func (t TestAPI) ReportCount(id string, count int64) {
	t.record(REPORT_COUNT, id, []any{count})
}

// Reports returns a copy of the recorded reports of a given kind.
func (t TestAPI) Reports(kind ReportKind) []Report {
	t.lock.Lock()
	defer t.lock.Unlock()

	var out []Report
	for _, r := range *t.reports {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Has returns true if a report of the given kind has an id containing `id`.
func (t TestAPI) Has(kind ReportKind, id string) bool {
	for _, r := range t.Reports(kind) {
		if strings.Contains(r.Id, id) {
			return true
		}
	}
	return false
}

func (t TestAPI) String() string {
	t.lock.Lock()
	defer t.lock.Unlock()

	var out strings.Builder
	for _, r := range *t.reports {
		out.WriteString(fmt.Sprintf("[%d] %s %v\n", r.Kind, r.Id, r.Params))
	}
	return out.String()
}
