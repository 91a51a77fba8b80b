package telemetry

import "fmt"

// API is where components report what happened to them, tests swap it
// for TestAPI to assert on those reports.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a failure someone should look at.
	//
	// `id` names the component that failed and the operation it was doing,
	// for example "client.fetch-detail", never the step inside it. Ids are
	// lowercase, underscores join words of a component and dashes join
	// words of an operation. Details go into `params`.
	ReportBroken(id string, params ...any)
	// ReportWarning reports something unexpected that the component
	// recovered from, like a course whose detail popup failed.
	ReportWarning(id string, params ...any)
	// ReportDebug is for information only useful while debugging.
	ReportDebug(msg string, params ...any)
	// ReportCount reports a gauge like value of `id` at this moment.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace before handing it to the
// wrapped API.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
