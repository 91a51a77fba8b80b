package service

import (
	"errors"
	"fmt"
	"kabinet-assist/internal/grades"
	"kabinet-assist/internal/scrapers/kabinet"
)

// Result is the envelope every call resolves to, domain failures are
// carried in Error instead of being returned as errors.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	// FetchedAt is a unix timestamp in milliseconds.
	FetchedAt int64 `json:"fetchedAt"`
}

const (
	MessageMissingSelection  = "Zəhmət olmasa həm tədris ilini, həm də semestri seçin."
	MessageNotAuthenticated  = "Heç bir kurs məlumatı tapılmadı. Giriş etdiyinizə əmin olun."
	MessageStructureNotFound = "Kurs cədvəli tapılmadı"
	MessageUnknown           = "Məlumatları əldə etmək mümkün olmadı."

	MessageLoaded      = "Məlumatlar uğurla yükləndi!"
	MessageNoCourses   = "Seçilmiş dövr üçün kurs məlumatı tapılmadı."
	MessageEmptyPeriod = "Bu dövr üçün kurs məlumatı yoxdur."
	MessageLoading     = "Məlumatlar yüklənir..."

	PrefixYearsFailed     = "Tədris illərini əldə edərkən xəta: "
	PrefixSemestersFailed = "Semestrləri əldə edərkən xəta: "
	PrefixCoursesFailed   = "Kurs məlumatlarını əldə edərkən xəta: "
)

// UserMessage turns an error into the text shown to the student.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var transportErr *kabinet.TransportError
	switch {
	case errors.Is(err, grades.ErrMissingSelection):
		return MessageMissingSelection
	case errors.Is(err, kabinet.ErrNotAuthenticated):
		return MessageNotAuthenticated
	case errors.Is(err, kabinet.ErrStructureNotFound):
		return MessageStructureNotFound
	case errors.As(err, &transportErr):
		if transportErr.Cause != nil {
			return transportErr.Cause.Error()
		}
		return fmt.Sprintf("HTTP error! status: %d", transportErr.Status)
	}
	return MessageUnknown
}
