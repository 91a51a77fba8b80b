package kabinet

const (
	// SentinelMissing stands in for a value the portal did not provide.
	SentinelMissing = "-"
	// SentinelError stands in for a value that could not be fetched.
	SentinelError = "Error"
)

// CourseListingEntry is one validated row of the listing page.
type CourseListingEntry struct {
	Name      string `json:"name"`
	Credits   string `json:"credits"`
	LessonId  string `json:"lessonId"`
	EduFormId string `json:"eduFormId"`
	// RowIndex is the position of the row in the listing table, diagnostic only.
	RowIndex int `json:"rowIndex"`
}

// CourseDetail holds the scores of one course's detail popup, every field
// is always set, either to a value or to a sentinel.
type CourseDetail struct {
	ColloquiumAverage string `json:"colloquiumAverage"`
	SeminarAverage    string `json:"seminarAverage"`
	CurrentGrade      string `json:"currentGrade"`
	AbsencePercent    string `json:"absencePercent"`
}

func fullDetail(value string) CourseDetail {
	return CourseDetail{
		ColloquiumAverage: value,
		SeminarAverage:    value,
		CurrentGrade:      value,
		AbsencePercent:    value,
	}
}

// MissingDetail is the detail of a course whose popup had no plausible values.
func MissingDetail() CourseDetail {
	return fullDetail(SentinelMissing)
}

// ErrorDetail is the detail of a course whose popup could not be fetched.
func ErrorDetail() CourseDetail {
	return fullDetail(SentinelError)
}

// Option is a year or semester choice offered by the portal.
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

func (o Option) OptionValue() string { return o.Value }
func (o Option) OptionLabel() string { return o.Text }

// DetailRequest identifies one course's detail popup.
type DetailRequest struct {
	LessonId  string
	EduFormId string
	Year      string
	Semester  string
}
