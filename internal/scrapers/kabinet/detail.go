package kabinet

import (
	"kabinet-assist/pkg/htmlutil"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

const (
	detailRowSelector = "#finalEval table tbody tr"
	detailMinCells    = 15

	colColloquiumAverage = 4
	colSeminarAverage    = 5
	colCurrentGrade      = 9
	colAbsencePercent    = 14
)

var numericValue = regexp.MustCompile(`^\d+(\.\d+)?$`)

func valueOrMissing(value string) string {
	if value == "" {
		return SentinelMissing
	}
	return value
}

func (d CourseDetail) isMissing() bool {
	return d == MissingDetail()
}

// ParseDetail extracts the scores from a detail popup, it never fails,
// anything it cannot find is left as SentinelMissing.
//
// the first row of the `#finalEval` table is read at fixed columns, if that
// container is absent or yields nothing, every table row of the payload is
// scanned and the first one with a plausible numeric value at those columns wins.
func ParseDetail(payload string) CourseDetail {
	doc, err := parseDocument(payload)
	if err != nil {
		return MissingDetail()
	}

	row := doc.Find(detailRowSelector).First()
	if row.Length() > 0 {
		cells := htmlutil.CellTexts(row)
		if len(cells) >= detailMinCells {
			detail := CourseDetail{
				ColloquiumAverage: valueOrMissing(cells[colColloquiumAverage]),
				SeminarAverage:    valueOrMissing(cells[colSeminarAverage]),
				CurrentGrade:      valueOrMissing(cells[colCurrentGrade]),
				AbsencePercent:    valueOrMissing(cells[colAbsencePercent]),
			}
			if !detail.isMissing() {
				return detail
			}
		}
	}

	return scanDetail(doc)
}

func plausibleOrMissing(value string) (string, bool) {
	if numericValue.MatchString(value) {
		return value, true
	}
	return SentinelMissing, false
}

func scanDetail(doc *goquery.Document) CourseDetail {
	result := MissingDetail()
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		found := false
		table.ChildrenFiltered("tbody").ChildrenFiltered("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			cells := htmlutil.CellTexts(row)
			if len(cells) < detailMinCells {
				return true
			}

			var ok [4]bool
			detail := CourseDetail{}
			detail.ColloquiumAverage, ok[0] = plausibleOrMissing(cells[colColloquiumAverage])
			detail.SeminarAverage, ok[1] = plausibleOrMissing(cells[colSeminarAverage])
			detail.CurrentGrade, ok[2] = plausibleOrMissing(cells[colCurrentGrade])
			detail.AbsencePercent, ok[3] = plausibleOrMissing(cells[colAbsencePercent])
			if !ok[0] && !ok[1] && !ok[2] && !ok[3] {
				return true
			}

			result = detail
			found = true
			return false
		})
		return !found
	})
	return result
}
