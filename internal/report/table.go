package report

import (
	"bytes"
	"fmt"
	"io"
	"kabinet-assist/internal/grades"
	"kabinet-assist/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var header = table.Row{
	"Fənn",
	"Kredit",
	"Kollokvium ortası",
	"Seminar ortası",
	"Cari qiymət",
	"Qaib faizi",
	"Qaib sayı",
}

// NewTable returns a rounded table writer that prints headers and footers
// as given, upper-casing would mangle Azerbaijani letters.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetOutputMirror(w)
	return t
}

func orMissing(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// TotalCreditsLine is the line printed under the table.
func TotalCreditsLine(courses []grades.EnrichedCourse) string {
	return fmt.Sprintf("Ümumi Kredit: %d", grades.TotalCredits(courses))
}

// RenderTable writes the courses as a table followed by their total credits,
// an empty slice renders a single "no data" row.
func RenderTable(w io.Writer, courses []grades.EnrichedCourse) {
	t := NewTable(w)
	t.AppendHeader(header)

	if len(courses) == 0 {
		row := table.Row{}
		for range header {
			row = append(row, service.MessageEmptyPeriod)
		}
		t.AppendRow(row, table.RowConfig{AutoMerge: true, AutoMergeAlign: text.AlignCenter})
	}
	for _, c := range courses {
		t.AppendRow(table.Row{
			orMissing(c.Name),
			orMissing(c.Credits),
			orMissing(c.ColloquiumAverage),
			orMissing(c.SeminarAverage),
			orMissing(c.CurrentGrade),
			orMissing(c.AbsencePercent),
			orMissing(c.AbsenceCount),
		})
	}
	t.Render()

	fmt.Fprintln(w, TotalCreditsLine(courses))
}

// RenderString is RenderTable into a string.
func RenderString(courses []grades.EnrichedCourse) string {
	var buffer bytes.Buffer
	RenderTable(&buffer, courses)
	return buffer.String()
}
