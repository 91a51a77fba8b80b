package kabinet

import (
	"fmt"
	"strings"
)

type listingRow struct {
	lessonId  string
	name      string
	credits   string
	eduFormId string
}

func (r listingRow) html() string {
	return fmt.Sprintf(
		"<tr><td>1</td><td>%s</td><td>%s</td><td>%s</td><td>İmtahan</td><td>%s</td></tr>",
		r.lessonId, r.name, r.credits, r.eduFormId,
	)
}

func listingPage(rows ...string) string {
	return fmt.Sprintf(`<html><body>
		<a href="/az/logout">Çıxış</a>
		<select id="eduYear"><option value="">Seçin</option><option value="1001">2023/2024</option></select>
		<div id="studentEvaluation-grid"><table>
			<thead><tr><th>#</th><th>ID</th><th>Fənn</th><th>Kredit</th><th>Növ</th><th>Forma</th></tr></thead>
			<tbody>%s</tbody>
		</table></div>
	</body></html>`, strings.Join(rows, "\n"))
}

const loginPage = `<html><body>
	<form id="login-form" action="/az/login" method="post">
		<input name="username"><input type="password" name="password">
	</form>
</body></html>`

// detailRow builds a row of `n` cells with the given values at their column index.
func detailRow(n int, values map[int]string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<td>%s</td>", values[i])
	}
	b.WriteString("</tr>")
	return b.String()
}

func detailValues(colloquium, seminar, grade, absence string) map[int]string {
	return map[int]string{
		0:                    "1",
		colColloquiumAverage: colloquium,
		colSeminarAverage:    seminar,
		colCurrentGrade:      grade,
		colAbsencePercent:    absence,
	}
}
