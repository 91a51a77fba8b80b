package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	cases := map[string]string{
		"":                       "",
		"  Math  ":               "Math",
		"Riyazi\n\t  analiz":     "Riyazi analiz",
		"\u00a0 45 \u00a0":       "45",
		"Kredit:\u00a0 \u00a06":  "Kredit: 6",
		"line\r\nbreak   inside": "line break inside",
	}
	for input, expected := range cases {
		require.Equal(t, expected, NormalizeText(input), "input %q", input)
	}
}

func TestCellTexts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tbody>
			<tr><td> 1 </td><td><b>Riyazi</b>  analiz</td><th>header</th><td>x</td><td></td></tr>
		</tbody></table>`))
	require.NoError(t, err)

	cells := CellTexts(doc.Find("tbody tr").First())
	require.Equal(t, []string{"1", "Riyazi analiz", "x", ""}, cells)
}

func TestCellTextsIgnoresNestedRows(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tbody>
			<tr id="outer"><td>a</td><td><table><tr><td>inner</td></tr></table></td></tr>
		</tbody></table>`))
	require.NoError(t, err)

	cells := CellTexts(doc.Find("#outer"))
	require.Equal(t, []string{"a", "inner"}, cells)
}
