package kabinet

import (
	"fmt"
	"kabinet-assist/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const yearSelectSelector = "select#eduYear, select[name=eduYear]"

func optionsFrom(sel *goquery.Selection) []Option {
	options := []Option{}
	sel.Each(func(_ int, o *goquery.Selection) {
		value, hasValue := o.Attr("value")
		text := htmlutil.SelectionText(o)
		if !hasValue {
			value = text
		}
		// placeholder ("Seçin") options have an empty value
		if value == "" {
			return
		}
		options = append(options, Option{Value: value, Text: text})
	})
	return options
}

// ParseAcademicYears reads the academic years from the year select of the listing page.
func ParseAcademicYears(markup string) ([]Option, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return nil, err
	}
	sel := doc.Find(yearSelectSelector).First()
	if sel.Length() == 0 {
		return nil, missingStructure(doc, "year select")
	}
	return optionsFrom(sel.Find("option")), nil
}

// ParseSemesters reads the semesters from the `<option>` fragment returned for a year.
func ParseSemesters(fragment string) ([]Option, error) {
	// a bare <option> outside of a <select> is dropped by the html parser
	doc, err := parseDocument(fmt.Sprintf("<select>%s</select>", fragment))
	if err != nil {
		return nil, err
	}
	return optionsFrom(doc.Find("option")), nil
}
