package kabinet

import (
	"fmt"
	"kabinet-assist/pkg/htmlutil"
	"kabinet-assist/pkg/textutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	listingContainerSelector = "#studentEvaluation-grid"
	listingTableSelector     = "#studentEvaluation-grid table"
	loginFormSelector        = "input[type=password], form[action*=login], #login-form"
	sessionMarkerSelector    = "a[href*=logout], .user-name, .username, .profile-name, " + listingContainerSelector
)

// noDataPhrases are the lowercase texts the portal puts in a single cell row
// when a semester has no courses.
var noDataPhrases = []string{
	"nəticə tapılmadı",
	"no results found",
	"məlumat yoxdur",
}

// Listing is the result of extracting a listing page.
type Listing struct {
	Entries []CourseListingEntry
	// SessionMarkers is true if the page shows signs of a logged in session,
	// it tells a legitimately empty semester apart from a silent logout.
	SessionMarkers bool
	// Skipped counts body rows that were neither a course nor a "no data" row.
	Skipped int
}

// ExtractEntries returns the course entries of a listing page in row order.
func ExtractEntries(markup string) ([]CourseListingEntry, error) {
	listing, err := ExtractListing(markup)
	if err != nil {
		return nil, err
	}
	return listing.Entries, nil
}

func parseDocument(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// missingStructure picks the error for a page that lacks the element named by `what`.
func missingStructure(doc *goquery.Document, what string) error {
	if doc.Find(loginFormSelector).Length() > 0 {
		return fmt.Errorf("%s: login form found: %w", what, ErrNotAuthenticated)
	}
	return fmt.Errorf("%s: %w", what, ErrStructureNotFound)
}

// ExtractListing locates the listing table and extracts its entries.
//
// rows with a single "no data" cell and rows of any other shape than a
// course are skipped, a valid table with no courses is not an error.
func ExtractListing(markup string) (Listing, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return Listing{}, err
	}

	table := doc.Find(listingTableSelector).First()
	if table.Length() == 0 {
		return Listing{}, missingStructure(doc, "listing table")
	}

	entries := []CourseListingEntry{}
	skipped := 0
	// direct children only, a table nested in a cell has rows of its own
	table.ChildrenFiltered("tbody").ChildrenFiltered("tr").Each(func(i int, row *goquery.Selection) {
		cells := htmlutil.CellTexts(row)
		if isNoDataRow(cells) {
			return
		}
		entry, ok := entryFromCells(i, cells)
		if !ok {
			skipped++
			return
		}
		entries = append(entries, entry)
	})

	return Listing{
		Entries:        entries,
		SessionMarkers: doc.Find(sessionMarkerSelector).Length() > 0,
		Skipped:        skipped,
	}, nil
}

func isNoDataRow(cells []string) bool {
	return len(cells) == 1 && textutil.ContainsAny(cells[0], noDataPhrases)
}

func entryFromCells(rowIndex int, cells []string) (CourseListingEntry, bool) {
	if len(cells) < 6 {
		return CourseListingEntry{}, false
	}
	entry := CourseListingEntry{
		LessonId:  cells[1],
		Name:      cells[2],
		Credits:   cells[3],
		EduFormId: cells[5],
		RowIndex:  rowIndex,
	}
	if entry.LessonId == "" || entry.EduFormId == "" || entry.Name == "" || entry.Credits == "" {
		return CourseListingEntry{}, false
	}
	return entry, true
}
