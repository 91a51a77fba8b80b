package kabinet

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExtractEntriesSkipsNoDataAndMalformedRows(t *testing.T) {
	page := listingPage(
		listingRow{"101", "Riyazi analiz", "6", "7"}.html(),
		`<tr><td colspan="6">Nəticə tapılmadı</td></tr>`,
		`<tr><td>1</td><td>102</td><td>Fizika</td></tr>`,
		listingRow{"103", "İnformatika", "4", "7"}.html(),
		listingRow{"", "No identifier", "3", "7"}.html(),
		listingRow{"104", "Missing form", "3", ""}.html(),
		listingRow{"105", "", "3", "7"}.html(),
		listingRow{"106", "No credits", "", "7"}.html(),
		`<tr><td>No results found</td></tr>`,
		listingRow{"107", "Tarix", "3", "8"}.html(),
	)

	listing, err := ExtractListing(page)
	require.NoError(t, err)
	entries := listing.Entries
	require.Equal(t, 5, listing.Skipped)

	expected := []CourseListingEntry{
		{Name: "Riyazi analiz", Credits: "6", LessonId: "101", EduFormId: "7", RowIndex: 0},
		{Name: "İnformatika", Credits: "4", LessonId: "103", EduFormId: "7", RowIndex: 3},
		{Name: "Tarix", Credits: "3", LessonId: "107", EduFormId: "8", RowIndex: 9},
	}
	if diff := cmp.Diff(expected, entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractListingIgnoresNestedTableRows(t *testing.T) {
	nested := `<tr><td>1</td><td>101</td><td>Riyazi analiz<table><tbody>` +
		listingRow{"900", "Nested", "5", "7"}.html() +
		`</tbody></table></td><td>6</td><td>İmtahan</td><td>7</td></tr>`
	page := listingPage(nested, listingRow{"102", "Fizika", "4", "7"}.html())

	entries, err := ExtractEntries(page)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "101", entries[0].LessonId)
	require.Equal(t, "102", entries[1].LessonId)
	require.Equal(t, 1, entries[1].RowIndex)
}

func TestExtractListingEmptyTable(t *testing.T) {
	listing, err := ExtractListing(listingPage(`<tr><td colspan="6">Məlumat yoxdur</td></tr>`))
	require.NoError(t, err)
	require.Empty(t, listing.Entries)
	require.NotNil(t, listing.Entries)
	require.True(t, listing.SessionMarkers)
}

func TestExtractListingMissingTable(t *testing.T) {
	_, err := ExtractListing(loginPage)
	require.True(t, errors.Is(err, ErrNotAuthenticated), err)
	require.False(t, errors.Is(err, ErrStructureNotFound))

	_, err = ExtractListing(`<html><body><div id="other"><table></table></div></body></html>`)
	require.True(t, errors.Is(err, ErrStructureNotFound), err)
	require.False(t, errors.Is(err, ErrNotAuthenticated))
}

func TestExtractListingTableCountsAsSessionMarker(t *testing.T) {
	listing, err := ExtractListing(`<div id="studentEvaluation-grid"><table><tbody></tbody></table></div>`)
	require.NoError(t, err)
	require.True(t, listing.SessionMarkers)
}
