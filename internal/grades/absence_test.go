package grades

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeAbsenceCount(t *testing.T) {
	testCases := []struct {
		name     string
		percent  string
		credits  string
		expected string
	}{
		{name: "four credits use 3.33", percent: "10", credits: "4", expected: "3"},
		{name: "four credits exact multiple", percent: "13.32", credits: "4", expected: "4"},
		{name: "three credits use 4.44", percent: "13.32", credits: "3", expected: "3"},
		{name: "floor not round", percent: "8.87", credits: "3", expected: "1"},
		{name: "many credits", percent: "20", credits: "6", expected: "6"},
		{name: "zero percent", percent: "0", credits: "5", expected: "0"},
		{name: "decimal comma", percent: "13,32", credits: "3", expected: "3"},
		{name: "surrounding whitespace", percent: " 10 ", credits: " 4 ", expected: "3"},
		{name: "between three and four", percent: "13.32", credits: "3.5", expected: "3"},
		{name: "missing sentinel", percent: "-", credits: "4", expected: "-"},
		{name: "error sentinel", percent: "Error", credits: "4", expected: "-"},
		{name: "empty percent", percent: "", credits: "4", expected: "-"},
		{name: "unparsable credits", percent: "10", credits: "abc", expected: "-"},
		{name: "zero credits", percent: "10", credits: "0", expected: "-"},
		{name: "negative credits", percent: "10", credits: "-4", expected: "-"},
		{name: "negative percent", percent: "-10", credits: "4", expected: "-"},
		{name: "not a number", percent: "NaN", credits: "4", expected: "-"},
		{name: "infinity", percent: "Inf", credits: "4", expected: "-"},
		{name: "exponent notation", percent: "1e30", credits: "4", expected: "-"},
		{name: "hex float", percent: "0x1p4", credits: "4", expected: "-"},
		{name: "too large for an integer", percent: "99999999999999999999999", credits: "4", expected: "-"},
		{name: "leading dot", percent: ".5", credits: "4", expected: "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ComputeAbsenceCount(tc.percent, tc.credits))
		})
	}
}

func TestTotalCredits(t *testing.T) {
	courses := []EnrichedCourse{}
	for _, credits := range []string{"6", "4", " 3 ", "2.5", "5 kredit", "abc", ""} {
		c := EnrichedCourse{}
		c.Credits = credits
		courses = append(courses, c)
	}
	require.Equal(t, 20, TotalCredits(courses))
	require.Zero(t, TotalCredits(nil))
}
