package grades

import (
	"kabinet-assist/internal/scrapers/kabinet"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// absence percentage points per allowed absence for courses of 4 or more credits
	highCreditDivisor = 3.33
	// absence percentage points per allowed absence for the other courses
	lowCreditDivisor = 4.44
)

// plain decimal notation only, ParseFloat alone would also take
// exponents, hex floats and "Inf"
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	if !decimalNumber.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ComputeAbsenceCount converts an absence percentage into a number of
// missed lessons, anything unparsable (sentinels included) yields SentinelMissing.
func ComputeAbsenceCount(absencePercent, credits string) string {
	percent, ok := parseNumber(absencePercent)
	if !ok || percent < 0 {
		return kabinet.SentinelMissing
	}
	creditCount, ok := parseNumber(credits)
	if !ok || creditCount <= 0 {
		return kabinet.SentinelMissing
	}

	divisor := lowCreditDivisor
	if creditCount >= 4 {
		divisor = highCreditDivisor
	}
	count := math.Floor(percent / divisor)
	if count >= math.MaxInt64 {
		return kabinet.SentinelMissing
	}
	return strconv.FormatInt(int64(count), 10)
}

// TotalCredits sums the leading integer of every course's credits,
// unparsable credits count as zero.
func TotalCredits(courses []EnrichedCourse) int {
	total := 0
	for _, c := range courses {
		total += leadingInt(c.Credits)
	}
	return total
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
