package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// AcademicYearStartMonth is the first month of a school year.
const AcademicYearStartMonth = time.September

var academicYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// AcademicYearFor labels the school year containing t, e.g. "2024-2025" for
// any date from September 2024 through August 2025.
func AcademicYearFor(t time.Time) string {
	year := t.Year()
	if t.Month() >= AcademicYearStartMonth {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// ValidAcademicYear reports whether raw is "YYYY-YYYY" with consecutive years.
func ValidAcademicYear(raw string) bool {
	m := academicYearPattern.FindStringSubmatch(raw)
	if m == nil {
		return false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	end, err := strconv.Atoi(m[2])
	if err != nil {
		return false
	}
	return end == start+1
}
