package report

import (
	"fmt"
	"time"
)

const (
	isoDate       = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// TotalDays is the inclusive number of calendar days between start and end.
// A reversed range yields the same count as the forward one.
func TotalDays(start, end string) (int, error) {
	s, err := time.Parse(isoDate, start)
	if err != nil {
		return 0, fmt.Errorf("parse start date %q: %w", start, err)
	}
	e, err := time.Parse(isoDate, end)
	if err != nil {
		return 0, fmt.Errorf("parse end date %q: %w", end, err)
	}

	days := int((e.Unix() - s.Unix()) / secondsPerDay)
	if days < 0 {
		days = -days
	}
	return days + 1, nil
}

// WorkingDays subtracts holidays from totalDays. The result is not floored and
// goes negative when holidays exceed the range.
func WorkingDays(totalDays, holidays int) int {
	return totalDays - holidays
}

// DateLabel renders an ISO date with the given layout, e.g. "1/2/2006".
func DateLabel(date, layout string) (string, error) {
	d, err := time.Parse(isoDate, date)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	return d.Format(layout), nil
}
