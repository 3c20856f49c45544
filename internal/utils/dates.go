package utils

import "time"

// DateLayout is the calendar-date format used for entry dates.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a real YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DateOffset shifts a YYYY-MM-DD date by days, crossing month and year
// boundaries as needed.
func DateOffset(date string, days int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}

// Today returns the current local date.
func Today() string {
	return time.Now().Format(DateLayout)
}
