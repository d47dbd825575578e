package data

import "time"

// DateLayout is the ISO date format used for every window bound and record key.
const DateLayout = "2006-01-02"

// EmptyWindow reports whether start is after end. ISO dates compare correctly
// as strings, so no parsing is needed.
func EmptyWindow(start, end string) bool {
	return start > end
}

// InWindow reports whether date lies in [start, end].
func InWindow(date, start, end string) bool {
	return start <= date && date <= end
}

// Filter keeps the dates of src inside [start, end] that hold at least one
// record. The result never aliases src's map.
func Filter[T any](src DateIndexed[T], start, end string) DateIndexed[T] {
	out := make(DateIndexed[T])
	if EmptyWindow(start, end) {
		return out
	}
	for date, records := range src {
		if len(records) > 0 && InWindow(date, start, end) {
			out[date] = records
		}
	}
	return out
}

// LookbackWindow returns the window of days ending at currDate, inclusive.
func LookbackWindow(currDate string, days int) (start, end string, err error) {
	t, err := time.Parse(DateLayout, currDate)
	if err != nil {
		return "", "", err
	}
	return t.AddDate(0, 0, -days).Format(DateLayout), currDate, nil
}
