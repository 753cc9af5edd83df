package schedule

import "time"

// DateAtLocation truncates a timestamp to its calendar day in the given
// location.
func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// DayRange returns the half-open [start, end) range covering the calendar day
// of the given timestamp.
func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// DaysBetween counts whole calendar days from a to b in a's location.
// Negative when b precedes a.
func DaysBetween(a time.Time, b time.Time) int {
	location := a.Location()
	dayA := DateAtLocation(a, location)
	dayB := DateAtLocation(b, location)
	return int(dayB.Sub(dayA).Hours() / 24)
}

// SameDay reports whether two timestamps fall on the same calendar day in
// the given location.
func SameDay(a time.Time, b time.Time, location *time.Location) bool {
	return DateAtLocation(a, location).Equal(DateAtLocation(b, location))
}
