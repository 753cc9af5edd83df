// Package schedule derives week numbers, dose texts and completion status
// from cycle dates and consumption logs. Everything here is a pure function
// of its inputs.
package schedule

import (
	"sort"
	"time"

	"github.com/terraincognita07/remedia/internal/models"
)

// WeekNumber returns the 1-based week of the cycle the given date falls in.
// Dates before the cycle start still report week 1.
func WeekNumber(cycle models.Cycle, date time.Time) int {
	days := DaysBetween(cycle.StartDate, date)
	week := days/7 + 1
	if days < 0 || week < 1 {
		return 1
	}
	return week
}

// TotalWeeks returns the number of dosing weeks in the cycle. The food
// challenge day itself is not a dosing day, so the count runs through the
// day before it.
func TotalWeeks(cycle models.Cycle) int {
	lastDosingDay := cycle.FoodChallengeDate.AddDate(0, 0, -1)
	days := DaysBetween(cycle.StartDate, lastDosingDay)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}

// WeekStart returns the first calendar day of the given 1-based cycle week.
func WeekStart(cycle models.Cycle, week int, location *time.Location) time.Time {
	if week < 1 {
		week = 1
	}
	return DateAtLocation(cycle.StartDate, location).AddDate(0, 0, (week-1)*7)
}

// IsCategoryComplete reports whether every item of the category has a log
// entry dated today. An empty category is never complete.
func IsCategoryComplete(category string, items []models.Item, log models.ConsumptionLog, cycleID string, today time.Time, location *time.Location) bool {
	found := false
	for _, item := range items {
		if item.Category != category {
			continue
		}
		found = true
		if !loggedOnDay(log.Entries(cycleID, item.ID), today, location) {
			return false
		}
	}
	return found
}

// WeeklyDoseCount counts the log entries falling within the seven days
// starting at weekStart.
func WeeklyDoseCount(entries []models.LogEntry, weekStart time.Time, location *time.Location) int {
	start := DateAtLocation(weekStart, location)
	end := start.AddDate(0, 0, 7)
	count := 0
	for _, entry := range entries {
		day := DateAtLocation(entry.Date, location)
		if !day.Before(start) && day.Before(end) {
			count++
		}
	}
	return count
}

// DisplayDose resolves the dose text shown for an item in the given cycle
// week. Flat-dosed items always show their dose; week-indexed items show the
// entry for the current week, falling back to the earliest defined week.
func DisplayDose(item models.Item, week int) string {
	if !item.HasWeeklyDosing() {
		return item.Dose
	}
	if dose, ok := item.WeeklyDoses[week]; ok {
		return dose
	}

	weeks := make([]int, 0, len(item.WeeklyDoses))
	for defined := range item.WeeklyDoses {
		weeks = append(weeks, defined)
	}
	sort.Ints(weeks)
	return item.WeeklyDoses[weeks[0]]
}

func loggedOnDay(entries []models.LogEntry, day time.Time, location *time.Location) bool {
	for _, entry := range entries {
		if SameDay(entry.Date, day, location) {
			return true
		}
	}
	return false
}
