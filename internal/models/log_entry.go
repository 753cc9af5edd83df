package models

import (
	"fmt"
	"strings"
	"time"
)

// LogEntry records one consumption event. Identity is the (timestamp to the
// second, user id) pair; two check-ins on the same day are distinct entries.
type LogEntry struct {
	Date   time.Time `json:"date"`
	UserID string    `json:"user_id"`
}

// Matches reports whether the entry identifies the same consumption event as
// the given date and user, comparing timestamps truncated to the second.
func (entry LogEntry) Matches(date time.Time, userID string) bool {
	return entry.UserID == userID && entry.Date.Truncate(time.Second).Equal(date.Truncate(time.Second))
}

// Encode renders the wire form used in the remote tree: "RFC3339|userID".
func (entry LogEntry) Encode() string {
	return entry.Date.Truncate(time.Second).Format(time.RFC3339) + "|" + entry.UserID
}

// DecodeLogEntry parses the "RFC3339|userID" wire form.
func DecodeLogEntry(raw string) (LogEntry, error) {
	timestamp, userID, found := strings.Cut(raw, "|")
	if !found || userID == "" {
		return LogEntry{}, fmt.Errorf("malformed log entry %q", raw)
	}
	date, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return LogEntry{}, fmt.Errorf("parse log entry timestamp %q: %w", timestamp, err)
	}
	return LogEntry{Date: date, UserID: userID}, nil
}

// ConsumptionLog maps cycle id to item id to the ordered entries logged for
// that item.
type ConsumptionLog map[string]map[string][]LogEntry

// Entries returns the entries for an item, or nil.
func (log ConsumptionLog) Entries(cycleID string, itemID string) []LogEntry {
	byItem, ok := log[cycleID]
	if !ok {
		return nil
	}
	return byItem[itemID]
}

// Set replaces the entries for an item, allocating intermediate maps.
func (log ConsumptionLog) Set(cycleID string, itemID string, entries []LogEntry) {
	byItem, ok := log[cycleID]
	if !ok {
		byItem = make(map[string][]LogEntry)
		log[cycleID] = byItem
	}
	byItem[itemID] = entries
}

// Clone deep-copies the log.
func (log ConsumptionLog) Clone() ConsumptionLog {
	cloned := make(ConsumptionLog, len(log))
	for cycleID, byItem := range log {
		clonedByItem := make(map[string][]LogEntry, len(byItem))
		for itemID, entries := range byItem {
			clonedByItem[itemID] = append([]LogEntry(nil), entries...)
		}
		cloned[cycleID] = clonedByItem
	}
	return cloned
}
