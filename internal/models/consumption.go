package models

import "time"

// ConsumptionEntry is the server-side row behind one LogEntry.
type ConsumptionEntry struct {
	ID      string    `gorm:"primaryKey"`
	RoomID  string    `gorm:"not null;index"`
	CycleID string    `gorm:"not null;index:idx_consumption_scope"`
	ItemID  string    `gorm:"not null;index:idx_consumption_scope"`
	UserID  string    `gorm:"not null"`
	Date    time.Time `gorm:"not null"`
}

// LogEntry converts the row into its wire representation.
func (entry ConsumptionEntry) LogEntry() LogEntry {
	return LogEntry{Date: entry.Date, UserID: entry.UserID}
}
