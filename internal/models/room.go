package models

import "time"

type Room struct {
	ID            string `gorm:"primaryKey" json:"id"`
	Code          string `gorm:"uniqueIndex;not null" json:"code"`
	AdminPassHash string `gorm:"not null" json:"-"`
	// Version increments on every mutation of the room tree; snapshot
	// subscribers long-poll against it.
	Version           int64           `gorm:"not null;default:0" json:"version"`
	CategoryCollapsed map[string]bool `gorm:"serializer:json" json:"category_collapsed"`
	TreatmentTimerEnd *time.Time      `json:"treatment_timer_end,omitempty"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
}

// TimerEndString renders the timer end in the wire form used by snapshots:
// RFC3339, or empty when no timer is set.
func (room Room) TimerEndString() string {
	if room.TreatmentTimerEnd == nil || room.TreatmentTimerEnd.IsZero() {
		return ""
	}
	return room.TreatmentTimerEnd.UTC().Format(time.RFC3339)
}
