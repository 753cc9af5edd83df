package models

import "time"

// DefaultTreatmentTimerSeconds is the treatment-food countdown duration used
// when the user has not configured one.
const DefaultTreatmentTimerSeconds = 900

type User struct {
	ID      string `gorm:"primaryKey" json:"id"`
	RoomID  string `gorm:"not null;index" json:"-"`
	Name    string `gorm:"not null" json:"name"`
	IsAdmin bool   `gorm:"not null;default:false" json:"is_admin"`
	// RemindersEnabled and ReminderTimes are keyed by item category.
	// ReminderTimes values are local times of day in "HH:MM" form.
	RemindersEnabled      map[string]bool   `gorm:"serializer:json" json:"reminders_enabled"`
	ReminderTimes         map[string]string `gorm:"serializer:json" json:"reminder_times"`
	TreatmentTimerEnabled bool              `gorm:"not null;default:true" json:"treatment_timer_enabled"`
	TreatmentTimerSeconds int               `gorm:"not null;default:900" json:"treatment_timer_seconds"`
	CreatedAt             time.Time         `json:"-"`
}

// TimerDuration returns the configured countdown duration, falling back to
// the default when unset or invalid.
func (user User) TimerDuration() time.Duration {
	if user.TreatmentTimerSeconds <= 0 {
		return DefaultTreatmentTimerSeconds * time.Second
	}
	return time.Duration(user.TreatmentTimerSeconds) * time.Second
}
