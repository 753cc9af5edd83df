package models

type Unit struct {
	ID     string `gorm:"primaryKey" json:"id"`
	RoomID string `gorm:"not null;index" json:"-"`
	Name   string `gorm:"not null" json:"name"`
}

// DefaultUnits are the bootstrap units a room falls back to when the unit
// list would otherwise be empty.
func DefaultUnits() []Unit {
	return []Unit{
		{Name: "drops"},
		{Name: "grams"},
	}
}
