package models

import "time"

const (
	CategoryMedicine    = "medicine"
	CategoryMaintenance = "maintenance"
	CategoryTreatment   = "treatment"
	CategoryRecommended = "recommended"
)

// Categories lists every item category in display order.
func Categories() []string {
	return []string{CategoryMedicine, CategoryMaintenance, CategoryTreatment, CategoryRecommended}
}

func IsValidCategory(category string) bool {
	switch category {
	case CategoryMedicine, CategoryMaintenance, CategoryTreatment, CategoryRecommended:
		return true
	default:
		return false
	}
}

type Item struct {
	ID       string `gorm:"primaryKey" json:"id"`
	CycleID  string `gorm:"not null;index" json:"-"`
	Name     string `gorm:"not null" json:"name"`
	Category string `gorm:"not null" json:"category"`
	// Dose is the flat dose text. Treatment items may instead carry
	// WeeklyDoses, a week-number to dose-text mapping.
	Dose        string         `json:"dose,omitempty"`
	UnitID      string         `json:"unit_id,omitempty"`
	WeeklyDoses map[int]string `gorm:"serializer:json" json:"weekly_doses,omitempty"`
	// Order is the display position. Order values share one space across
	// categories; uniqueness within a category is not required.
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// HasWeeklyDosing reports whether the item is dosed per week number rather
// than with a single flat dose.
func (item Item) HasWeeklyDosing() bool {
	return len(item.WeeklyDoses) > 0
}
