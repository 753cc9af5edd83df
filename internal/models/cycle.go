package models

import "time"

type Cycle struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	RoomID            string    `gorm:"not null;index;uniqueIndex:uidx_room_number" json:"-"`
	Number            int       `gorm:"not null;uniqueIndex:uidx_room_number" json:"number"`
	PatientName       string    `gorm:"not null" json:"patient_name"`
	StartDate         time.Time `gorm:"type:date;not null" json:"start_date"`
	FoodChallengeDate time.Time `gorm:"type:date;not null" json:"food_challenge_date"`
	Items             []Item    `gorm:"-" json:"items"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}
