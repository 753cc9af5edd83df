package db

import (
	"time"

	"github.com/terraincognita07/remedia/internal/models"
	"gorm.io/gorm"
)

type ConsumptionRepository struct {
	database *gorm.DB
}

func NewConsumptionRepository(database *gorm.DB) *ConsumptionRepository {
	return &ConsumptionRepository{database: database}
}

func (repo *ConsumptionRepository) ListByRoom(roomID string) ([]models.ConsumptionEntry, error) {
	entries := make([]models.ConsumptionEntry, 0)
	if err := repo.database.Where("room_id = ?", roomID).Order("date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ExistsAtSecond reports whether an equivalent entry is already stored. Entry
// identity is the (timestamp to the second, user) pair.
func (repo *ConsumptionRepository) ExistsAtSecond(cycleID string, itemID string, userID string, date time.Time) (bool, error) {
	second := date.Truncate(time.Second)
	var matched int64
	if err := repo.database.Model(&models.ConsumptionEntry{}).
		Where("cycle_id = ? AND item_id = ? AND user_id = ? AND date >= ? AND date < ?",
			cycleID, itemID, userID, second, second.Add(time.Second)).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ConsumptionRepository) Create(entry *models.ConsumptionEntry) error {
	return repo.database.Create(entry).Error
}

// DeleteAtSecond removes the entries matching the (second, user) identity.
func (repo *ConsumptionRepository) DeleteAtSecond(cycleID string, itemID string, userID string, date time.Time) error {
	second := date.Truncate(time.Second)
	return repo.database.
		Where("cycle_id = ? AND item_id = ? AND user_id = ? AND date >= ? AND date < ?",
			cycleID, itemID, userID, second, second.Add(time.Second)).
		Delete(&models.ConsumptionEntry{}).Error
}
