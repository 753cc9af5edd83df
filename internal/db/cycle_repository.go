package db

import (
	"github.com/terraincognita07/remedia/internal/models"
	"gorm.io/gorm"
)

type CycleRepository struct {
	database *gorm.DB
}

func NewCycleRepository(database *gorm.DB) *CycleRepository {
	return &CycleRepository{database: database}
}

func (repo *CycleRepository) ListByRoom(roomID string) ([]models.Cycle, error) {
	cycles := make([]models.Cycle, 0)
	if err := repo.database.Where("room_id = ?", roomID).Order("start_date ASC, number ASC").Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

func (repo *CycleRepository) FindByID(roomID string, cycleID string) (models.Cycle, bool, error) {
	cycle := models.Cycle{}
	result := repo.database.Where("room_id = ? AND id = ?", roomID, cycleID).Limit(1).Find(&cycle)
	if result.Error != nil {
		return models.Cycle{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Cycle{}, false, nil
	}
	return cycle, true, nil
}

// Upsert creates the cycle, or updates it in place when the id already
// exists. Cycles are never physically deleted, only superseded.
func (repo *CycleRepository) Upsert(cycle *models.Cycle) error {
	existing := models.Cycle{}
	result := repo.database.Where("id = ?", cycle.ID).Limit(1).Find(&existing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.database.Create(cycle).Error
	}
	return repo.database.Model(&models.Cycle{ID: cycle.ID}).
		Select("number", "patient_name", "start_date", "food_challenge_date").
		Updates(cycle).Error
}

func (repo *CycleRepository) NumberTakenByOtherCycle(roomID string, number int, cycleID string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Cycle{}).
		Where("room_id = ? AND number = ? AND id <> ?", roomID, number, cycleID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}
