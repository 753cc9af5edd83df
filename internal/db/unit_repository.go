package db

import (
	"github.com/terraincognita07/remedia/internal/models"
	"gorm.io/gorm"
)

type UnitRepository struct {
	database *gorm.DB
}

func NewUnitRepository(database *gorm.DB) *UnitRepository {
	return &UnitRepository{database: database}
}

func (repo *UnitRepository) ListByRoom(roomID string) ([]models.Unit, error) {
	units := make([]models.Unit, 0)
	if err := repo.database.Where("room_id = ?", roomID).Order("name ASC").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// Create appends a unit. Units are never deleted and names are not deduped.
func (repo *UnitRepository) Create(unit *models.Unit) error {
	return repo.database.Create(unit).Error
}
