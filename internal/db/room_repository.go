package db

import (
	"time"

	"github.com/terraincognita07/remedia/internal/models"
	"gorm.io/gorm"
)

type RoomRepository struct {
	database *gorm.DB
}

func NewRoomRepository(database *gorm.DB) *RoomRepository {
	return &RoomRepository{database: database}
}

func (repo *RoomRepository) FindByCode(code string) (models.Room, bool, error) {
	room := models.Room{}
	result := repo.database.Where("code = ?", code).Limit(1).Find(&room)
	if result.Error != nil {
		return models.Room{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Room{}, false, nil
	}
	return room, true, nil
}

func (repo *RoomRepository) ExistsByCode(code string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Room{}).Where("code = ?", code).Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *RoomRepository) Create(room *models.Room) error {
	return repo.database.Create(room).Error
}

// BumpVersion increments the room version and returns the new value.
func (repo *RoomRepository) BumpVersion(roomID string) (int64, error) {
	var version int64
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Room{}).Where("id = ?", roomID).
			Update("version", gorm.Expr("version + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Room{}).Select("version").Where("id = ?", roomID).Scan(&version).Error
	})
	return version, err
}

// SaveCategoryCollapsed replaces the room's collapsed flags. The update goes
// through the model struct so the JSON serializer on the column applies; a
// column-level Update would hand the raw map to the driver.
func (repo *RoomRepository) SaveCategoryCollapsed(roomID string, collapsed map[string]bool) error {
	return repo.database.Model(&models.Room{ID: roomID}).
		Select("category_collapsed").
		Updates(&models.Room{CategoryCollapsed: collapsed}).Error
}

func (repo *RoomRepository) SaveTreatmentTimerEnd(roomID string, end *time.Time) error {
	return repo.database.Model(&models.Room{}).Where("id = ?", roomID).
		Update("treatment_timer_end", end).Error
}
