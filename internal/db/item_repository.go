package db

import (
	"github.com/terraincognita07/remedia/internal/models"
	"gorm.io/gorm"
)

type ItemRepository struct {
	database *gorm.DB
}

func NewItemRepository(database *gorm.DB) *ItemRepository {
	return &ItemRepository{database: database}
}

func (repo *ItemRepository) ListByCycle(cycleID string) ([]models.Item, error) {
	items := make([]models.Item, 0)
	if err := repo.database.Where("cycle_id = ?", cycleID).Order("sort_order ASC, created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (repo *ItemRepository) CountByCycle(cycleID string) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Item{}).Where("cycle_id = ?", cycleID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Upsert creates the item, or replaces its content when the id already exists.
func (repo *ItemRepository) Upsert(item *models.Item) error {
	existing := models.Item{}
	result := repo.database.Where("id = ?", item.ID).Limit(1).Find(&existing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.database.Create(item).Error
	}
	return repo.database.Model(&models.Item{ID: item.ID}).
		Select("name", "category", "dose", "unit_id", "weekly_doses", "sort_order").
		Updates(item).Error
}

func (repo *ItemRepository) Delete(cycleID string, itemID string) error {
	return repo.database.Where("cycle_id = ? AND id = ?", cycleID, itemID).Delete(&models.Item{}).Error
}

// ReplaceForCycle overwrites the cycle's item list, used after bulk save or
// drag-reorder.
func (repo *ItemRepository) ReplaceForCycle(cycleID string, items []models.Item) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cycle_id = ?", cycleID).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		for index := range items {
			items[index].CycleID = cycleID
			if err := tx.Create(&items[index]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
