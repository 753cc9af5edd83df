package db

import (
	"github.com/terraincognita07/remedia/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) ListByRoom(roomID string) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.Where("room_id = ?", roomID).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) FindByID(userID string) (models.User, bool, error) {
	user := models.User{}
	result := repo.database.Where("id = ?", userID).Limit(1).Find(&user)
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, false, nil
	}
	return user, true, nil
}

// FindByRoomAndName resolves a member by display name within one room. When
// the same name was created more than once, the oldest member wins so rejoins
// stay stable.
func (repo *UserRepository) FindByRoomAndName(roomID, name string) (models.User, bool, error) {
	user := models.User{}
	result := repo.database.Where("room_id = ? AND name = ?", roomID, name).
		Order("created_at ASC, id ASC").Limit(1).Find(&user)
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, false, nil
	}
	return user, true, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) SetAdmin(userID string, isAdmin bool) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).
		Update("is_admin", isAdmin).Error
}

// SaveSettings overwrites the user's reminder and timer preferences.
func (repo *UserRepository) SaveSettings(user *models.User) error {
	return repo.database.Model(&models.User{ID: user.ID}).
		Select("name", "reminders_enabled", "reminder_times", "treatment_timer_enabled", "treatment_timer_seconds").
		Updates(user).Error
}
