package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/terraincognita07/remedia/internal/models"
	"gorm.io/gorm"
)

// CachedState is the serialized local copy of the room tree plus the
// client-only bookkeeping that must survive a restart.
type CachedState struct {
	Cycles              []models.Cycle         `json:"cycles"`
	Units               []models.Unit          `json:"units"`
	Users               []models.User          `json:"users"`
	Log                 models.ConsumptionLog  `json:"log"`
	Collapsed           map[string]bool        `json:"collapsed"`
	LastResetDate       time.Time              `json:"last_reset_date"`
	TimerNotificationID string                 `json:"timer_notification_id"`
	TimerEnd            time.Time              `json:"timer_end"`
}

// cacheEntry is one key-value row of the durable cache.
type cacheEntry struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value []byte `gorm:"column:value"`
}

func (cacheEntry) TableName() string {
	return "cache_entries"
}

const cacheStateKey = "state"

// SQLiteCache persists the cached state in a key-value table and keeps the
// treatment-timer end in its own file as a redundant, higher-durability
// copy: the countdown must survive even if the cache database is lost.
type SQLiteCache struct {
	database      *gorm.DB
	timerFilePath string
}

func NewSQLiteCache(database *gorm.DB, timerFilePath string) (*SQLiteCache, error) {
	if err := database.AutoMigrate(&cacheEntry{}); err != nil {
		return nil, fmt.Errorf("migrate cache table: %w", err)
	}
	return &SQLiteCache{database: database, timerFilePath: timerFilePath}, nil
}

func (cache *SQLiteCache) SaveState(state CachedState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cached state: %w", err)
	}
	entry := cacheEntry{Key: cacheStateKey, Value: payload}
	return cache.database.Save(&entry).Error
}

func (cache *SQLiteCache) LoadState() (CachedState, bool, error) {
	entry := cacheEntry{}
	result := cache.database.Where("key = ?", cacheStateKey).Limit(1).Find(&entry)
	if result.Error != nil {
		return CachedState{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return CachedState{}, false, nil
	}

	state := CachedState{}
	if err := json.Unmarshal(entry.Value, &state); err != nil {
		return CachedState{}, false, fmt.Errorf("decode cached state: %w", err)
	}
	if state.Log == nil {
		state.Log = make(models.ConsumptionLog)
	}
	return state, true, nil
}

func (cache *SQLiteCache) SaveTimerEnd(end time.Time) error {
	if cache.timerFilePath == "" {
		return nil
	}
	if end.IsZero() {
		err := os.Remove(cache.timerFilePath)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return os.WriteFile(cache.timerFilePath, []byte(end.UTC().Format(time.RFC3339)), 0o644)
}

func (cache *SQLiteCache) LoadTimerEnd() (time.Time, bool, error) {
	if cache.timerFilePath == "" {
		return time.Time{}, false, nil
	}
	raw, err := os.ReadFile(cache.timerFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(string(raw)))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("decode timer file: %w", err)
	}
	return end, true, nil
}
