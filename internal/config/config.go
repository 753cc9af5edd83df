// Package config loads server and agent settings from the environment with
// sane defaults, so both binaries run with zero flags.
package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ServerConfig configures the room server binary.
type ServerConfig struct {
	Port      string `env:"REMEDIA_PORT" env-default:"8080"`
	DBPath    string `env:"REMEDIA_DB_PATH"`
	SecretKey string `env:"REMEDIA_SECRET_KEY" env-default:"change_me_in_production"`
	Timezone  string `env:"TZ" env-default:"UTC"`
}

// AgentConfig configures the headless room companion.
type AgentConfig struct {
	ServerURL string `env:"REMEDIA_SERVER_URL" env-default:"http://localhost:8080"`
	RoomCode  string `env:"REMEDIA_ROOM_CODE"`
	UserName  string `env:"REMEDIA_USER_NAME" env-default:"agent"`
	AdminPass string `env:"REMEDIA_ADMIN_PASS"`

	CachePath     string `env:"REMEDIA_CACHE_PATH"`
	TimerFilePath string `env:"REMEDIA_TIMER_FILE"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`

	Timezone string `env:"TZ" env-default:"UTC"`
}

func LoadServer() (*ServerConfig, error) {
	cfg := ServerConfig{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "remedia.db")
	}
	return &cfg, nil
}

func LoadAgent() (*AgentConfig, error) {
	cfg := AgentConfig{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if cfg.RoomCode == "" {
		return nil, errors.New("config: REMEDIA_ROOM_CODE is required")
	}
	if cfg.CachePath == "" {
		cfg.CachePath = filepath.Join("data", "agent-cache.db")
	}
	if cfg.TimerFilePath == "" {
		cfg.TimerFilePath = filepath.Join("data", "timer_end")
	}
	return &cfg, nil
}

// Location resolves a TZ name, falling back to UTC on garbage.
func Location(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}
