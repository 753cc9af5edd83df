package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/terraincognita07/remedia/internal/config"
	"github.com/terraincognita07/remedia/internal/db"
	"github.com/terraincognita07/remedia/internal/notify"
	"github.com/terraincognita07/remedia/internal/store"
	roomsync "github.com/terraincognita07/remedia/internal/sync"
	"github.com/terraincognita07/remedia/internal/timer"
)

func main() {
	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatalf("config failed: %v", err)
	}

	location := config.Location(cfg.Timezone)
	time.Local = location

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	client := roomsync.NewClient(cfg.ServerURL, cfg.RoomCode)
	joinCtx, cancelJoin := context.WithTimeout(sigCtx, 15*time.Second)
	user, err := client.Join(joinCtx, cfg.UserName, cfg.AdminPass)
	cancelJoin()
	if err != nil {
		log.Fatalf("join room %s failed: %v", cfg.RoomCode, err)
	}
	log.Printf("joined room %s as %s (admin: %t)", cfg.RoomCode, user.Name, user.IsAdmin)

	cacheDB, err := db.OpenCache(cfg.CachePath)
	if err != nil {
		log.Fatalf("cache init failed: %v", err)
	}
	cache, err := store.NewSQLiteCache(cacheDB, cfg.TimerFilePath)
	if err != nil {
		log.Fatalf("cache init failed: %v", err)
	}

	roomStore := store.New(client, cache, user.ID, location)
	roomStore.Start(sigCtx)

	notifier := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	if !notifier.Enabled() {
		log.Println("telegram credentials missing, notifications disabled")
	}
	notifier.Start(sigCtx)

	mirror := roomsync.NewMirror(client, roomStore)
	mirror.Start(sigCtx)

	timerController := timer.New(roomStore, notifier, location)
	timerController.Start(sigCtx)

	reminders := notify.NewReminderScheduler(roomStore, notifier, location)
	reminders.Start(sigCtx)

	<-sigCtx.Done()
	log.Println("agent shutting down")
}
