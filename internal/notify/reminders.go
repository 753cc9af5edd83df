package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/terraincognita07/remedia/internal/models"
	"github.com/terraincognita07/remedia/internal/schedule"
	"github.com/terraincognita07/remedia/internal/store"
)

// ReminderScheduler fires the current user's per-category dose reminders at
// their configured clock times. A reminder is skipped when the category is
// already fully logged for the day, and each (category, day) pair fires at
// most once. The minute tick doubles as the daily-reset trigger.
type ReminderScheduler struct {
	store    *store.Store
	notifier Notifier
	location *time.Location

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewReminderScheduler(st *store.Store, notifier Notifier, location *time.Location) *ReminderScheduler {
	if location == nil {
		location = time.Local
	}
	return &ReminderScheduler{
		store:    st,
		notifier: notifier,
		location: location,
		sent:     make(map[string]time.Time),
	}
}

func (scheduler *ReminderScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()

		scheduler.run(ctx, time.Now())
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				scheduler.run(ctx, now)
			}
		}
	}()
}

func (scheduler *ReminderScheduler) run(ctx context.Context, now time.Time) {
	now = now.In(scheduler.location)
	scheduler.store.CheckAndResetIfNeeded(now)

	user, found := scheduler.store.CurrentUser()
	if !found {
		return
	}
	cycle, found := scheduler.store.ActiveCycle(now)
	if !found {
		return
	}

	consumptionLog := scheduler.store.Log()
	clock := now.Format("15:04")

	for _, category := range models.Categories() {
		if !user.RemindersEnabled[category] {
			continue
		}
		if user.ReminderTimes[category] != clock {
			continue
		}
		if schedule.IsCategoryComplete(category, cycle.Items, consumptionLog, cycle.ID, now, scheduler.location) {
			continue
		}
		if !scheduler.shouldSend(category, now) {
			continue
		}

		message := fmt.Sprintf("Remedia reminder: %s doses for %s are still open today.", category, cycle.PatientName)
		if err := scheduler.notifier.Send(ctx, message); err != nil {
			log.Printf("reminders: send %s reminder failed: %v", category, err)
		}
	}
}

// shouldSend enforces the once-per-day rule per category.
func (scheduler *ReminderScheduler) shouldSend(category string, now time.Time) bool {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if sentOn, ok := scheduler.sent[category]; ok && schedule.SameDay(sentOn, now, scheduler.location) {
		return false
	}

	scheduler.sent[category] = now
	if len(scheduler.sent) > 500 {
		scheduler.sent = make(map[string]time.Time)
	}
	return true
}
