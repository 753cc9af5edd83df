// Package timer runs the shared treatment-food countdown. The controller is
// a two-state machine, Idle or Running(end), driven by a 1 Hz loop that
// watches the consumption log for treatment checks and un-checks.
package timer

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/remedia/internal/models"
	"github.com/terraincognita07/remedia/internal/notify"
	"github.com/terraincognita07/remedia/internal/schedule"
	"github.com/terraincognita07/remedia/internal/store"
)

const expiredMessage = "Remedia: the treatment timer is done, food is allowed again."

// Controller owns the countdown transitions. The end time itself lives in
// the store (shared across devices and persisted); the controller decides
// when to set it, clear it, and schedule or cancel the expiry notification.
type Controller struct {
	store    *store.Store
	notifier notify.Notifier
	location *time.Location

	// checkedItems is last tick's set of treatment items logged today,
	// used to detect fresh checks and un-checks.
	checkedItems map[string]bool
}

func New(st *store.Store, notifier notify.Notifier, location *time.Location) *Controller {
	if location == nil {
		location = time.Local
	}
	return &Controller{
		store:        st,
		notifier:     notifier,
		location:     location,
		checkedItems: make(map[string]bool),
	}
}

// Running reports whether a countdown is active, and its remaining duration.
func (controller *Controller) Running(now time.Time) (time.Duration, bool) {
	end := controller.store.TimerEnd()
	if end.IsZero() || !end.After(now) {
		return 0, false
	}
	return end.Sub(now), true
}

// Start runs the control loop until the context ends. A persisted future end
// resumes immediately, with its notification rescheduled.
func (controller *Controller) Start(ctx context.Context) {
	controller.resume(time.Now().In(controller.location))

	ticker := time.NewTicker(time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				controller.tick(now.In(controller.location))
			}
		}
	}()
}

// resume picks up where a previous process left off. Items already logged
// today are baseline state, not fresh check events, so the checked set is
// seeded before the first tick; only a persisted future end restarts a
// countdown. The notification scheduler is in-memory, so the pending alert
// is gone; it is rescheduled under the persisted id, or a fresh one if none
// was saved.
func (controller *Controller) resume(now time.Time) {
	if cycle, found := controller.store.ActiveCycle(now); found {
		controller.checkedItems = treatmentItemsLoggedOn(cycle, controller.store.Log(), now, controller.location)
	}

	end := controller.store.TimerEnd()
	if end.IsZero() || !end.After(now) {
		return
	}

	notificationID := controller.store.TimerNotificationID()
	if notificationID == "" {
		notificationID = uuid.NewString()
		controller.store.SetTimerEnd(end, notificationID)
	}
	controller.notifier.Schedule(notificationID, end, expiredMessage)
	log.Printf("timer: resumed, %s remaining", end.Sub(now).Round(time.Second))
}

func (controller *Controller) tick(now time.Time) {
	user, found := controller.store.CurrentUser()
	if !found {
		return
	}
	cycle, found := controller.store.ActiveCycle(now)
	if !found {
		controller.checkedItems = make(map[string]bool)
		return
	}

	consumptionLog := controller.store.Log()
	checkedNow := treatmentItemsLoggedOn(cycle, consumptionLog, now, controller.location)
	freshCheck := false
	unchecked := false
	for itemID := range checkedNow {
		if !controller.checkedItems[itemID] {
			freshCheck = true
		}
	}
	for itemID := range controller.checkedItems {
		if !checkedNow[itemID] {
			unchecked = true
		}
	}
	controller.checkedItems = checkedNow

	complete := schedule.IsCategoryComplete(models.CategoryTreatment, cycle.Items, consumptionLog, cycle.ID, now, controller.location)
	end := controller.store.TimerEnd()
	running := !end.IsZero() && end.After(now)

	switch {
	case running && (complete || unchecked):
		controller.stop("category complete or item unchecked")
	case !end.IsZero() && !end.After(now):
		// Expired: the scheduled notification fires on its own, only the
		// persisted end needs clearing.
		if controller.store.ClearTimerEnd() {
			log.Println("timer: expired")
		}
	case !running && freshCheck && !complete && user.TreatmentTimerEnabled:
		controller.start(now, user)
	}
}

func (controller *Controller) start(now time.Time, user models.User) {
	end := now.Add(user.TimerDuration())
	notificationID := uuid.NewString()
	if !controller.store.SetTimerEnd(end, notificationID) {
		return
	}
	controller.notifier.Schedule(notificationID, end, expiredMessage)
	log.Printf("timer: started, ends %s", end.Format(time.RFC3339))
}

func (controller *Controller) stop(reason string) {
	notificationID := controller.store.TimerNotificationID()
	if !controller.store.ClearTimerEnd() {
		return
	}
	if notificationID != "" {
		controller.notifier.Cancel(notificationID)
	}
	log.Printf("timer: stopped (%s)", reason)
}

func treatmentItemsLoggedOn(cycle models.Cycle, consumptionLog models.ConsumptionLog, day time.Time, location *time.Location) map[string]bool {
	checked := make(map[string]bool)
	for _, item := range cycle.Items {
		if item.Category != models.CategoryTreatment {
			continue
		}
		for _, entry := range consumptionLog.Entries(cycle.ID, item.ID) {
			if schedule.SameDay(entry.Date, day, location) {
				checked[item.ID] = true
				break
			}
		}
	}
	return checked
}
