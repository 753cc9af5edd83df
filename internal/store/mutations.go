package store

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/remedia/internal/models"
	"github.com/terraincognita07/remedia/internal/schedule"
)

// AddItem writes the item through to the remote tree and applies it locally,
// keyed by id: a known id updates in place, a new one appends. The item list
// is re-sorted by display order afterwards. Returns false without touching
// local state when the cycle is unknown, the caller is not the admin, or the
// remote write fails.
func (store *Store) AddItem(item models.Item, cycleID string) bool {
	allowed := false
	store.do(func() {
		_, found := store.findCycleLocked(cycleID)
		if !found || !store.isAdminLocked() {
			return
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Order == 0 {
			index, _ := store.findCycleLocked(cycleID)
			item.Order = len(store.state.cycles[index].Items)
		}
		allowed = true
	})
	if !allowed {
		log.Printf("store: add item %q rejected (missing cycle or not admin)", item.Name)
		return false
	}

	ctx, cancel := store.writeContext()
	defer cancel()
	if err := store.remote.AddItem(ctx, cycleID, item); err != nil {
		log.Printf("store: remote add item failed: %v", err)
		return false
	}

	store.do(func() {
		index, found := store.findCycleLocked(cycleID)
		if !found {
			return
		}
		cycle := &store.state.cycles[index]
		replaced := false
		for itemIndex := range cycle.Items {
			if cycle.Items[itemIndex].ID == item.ID {
				cycle.Items[itemIndex] = item
				replaced = true
				break
			}
		}
		if !replaced {
			cycle.Items = append(cycle.Items, item)
		}
		sortItemsByOrder(cycle.Items)
		store.persistCache()
	})
	return true
}

// RemoveItem deletes the item remotely and locally. Admin-only.
func (store *Store) RemoveItem(itemID string, cycleID string) bool {
	allowed := false
	store.do(func() {
		_, found := store.findCycleLocked(cycleID)
		allowed = found && store.isAdminLocked()
	})
	if !allowed {
		return false
	}

	ctx, cancel := store.writeContext()
	defer cancel()
	if err := store.remote.RemoveItem(ctx, cycleID, itemID); err != nil {
		log.Printf("store: remote remove item failed: %v", err)
		return false
	}

	store.do(func() {
		index, found := store.findCycleLocked(cycleID)
		if !found {
			return
		}
		cycle := &store.state.cycles[index]
		kept := make([]models.Item, 0, len(cycle.Items))
		for _, item := range cycle.Items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		cycle.Items = kept
		store.persistCache()
	})
	return true
}

// SaveItems overwrites a cycle's item list and order values, used after bulk
// edits and drag-reorder. Admin-only.
func (store *Store) SaveItems(items []models.Item, cycleID string) bool {
	allowed := false
	store.do(func() {
		_, found := store.findCycleLocked(cycleID)
		allowed = found && store.isAdminLocked()
	})
	if !allowed {
		return false
	}

	ctx, cancel := store.writeContext()
	defer cancel()
	if err := store.remote.SaveItems(ctx, cycleID, items); err != nil {
		log.Printf("store: remote save items failed: %v", err)
		return false
	}

	store.do(func() {
		index, found := store.findCycleLocked(cycleID)
		if !found {
			return
		}
		store.state.cycles[index].Items = cloneItems(items)
		sortItemsByOrder(store.state.cycles[index].Items)
		store.persistCache()
	})
	return true
}

// AddCycle creates a cycle, optionally duplicating another cycle's items
// into it with fresh identities. A known cycle id is treated as an update.
// A new cycle is appended optimistically so it is visible while the remote
// round trip runs; while that is in flight the store drops incoming cycle
// merges so they cannot clobber the append, and on failure the speculative
// append is removed again. An update only touches local state after the
// remote write succeeds, so a failed update leaves the old cycle intact.
func (store *Store) AddCycle(cycle models.Cycle, copyItemsFromCycleID string) bool {
	if cycle.ID == "" {
		cycle.ID = uuid.NewString()
	}

	allowed := false
	isUpdate := false
	var copiedItems []models.Item
	store.do(func() {
		if !store.isAdminLocked() {
			return
		}
		allowed = true

		if _, found := store.findCycleLocked(cycle.ID); found {
			isUpdate = true
		}
		if copyItemsFromCycleID != "" {
			if sourceIndex, found := store.findCycleLocked(copyItemsFromCycleID); found {
				copiedItems = cloneItems(store.state.cycles[sourceIndex].Items)
				for index := range copiedItems {
					copiedItems[index].ID = uuid.NewString()
					copiedItems[index].CycleID = cycle.ID
				}
			}
		}

		store.state.creatingCycle = true
		if !isUpdate {
			appended := cycle
			appended.Items = copiedItems
			store.state.cycles = append(store.state.cycles, appended)
			sortCyclesByStart(store.state.cycles)
		}
	})
	if !allowed {
		log.Printf("store: add cycle %d rejected (not admin)", cycle.Number)
		return false
	}

	ctx, cancel := store.writeContext()
	defer cancel()

	err := store.remote.SaveCycle(ctx, cycle)
	if err == nil && len(copiedItems) > 0 {
		err = store.remote.SaveItems(ctx, cycle.ID, copiedItems)
	}

	store.do(func() {
		store.state.creatingCycle = false
		if err != nil && !isUpdate {
			kept := make([]models.Cycle, 0, len(store.state.cycles))
			for _, existing := range store.state.cycles {
				if existing.ID != cycle.ID {
					kept = append(kept, existing)
				}
			}
			store.state.cycles = kept
		}
		if err == nil {
			if isUpdate {
				if index, found := store.findCycleLocked(cycle.ID); found {
					items := store.state.cycles[index].Items
					store.state.cycles[index] = cycle
					store.state.cycles[index].Items = items
					sortCyclesByStart(store.state.cycles)
				}
			}
			store.persistCache()
		}
	})

	if err != nil {
		log.Printf("store: remote save cycle failed: %v", err)
		return false
	}
	return true
}

// LogConsumption appends one consumption event. Idempotent: an entry with
// the same timestamp (to the second) and user is not re-appended.
func (store *Store) LogConsumption(itemID string, cycleID string, date time.Time) bool {
	entry := models.LogEntry{Date: date.Truncate(time.Second), UserID: store.currentUserID}

	duplicate := false
	store.do(func() {
		for _, existing := range store.state.log.Entries(cycleID, itemID) {
			if existing.Matches(entry.Date, entry.UserID) {
				duplicate = true
				return
			}
		}
	})
	if duplicate {
		return true
	}

	ctx, cancel := store.writeContext()
	defer cancel()
	if err := store.remote.AppendLog(ctx, cycleID, itemID, entry); err != nil {
		log.Printf("store: remote append log failed: %v", err)
		return false
	}

	store.do(func() {
		entries := store.state.log.Entries(cycleID, itemID)
		for _, existing := range entries {
			if existing.Matches(entry.Date, entry.UserID) {
				return
			}
		}
		store.state.log.Set(cycleID, itemID, append(entries, entry))
		store.persistCache()
	})
	return true
}

// RemoveConsumption deletes the current user's entry matching the timestamp
// to the second, and no others.
func (store *Store) RemoveConsumption(itemID string, cycleID string, date time.Time) bool {
	entry := models.LogEntry{Date: date.Truncate(time.Second), UserID: store.currentUserID}

	ctx, cancel := store.writeContext()
	defer cancel()
	if err := store.remote.RemoveLog(ctx, cycleID, itemID, entry); err != nil {
		log.Printf("store: remote remove log failed: %v", err)
		return false
	}

	store.do(func() {
		entries := store.state.log.Entries(cycleID, itemID)
		kept := make([]models.LogEntry, 0, len(entries))
		for _, existing := range entries {
			if !existing.Matches(entry.Date, entry.UserID) {
				kept = append(kept, existing)
			}
		}
		store.state.log.Set(cycleID, itemID, kept)
		store.persistCache()
	})
	return true
}

// SetCategoryCollapsed toggles a shared collapsed flag, write-through.
func (store *Store) SetCategoryCollapsed(category string, collapsed bool) bool {
	var updated map[string]bool
	store.do(func() {
		updated = cloneFlags(store.state.collapsed)
		if updated == nil {
			updated = make(map[string]bool)
		}
		updated[category] = collapsed
	})

	ctx, cancel := store.writeContext()
	defer cancel()
	if err := store.remote.SaveCollapsed(ctx, updated); err != nil {
		log.Printf("store: remote save collapsed failed: %v", err)
		return false
	}

	store.do(func() {
		store.state.collapsed = updated
		store.persistCache()
	})
	return true
}

// SaveCurrentUser writes the current user's settings through to the room.
func (store *Store) SaveCurrentUser(user models.User) bool {
	if user.ID != store.currentUserID {
		return false
	}

	ctx, cancel := store.writeContext()
	defer cancel()
	if err := store.remote.SaveUser(ctx, user); err != nil {
		log.Printf("store: remote save user failed: %v", err)
		return false
	}

	store.do(func() {
		for index := range store.state.users {
			if store.state.users[index].ID == user.ID {
				store.state.users[index] = cloneUser(user)
				break
			}
		}
		store.persistCache()
	})
	return true
}

// SetTimerEnd persists a running treatment-timer end time everywhere: the
// remote tree, the key-value cache and the redundant timer file.
func (store *Store) SetTimerEnd(end time.Time, notificationID string) bool {
	ctx, cancel := store.writeContext()
	defer cancel()
	if err := store.remote.SaveTimerEnd(ctx, end); err != nil {
		log.Printf("store: remote save timer end failed: %v", err)
		return false
	}

	store.do(func() {
		store.state.timerEnd = end
		store.state.timerNotificationID = notificationID
		store.persistCache()
	})
	return true
}

// ClearTimerEnd stops the shared timer.
func (store *Store) ClearTimerEnd() bool {
	return store.SetTimerEnd(time.Time{}, "")
}

// ResetDaily starts a fresh day: it strips log entries dated on the calendar
// day of the reset, expands every category, and keeps the treatment timer
// only while its end is still ahead. The reset day is remembered so the
// check runs once per day.
func (store *Store) ResetDaily(now time.Time) {
	store.do(func() {
		store.resetDailyLocked(now)
		store.persistCache()
	})
}

// CheckAndResetIfNeeded triggers ResetDaily on the first call of a new
// calendar day; on later calls it only clears an expired timer.
func (store *Store) CheckAndResetIfNeeded(now time.Time) {
	store.do(func() {
		if !schedule.SameDay(store.state.lastResetDate, now, store.location) {
			store.resetDailyLocked(now)
			store.persistCache()
			return
		}
		if !store.state.timerEnd.IsZero() && !store.state.timerEnd.After(now) {
			store.state.timerEnd = time.Time{}
			store.state.timerNotificationID = ""
			store.persistCache()
		}
	})
}

func (store *Store) resetDailyLocked(now time.Time) {
	today := schedule.DateAtLocation(now, store.location)

	for cycleID, byItem := range store.state.log {
		for itemID, entries := range byItem {
			kept := make([]models.LogEntry, 0, len(entries))
			for _, entry := range entries {
				if !schedule.SameDay(entry.Date, today, store.location) {
					kept = append(kept, entry)
				}
			}
			store.state.log.Set(cycleID, itemID, kept)
		}
	}

	for category := range store.state.collapsed {
		store.state.collapsed[category] = false
	}

	if !store.state.timerEnd.IsZero() && !store.state.timerEnd.After(now) {
		store.state.timerEnd = time.Time{}
		store.state.timerNotificationID = ""
	}

	store.state.lastResetDate = today
}
