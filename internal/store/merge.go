package store

import (
	"time"

	"github.com/terraincognita07/remedia/internal/models"
)

// ApplySnapshot merges an incoming remote snapshot into the store. The
// remote copy is the authority, with two deliberate exceptions: local-only
// items survive (they may not have reached the server yet) and an active
// local countdown ignores a remote clear (another device's stale write must
// not cancel a running timer). Every merge ends with a cache persist.
func (store *Store) ApplySnapshot(snapshot models.Snapshot, now time.Time) {
	store.do(func() {
		hadLocalCycles := len(store.state.cycles) > 0

		store.mergeCyclesLocked(snapshot.Cycles)
		store.mergeUnitsLocked(snapshot.Units)
		store.mergeUsersLocked(snapshot.Users)
		store.state.log = snapshot.DecodedLog()
		store.mergeCollapsedLocked(snapshot.CategoryCollapsed)
		store.mergeTimerEndLocked(snapshot.TimerEnd(), now)

		// An empty room with nothing held locally means we have no data to
		// show at all; a warm offline cache carries us without an error.
		store.state.syncError = len(snapshot.Cycles) == 0 && !hadLocalCycles

		store.persistCache()
	})
}

// SetSyncError marks the store as having lost its subscription.
func (store *Store) SetSyncError(failed bool) {
	store.do(func() {
		store.state.syncError = failed
	})
}

func (store *Store) mergeCyclesLocked(incoming []models.Cycle) {
	// A cycle creation round trip is in flight: the incoming list predates
	// the optimistic local append, so adopting it would drop the new cycle.
	if store.state.creatingCycle {
		return
	}

	merged := make([]models.Cycle, 0, len(incoming))
	for _, remoteCycle := range incoming {
		mergedCycle := cloneCycle(remoteCycle)
		if localIndex, found := store.findCycleLocked(remoteCycle.ID); found {
			mergedCycle.Items = mergeItems(store.state.cycles[localIndex].Items, remoteCycle.Items)
		}
		merged = append(merged, mergedCycle)
	}
	sortCyclesByStart(merged)
	store.state.cycles = merged
}

// mergeItems lets the remote version win per id, keeps local-only items and
// appends remote-only ones, sorted by display order.
func mergeItems(local []models.Item, remote []models.Item) []models.Item {
	remoteByID := make(map[string]models.Item, len(remote))
	for _, item := range remote {
		remoteByID[item.ID] = item
	}

	merged := make([]models.Item, 0, len(remote)+len(local))
	seen := make(map[string]bool, len(remote)+len(local))
	for _, localItem := range local {
		if remoteItem, found := remoteByID[localItem.ID]; found {
			merged = append(merged, cloneItem(remoteItem))
		} else {
			merged = append(merged, cloneItem(localItem))
		}
		seen[localItem.ID] = true
	}
	for _, remoteItem := range remote {
		if !seen[remoteItem.ID] {
			merged = append(merged, cloneItem(remoteItem))
		}
	}
	sortItemsByOrder(merged)
	return merged
}

func (store *Store) mergeUnitsLocked(incoming []models.Unit) {
	if len(incoming) == 0 {
		store.state.units = models.DefaultUnits()
		return
	}
	store.state.units = append([]models.Unit(nil), incoming...)
}

func (store *Store) mergeUsersLocked(incoming []models.User) {
	store.state.users = cloneUsers(incoming)
}

func (store *Store) mergeCollapsedLocked(incoming map[string]bool) {
	store.state.collapsed = cloneFlags(incoming)
	if store.state.collapsed == nil {
		store.state.collapsed = make(map[string]bool)
	}
}

func (store *Store) mergeTimerEndLocked(incoming time.Time, now time.Time) {
	local := store.state.timerEnd

	if !incoming.IsZero() {
		if incoming.After(now) && !incoming.Equal(local) {
			store.state.timerEnd = incoming
		}
		return
	}

	// Remote cleared the timer. A locally running countdown wins so a stale
	// write from another device cannot cancel it mid-count.
	if !local.IsZero() && local.After(now) {
		return
	}
	store.state.timerEnd = time.Time{}
	store.state.timerNotificationID = ""
}
