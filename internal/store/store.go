// Package store is the client-side single source of truth for one room's
// entities. All mutation flows through a single-writer command loop: public
// methods enqueue closures that one goroutine consumes in arrival order, so
// local commands and incoming remote merges can never interleave mid-change.
package store

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/terraincognita07/remedia/internal/models"
)

// RemoteWriter is the write-through half of the remote room tree. Calls
// carry a context so an unacknowledged write fails after a deadline instead
// of hanging its caller forever.
type RemoteWriter interface {
	SaveCycle(ctx context.Context, cycle models.Cycle) error
	AddItem(ctx context.Context, cycleID string, item models.Item) error
	SaveItems(ctx context.Context, cycleID string, items []models.Item) error
	RemoveItem(ctx context.Context, cycleID string, itemID string) error
	AppendLog(ctx context.Context, cycleID string, itemID string, entry models.LogEntry) error
	RemoveLog(ctx context.Context, cycleID string, itemID string, entry models.LogEntry) error
	SaveCollapsed(ctx context.Context, collapsed map[string]bool) error
	SaveTimerEnd(ctx context.Context, end time.Time) error
	SaveUser(ctx context.Context, user models.User) error
}

// Cache is the durable local copy used for crash recovery and offline
// startup. It is never the authority.
type Cache interface {
	SaveState(state CachedState) error
	LoadState() (CachedState, bool, error)
	SaveTimerEnd(end time.Time) error
	LoadTimerEnd() (time.Time, bool, error)
}

const remoteWriteTimeout = 15 * time.Second

type state struct {
	cycles    []models.Cycle
	units     []models.Unit
	users     []models.User
	log       models.ConsumptionLog
	collapsed map[string]bool
	timerEnd  time.Time

	lastResetDate       time.Time
	timerNotificationID string

	// creatingCycle guards the optimistic local append during a cycle
	// creation round trip: incoming cycle merges are dropped while set.
	creatingCycle bool
	syncError     bool
}

type Store struct {
	remote   RemoteWriter
	cache    Cache
	location *time.Location

	currentUserID string

	commands chan func()
	stopped  chan struct{}

	state state
}

func New(remote RemoteWriter, cache Cache, currentUserID string, location *time.Location) *Store {
	if location == nil {
		location = time.UTC
	}
	store := &Store{
		remote:        remote,
		cache:         cache,
		location:      location,
		currentUserID: currentUserID,
		commands:      make(chan func(), 64),
		stopped:       make(chan struct{}),
		state: state{
			log:       make(models.ConsumptionLog),
			collapsed: make(map[string]bool),
		},
	}
	store.restoreFromCache()
	return store
}

// Start runs the single-writer loop until the context is canceled.
func (store *Store) Start(ctx context.Context) {
	go func() {
		defer close(store.stopped)
		for {
			select {
			case <-ctx.Done():
				return
			case command := <-store.commands:
				command()
			}
		}
	}()
}

// do runs a closure on the writer loop and waits for it to finish. After
// shutdown it becomes a no-op so late callers do not hang.
func (store *Store) do(fn func()) {
	done := make(chan struct{})
	select {
	case store.commands <- func() {
		fn()
		close(done)
	}:
	case <-store.stopped:
		return
	}
	select {
	case <-done:
	case <-store.stopped:
	}
}

func (store *Store) restoreFromCache() {
	if store.cache == nil {
		return
	}

	cached, found, err := store.cache.LoadState()
	if err != nil {
		// A corrupt cache is not fatal; the store stays at defaults
		// until the mirror delivers a snapshot.
		log.Printf("store: load cached state failed: %v", err)
	} else if found {
		store.state.cycles = cached.Cycles
		store.state.units = cached.Units
		store.state.users = cached.Users
		store.state.log = cached.Log.Clone()
		store.state.collapsed = cloneFlags(cached.Collapsed)
		store.state.lastResetDate = cached.LastResetDate
		store.state.timerNotificationID = cached.TimerNotificationID
		store.state.timerEnd = cached.TimerEnd
	}

	// The timer file is the higher-durability copy: it wins over the
	// key-value cache so the countdown survives even a lost cache.
	if end, found, err := store.cache.LoadTimerEnd(); err == nil && found {
		store.state.timerEnd = end
	}
}

func (store *Store) persistCache() {
	if store.cache == nil {
		return
	}
	if err := store.cache.SaveState(store.cachedState()); err != nil {
		log.Printf("store: persist cache failed: %v", err)
	}
	if err := store.cache.SaveTimerEnd(store.state.timerEnd); err != nil {
		log.Printf("store: persist timer end failed: %v", err)
	}
}

func (store *Store) cachedState() CachedState {
	return CachedState{
		Cycles:              cloneCycles(store.state.cycles),
		Units:               append([]models.Unit(nil), store.state.units...),
		Users:               cloneUsers(store.state.users),
		Log:                 store.state.log.Clone(),
		Collapsed:           cloneFlags(store.state.collapsed),
		LastResetDate:       store.state.lastResetDate,
		TimerNotificationID: store.state.timerNotificationID,
		TimerEnd:            store.state.timerEnd,
	}
}

func (store *Store) writeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), remoteWriteTimeout)
}

// Cycles returns the cycles sorted by start date, items included.
func (store *Store) Cycles() []models.Cycle {
	var cycles []models.Cycle
	store.do(func() {
		cycles = cloneCycles(store.state.cycles)
	})
	return cycles
}

// ActiveCycle returns the cycle covering the given date, preferring the
// latest started one.
func (store *Store) ActiveCycle(date time.Time) (models.Cycle, bool) {
	var active models.Cycle
	found := false
	store.do(func() {
		for _, cycle := range store.state.cycles {
			if cycle.StartDate.After(date) {
				continue
			}
			active = cloneCycle(cycle)
			found = true
		}
	})
	return active, found
}

// Units returns the unit list.
func (store *Store) Units() []models.Unit {
	var units []models.Unit
	store.do(func() {
		units = append([]models.Unit(nil), store.state.units...)
	})
	return units
}

// Users returns the room members.
func (store *Store) Users() []models.User {
	var users []models.User
	store.do(func() {
		users = cloneUsers(store.state.users)
	})
	return users
}

// CurrentUser returns the member this store acts as.
func (store *Store) CurrentUser() (models.User, bool) {
	var user models.User
	found := false
	store.do(func() {
		user, found = store.findUserLocked(store.currentUserID)
	})
	return user, found
}

// Entries returns the log entries for an item.
func (store *Store) Entries(cycleID string, itemID string) []models.LogEntry {
	var entries []models.LogEntry
	store.do(func() {
		entries = append([]models.LogEntry(nil), store.state.log.Entries(cycleID, itemID)...)
	})
	return entries
}

// Log returns a deep copy of the whole consumption log.
func (store *Store) Log() models.ConsumptionLog {
	var consumption models.ConsumptionLog
	store.do(func() {
		consumption = store.state.log.Clone()
	})
	return consumption
}

// CategoryCollapsed returns the shared collapsed flags.
func (store *Store) CategoryCollapsed() map[string]bool {
	var collapsed map[string]bool
	store.do(func() {
		collapsed = cloneFlags(store.state.collapsed)
	})
	return collapsed
}

// TimerEnd returns the treatment-timer end, zero when idle.
func (store *Store) TimerEnd() time.Time {
	var end time.Time
	store.do(func() {
		end = store.state.timerEnd
	})
	return end
}

// TimerNotificationID returns the id of the scheduled timer notification.
func (store *Store) TimerNotificationID() string {
	var id string
	store.do(func() {
		id = store.state.timerNotificationID
	})
	return id
}

// SyncError reports whether the last merge left the store without usable
// data.
func (store *Store) SyncError() bool {
	var failed bool
	store.do(func() {
		failed = store.state.syncError
	})
	return failed
}

func (store *Store) findUserLocked(userID string) (models.User, bool) {
	for _, user := range store.state.users {
		if user.ID == userID {
			return cloneUser(user), true
		}
	}
	return models.User{}, false
}

func (store *Store) findCycleLocked(cycleID string) (int, bool) {
	for index, cycle := range store.state.cycles {
		if cycle.ID == cycleID {
			return index, true
		}
	}
	return 0, false
}

func (store *Store) isAdminLocked() bool {
	user, found := store.findUserLocked(store.currentUserID)
	return found && user.IsAdmin
}

func sortCyclesByStart(cycles []models.Cycle) {
	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i].StartDate.Before(cycles[j].StartDate)
	})
}

func sortItemsByOrder(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
}
