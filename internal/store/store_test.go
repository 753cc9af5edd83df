package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/remedia/internal/models"
)

type fakeRemote struct {
	mu   sync.Mutex
	fail bool

	savedCycles  []models.Cycle
	addedItems   []models.Item
	savedItems   map[string][]models.Item
	removedItems []string
	appendedLogs []models.LogEntry
	removedLogs  []models.LogEntry
	collapsed    []map[string]bool
	timerEnds    []time.Time
	savedUsers   []models.User
}

var errRemoteDown = errors.New("remote down")

func (remote *fakeRemote) err() error {
	if remote.fail {
		return errRemoteDown
	}
	return nil
}

func (remote *fakeRemote) SaveCycle(_ context.Context, cycle models.Cycle) error {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if err := remote.err(); err != nil {
		return err
	}
	remote.savedCycles = append(remote.savedCycles, cycle)
	return nil
}

func (remote *fakeRemote) AddItem(_ context.Context, _ string, item models.Item) error {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if err := remote.err(); err != nil {
		return err
	}
	remote.addedItems = append(remote.addedItems, item)
	return nil
}

func (remote *fakeRemote) SaveItems(_ context.Context, cycleID string, items []models.Item) error {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if err := remote.err(); err != nil {
		return err
	}
	if remote.savedItems == nil {
		remote.savedItems = make(map[string][]models.Item)
	}
	remote.savedItems[cycleID] = items
	return nil
}

func (remote *fakeRemote) RemoveItem(_ context.Context, _ string, itemID string) error {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if err := remote.err(); err != nil {
		return err
	}
	remote.removedItems = append(remote.removedItems, itemID)
	return nil
}

func (remote *fakeRemote) AppendLog(_ context.Context, _ string, _ string, entry models.LogEntry) error {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if err := remote.err(); err != nil {
		return err
	}
	remote.appendedLogs = append(remote.appendedLogs, entry)
	return nil
}

func (remote *fakeRemote) RemoveLog(_ context.Context, _ string, _ string, entry models.LogEntry) error {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if err := remote.err(); err != nil {
		return err
	}
	remote.removedLogs = append(remote.removedLogs, entry)
	return nil
}

func (remote *fakeRemote) SaveCollapsed(_ context.Context, collapsed map[string]bool) error {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if err := remote.err(); err != nil {
		return err
	}
	remote.collapsed = append(remote.collapsed, collapsed)
	return nil
}

func (remote *fakeRemote) SaveTimerEnd(_ context.Context, end time.Time) error {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if err := remote.err(); err != nil {
		return err
	}
	remote.timerEnds = append(remote.timerEnds, end)
	return nil
}

func (remote *fakeRemote) SaveUser(_ context.Context, user models.User) error {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if err := remote.err(); err != nil {
		return err
	}
	remote.savedUsers = append(remote.savedUsers, user)
	return nil
}

func (remote *fakeRemote) appendedCount() int {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	return len(remote.appendedLogs)
}

func newTestStore(t *testing.T, remote *fakeRemote, admin bool) *Store {
	t.Helper()

	store := New(remote, nil, "user-1", time.UTC)
	store.state.users = []models.User{
		{ID: "user-1", Name: "tester", IsAdmin: admin, TreatmentTimerEnabled: true},
		{ID: "user-2", Name: "other"},
	}
	store.state.cycles = []models.Cycle{
		{
			ID:                "cycle-1",
			Number:            1,
			PatientName:       "Alex",
			StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			FoodChallengeDate: time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
			Items: []models.Item{
				{ID: "item-1", CycleID: "cycle-1", Name: "antihistamine", Category: models.CategoryMedicine, Order: 0},
				{ID: "item-2", CycleID: "cycle-1", Name: "milk", Category: models.CategoryTreatment, Order: 1},
			},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	store.Start(ctx)
	return store
}

func TestLogConsumptionIdempotent(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, false)

	date := time.Date(2024, 2, 1, 9, 30, 15, 200000000, time.UTC)
	if !store.LogConsumption("item-1", "cycle-1", date) {
		t.Fatal("first LogConsumption returned false")
	}
	if !store.LogConsumption("item-1", "cycle-1", date.Add(500*time.Millisecond)) {
		t.Fatal("duplicate LogConsumption returned false")
	}

	if got := remote.appendedCount(); got != 1 {
		t.Fatalf("remote received %d appends, want 1", got)
	}
	entries := store.Entries("cycle-1", "item-1")
	if len(entries) != 1 {
		t.Fatalf("store holds %d entries, want 1", len(entries))
	}
	if entries[0].Date.Nanosecond() != 0 {
		t.Fatalf("entry date not truncated to second: %s", entries[0].Date)
	}
}

func TestLogConsumptionRemoteFailure(t *testing.T) {
	remote := &fakeRemote{fail: true}
	store := newTestStore(t, remote, false)

	if store.LogConsumption("item-1", "cycle-1", time.Now()) {
		t.Fatal("LogConsumption succeeded with remote down")
	}
	if entries := store.Entries("cycle-1", "item-1"); len(entries) != 0 {
		t.Fatalf("store holds %d entries after failed write, want 0", len(entries))
	}
}

func TestRemoveConsumptionExactMatch(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, false)

	first := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(4 * time.Hour)
	store.do(func() {
		store.state.log.Set("cycle-1", "item-1", []models.LogEntry{
			{Date: first, UserID: "user-1"},
			{Date: second, UserID: "user-1"},
			{Date: first, UserID: "user-2"},
		})
	})

	if !store.RemoveConsumption("item-1", "cycle-1", first) {
		t.Fatal("RemoveConsumption returned false")
	}

	entries := store.Entries("cycle-1", "item-1")
	if len(entries) != 2 {
		t.Fatalf("store holds %d entries, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.UserID == "user-1" && entry.Date.Equal(first) {
			t.Fatal("removed entry still present")
		}
	}
}

func TestAddItemDefaultsOrderToItemCount(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, true)

	if !store.AddItem(models.Item{Name: "nettle tea", Category: models.CategoryRecommended}, "cycle-1") {
		t.Fatal("AddItem returned false")
	}

	cycles := store.Cycles()
	items := cycles[0].Items
	if len(items) != 3 {
		t.Fatalf("cycle holds %d items, want 3", len(items))
	}
	added := items[2]
	if added.Name != "nettle tea" {
		t.Fatalf("last item = %q, want the appended one", added.Name)
	}
	if added.Order != 2 {
		t.Fatalf("defaulted order = %d, want 2", added.Order)
	}
	if added.ID == "" {
		t.Fatal("added item has no generated id")
	}
}

func TestAddItemRequiresAdmin(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, false)

	if store.AddItem(models.Item{Name: "nettle tea", Category: models.CategoryRecommended}, "cycle-1") {
		t.Fatal("non-admin AddItem succeeded")
	}
	if len(remote.addedItems) != 0 {
		t.Fatal("remote write happened for rejected AddItem")
	}
}

func TestAddCycleRollbackOnRemoteFailure(t *testing.T) {
	remote := &fakeRemote{fail: true}
	store := newTestStore(t, remote, true)

	cycle := models.Cycle{
		Number:            2,
		PatientName:       "Alex",
		StartDate:         time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		FoodChallengeDate: time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC),
	}
	if store.AddCycle(cycle, "") {
		t.Fatal("AddCycle succeeded with remote down")
	}

	cycles := store.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("store holds %d cycles after rollback, want 1", len(cycles))
	}

	var creating bool
	store.do(func() { creating = store.state.creatingCycle })
	if creating {
		t.Fatal("creatingCycle flag left set after rollback")
	}
}

func TestAddCycleUpdateFailureLeavesLocalUnchanged(t *testing.T) {
	remote := &fakeRemote{fail: true}
	store := newTestStore(t, remote, true)

	updated := models.Cycle{
		ID:                "cycle-1",
		Number:            1,
		PatientName:       "Sam",
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		FoodChallengeDate: time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
	}
	if store.AddCycle(updated, "") {
		t.Fatal("cycle update succeeded with remote down")
	}

	cycles := store.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("store holds %d cycles, want 1", len(cycles))
	}
	if cycles[0].PatientName != "Alex" {
		t.Fatalf("failed update changed local cycle: %q", cycles[0].PatientName)
	}

	var creating bool
	store.do(func() { creating = store.state.creatingCycle })
	if creating {
		t.Fatal("creatingCycle flag left set after failed update")
	}
}

func TestAddCycleUpdateKeepsItems(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, true)

	updated := models.Cycle{
		ID:                "cycle-1",
		Number:            1,
		PatientName:       "Sam",
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		FoodChallengeDate: time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
	}
	if !store.AddCycle(updated, "") {
		t.Fatal("AddCycle update returned false")
	}

	cycles := store.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("store holds %d cycles, want 1", len(cycles))
	}
	if cycles[0].PatientName != "Sam" {
		t.Fatalf("update not applied after remote ack: %q", cycles[0].PatientName)
	}
	if len(cycles[0].Items) != 2 {
		t.Fatalf("update dropped items, %d left", len(cycles[0].Items))
	}
}

func TestAddCycleCopiesItemsWithFreshIdentities(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, true)

	cycle := models.Cycle{
		ID:                "cycle-2",
		Number:            2,
		PatientName:       "Alex",
		StartDate:         time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		FoodChallengeDate: time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC),
	}
	if !store.AddCycle(cycle, "cycle-1") {
		t.Fatal("AddCycle returned false")
	}

	cycles := store.Cycles()
	if len(cycles) != 2 {
		t.Fatalf("store holds %d cycles, want 2", len(cycles))
	}
	copied := cycles[1].Items
	if len(copied) != 2 {
		t.Fatalf("copied %d items, want 2", len(copied))
	}
	for _, item := range copied {
		if item.ID == "item-1" || item.ID == "item-2" {
			t.Fatalf("copied item kept source id %s", item.ID)
		}
		if item.CycleID != "cycle-2" {
			t.Fatalf("copied item cycle id = %s, want cycle-2", item.CycleID)
		}
	}
	if remote.savedItems["cycle-2"] == nil {
		t.Fatal("copied items never written through")
	}
}

func TestApplySnapshotPreservesLocalOnlyItems(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, true)

	snapshot := models.Snapshot{
		Version: 7,
		Cycles: []models.Cycle{
			{
				ID:                "cycle-1",
				Number:            1,
				PatientName:       "Alex",
				StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				FoodChallengeDate: time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
				Items: []models.Item{
					// item-1 renamed remotely, item-2 absent remotely.
					{ID: "item-1", Name: "cetirizine", Category: models.CategoryMedicine, Order: 0},
					{ID: "item-3", Name: "calcium", Category: models.CategoryMaintenance, Order: 2},
				},
			},
		},
	}
	store.ApplySnapshot(snapshot, time.Now())

	items := store.Cycles()[0].Items
	if len(items) != 3 {
		t.Fatalf("merged %d items, want 3", len(items))
	}
	byID := make(map[string]models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	if byID["item-1"].Name != "cetirizine" {
		t.Fatalf("remote rename lost: %q", byID["item-1"].Name)
	}
	if _, found := byID["item-2"]; !found {
		t.Fatal("local-only item dropped by merge")
	}
	if _, found := byID["item-3"]; !found {
		t.Fatal("remote-only item not appended")
	}
}

func TestApplySnapshotSyncErrorRule(t *testing.T) {
	remote := &fakeRemote{}

	warm := newTestStore(t, remote, false)
	warm.ApplySnapshot(models.Snapshot{}, time.Now())
	if warm.SyncError() {
		t.Fatal("warm store flagged sync error on empty snapshot")
	}

	cold := New(remote, nil, "user-1", time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cold.Start(ctx)
	cold.ApplySnapshot(models.Snapshot{}, time.Now())
	if !cold.SyncError() {
		t.Fatal("cold store not flagged on empty snapshot")
	}

	cold.ApplySnapshot(models.Snapshot{Cycles: []models.Cycle{{ID: "cycle-9", Number: 1}}}, time.Now())
	if cold.SyncError() {
		t.Fatal("sync error not cleared by non-empty snapshot")
	}
}

func TestApplySnapshotSkipsCycleMergeWhileCreating(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, true)

	store.do(func() { store.state.creatingCycle = true })
	store.ApplySnapshot(models.Snapshot{Cycles: []models.Cycle{{ID: "cycle-9", Number: 9}}}, time.Now())

	cycles := store.Cycles()
	if len(cycles) != 1 || cycles[0].ID != "cycle-1" {
		t.Fatalf("cycle merge applied mid-creation: %+v", cycles)
	}
}

func TestApplySnapshotTimerMerge(t *testing.T) {
	remote := &fakeRemote{}
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	store := newTestStore(t, remote, false)
	localEnd := now.Add(5 * time.Minute)
	store.do(func() { store.state.timerEnd = localEnd })

	// Remote clear loses against a locally running countdown.
	store.ApplySnapshot(models.Snapshot{Cycles: []models.Cycle{{ID: "cycle-1"}}}, now)
	if got := store.TimerEnd(); !got.Equal(localEnd) {
		t.Fatalf("running timer cleared by stale remote: %s", got)
	}

	// A different future end is adopted.
	remoteEnd := now.Add(10 * time.Minute)
	store.ApplySnapshot(models.Snapshot{
		Cycles:            []models.Cycle{{ID: "cycle-1"}},
		TreatmentTimerEnd: remoteEnd.Format(time.RFC3339),
	}, now)
	if got := store.TimerEnd(); !got.Equal(remoteEnd) {
		t.Fatalf("future remote end not adopted: %s", got)
	}

	// Once the local end has passed, a remote clear wins.
	store.ApplySnapshot(models.Snapshot{Cycles: []models.Cycle{{ID: "cycle-1"}}}, remoteEnd.Add(time.Minute))
	if got := store.TimerEnd(); !got.IsZero() {
		t.Fatalf("expired timer survived remote clear: %s", got)
	}
}

func TestApplySnapshotUnitFallback(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, false)

	store.ApplySnapshot(models.Snapshot{Cycles: []models.Cycle{{ID: "cycle-1"}}}, time.Now())

	units := store.Units()
	if len(units) != 2 {
		t.Fatalf("fallback units = %d, want 2", len(units))
	}
	if units[0].Name != "drops" || units[1].Name != "grams" {
		t.Fatalf("fallback units = %q, %q", units[0].Name, units[1].Name)
	}
}

func TestResetDaily(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, false)

	now := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)
	store.do(func() {
		store.state.log.Set("cycle-1", "item-1", []models.LogEntry{
			{Date: now.AddDate(0, 0, -1), UserID: "user-1"},
			{Date: now.Add(-time.Hour), UserID: "user-1"},
		})
		store.state.collapsed = map[string]bool{models.CategoryMedicine: true}
		store.state.timerEnd = now.Add(-time.Minute)
	})

	store.ResetDaily(now)

	entries := store.Entries("cycle-1", "item-1")
	if len(entries) != 1 {
		t.Fatalf("reset left %d entries, want only yesterday's", len(entries))
	}
	if entryDate := entries[0].Date; !entryDate.Before(now.AddDate(0, 0, -1).Add(time.Hour)) {
		t.Fatalf("surviving entry is not yesterday's: %s", entryDate)
	}
	if store.CategoryCollapsed()[models.CategoryMedicine] {
		t.Fatal("collapsed flag not expanded by reset")
	}
	if !store.TimerEnd().IsZero() {
		t.Fatal("expired timer survived reset")
	}
}

func TestCheckAndResetIfNeededOncePerDay(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, false)

	morning := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)
	store.CheckAndResetIfNeeded(morning)

	store.do(func() {
		store.state.log.Set("cycle-1", "item-1", []models.LogEntry{
			{Date: morning.Add(time.Hour), UserID: "user-1"},
		})
	})

	// Later the same day: no second reset, today's entry stays.
	store.CheckAndResetIfNeeded(morning.Add(6 * time.Hour))
	if len(store.Entries("cycle-1", "item-1")) != 1 {
		t.Fatal("same-day check wiped today's entries")
	}

	// Next day: entries dated that new day would be stripped, older ones kept.
	store.CheckAndResetIfNeeded(morning.AddDate(0, 0, 1))
	if len(store.Entries("cycle-1", "item-1")) != 1 {
		t.Fatal("next-day reset stripped yesterday's entries")
	}
}

func TestSetCategoryCollapsedWriteThrough(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, false)

	if !store.SetCategoryCollapsed(models.CategoryMedicine, true) {
		t.Fatal("SetCategoryCollapsed returned false")
	}
	if !store.CategoryCollapsed()[models.CategoryMedicine] {
		t.Fatal("collapsed flag not applied locally")
	}
	if len(remote.collapsed) != 1 || !remote.collapsed[0][models.CategoryMedicine] {
		t.Fatal("collapsed flags not written through")
	}
}

func TestSaveCurrentUserRejectsOtherUsers(t *testing.T) {
	remote := &fakeRemote{}
	store := newTestStore(t, remote, false)

	if store.SaveCurrentUser(models.User{ID: "user-2", Name: "impostor"}) {
		t.Fatal("SaveCurrentUser accepted another user's settings")
	}
	if len(remote.savedUsers) != 0 {
		t.Fatal("remote write happened for rejected SaveCurrentUser")
	}
}
