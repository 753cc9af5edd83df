package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/remedia/internal/db"
	"github.com/terraincognita07/remedia/internal/models"
)

func newTestCache(t *testing.T) *SQLiteCache {
	t.Helper()

	dir := t.TempDir()
	database, err := db.OpenCache(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("open cache database: %v", err)
	}
	cache, err := NewSQLiteCache(database, filepath.Join(dir, "timer_end"))
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	return cache
}

func TestSQLiteCacheStateRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	if _, found, err := cache.LoadState(); err != nil || found {
		t.Fatalf("fresh cache LoadState = found %t, err %v", found, err)
	}

	consumption := make(models.ConsumptionLog)
	consumption.Set("cycle-1", "item-1", []models.LogEntry{
		{Date: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), UserID: "user-1"},
	})
	saved := CachedState{
		Cycles: []models.Cycle{{ID: "cycle-1", Number: 1, PatientName: "Alex"}},
		Units:  models.DefaultUnits(),
		Users:  []models.User{{ID: "user-1", Name: "tester", IsAdmin: true}},
		Log:    consumption,
		Collapsed: map[string]bool{
			models.CategoryMedicine: true,
		},
		LastResetDate:       time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		TimerNotificationID: "notification-1",
		TimerEnd:            time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := cache.SaveState(saved); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	loaded, found, err := cache.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if !found {
		t.Fatal("LoadState found nothing after SaveState")
	}
	if len(loaded.Cycles) != 1 || loaded.Cycles[0].PatientName != "Alex" {
		t.Fatalf("loaded cycles = %+v", loaded.Cycles)
	}
	if !loaded.Collapsed[models.CategoryMedicine] {
		t.Fatal("collapsed flags lost")
	}
	if entries := loaded.Log.Entries("cycle-1", "item-1"); len(entries) != 1 || entries[0].UserID != "user-1" {
		t.Fatalf("loaded log entries = %+v", entries)
	}
	if loaded.TimerNotificationID != "notification-1" {
		t.Fatalf("loaded notification id = %q", loaded.TimerNotificationID)
	}
	if !loaded.TimerEnd.Equal(saved.TimerEnd) {
		t.Fatalf("loaded timer end = %s, want %s", loaded.TimerEnd, saved.TimerEnd)
	}

	// Saving again must overwrite, not duplicate.
	saved.Cycles[0].PatientName = "Sam"
	if err := cache.SaveState(saved); err != nil {
		t.Fatalf("second SaveState: %v", err)
	}
	loaded, _, err = cache.LoadState()
	if err != nil {
		t.Fatalf("second LoadState: %v", err)
	}
	if loaded.Cycles[0].PatientName != "Sam" {
		t.Fatalf("second save not applied: %q", loaded.Cycles[0].PatientName)
	}
}

func TestSQLiteCacheTimerFile(t *testing.T) {
	cache := newTestCache(t)

	if _, found, err := cache.LoadTimerEnd(); err != nil || found {
		t.Fatalf("fresh cache LoadTimerEnd = found %t, err %v", found, err)
	}

	end := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	if err := cache.SaveTimerEnd(end); err != nil {
		t.Fatalf("SaveTimerEnd: %v", err)
	}
	loaded, found, err := cache.LoadTimerEnd()
	if err != nil || !found {
		t.Fatalf("LoadTimerEnd = found %t, err %v", found, err)
	}
	if !loaded.Equal(end) {
		t.Fatalf("loaded timer end = %s, want %s", loaded, end)
	}

	if err := cache.SaveTimerEnd(time.Time{}); err != nil {
		t.Fatalf("clear timer end: %v", err)
	}
	if _, err := os.Stat(cache.timerFilePath); !os.IsNotExist(err) {
		t.Fatal("timer file survived a clear")
	}
}

func TestStoreRestorePrefersTimerFile(t *testing.T) {
	cache := newTestCache(t)

	cacheEnd := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	fileEnd := cacheEnd.Add(10 * time.Minute)
	if err := cache.SaveState(CachedState{TimerEnd: cacheEnd}); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if err := cache.SaveTimerEnd(fileEnd); err != nil {
		t.Fatalf("SaveTimerEnd: %v", err)
	}

	store := New(&fakeRemote{}, cache, "user-1", time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.Start(ctx)

	if got := store.TimerEnd(); !got.Equal(fileEnd) {
		t.Fatalf("restored timer end = %s, want the file copy %s", got, fileEnd)
	}
}
