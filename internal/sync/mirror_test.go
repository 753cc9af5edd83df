package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/terraincognita07/remedia/internal/models"
)

type recordingSink struct {
	snapshots  chan models.Snapshot
	syncErrors chan bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		snapshots:  make(chan models.Snapshot, 16),
		syncErrors: make(chan bool, 16),
	}
}

func (sink *recordingSink) ApplySnapshot(snapshot models.Snapshot, _ time.Time) {
	sink.snapshots <- snapshot
}

func (sink *recordingSink) SetSyncError(failed bool) {
	sink.syncErrors <- failed
}

func TestMirrorAdvancesSinceAcrossPolls(t *testing.T) {
	t.Parallel()

	var polls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		since, _ := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
		poll := polls.Add(1)

		switch poll {
		case 1:
			if since != -1 {
				t.Errorf("first poll since = %d, want -1", since)
			}
		case 2:
			if since != 3 {
				t.Errorf("second poll since = %d, want 3", since)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Snapshot{Version: since + 4})
	}))
	defer server.Close()

	client := NewClient(server.URL, "ABC234")
	sink := newRecordingSink()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewMirror(client, sink).Start(ctx)

	first := waitForSnapshot(t, sink)
	if first.Version != 3 {
		t.Fatalf("first snapshot version = %d, want 3", first.Version)
	}
	second := waitForSnapshot(t, sink)
	if second.Version != 7 {
		t.Fatalf("second snapshot version = %d, want 7", second.Version)
	}
}

func TestMirrorFlagsSyncErrorOnFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "ABC234")
	sink := newRecordingSink()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewMirror(client, sink).Start(ctx)

	select {
	case failed := <-sink.syncErrors:
		if !failed {
			t.Fatal("SetSyncError called with false after failed poll")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SetSyncError never called")
	}
}

func waitForSnapshot(t *testing.T, sink *recordingSink) models.Snapshot {
	t.Helper()
	select {
	case snapshot := <-sink.snapshots:
		return snapshot
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a snapshot")
		return models.Snapshot{}
	}
}
