package sync

import (
	"context"
	"log"
	"time"

	"github.com/terraincognita07/remedia/internal/models"
)

// retryDelay paces reconnects after a failed poll.
const retryDelay = 5 * time.Second

// SnapshotSink is the part of the state store the mirror feeds.
type SnapshotSink interface {
	ApplySnapshot(snapshot models.Snapshot, now time.Time)
	SetSyncError(failed bool)
}

// Mirror keeps the local store in step with the room server. It long-polls
// snapshots in a background goroutine and hands each one to the store; after
// a failed poll it flags the store and retries until the context ends.
type Mirror struct {
	client *Client
	sink   SnapshotSink
}

func NewMirror(client *Client, sink SnapshotSink) *Mirror {
	return &Mirror{client: client, sink: sink}
}

func (mirror *Mirror) Start(ctx context.Context) {
	go mirror.run(ctx)
}

func (mirror *Mirror) run(ctx context.Context) {
	log.Println("Mirror started")
	since := int64(-1)

	for {
		if ctx.Err() != nil {
			log.Println("Mirror stopped")
			return
		}

		snapshot, err := mirror.client.Snapshot(ctx, since)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Mirror stopped")
				return
			}
			log.Printf("Mirror poll failed: %v", err)
			mirror.sink.SetSyncError(true)
			select {
			case <-ctx.Done():
				log.Println("Mirror stopped")
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		mirror.sink.ApplySnapshot(snapshot, time.Now())
		since = snapshot.Version
	}
}
