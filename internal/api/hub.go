package api

import "sync"

// changeHub wakes snapshot long-pollers when a room's tree mutates. Each
// waiter gets a channel that is closed on the next mutation of its room.
type changeHub struct {
	mu      sync.Mutex
	waiters map[string][]chan struct{}
}

func newChangeHub() *changeHub {
	return &changeHub{waiters: make(map[string][]chan struct{})}
}

func (hub *changeHub) Wait(roomID string) <-chan struct{} {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	waiter := make(chan struct{})
	hub.waiters[roomID] = append(hub.waiters[roomID], waiter)
	return waiter
}

func (hub *changeHub) Wake(roomID string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for _, waiter := range hub.waiters[roomID] {
		close(waiter)
	}
	delete(hub.waiters, roomID)
}
