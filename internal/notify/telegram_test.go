package notify

import (
	"testing"
	"time"
)

func TestTelegramNotifierEnabled(t *testing.T) {
	t.Parallel()

	if NewTelegramNotifier("", "").Enabled() {
		t.Fatal("notifier enabled without credentials")
	}
	if NewTelegramNotifier("token", "").Enabled() {
		t.Fatal("notifier enabled without chat id")
	}
	if !NewTelegramNotifier("token", "chat").Enabled() {
		t.Fatal("notifier disabled despite full credentials")
	}
}

func TestTelegramNotifierScheduleReplaceAndCancel(t *testing.T) {
	t.Parallel()

	notifier := NewTelegramNotifier("token", "chat")
	at := time.Now().Add(time.Minute)

	notifier.Schedule("timer-1", at, "first")
	notifier.Schedule("timer-1", at.Add(time.Minute), "second")

	notifier.mu.Lock()
	pending, found := notifier.pending["timer-1"]
	count := len(notifier.pending)
	notifier.mu.Unlock()
	if !found || count != 1 {
		t.Fatalf("pending count = %d, want 1 replaced entry", count)
	}
	if pending.message != "second" {
		t.Fatalf("pending message = %q, want the replacement", pending.message)
	}

	notifier.Cancel("timer-1")
	notifier.mu.Lock()
	count = len(notifier.pending)
	notifier.mu.Unlock()
	if count != 0 {
		t.Fatalf("pending count after cancel = %d, want 0", count)
	}
}
