// Package notify delivers reminders and the treatment-timer alert. The
// delivery channel is Telegram; the scheduling logic is channel-agnostic so
// tests can swap in a fake.
package notify

import (
	"context"
	"time"
)

// Notifier schedules and cancels future one-shot notifications. Schedule
// with an id that is already pending replaces the earlier notification.
type Notifier interface {
	Schedule(id string, at time.Time, message string)
	Cancel(id string)
	Send(ctx context.Context, message string) error
}
