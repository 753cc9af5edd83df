package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type pendingNotification struct {
	at      time.Time
	message string
}

// TelegramNotifier sends messages to one chat through the Bot API. Scheduled
// notifications are held in memory and dispatched by a background loop; they
// do not survive a restart, so callers reschedule on startup from their own
// persisted state.
type TelegramNotifier struct {
	botToken string
	chatID   string
	enabled  bool
	client   *http.Client

	mu      sync.Mutex
	pending map[string]pendingNotification
}

func NewTelegramNotifier(botToken string, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		enabled:  botToken != "" && chatID != "",
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
		pending: make(map[string]pendingNotification),
	}
}

// Enabled reports whether bot credentials were provided.
func (notifier *TelegramNotifier) Enabled() bool {
	return notifier.enabled
}

func (notifier *TelegramNotifier) Schedule(id string, at time.Time, message string) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.pending[id] = pendingNotification{at: at, message: message}
}

func (notifier *TelegramNotifier) Cancel(id string) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	delete(notifier.pending, id)
}

// Start runs the dispatch loop until the context ends.
func (notifier *TelegramNotifier) Start(ctx context.Context) {
	if !notifier.enabled {
		return
	}

	ticker := time.NewTicker(time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				notifier.dispatchDue(ctx, now)
			}
		}
	}()
}

func (notifier *TelegramNotifier) dispatchDue(ctx context.Context, now time.Time) {
	due := make([]pendingNotification, 0)
	notifier.mu.Lock()
	for id, notification := range notifier.pending {
		if !notification.at.After(now) {
			due = append(due, notification)
			delete(notifier.pending, id)
		}
	}
	notifier.mu.Unlock()

	for _, notification := range due {
		if err := notifier.Send(ctx, notification.message); err != nil {
			log.Printf("notify: send failed: %v", err)
		}
	}
}

func (notifier *TelegramNotifier) Send(ctx context.Context, message string) error {
	if !notifier.enabled {
		return nil
	}

	values := url.Values{}
	values.Set("chat_id", notifier.chatID)
	values.Set("text", message)

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", notifier.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := notifier.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
