// Package sync connects the client core to a room server: a small HTTP
// client for the write-through operations and a mirror loop that long-polls
// snapshots and merges them into the state store.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/remedia/internal/models"
)

// snapshotPollTimeout must exceed the server's long-poll window so a quiet
// room does not read as an error.
const snapshotPollTimeout = 40 * time.Second

type Client struct {
	baseURL  string
	roomCode string
	token    string
	client   *http.Client
}

func NewClient(baseURL string, roomCode string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		roomCode: strings.ToUpper(strings.TrimSpace(roomCode)),
		client:   &http.Client{},
	}
}

// JoinResult is the server's answer to a join request.
type JoinResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Join creates this device's member in the room and stores the returned
// token for all later calls. An empty adminPass joins as a regular member.
func (c *Client) Join(ctx context.Context, name string, adminPass string) (models.User, error) {
	result := JoinResult{}
	err := c.request(ctx, http.MethodPost, c.roomPath("/join"), map[string]string{
		"name":       name,
		"admin_pass": adminPass,
	}, &result)
	if err != nil {
		return models.User{}, err
	}
	c.token = result.Token
	return result.User, nil
}

// SetToken resumes an existing membership.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, for persisting across restarts.
func (c *Client) Token() string {
	return c.token
}

// Snapshot long-polls the room tree: the call returns once the room version
// exceeds since, or with the unchanged tree after the server's poll window.
func (c *Client) Snapshot(ctx context.Context, since int64) (models.Snapshot, error) {
	pollCtx, cancel := context.WithTimeout(ctx, snapshotPollTimeout)
	defer cancel()

	snapshot := models.Snapshot{}
	path := c.roomPath("/snapshot") + "?since=" + strconv.FormatInt(since, 10)
	if err := c.request(pollCtx, http.MethodGet, path, nil, &snapshot); err != nil {
		return models.Snapshot{}, err
	}
	return snapshot, nil
}

func (c *Client) SaveCycle(ctx context.Context, cycle models.Cycle) error {
	return c.request(ctx, http.MethodPost, c.roomPath("/cycles"), map[string]any{
		"id":                  cycle.ID,
		"number":              cycle.Number,
		"patient_name":        cycle.PatientName,
		"start_date":          cycle.StartDate.Format("2006-01-02"),
		"food_challenge_date": cycle.FoodChallengeDate.Format("2006-01-02"),
	}, nil)
}

func (c *Client) AddItem(ctx context.Context, cycleID string, item models.Item) error {
	order := item.Order
	return c.request(ctx, http.MethodPost, c.roomPath("/cycles/"+url.PathEscape(cycleID)+"/items"), map[string]any{
		"id":           item.ID,
		"name":         item.Name,
		"category":     item.Category,
		"dose":         item.Dose,
		"unit_id":      item.UnitID,
		"weekly_doses": item.WeeklyDoses,
		"order":        &order,
	}, nil)
}

func (c *Client) SaveItems(ctx context.Context, cycleID string, items []models.Item) error {
	payload := make([]map[string]any, 0, len(items))
	for _, item := range items {
		order := item.Order
		payload = append(payload, map[string]any{
			"id":           item.ID,
			"name":         item.Name,
			"category":     item.Category,
			"dose":         item.Dose,
			"unit_id":      item.UnitID,
			"weekly_doses": item.WeeklyDoses,
			"order":        &order,
		})
	}
	return c.request(ctx, http.MethodPut, c.roomPath("/cycles/"+url.PathEscape(cycleID)+"/items"), payload, nil)
}

func (c *Client) RemoveItem(ctx context.Context, cycleID string, itemID string) error {
	path := c.roomPath("/cycles/" + url.PathEscape(cycleID) + "/items/" + url.PathEscape(itemID))
	return c.request(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) AppendLog(ctx context.Context, cycleID string, itemID string, entry models.LogEntry) error {
	path := c.roomPath("/log/" + url.PathEscape(cycleID) + "/" + url.PathEscape(itemID))
	return c.request(ctx, http.MethodPost, path, map[string]string{
		"date": entry.Date.Format(time.RFC3339),
	}, nil)
}

func (c *Client) RemoveLog(ctx context.Context, cycleID string, itemID string, entry models.LogEntry) error {
	path := c.roomPath("/log/" + url.PathEscape(cycleID) + "/" + url.PathEscape(itemID))
	return c.request(ctx, http.MethodDelete, path, map[string]string{
		"date": entry.Date.Format(time.RFC3339),
	}, nil)
}

func (c *Client) SaveCollapsed(ctx context.Context, collapsed map[string]bool) error {
	return c.request(ctx, http.MethodPut, c.roomPath("/collapsed"), map[string]any{
		"category_collapsed": collapsed,
	}, nil)
}

func (c *Client) SaveTimerEnd(ctx context.Context, end time.Time) error {
	encoded := ""
	if !end.IsZero() {
		encoded = end.UTC().Format(time.RFC3339)
	}
	return c.request(ctx, http.MethodPut, c.roomPath("/timer"), map[string]string{"end": encoded}, nil)
}

func (c *Client) SaveUser(ctx context.Context, user models.User) error {
	enabled := user.TreatmentTimerEnabled
	seconds := user.TreatmentTimerSeconds
	return c.request(ctx, http.MethodPut, c.roomPath("/users/"+url.PathEscape(user.ID)), map[string]any{
		"name":                    user.Name,
		"reminders_enabled":       user.RemindersEnabled,
		"reminder_times":          user.ReminderTimes,
		"treatment_timer_enabled": &enabled,
		"treatment_timer_seconds": &seconds,
	}, nil)
}

func (c *Client) roomPath(suffix string) string {
	return "/api/rooms/" + url.PathEscape(c.roomCode) + suffix
}

func (c *Client) request(ctx context.Context, method string, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, response.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out != nil {
		if err := json.NewDecoder(response.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
