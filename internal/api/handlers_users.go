package api

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/remedia/internal/models"
)

type userSettingsInput struct {
	Name                  string            `json:"name"`
	RemindersEnabled      map[string]bool   `json:"reminders_enabled"`
	ReminderTimes         map[string]string `json:"reminder_times"`
	TreatmentTimerEnabled *bool             `json:"treatment_timer_enabled"`
	TreatmentTimerSeconds *int              `json:"treatment_timer_seconds"`
}

// SaveUserSettings updates a member's reminder and timer preferences. Members
// edit themselves; the admin may edit anyone in the room.
func (handler *Handler) SaveUserSettings(c *fiber.Ctx) error {
	room, _ := currentRoom(c)
	caller, _ := currentUser(c)

	targetID := strings.TrimSpace(c.Params("userID"))
	if targetID != caller.ID && !caller.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "cannot edit other members"})
	}

	target, found, err := handler.repos.Users.FindByID(targetID)
	if err != nil || !found || target.RoomID != room.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}

	input := userSettingsInput{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		target.Name = name
	}
	if input.RemindersEnabled != nil {
		target.RemindersEnabled = filterByCategory(input.RemindersEnabled)
	}
	if input.ReminderTimes != nil {
		times, valid := validReminderTimes(input.ReminderTimes)
		if !valid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid reminder time"})
		}
		target.ReminderTimes = times
	}
	if input.TreatmentTimerEnabled != nil {
		target.TreatmentTimerEnabled = *input.TreatmentTimerEnabled
	}
	if input.TreatmentTimerSeconds != nil {
		if *input.TreatmentTimerSeconds < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid timer duration"})
		}
		target.TreatmentTimerSeconds = *input.TreatmentTimerSeconds
	}

	if err := handler.repos.Users.SaveSettings(&target); err != nil {
		log.Printf("users: save settings failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "save settings failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.JSON(target)
}

func filterByCategory(flags map[string]bool) map[string]bool {
	filtered := make(map[string]bool, len(flags))
	for category, enabled := range flags {
		if models.IsValidCategory(category) {
			filtered[category] = enabled
		}
	}
	return filtered
}

func validReminderTimes(times map[string]string) (map[string]string, bool) {
	filtered := make(map[string]string, len(times))
	for category, value := range times {
		if !models.IsValidCategory(category) {
			continue
		}
		trimmed := strings.TrimSpace(value)
		if !isClockTime(trimmed) {
			return nil, false
		}
		filtered[category] = trimmed
	}
	return filtered, true
}

func isClockTime(value string) bool {
	if len(value) != 5 || value[2] != ':' {
		return false
	}
	hour := (int(value[0])-'0')*10 + int(value[1]) - '0'
	minute := (int(value[3])-'0')*10 + int(value[4]) - '0'
	for _, position := range []int{0, 1, 3, 4} {
		if value[position] < '0' || value[position] > '9' {
			return false
		}
	}
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}
