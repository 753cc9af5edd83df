package api

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type timerInput struct {
	// End is RFC3339, or empty to clear the timer.
	End string `json:"end"`
}

// SaveTreatmentTimer stores or clears the shared treatment-timer end time.
// The server keeps whatever the last writer sent; the stale-clear protection
// for running timers is the subscriber's merge policy.
func (handler *Handler) SaveTreatmentTimer(c *fiber.Ctx) error {
	room, _ := currentRoom(c)

	input := timerInput{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	var end *time.Time
	if raw := strings.TrimSpace(input.End); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end time"})
		}
		end = &parsed
	}

	if err := handler.repos.Rooms.SaveTreatmentTimerEnd(room.ID, end); err != nil {
		log.Printf("timer: save end failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "save timer failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

type collapsedInput struct {
	CategoryCollapsed map[string]bool `json:"category_collapsed"`
}

// SaveCategoryCollapsed replaces the shared collapsed/expanded flags.
func (handler *Handler) SaveCategoryCollapsed(c *fiber.Ctx) error {
	room, _ := currentRoom(c)

	input := collapsedInput{}
	if err := c.BodyParser(&input); err != nil || input.CategoryCollapsed == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := handler.repos.Rooms.SaveCategoryCollapsed(room.ID, filterByCategory(input.CategoryCollapsed)); err != nil {
		log.Printf("collapsed: save failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "save collapsed failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.SendStatus(fiber.StatusNoContent)
}
