package api

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/terraincognita07/remedia/internal/models"
)

type logEntryInput struct {
	Date string `json:"date"`
}

// AppendConsumption records one consumption event for the calling member.
// Appending the same (second, user) pair twice stores a single entry.
func (handler *Handler) AppendConsumption(c *fiber.Ctx) error {
	room, _ := currentRoom(c)
	caller, _ := currentUser(c)
	cycle, ok := handler.cycleFromPath(c, room)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cycle not found"})
	}

	itemID := strings.TrimSpace(c.Params("itemID"))
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item id required"})
	}

	date, errMessage := parseOptionalEntryDate(c)
	if errMessage != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMessage})
	}

	exists, err := handler.repos.Consumption.ExistsAtSecond(cycle.ID, itemID, caller.ID, date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "log failed"})
	}
	if !exists {
		entry := models.ConsumptionEntry{
			ID:      uuid.NewString(),
			RoomID:  room.ID,
			CycleID: cycle.ID,
			ItemID:  itemID,
			UserID:  caller.ID,
			Date:    date.Truncate(time.Second),
		}
		if err := handler.repos.Consumption.Create(&entry); err != nil {
			log.Printf("log: create entry failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "log failed"})
		}
		handler.bumpAndWake(room.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(models.LogEntry{Date: date.Truncate(time.Second), UserID: caller.ID})
}

// RemoveConsumption deletes the calling member's entry matching the given
// timestamp to the second.
func (handler *Handler) RemoveConsumption(c *fiber.Ctx) error {
	room, _ := currentRoom(c)
	caller, _ := currentUser(c)
	cycle, ok := handler.cycleFromPath(c, room)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cycle not found"})
	}

	itemID := strings.TrimSpace(c.Params("itemID"))
	input := logEntryInput{}
	if err := c.BodyParser(&input); err != nil || strings.TrimSpace(input.Date) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date required"})
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(input.Date))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid date"})
	}

	if err := handler.repos.Consumption.DeleteAtSecond(cycle.ID, itemID, caller.ID, date); err != nil {
		log.Printf("log: delete entry failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "unlog failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

func parseOptionalEntryDate(c *fiber.Ctx) (time.Time, string) {
	input := logEntryInput{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return time.Time{}, "invalid input"
		}
	}
	if strings.TrimSpace(input.Date) == "" {
		return time.Now(), ""
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(input.Date))
	if err != nil {
		return time.Time{}, "invalid date"
	}
	return date, ""
}
