package api

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/remedia/internal/models"
)

// GetSnapshot returns the room's full tree. With ?since=N it long-polls:
// the request hangs until the room version exceeds N or the poll window
// elapses, so subscribers see changes promptly without busy-looping.
func (handler *Handler) GetSnapshot(c *fiber.Ctx) error {
	room, _ := currentRoom(c)

	since := int64(-1)
	if raw := c.Query("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid since"})
		}
		since = parsed
	}

	if room.Version <= since {
		waiter := handler.hub.Wait(room.ID)
		select {
		case <-waiter:
		case <-time.After(longPollTimeout):
		case <-c.Context().Done():
			return nil
		}

		refreshed, found, err := handler.repos.Rooms.FindByCode(room.Code)
		if err != nil || !found {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "snapshot failed"})
		}
		room = refreshed
	}

	snapshot, err := handler.buildSnapshot(room)
	if err != nil {
		log.Printf("snapshot: build failed for room %s: %v", room.Code, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "snapshot failed"})
	}
	return c.JSON(snapshot)
}

func (handler *Handler) buildSnapshot(room models.Room) (models.Snapshot, error) {
	cycles, err := handler.repos.Cycles.ListByRoom(room.ID)
	if err != nil {
		return models.Snapshot{}, err
	}
	for index := range cycles {
		items, err := handler.repos.Items.ListByCycle(cycles[index].ID)
		if err != nil {
			return models.Snapshot{}, err
		}
		cycles[index].Items = items
	}

	units, err := handler.repos.Units.ListByRoom(room.ID)
	if err != nil {
		return models.Snapshot{}, err
	}

	users, err := handler.repos.Users.ListByRoom(room.ID)
	if err != nil {
		return models.Snapshot{}, err
	}

	entries, err := handler.repos.Consumption.ListByRoom(room.ID)
	if err != nil {
		return models.Snapshot{}, err
	}
	consumption := make(models.ConsumptionLog)
	for _, entry := range entries {
		existing := consumption.Entries(entry.CycleID, entry.ItemID)
		consumption.Set(entry.CycleID, entry.ItemID, append(existing, entry.LogEntry()))
	}

	collapsed := room.CategoryCollapsed
	if collapsed == nil {
		collapsed = map[string]bool{}
	}

	return models.Snapshot{
		Version:           room.Version,
		Cycles:            cycles,
		Units:             units,
		Users:             users,
		Log:               models.EncodeLog(consumption),
		CategoryCollapsed: collapsed,
		TreatmentTimerEnd: room.TimerEndString(),
	}, nil
}
