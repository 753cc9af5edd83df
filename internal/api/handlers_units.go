package api

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/terraincognita07/remedia/internal/models"
)

type unitInput struct {
	Name string `json:"name"`
}

// CreateUnit appends a unit to the room's list. Any member may add units;
// names are not deduplicated and units are never deleted.
func (handler *Handler) CreateUnit(c *fiber.Ctx) error {
	room, _ := currentRoom(c)

	input := unitInput{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unit name required"})
	}

	unit := models.Unit{
		ID:     uuid.NewString(),
		RoomID: room.ID,
		Name:   name,
	}
	if err := handler.repos.Units.Create(&unit); err != nil {
		log.Printf("units: create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "create unit failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.Status(fiber.StatusCreated).JSON(unit)
}
