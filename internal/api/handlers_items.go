package api

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/terraincognita07/remedia/internal/models"
)

type itemInput struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Dose        string         `json:"dose"`
	UnitID      string         `json:"unit_id"`
	WeeklyDoses map[int]string `json:"weekly_doses"`
	Order       *int           `json:"order"`
}

func (handler *Handler) AddItem(c *fiber.Ctx) error {
	room, _ := currentRoom(c)
	cycle, ok := handler.cycleFromPath(c, room)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cycle not found"})
	}

	input := itemInput{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	item, errMessage := buildItem(input, cycle.ID)
	if errMessage != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMessage})
	}

	// An unset order places the item at the end of the current list.
	if input.Order == nil {
		count, err := handler.repos.Items.CountByCycle(cycle.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "save item failed"})
		}
		item.Order = int(count)
	}

	if err := handler.repos.Items.Upsert(&item); err != nil {
		log.Printf("items: upsert failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "save item failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.Status(fiber.StatusCreated).JSON(item)
}

// SaveItems overwrites the cycle's entire item list, used after bulk edits
// and drag-reorder.
func (handler *Handler) SaveItems(c *fiber.Ctx) error {
	room, _ := currentRoom(c)
	cycle, ok := handler.cycleFromPath(c, room)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cycle not found"})
	}

	inputs := make([]itemInput, 0)
	if err := c.BodyParser(&inputs); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	items := make([]models.Item, 0, len(inputs))
	for index, input := range inputs {
		item, errMessage := buildItem(input, cycle.ID)
		if errMessage != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMessage})
		}
		if input.Order == nil {
			item.Order = index
		}
		items = append(items, item)
	}

	if err := handler.repos.Items.ReplaceForCycle(cycle.ID, items); err != nil {
		log.Printf("items: replace failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "save items failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.JSON(items)
}

func (handler *Handler) RemoveItem(c *fiber.Ctx) error {
	room, _ := currentRoom(c)
	cycle, ok := handler.cycleFromPath(c, room)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cycle not found"})
	}

	itemID := strings.TrimSpace(c.Params("itemID"))
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item id required"})
	}

	if err := handler.repos.Items.Delete(cycle.ID, itemID); err != nil {
		log.Printf("items: delete failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delete item failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) cycleFromPath(c *fiber.Ctx, room models.Room) (models.Cycle, bool) {
	cycleID := strings.TrimSpace(c.Params("cycleID"))
	if cycleID == "" {
		return models.Cycle{}, false
	}
	cycle, found, err := handler.repos.Cycles.FindByID(room.ID, cycleID)
	if err != nil || !found {
		return models.Cycle{}, false
	}
	return cycle, true
}

func buildItem(input itemInput, cycleID string) (models.Item, string) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Item{}, "item name required"
	}
	if !models.IsValidCategory(input.Category) {
		return models.Item{}, "invalid category"
	}
	if input.Category == models.CategoryTreatment && strings.TrimSpace(input.Dose) != "" && len(input.WeeklyDoses) > 0 {
		return models.Item{}, "treatment items take either a flat dose or weekly doses"
	}

	item := models.Item{
		ID:          strings.TrimSpace(input.ID),
		CycleID:     cycleID,
		Name:        name,
		Category:    input.Category,
		Dose:        strings.TrimSpace(input.Dose),
		UnitID:      strings.TrimSpace(input.UnitID),
		WeeklyDoses: input.WeeklyDoses,
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if input.Order != nil {
		item.Order = *input.Order
	}
	return item, ""
}
