package api

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/terraincognita07/remedia/internal/models"
)

type cycleInput struct {
	ID                string `json:"id"`
	Number            int    `json:"number"`
	PatientName       string `json:"patient_name"`
	StartDate         string `json:"start_date"`
	FoodChallengeDate string `json:"food_challenge_date"`
}

// UpsertCycle creates a cycle, or updates it when the id is already known.
// Cycles are never deleted through the API, only superseded by later ones.
func (handler *Handler) UpsertCycle(c *fiber.Ctx) error {
	room, _ := currentRoom(c)

	input := cycleInput{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	startDate, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(input.StartDate), handler.location)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start date"})
	}
	challengeDate, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(input.FoodChallengeDate), handler.location)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid food challenge date"})
	}
	if !challengeDate.After(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "food challenge date must follow start date"})
	}
	if input.Number < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid cycle number"})
	}

	cycle := models.Cycle{
		ID:                strings.TrimSpace(input.ID),
		RoomID:            room.ID,
		Number:            input.Number,
		PatientName:       strings.TrimSpace(input.PatientName),
		StartDate:         startDate,
		FoodChallengeDate: challengeDate,
	}
	if cycle.ID == "" {
		cycle.ID = uuid.NewString()
	}

	taken, err := handler.repos.Cycles.NumberTakenByOtherCycle(room.ID, cycle.Number, cycle.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "save cycle failed"})
	}
	if taken {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "cycle number already used"})
	}

	if err := handler.repos.Cycles.Upsert(&cycle); err != nil {
		log.Printf("cycles: upsert failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "save cycle failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.Status(fiber.StatusCreated).JSON(cycle)
}
