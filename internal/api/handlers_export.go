package api

import (
	"bytes"
	"encoding/csv"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ExportConsumptionCSV streams the room's full consumption history as a CSV
// attachment. Any member may export.
func (handler *Handler) ExportConsumptionCSV(c *fiber.Ctx) error {
	room, _ := currentRoom(c)

	snapshot, err := handler.buildSnapshot(room)
	if err != nil {
		log.Printf("export: build snapshot failed for room %s: %v", room.Code, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)
	if err := writer.WriteAll(buildConsumptionCSV(snapshot, handler.location)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="consumption.csv"`)
	return c.Send(buffer.Bytes())
}
