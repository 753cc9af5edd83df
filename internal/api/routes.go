package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")
	api.Post("/rooms", handler.CreateRoom)
	api.Post("/rooms/:code/join", handler.JoinRoom)

	room := api.Group("/rooms/:code", handler.AuthRequired)
	room.Get("/snapshot", handler.GetSnapshot)
	room.Get("/export.csv", handler.ExportConsumptionCSV)
	room.Put("/collapsed", handler.SaveCategoryCollapsed)
	room.Put("/timer", handler.SaveTreatmentTimer)
	room.Post("/units", handler.CreateUnit)
	room.Put("/users/:userID", handler.SaveUserSettings)
	room.Post("/log/:cycleID/:itemID", handler.AppendConsumption)
	room.Delete("/log/:cycleID/:itemID", handler.RemoveConsumption)

	cycles := room.Group("/cycles", handler.AdminOnly)
	cycles.Post("", handler.UpsertCycle)
	cycles.Post("/:cycleID/items", handler.AddItem)
	cycles.Put("/:cycleID/items", handler.SaveItems)
	cycles.Delete("/:cycleID/items/:itemID", handler.RemoveItem)
}
