package api

import (
	"sort"
	"strconv"
	"time"

	"github.com/terraincognita07/remedia/internal/models"
	"github.com/terraincognita07/remedia/internal/schedule"
)

const exportDateLayout = "2006-01-02"

var exportCSVHeaders = []string{
	"Date",
	"Time",
	"Cycle",
	"Patient",
	"Item",
	"Category",
	"Dose",
	"Unit",
	"Logged by",
}

type exportRow struct {
	date   time.Time
	item   string
	fields []string
}

// buildConsumptionCSV flattens the room's consumption log into CSV rows,
// oldest first. The dose column resolves week-indexed doses against the week
// the entry was logged in.
func buildConsumptionCSV(snapshot models.Snapshot, location *time.Location) [][]string {
	cyclesByID := make(map[string]models.Cycle, len(snapshot.Cycles))
	itemsByID := make(map[string]models.Item)
	for _, cycle := range snapshot.Cycles {
		cyclesByID[cycle.ID] = cycle
		for _, item := range cycle.Items {
			itemsByID[item.ID] = item
		}
	}

	unitNames := make(map[string]string, len(snapshot.Units))
	for _, unit := range snapshot.Units {
		unitNames[unit.ID] = unit.Name
	}
	userNames := make(map[string]string, len(snapshot.Users))
	for _, user := range snapshot.Users {
		userNames[user.ID] = user.Name
	}

	rows := make([]exportRow, 0)
	for cycleID, byItem := range snapshot.DecodedLog() {
		cycle := cyclesByID[cycleID]
		for itemID, entries := range byItem {
			item := itemsByID[itemID]
			for _, entry := range entries {
				localDate := entry.Date.In(location)
				week := schedule.WeekNumber(cycle, localDate)
				rows = append(rows, exportRow{
					date: entry.Date,
					item: item.Name,
					fields: []string{
						localDate.Format(exportDateLayout),
						localDate.Format("15:04:05"),
						cycleLabel(cycle),
						cycle.PatientName,
						item.Name,
						item.Category,
						schedule.DisplayDose(item, week),
						unitNames[item.UnitID],
						userNames[entry.UserID],
					},
				})
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].date.Equal(rows[j].date) {
			return rows[i].item < rows[j].item
		}
		return rows[i].date.Before(rows[j].date)
	})

	result := make([][]string, 0, len(rows)+1)
	result = append(result, exportCSVHeaders)
	for _, row := range rows {
		result = append(result, row.fields)
	}
	return result
}

func cycleLabel(cycle models.Cycle) string {
	if cycle.Number == 0 {
		return ""
	}
	return "Cycle " + strconv.Itoa(cycle.Number)
}
