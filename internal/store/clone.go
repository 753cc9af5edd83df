package store

import "github.com/terraincognita07/remedia/internal/models"

func cloneCycle(cycle models.Cycle) models.Cycle {
	cloned := cycle
	cloned.Items = cloneItems(cycle.Items)
	return cloned
}

func cloneCycles(cycles []models.Cycle) []models.Cycle {
	cloned := make([]models.Cycle, 0, len(cycles))
	for _, cycle := range cycles {
		cloned = append(cloned, cloneCycle(cycle))
	}
	return cloned
}

func cloneItem(item models.Item) models.Item {
	cloned := item
	if item.WeeklyDoses != nil {
		cloned.WeeklyDoses = make(map[int]string, len(item.WeeklyDoses))
		for week, dose := range item.WeeklyDoses {
			cloned.WeeklyDoses[week] = dose
		}
	}
	return cloned
}

func cloneItems(items []models.Item) []models.Item {
	cloned := make([]models.Item, 0, len(items))
	for _, item := range items {
		cloned = append(cloned, cloneItem(item))
	}
	return cloned
}

func cloneUser(user models.User) models.User {
	cloned := user
	cloned.RemindersEnabled = cloneFlags(user.RemindersEnabled)
	if user.ReminderTimes != nil {
		cloned.ReminderTimes = make(map[string]string, len(user.ReminderTimes))
		for category, at := range user.ReminderTimes {
			cloned.ReminderTimes[category] = at
		}
	}
	return cloned
}

func cloneUsers(users []models.User) []models.User {
	cloned := make([]models.User, 0, len(users))
	for _, user := range users {
		cloned = append(cloned, cloneUser(user))
	}
	return cloned
}

func cloneFlags(flags map[string]bool) map[string]bool {
	if flags == nil {
		return nil
	}
	cloned := make(map[string]bool, len(flags))
	for key, value := range flags {
		cloned[key] = value
	}
	return cloned
}
