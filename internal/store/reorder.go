package store

import "github.com/terraincognita07/remedia/internal/models"

// ReorderCategory moves one item of a category to a new position within that
// category and renumbers the category's order values into a contiguous
// zero-based sequence. Items of other categories keep their order values
// untouched. The input is not modified; the returned copy is sorted by order
// and ready for SaveItems. Out-of-range positions return the list unchanged.
func ReorderCategory(items []models.Item, category string, fromIndex int, toIndex int) []models.Item {
	reordered := cloneItems(items)
	sortItemsByOrder(reordered)

	var positions []int
	for index, item := range reordered {
		if item.Category == category {
			positions = append(positions, index)
		}
	}
	if fromIndex < 0 || fromIndex >= len(positions) || toIndex < 0 || toIndex >= len(positions) {
		return reordered
	}

	moved := positions[fromIndex]
	rest := make([]int, 0, len(positions)-1)
	rest = append(rest, positions[:fromIndex]...)
	rest = append(rest, positions[fromIndex+1:]...)

	arranged := make([]int, 0, len(positions))
	arranged = append(arranged, rest[:toIndex]...)
	arranged = append(arranged, moved)
	arranged = append(arranged, rest[toIndex:]...)

	for order, index := range arranged {
		reordered[index].Order = order
	}
	sortItemsByOrder(reordered)
	return reordered
}
