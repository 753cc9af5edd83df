package store

import (
	"testing"

	"github.com/terraincognita07/remedia/internal/models"
)

func TestReorderCategoryRenumbersOnlyAffectedCategory(t *testing.T) {
	t.Parallel()

	items := []models.Item{
		{ID: "m1", Category: models.CategoryMedicine, Order: 0},
		{ID: "t1", Category: models.CategoryTreatment, Order: 1},
		{ID: "m2", Category: models.CategoryMedicine, Order: 2},
		{ID: "t2", Category: models.CategoryTreatment, Order: 3},
		{ID: "t3", Category: models.CategoryTreatment, Order: 4},
	}

	// Move the last treatment item to the front of its category.
	reordered := ReorderCategory(items, models.CategoryTreatment, 2, 0)

	var treatmentIDs []string
	var treatmentOrders []int
	var medicineIDs []string
	var medicineOrders []int
	for _, item := range reordered {
		switch item.Category {
		case models.CategoryTreatment:
			treatmentIDs = append(treatmentIDs, item.ID)
			treatmentOrders = append(treatmentOrders, item.Order)
		case models.CategoryMedicine:
			medicineIDs = append(medicineIDs, item.ID)
			medicineOrders = append(medicineOrders, item.Order)
		}
	}

	wantTreatment := []string{"t3", "t1", "t2"}
	for index, id := range wantTreatment {
		if treatmentIDs[index] != id {
			t.Fatalf("treatment order = %v, want %v", treatmentIDs, wantTreatment)
		}
		if treatmentOrders[index] != index {
			t.Fatalf("treatment orders = %v, want contiguous zero-based", treatmentOrders)
		}
	}

	if medicineIDs[0] != "m1" || medicineIDs[1] != "m2" {
		t.Fatalf("medicine relative order changed: %v", medicineIDs)
	}
	if medicineOrders[0] != 0 || medicineOrders[1] != 2 {
		t.Fatalf("medicine order values changed: %v", medicineOrders)
	}

	// The input list must stay untouched.
	if items[4].Order != 4 {
		t.Fatalf("input mutated: t3 order = %d, want 4", items[4].Order)
	}
}

func TestReorderCategoryOutOfRangeIsNoop(t *testing.T) {
	t.Parallel()

	items := []models.Item{
		{ID: "t1", Category: models.CategoryTreatment, Order: 0},
		{ID: "t2", Category: models.CategoryTreatment, Order: 1},
	}

	reordered := ReorderCategory(items, models.CategoryTreatment, 5, 0)
	if reordered[0].ID != "t1" || reordered[1].ID != "t2" {
		t.Fatalf("out-of-range reorder changed the list: %v", reordered)
	}
	if reordered[0].Order != 0 || reordered[1].Order != 1 {
		t.Fatal("out-of-range reorder changed order values")
	}
}
