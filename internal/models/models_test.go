package models

import "testing"

func TestIsValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !IsValidCategory(string(c)) {
			t.Errorf("expected %q to be valid", c)
		}
	}

	invalid := []string{"", "food", "FOOD", "Groceries", "Misc", "Bills and Utilities"}
	for _, s := range invalid {
		if IsValidCategory(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestCategories_Count(t *testing.T) {
	if len(Categories) != 9 {
		t.Errorf("expected 9 categories, got %d", len(Categories))
	}
}
