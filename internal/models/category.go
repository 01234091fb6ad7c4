package models

// Category is one of the fixed spending categories.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryHousing       Category = "Housing"
	CategoryBills         Category = "Bills & Utilities"
	CategoryShopping      Category = "Shopping"
	CategoryHealth        Category = "Health"
	CategoryEntertainment Category = "Entertainment"
	CategorySavings       Category = "Savings / Investments"
	CategoryMisc          Category = "Misc/others"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryHousing,
	CategoryBills,
	CategoryShopping,
	CategoryHealth,
	CategoryEntertainment,
	CategorySavings,
	CategoryMisc,
}

// IsValidCategory reports whether s names a category in the closed set.
// Matching is exact and case-sensitive.
func IsValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}
