package model

import "time"

// Category is the closed set of expense categories.
type Category string

const (
	CategoryGroceries   Category = "Groceries"
	CategoryLeisure     Category = "Leisure"
	CategoryElectronics Category = "Electronics"
	CategoryUtilities   Category = "Utilities"
	CategoryClothing    Category = "Clothing"
	CategoryHealth      Category = "Health"
	CategoryOthers      Category = "Others"
)

// Categories lists every valid category. The persistence schema and the
// validation boundary both consume this single definition.
var Categories = []Category{
	CategoryGroceries,
	CategoryLeisure,
	CategoryElectronics,
	CategoryUtilities,
	CategoryClothing,
	CategoryHealth,
	CategoryOthers,
}

// IsValid checks if the category is a member of the closed set.
func (c Category) IsValid() bool {
	for _, valid := range Categories {
		if c == valid {
			return true
		}
	}
	return false
}

// Expense represents a single expense record owned by a user.
// UserID is immutable after creation. Date carries only the calendar day;
// the time component is always midnight UTC.
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description *string   `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
