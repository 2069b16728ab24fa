package models

// Domain is a top-level subject area such as Web Development
type Domain struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Icon        *string `json:"icon" db:"icon"`
}

// MasteryLevel is a difficulty tier (Beginner, Intermediate, Advanced)
type MasteryLevel struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
}
