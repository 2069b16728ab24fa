package models

// Module is a learning unit within a domain and mastery level
type Module struct {
	ID             int64   `json:"id" db:"id"`
	DomainID       int64   `json:"domain_id" db:"domain_id"`
	MasteryLevelID int64   `json:"mastery_level_id" db:"mastery_level_id"`
	Title          string  `json:"title" db:"title"`
	Description    *string `json:"description" db:"description"`
	OrderIndex     int     `json:"order_index" db:"order_index"`
}
