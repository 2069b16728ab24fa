package models

import "time"

// UserProgress is the completion state of one module for one user.
// There is at most one record per (UserID, ModuleID).
type UserProgress struct {
	ID          int64      `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	ModuleID    int64      `json:"module_id" db:"module_id"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
}

// ProgressKey identifies a progress record
type ProgressKey struct {
	UserID   string
	ModuleID int64
}

// Key returns the composite key of the record
func (p UserProgress) Key() ProgressKey {
	return ProgressKey{UserID: p.UserID, ModuleID: p.ModuleID}
}
