package models

// ProgressStats is the overall completion summary of a user
type ProgressStats struct {
	TotalModules         int  `json:"totalModules"`
	CompletedModules     int  `json:"completedModules"`
	InProgressModules    int  `json:"inProgressModules"`
	NotStartedModules    int  `json:"notStartedModules"`
	CompletionPercentage int  `json:"completionPercentage"`
	HasData              bool `json:"hasData"` // false when no modules exist
}

// DomainCompletion counts modules of one domain
type DomainCompletion struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// DomainProgress is a DomainCompletion with display data for charts
type DomainProgress struct {
	DomainID   int64  `json:"domain_id"`
	Name       string `json:"name"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}
