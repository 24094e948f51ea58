package domain

// Brand is a single catalog record.
type Brand struct {
	ID          int    `json:"id" validate:"gt=0"`
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Country     string `json:"country" validate:"required"`
	Founded     int    `json:"founded" validate:"gt=0"`
	Description string `json:"description" validate:"required"`
	Website     string `json:"website" validate:"required,http_url"`
}

// Sort keys accepted by the list endpoint.
const (
	SortByName    = "name"
	SortByFounded = "founded"
	SortByID      = "id"
)

// ValidSortOptions returns the accepted sortBy values.
func ValidSortOptions() []string {
	return []string{SortByName, SortByFounded, SortByID}
}

// IsValidSort reports whether sortBy is one of ValidSortOptions.
func IsValidSort(sortBy string) bool {
	for _, s := range ValidSortOptions() {
		if s == sortBy {
			return true
		}
	}
	return false
}
