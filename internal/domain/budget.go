package domain

// Budget is a yearly container for a category tree. Timestamps arrive from
// the backend pre-formatted as dd.MM.yyyy and are rendered as-is.
type Budget struct {
	ID        int64  `json:"id"`
	Year      int    `json:"year"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
