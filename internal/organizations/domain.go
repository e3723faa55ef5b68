package organizations

import "time"

// Organization owns roles and is referenced by users. Deleting one cascades
// deletion of its roles; referencing users keep existing with a cleared
// organization reference.
type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
