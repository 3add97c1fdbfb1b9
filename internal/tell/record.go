package tell

import "time"

// TellsCollection is the storage collection holding persisted tell records.
const TellsCollection = "teal_tells"

// TellRecord is the persisted record of one tell/response exchange. It is
// created by [Service.Tell], handed to the store by value, and never updated
// or deleted afterwards.
type TellRecord struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Tell      string    `json:"tell"`
	Answer    string    `json:"answer"`
	UserState string    `json:"user_state"`
	Mood      string    `json:"mood"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
