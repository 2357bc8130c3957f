package monitor

import "time"

// Status is the outcome of the latest check round.
type Status struct {
	Backend   bool      `json:"backend"`
	Storage   bool      `json:"storage"`
	LastCheck time.Time `json:"last_check"`
}
