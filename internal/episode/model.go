package episode

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an episode
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPlanned Status = "planned"
	StatusDone    Status = "done"
	StatusDeleted Status = "deleted"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPlanned, StatusDone, StatusDeleted:
		return true
	}
	return false
}

// Episode is a scheduled recording of a group's podcast
type Episode struct {
	ID            int64           `json:"id"`
	GroupID       int64           `json:"group_id"`
	Title         string          `json:"title"`
	Date          time.Time       `json:"date"`
	Status        Status          `json:"status"`
	RepeatPattern json.RawMessage `json:"repeat_pattern,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
