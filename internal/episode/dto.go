package episode

import (
	"bytes"
	"encoding/json"
	"time"
)

// CreateEpisodeRequest represents the request to schedule an episode
type CreateEpisodeRequest struct {
	Title         string          `json:"title" validate:"required,min=1,max=200"`
	Date          string          `json:"date" validate:"required"`
	Status        *Status         `json:"status,omitempty" validate:"omitempty,oneof=draft planned done deleted"`
	RepeatPattern json.RawMessage `json:"repeat_pattern,omitempty"`
}

// UpdateEpisodeRequest represents a partial episode update.
// A JSON null repeat_pattern clears it; an absent one leaves it unchanged.
type UpdateEpisodeRequest struct {
	Title         *string         `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Date          *string         `json:"date,omitempty"`
	Status        *Status         `json:"status,omitempty" validate:"omitempty,oneof=draft planned done deleted"`
	RepeatPattern json.RawMessage `json:"repeat_pattern,omitempty"`
}

// Patch is a validated partial update
type Patch struct {
	Title  *string
	Date   *time.Time
	Status *Status

	// SetRepeat marks RepeatPattern as present; a nil RepeatPattern then clears it
	SetRepeat     bool
	RepeatPattern json.RawMessage
}

// EpisodeResponse represents the response for an episode
type EpisodeResponse struct {
	ID            int64           `json:"id"`
	GroupID       int64           `json:"group_id"`
	Title         string          `json:"title"`
	Date          string          `json:"date"`
	Status        Status          `json:"status"`
	RepeatPattern json.RawMessage `json:"repeat_pattern,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// ToResponse converts an Episode model to an EpisodeResponse DTO
func (e *Episode) ToResponse() *EpisodeResponse {
	return &EpisodeResponse{
		ID:            e.ID,
		GroupID:       e.GroupID,
		Title:         e.Title,
		Date:          e.Date.UTC().Format(time.RFC3339),
		Status:        e.Status,
		RepeatPattern: e.RepeatPattern,
		CreatedAt:     e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
