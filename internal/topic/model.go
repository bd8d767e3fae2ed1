package topic

import "time"

// Topic is an entry in a group's shared topic vault
type Topic struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"group_id"`
	Name       *string   `json:"name"`
	URL        *string   `json:"url"`
	IsArchived bool      `json:"is_archived"`
	IsDeleted  bool      `json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
}

// Label is the display name of a topic
func (t *Topic) Label() string {
	if t.Name != nil && *t.Name != "" {
		return *t.Name
	}
	if t.URL != nil {
		return *t.URL
	}
	return ""
}
