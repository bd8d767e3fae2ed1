package topic

// CreateTopicRequest represents the request to add a topic to the vault
type CreateTopicRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=200"`
	URL  *string `json:"url,omitempty" validate:"omitempty,max=2048"`
}

// UpdateTopicRequest represents a partial topic update
type UpdateTopicRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	URL        *string `json:"url,omitempty" validate:"omitempty,max=2048"`
	IsArchived *bool   `json:"is_archived,omitempty"`
	IsDeleted  *bool   `json:"is_deleted,omitempty"`
}

// Filter narrows a topic listing
type Filter struct {
	Archived *bool
	Deleted  *bool
}

// Match reports whether t passes the filter
func (f Filter) Match(t *Topic) bool {
	if f.Archived != nil && t.IsArchived != *f.Archived {
		return false
	}
	if f.Deleted != nil && t.IsDeleted != *f.Deleted {
		return false
	}
	return true
}

// TopicResponse represents the response for a topic
type TopicResponse struct {
	ID         int64   `json:"id"`
	GroupID    int64   `json:"group_id"`
	Name       *string `json:"name"`
	URL        *string `json:"url"`
	IsArchived bool    `json:"is_archived"`
	IsDeleted  bool    `json:"is_deleted"`
	CreatedAt  string  `json:"created_at"`
}

// ToResponse converts a Topic model to a TopicResponse DTO
func (t *Topic) ToResponse() *TopicResponse {
	return &TopicResponse{
		ID:         t.ID,
		GroupID:    t.GroupID,
		Name:       t.Name,
		URL:        t.URL,
		IsArchived: t.IsArchived,
		IsDeleted:  t.IsDeleted,
		CreatedAt:  t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
