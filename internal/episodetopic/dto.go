package episodetopic

// AttachRequest represents the request to put a topic on an episode
type AttachRequest struct {
	Order *int `json:"order" validate:"required,min=0"`
}

// ReorderRequest lists every attached topic id in its new order
type ReorderRequest struct {
	TopicIDs []int64 `json:"topic_ids" validate:"required,dive,gt=0"`
}

// EntryResponse represents a topic in an episode's running order
type EntryResponse struct {
	ID         int64   `json:"id"`
	GroupID    int64   `json:"group_id"`
	Name       *string `json:"name"`
	URL        *string `json:"url"`
	IsArchived bool    `json:"is_archived"`
	IsDeleted  bool    `json:"is_deleted"`
	Order      int     `json:"order"`
}

// ToResponse converts an Entry to an EntryResponse DTO
func (e *Entry) ToResponse() *EntryResponse {
	return &EntryResponse{
		ID:         e.ID,
		GroupID:    e.GroupID,
		Name:       e.Name,
		URL:        e.URL,
		IsArchived: e.IsArchived,
		IsDeleted:  e.IsDeleted,
		Order:      e.Order,
	}
}

func toResponses(entries []*Entry) []*EntryResponse {
	out := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = e.ToResponse()
	}
	return out
}
