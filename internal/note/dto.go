package note

// UpsertNoteRequest represents the request to write or overwrite a note
type UpsertNoteRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// NoteResponse represents the response for a note
type NoteResponse struct {
	ID        int64   `json:"id"`
	TopicID   int64   `json:"topic_id"`
	UserID    int64   `json:"user_id"`
	Content   string  `json:"content"`
	UpdatedAt string  `json:"updated_at"`
	User      *Author `json:"user,omitempty"`
}

// ToResponse converts a Note model to a NoteResponse DTO
func (n *Note) ToResponse() *NoteResponse {
	return &NoteResponse{
		ID:        n.ID,
		TopicID:   n.TopicID,
		UserID:    n.UserID,
		Content:   n.Content,
		UpdatedAt: n.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a NoteWithAuthor to a NoteResponse DTO
func (n *NoteWithAuthor) ToResponse() *NoteResponse {
	resp := n.Note.ToResponse()
	author := n.User
	resp.User = &author
	return resp
}
