package note

import "time"

// Note is one member's comment on a topic; each member has at most one per topic
type Note struct {
	ID        int64     `json:"id"`
	TopicID   int64     `json:"topic_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Author is the public part of a note's writer
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// NoteWithAuthor is a note joined with its writer
type NoteWithAuthor struct {
	Note
	User Author `json:"user"`
}
