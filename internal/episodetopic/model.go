package episodetopic

import "github.com/fkhayef/podplanner/internal/topic"

// Association links a topic to an episode at a position
type Association struct {
	ID        int64 `json:"id"`
	EpisodeID int64 `json:"episode_id"`
	TopicID   int64 `json:"topic_id"`
	Order     int   `json:"order"`
}

// Entry is a topic as it appears in an episode's running order
type Entry struct {
	topic.Topic
	Order int `json:"order"`
}
