package notification

// Message is an outbound email
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// ActivityKind is the kind of group activity members are told about
type ActivityKind string

const (
	ActivityNewEpisode     ActivityKind = "new_episode"
	ActivityTopicAssigned  ActivityKind = "topic_assigned"
	ActivityScheduleChange ActivityKind = "schedule_change"
)
