package episode

import (
	"testing"
	"time"
)

func TestToResponseFormatsInUTC(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	e := &Episode{
		ID:        1,
		GroupID:   2,
		Title:     "Pilot",
		Date:      time.Date(2025, 5, 1, 2, 0, 0, 0, riyadh),
		Status:    StatusDraft,
		CreatedAt: time.Date(2025, 4, 1, 1, 30, 0, 0, riyadh),
	}

	resp := e.ToResponse()

	if resp.CreatedAt != "2025-03-31T22:30:00Z" {
		t.Fatalf("created_at = %q", resp.CreatedAt)
	}
	if resp.Date != "2025-04-30T23:00:00Z" {
		t.Fatalf("date = %q", resp.Date)
	}
}
