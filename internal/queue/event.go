// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/pickflick/internal/model"
)

// SessionCompletedQueue is the default queue for selection events.
const SessionCompletedQueue = "session.completed"

// SessionCompletedEvent is published once a session's movie has been drawn.
// It carries enough for downstream consumers to log or notify without
// reading the session store, which may already have purged the record.
type SessionCompletedEvent struct {
	EventID       string           `json:"event_id"`
	SessionCode   string           `json:"session_code"`
	SelectedID    string           `json:"selected_id"`
	SelectedTitle string           `json:"selected_title"`
	SelectedBy    string           `json:"selected_added_by"`
	Manual        bool             `json:"manual"`
	Candidates    []string         `json:"candidates"`
	Participants  []string         `json:"participants"`
	CreatedAt     string           `json:"created_at"`
	CompletedAt   string           `json:"completed_at"`
	Selected      model.MovieEntry `json:"selected"`
}

// NewSessionCompletedEvent flattens a completed session into an event.
// The session must have a selected movie.
func NewSessionCompletedEvent(eventID string, s *model.Session) SessionCompletedEvent {
	sel := *s.SelectedMovie
	ev := SessionCompletedEvent{
		EventID:       eventID,
		SessionCode:   s.Code,
		SelectedID:    sel.ID.String(),
		SelectedTitle: sel.Title,
		SelectedBy:    sel.AddedBy,
		Manual:        sel.IsManual(),
		Candidates:    make([]string, 0, len(s.Movies)),
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
		CompletedAt:   s.UpdatedAt.UTC().Format(time.RFC3339),
		Selected:      sel,
	}
	seen := make(map[string]struct{})
	for _, m := range s.Movies {
		ev.Candidates = append(ev.Candidates, m.Title)
		if _, ok := seen[m.AddedBy]; !ok {
			seen[m.AddedBy] = struct{}{}
			ev.Participants = append(ev.Participants, m.AddedBy)
		}
	}
	return ev
}
