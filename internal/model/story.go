package model

import "time"

// Story is a local estimation item, optionally linked to a Jira issue
// through TicketNumber and to an estimation round through PokerSessionID.
type Story struct {
	ID             string          `json:"id"`
	TicketNumber   JsonNullString  `json:"ticket_number"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	StoryPoints    JsonNullFloat64 `json:"story_points"`
	PokerSessionID JsonNullString  `json:"poker_session_id"`
	Position       int             `json:"position"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Name renders the story for user-facing messages: "KEY: title" when a
// ticket number is present, the bare title otherwise.
func (s *Story) Name() string {
	if s.TicketNumber.Valid && s.TicketNumber.String != "" {
		return s.TicketNumber.String + ": " + s.Title
	}
	return s.Title
}

type StoryRequest struct {
	TicketNumber   string   `json:"ticket_number" form:"ticket_number"`
	Title          string   `json:"title" form:"title" binding:"required"`
	Description    string   `json:"description" form:"description"`
	StoryPoints    *float64 `json:"story_points" form:"story_points"`
	PokerSessionID string   `json:"poker_session_id" form:"poker_session_id"`
}

// ExportRequest selects stories to push to one Jira connection. An
// empty selection is reported by the exporter, not the binding, so the
// omitted and empty cases read the same to the caller.
type ExportRequest struct {
	StoryIDs     []string     `json:"story_ids" form:"story_ids"`
	ConnectionID string       `json:"connection_id" form:"connection_id" binding:"required"`
	Auth         AuthOverride `json:"auth"`
}

// ImportRequest pulls issues matching a JQL query into local stories.
type ImportRequest struct {
	JQLQuery       string       `json:"jql_query" form:"jql_query"`
	PokerSessionID string       `json:"poker_session_id" form:"poker_session_id"`
	Auth           AuthOverride `json:"auth"`
}
