package jira

// Session is a handle for one Jira server, produced by Client.Authenticate
// or, for connections without a password, by NewSession. In the second
// form the credentials are trusted without a live check and a remote call
// made with them can still be rejected later.
type Session struct {
	BaseURL  string
	Username string

	password string
}

// NewSession builds an unverified session handle.
func NewSession(baseURL, username, password string) *Session {
	return &Session{BaseURL: baseURL, Username: username, password: password}
}

// Issue is the slice of a Jira issue the poker board cares about.
type Issue struct {
	ID             string          `json:"id"`
	Key            string          `json:"key"`
	Fields         IssueFields     `json:"fields"`
	RenderedFields *RenderedFields `json:"renderedFields,omitempty"`
}

// IssueFields contains issue field values.
type IssueFields struct {
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
}

// RenderedFields carries the server-rendered variants of the fields.
type RenderedFields struct {
	Description string `json:"description,omitempty"`
}

// RenderedDescription prefers the rendered description over the raw one.
func (i *Issue) RenderedDescription() string {
	if i.RenderedFields != nil && i.RenderedFields.Description != "" {
		return i.RenderedFields.Description
	}
	return i.Fields.Description
}

// SearchResult represents one page of a JQL search response.
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}
