package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is the failure of one Jira REST call. Text carries the
// human-readable error extracted from Jira's error body, falling back
// to the raw body when there is none.
type Error struct {
	StatusCode int
	Text       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("jira api error %d: %s", e.StatusCode, e.Text)
}

// IsAuthError reports whether err is a Jira 401.
func IsAuthError(err error) bool {
	var jiraErr *Error
	return errors.As(err, &jiraErr) && jiraErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a Jira 404.
func IsNotFound(err error) bool {
	var jiraErr *Error
	return errors.As(err, &jiraErr) && jiraErr.StatusCode == http.StatusNotFound
}

// IsBadRequest reports whether err is a Jira 400, the status a broken
// JQL query comes back with.
func IsBadRequest(err error) bool {
	var jiraErr *Error
	return errors.As(err, &jiraErr) && jiraErr.StatusCode == http.StatusBadRequest
}

// newError builds an *Error from a non-2xx response body. Jira error
// bodies look like {"errorMessages": [...], "errors": {"field": "msg"}}.
func newError(statusCode int, body []byte) *Error {
	return &Error{StatusCode: statusCode, Text: errorText(body)}
}

func errorText(body []byte) string {
	var parsed struct {
		ErrorMessages []string          `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.ErrorMessages) > 0 {
			return strings.Join(parsed.ErrorMessages, " ")
		}
		if len(parsed.Errors) > 0 {
			parts := make([]string, 0, len(parsed.Errors))
			for field, msg := range parsed.Errors {
				parts = append(parts, field+": "+msg)
			}
			sort.Strings(parts)
			return strings.Join(parts, " ")
		}
	}
	return strings.TrimSpace(string(body))
}
