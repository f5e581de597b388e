package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/planpoker/poker-jira-backend/internal/repository"
	"github.com/planpoker/poker-jira-backend/internal/service"
)

const msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."

// writeError maps a service or repository error onto the API's failure
// shape. Field errors are the user's problem (400), a missing row is
// 404, everything else is a 500 with the raw error text.
func writeError(c *gin.Context, err error) {
	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) {
		body := gin.H{"error": fieldErr.Message}
		if fieldErr.Field != "" {
			body["field"] = fieldErr.Field
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// pathID reads the :id parameter. IDs are UUIDs everywhere, so a
// malformed one can never match a row and reads as a plain 404 instead
// of reaching the database.
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if uuid.Validate(id) != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return "", false
	}
	return id, true
}

// validSession reports whether a session reference points at an
// existing row. Empty is fine, stories can live unbound. On failure
// the response has already been written.
func validSession(c *gin.Context, repo *repository.PostgresRepo, sessionID string) bool {
	if sessionID == "" {
		return true
	}
	if uuid.Validate(sessionID) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidChoice, "field": "poker_session_id"})
		return false
	}
	if _, err := repo.GetSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidChoice, "field": "poker_session_id"})
			return false
		}
		writeError(c, err)
		return false
	}
	return true
}
