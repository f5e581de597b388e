package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/planpoker/poker-jira-backend/internal/jira"
	"github.com/planpoker/poker-jira-backend/internal/model"
)

// ExportStore is the slice of the repository the exporter needs.
type ExportStore interface {
	GetStoriesByIDs(ctx context.Context, ids []string) ([]model.Story, error)
}

// Exporter pushes local story estimates to a Jira connection's
// configured story points field.
type Exporter struct {
	store    ExportStore
	client   jira.Client
	resolver *Resolver
}

func NewExporter(store ExportStore, client jira.Client, resolver *Resolver) *Exporter {
	return &Exporter{store: store, client: client, resolver: resolver}
}

// Export writes each selected story's points to its Jira issue, in the
// stories' stable batch order. The first remote failure stops the
// whole run: one error naming the story and the connection, no
// success summary, and updates already written stay written.
func (e *Exporter) Export(ctx context.Context, conn *model.JiraConnection, storyIDs []string, override model.AuthOverride) (*Outcome, error) {
	if len(storyIDs) == 0 {
		return nil, fieldError("story_ids", msgFieldRequired)
	}

	session, err := e.resolver.Resolve(ctx, conn, override)
	if err != nil {
		return nil, err
	}

	stories, err := e.store.GetStoriesByIDs(ctx, storyIDs)
	if err != nil {
		return nil, err
	}

	for i := range stories {
		story := &stories[i]
		key := story.TicketNumber.String

		if _, err := e.client.Issue(ctx, session, key); err != nil {
			return nil, exportFailure(story, conn, err)
		}

		var points any
		if story.StoryPoints.Valid {
			points = story.StoryPoints.Float64
		}
		fields := map[string]any{conn.StoryPointsField: points}
		if err := e.client.UpdateFields(ctx, session, key, fields); err != nil {
			return nil, exportFailure(story, conn, err)
		}
		log.Printf("exported story %s to %s", story.Name(), conn.DisplayName())
	}

	count := len(stories)
	return &Outcome{Count: count, Message: exportedMessage(count)}, nil
}

// exportFailure converts a remote rejection into the single batch
// error message. Anything that is not a Jira error passes through
// unchanged.
func exportFailure(story *model.Story, conn *model.JiraConnection, err error) error {
	var jiraErr *jira.Error
	if errors.As(err, &jiraErr) {
		return nonFieldError(fmt.Sprintf(
			`The story "%s" could not be exported because it probably does not exist in "%s"`,
			story.Name(), conn.DisplayName(),
		))
	}
	return err
}
