package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/planpoker/poker-jira-backend/internal/jira"
	"github.com/planpoker/poker-jira-backend/internal/model"
)

// ImportStore is the slice of the repository the importer needs.
type ImportStore interface {
	CreateStories(ctx context.Context, stories []*model.Story) error
}

// Importer pulls issues matching a JQL query into local stories.
type Importer struct {
	store    ImportStore
	client   jira.Client
	resolver *Resolver
}

func NewImporter(store ImportStore, client jira.Client, resolver *Resolver) *Importer {
	return &Importer{store: store, client: client, resolver: resolver}
}

// Import searches the connection for issues matching the query and
// creates one story per result, bound to the poker session when one
// is given. A failed search creates nothing: a Jira 400 surfaces the
// server's error text on the query field, any other Jira status
// surfaces the status code there.
func (im *Importer) Import(ctx context.Context, conn *model.JiraConnection, req model.ImportRequest) (*Outcome, error) {
	jql := strings.TrimSpace(req.JQLQuery)
	if jql == "" {
		return nil, fieldError("jql_query", msgFieldRequired)
	}

	session, err := im.resolver.Resolve(ctx, conn, req.Auth)
	if err != nil {
		return nil, err
	}

	issues, err := im.client.Search(ctx, session, jql)
	if err != nil {
		var jiraErr *jira.Error
		if errors.As(err, &jiraErr) {
			if jiraErr.StatusCode == http.StatusBadRequest {
				return nil, fieldError("jql_query", jiraErr.Text)
			}
			return nil, fieldError("jql_query", strconv.Itoa(jiraErr.StatusCode))
		}
		return nil, err
	}

	sessionID := model.NullStringFrom(req.PokerSessionID)
	stories := make([]*model.Story, 0, len(issues))
	for _, issue := range issues {
		stories = append(stories, &model.Story{
			TicketNumber:   model.NullStringFrom(issue.Key),
			Title:          issue.Fields.Summary,
			Description:    issue.RenderedDescription(),
			PokerSessionID: sessionID,
		})
	}
	if err := im.store.CreateStories(ctx, stories); err != nil {
		return nil, err
	}

	count := len(stories)
	log.Printf("imported %d stories from %s", count, conn.DisplayName())
	return &Outcome{Count: count, Message: importedMessage(count)}, nil
}
