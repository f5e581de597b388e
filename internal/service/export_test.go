package service

import (
	"context"
	"errors"
	"testing"

	"github.com/planpoker/poker-jira-backend/internal/jira"
	"github.com/planpoker/poker-jira-backend/internal/model"
)

func exportFixture(t *testing.T, password string, stories ...model.Story) (*Exporter, *fakeClient, *model.JiraConnection) {
	t.Helper()
	enc := testEncryptor(t)
	client := newFakeClient()
	conn := testConnection(t, enc, password)
	store := &fakeStore{stories: stories}
	return NewExporter(store, client, NewResolver(client, enc)), client, conn
}

func storyFixture(id, ticket, title string, points float64) model.Story {
	return model.Story{
		ID:           id,
		TicketNumber: model.NullStringFrom(ticket),
		Title:        title,
		StoryPoints:  pointsOf(points),
	}
}

func TestExportWritesConfiguredField(t *testing.T) {
	story := storyFixture("s1", "POKER-1", "checkout flow", 5)
	exporter, client, conn := exportFixture(t, "stored-pass", story)

	out, err := exporter.Export(context.Background(), conn, []string{"s1"}, model.AuthOverride{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.Count != 1 || out.Message != "1 story was successfully exported." {
		t.Errorf("outcome = %+v", out)
	}
	if len(client.updateCalls) != 1 {
		t.Fatalf("update calls = %d", len(client.updateCalls))
	}
	call := client.updateCalls[0]
	if call.key != "POKER-1" {
		t.Errorf("updated key = %q", call.key)
	}
	if got := call.fields["customfield_10016"]; got != 5.0 {
		t.Errorf("field payload = %v", call.fields)
	}
}

func TestExportPluralizesSummary(t *testing.T) {
	stories := []model.Story{
		storyFixture("s1", "POKER-1", "one", 1),
		storyFixture("s2", "POKER-2", "two", 2),
		storyFixture("s3", "POKER-3", "three", 3),
	}
	exporter, client, conn := exportFixture(t, "stored-pass", stories...)

	out, err := exporter.Export(context.Background(), conn, []string{"s1", "s2", "s3"}, model.AuthOverride{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.Count != 3 || out.Message != "3 stories were successfully exported." {
		t.Errorf("outcome = %+v", out)
	}
	if len(client.updateCalls) != 3 {
		t.Errorf("update calls = %d", len(client.updateCalls))
	}
}

func TestExportStopsAtFirstFailure(t *testing.T) {
	stories := []model.Story{
		storyFixture("s1", "POKER-1", "one", 1),
		storyFixture("s2", "POKER-2", "two", 2),
		storyFixture("s3", "POKER-3", "three", 3),
		storyFixture("s4", "POKER-4", "four", 4),
	}
	exporter, client, conn := exportFixture(t, "stored-pass", stories...)
	client.issueErr["POKER-3"] = &jira.Error{StatusCode: 404, Text: "Issue does not exist"}

	out, err := exporter.Export(context.Background(), conn, []string{"s1", "s2", "s3", "s4"}, model.AuthOverride{})
	if out != nil {
		t.Fatalf("got a success outcome %+v alongside a failure", out)
	}

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("Export = %v, want FieldError", err)
	}
	want := `The story "POKER-3: three" could not be exported because it probably does not exist in "Staging Jira"`
	if fieldErr.Message != want {
		t.Errorf("message = %q, want %q", fieldErr.Message, want)
	}

	// Nothing past the failing story was touched.
	if len(client.issueCalls) != 3 {
		t.Errorf("issue calls = %v", client.issueCalls)
	}
	if len(client.updateCalls) != 2 {
		t.Errorf("update calls = %v", client.updateCalls)
	}
	for _, call := range client.updateCalls {
		if call.key == "POKER-3" || call.key == "POKER-4" {
			t.Errorf("story %s was updated after the failure point", call.key)
		}
	}
}

func TestExportUpdateRejectionAlsoStops(t *testing.T) {
	stories := []model.Story{
		storyFixture("s1", "POKER-1", "one", 1),
		storyFixture("s2", "POKER-2", "two", 2),
	}
	exporter, client, conn := exportFixture(t, "stored-pass", stories...)
	client.updateErr["POKER-1"] = &jira.Error{StatusCode: 400, Text: "Field cannot be set"}

	_, err := exporter.Export(context.Background(), conn, []string{"s1", "s2"}, model.AuthOverride{})
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("Export = %v, want FieldError", err)
	}
	want := `The story "POKER-1: one" could not be exported because it probably does not exist in "Staging Jira"`
	if fieldErr.Message != want {
		t.Errorf("message = %q", fieldErr.Message)
	}
	if len(client.issueCalls) != 1 {
		t.Errorf("issue calls = %v, want just the first story", client.issueCalls)
	}
}

func TestExportConnectionNameFallsBackToURL(t *testing.T) {
	story := storyFixture("s1", "POKER-1", "one", 1)
	exporter, client, conn := exportFixture(t, "stored-pass", story)
	conn.Label = ""
	client.issueErr["POKER-1"] = &jira.Error{StatusCode: 404, Text: "gone"}

	_, err := exporter.Export(context.Background(), conn, []string{"s1"}, model.AuthOverride{})
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("Export = %v, want FieldError", err)
	}
	want := `The story "POKER-1: one" could not be exported because it probably does not exist in "https://staging.atlassian.net"`
	if fieldErr.Message != want {
		t.Errorf("message = %q", fieldErr.Message)
	}
}

func TestExportEmptySelection(t *testing.T) {
	exporter, client, conn := exportFixture(t, "stored-pass")

	_, err := exporter.Export(context.Background(), conn, nil, model.AuthOverride{})
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("Export = %v, want FieldError", err)
	}
	if fieldErr.Field != "story_ids" {
		t.Errorf("field = %q", fieldErr.Field)
	}
	if client.authCalls != 0 {
		t.Error("resolver ran for an empty selection")
	}
}

func TestExportSendsNullForUnestimatedStory(t *testing.T) {
	story := model.Story{
		ID:           "s1",
		TicketNumber: model.NullStringFrom("POKER-1"),
		Title:        "no estimate yet",
	}
	exporter, client, conn := exportFixture(t, "stored-pass", story)

	if _, err := exporter.Export(context.Background(), conn, []string{"s1"}, model.AuthOverride{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	call := client.updateCalls[0]
	if got, ok := call.fields["customfield_10016"]; !ok || got != nil {
		t.Errorf("field payload = %v, want explicit null", call.fields)
	}
}

func TestExportStoryWithoutTicketNumber(t *testing.T) {
	story := model.Story{ID: "s1", Title: "local-only story", StoryPoints: pointsOf(3)}
	exporter, client, conn := exportFixture(t, "stored-pass", story)
	client.issueErr[""] = &jira.Error{StatusCode: 404, Text: "no issue key"}

	_, err := exporter.Export(context.Background(), conn, []string{"s1"}, model.AuthOverride{})
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("Export = %v, want FieldError", err)
	}
	want := `The story "local-only story" could not be exported because it probably does not exist in "Staging Jira"`
	if fieldErr.Message != want {
		t.Errorf("message = %q", fieldErr.Message)
	}
}
