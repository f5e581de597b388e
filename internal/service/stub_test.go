package service

import (
	"context"
	"testing"

	"github.com/planpoker/poker-jira-backend/internal/crypto"
	"github.com/planpoker/poker-jira-backend/internal/jira"
	"github.com/planpoker/poker-jira-backend/internal/model"
)

type updateCall struct {
	key    string
	fields map[string]any
}

// fakeClient is an in-process jira.Client. It records every call and
// keeps per-issue field state so exports can be read back.
type fakeClient struct {
	authErr   error
	authURL   string
	authUser  string
	authPass  string
	authCalls int

	issueErr   map[string]error
	issueCalls []string

	updateErr    map[string]error
	updateCalls  []updateCall
	remoteFields map[string]map[string]any

	searchErr    error
	searchJQL    string
	searchIssues []jira.Issue
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		issueErr:     map[string]error{},
		updateErr:    map[string]error{},
		remoteFields: map[string]map[string]any{},
	}
}

func (f *fakeClient) Authenticate(ctx context.Context, baseURL, username, password string) (*jira.Session, error) {
	f.authCalls++
	f.authURL, f.authUser, f.authPass = baseURL, username, password
	if f.authErr != nil {
		return nil, f.authErr
	}
	return jira.NewSession(baseURL, username, password), nil
}

func (f *fakeClient) Issue(ctx context.Context, s *jira.Session, key string) (*jira.Issue, error) {
	f.issueCalls = append(f.issueCalls, key)
	if err := f.issueErr[key]; err != nil {
		return nil, err
	}
	return &jira.Issue{Key: key}, nil
}

func (f *fakeClient) UpdateFields(ctx context.Context, s *jira.Session, key string, fields map[string]any) error {
	f.updateCalls = append(f.updateCalls, updateCall{key: key, fields: fields})
	if err := f.updateErr[key]; err != nil {
		return err
	}
	if f.remoteFields[key] == nil {
		f.remoteFields[key] = map[string]any{}
	}
	for k, v := range fields {
		f.remoteFields[key][k] = v
	}
	return nil
}

func (f *fakeClient) Search(ctx context.Context, s *jira.Session, jql string) ([]jira.Issue, error) {
	f.searchJQL = jql
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchIssues, nil
}

// fakeStore is an in-memory ExportStore and ImportStore.
type fakeStore struct {
	stories []model.Story
	created []*model.Story
	loadErr error
}

func (f *fakeStore) GetStoriesByIDs(ctx context.Context, ids []string) ([]model.Story, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	idSet := map[string]bool{}
	for _, id := range ids {
		idSet[id] = true
	}
	var out []model.Story
	for _, st := range f.stories {
		if idSet[st.ID] {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateStories(ctx context.Context, stories []*model.Story) error {
	f.created = append(f.created, stories...)
	return nil
}

func testEncryptor(t *testing.T) *crypto.Encryptor {
	t.Helper()
	enc, err := crypto.NewEncryptor("test-secret")
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}
	return enc
}

func testConnection(t *testing.T, enc *crypto.Encryptor, password string) *model.JiraConnection {
	t.Helper()
	ct, err := enc.Encrypt(password)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	return &model.JiraConnection{
		ID:                "conn-1",
		Label:             "Staging Jira",
		APIURL:            "https://staging.atlassian.net",
		Username:          "stored-user",
		EncryptedPassword: ct,
		StoryPointsField:  "customfield_10016",
	}
}

func pointsOf(v float64) model.JsonNullFloat64 {
	return model.NullFloatFrom(&v)
}
