package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planpoker/poker-jira-backend/internal/crypto"
	"github.com/planpoker/poker-jira-backend/internal/jira"
	"github.com/planpoker/poker-jira-backend/internal/model"
	"github.com/planpoker/poker-jira-backend/internal/repository"
	"github.com/planpoker/poker-jira-backend/internal/service"
)

const (
	testJiraPassword = "right-password"
	testPointsField  = "customfield_10016"
)

// fakeJira is a minimal in-process Jira: myself for the credential
// check, search for imports, issue GET/PUT for exports. Issue keys
// starting with MISSING do not exist.
type fakeJira struct {
	srv      *httptest.Server
	authHits atomic.Int64

	mu      sync.Mutex
	updated map[string]map[string]any
}

func newFakeJira(t *testing.T) *fakeJira {
	t.Helper()
	f := &fakeJira{updated: make(map[string]map[string]any)}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/2/myself", func(w http.ResponseWriter, r *http.Request) {
		f.authHits.Add(1)
		if _, pass, _ := r.BasicAuth(); pass != testJiraPassword {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"api-user"}`))
	})
	mux.HandleFunc("/rest/api/2/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Query().Get("jql"), "broken") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"errorMessages":["Error in the JQL Query: something is wrong"]}`))
			return
		}
		w.Write([]byte(`{"startAt":0,"maxResults":50,"total":2,"issues":[
			{"id":"1","key":"POKER-1","fields":{"summary":"First","description":"one"},"renderedFields":{"description":"<p>one</p>"}},
			{"id":"2","key":"POKER-2","fields":{"summary":"Second","description":"two"}}
		]}`))
	})
	mux.HandleFunc("/rest/api/2/issue/", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/rest/api/2/issue/")
		if strings.HasPrefix(key, "MISSING") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errorMessages":["Issue Does Not Exist"]}`))
			return
		}
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"1","key":"` + key + `","fields":{}}`))
		case http.MethodPut:
			var payload struct {
				Fields map[string]any `json:"fields"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.mu.Lock()
			f.updated[key] = payload.Fields
			f.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeJira) updatedFields(key string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updated[key]
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	repo   *repository.PostgresRepo
	enc    *crypto.Encryptor
	jira   *fakeJira
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}
	repo, err := repository.NewPostgresRepoFromDSN(dsn)
	if err != nil {
		t.Fatalf("connect database: %v", err)
	}
	t.Cleanup(func() { repo.DB.Close() })
	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	fj := newFakeJira(t)
	enc, err := crypto.NewEncryptor("handler-test-key")
	if err != nil {
		t.Fatalf("build encryptor: %v", err)
	}
	client := jira.NewRESTClient(&jira.ClientConfig{
		Timeout:   5 * time.Second,
		RateLimit: 1000,
		RateBurst: 100,
	})
	resolver := service.NewResolver(client, enc)

	connHandler := NewConnectionHandler(repo, enc, resolver, service.NewImporter(repo, client, resolver))
	sessionHandler := NewSessionHandler(repo)
	storyHandler := NewStoryHandler(repo, service.NewExporter(repo, client, resolver))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")

	conns := api.Group("/connections")
	{
		conns.GET("", connHandler.List)
		conns.POST("", connHandler.Create)
		conns.GET("/:id", connHandler.Get)
		conns.PUT("/:id", connHandler.Update)
		conns.DELETE("/:id", connHandler.Delete)
		conns.POST("/:id/import_stories", connHandler.ImportStories)
	}

	sessions := api.Group("/sessions")
	{
		sessions.GET("", sessionHandler.List)
		sessions.POST("", sessionHandler.Create)
		sessions.GET("/:id", sessionHandler.Get)
	}

	stories := api.Group("/stories")
	{
		stories.GET("", storyHandler.List)
		stories.POST("", storyHandler.Create)
		stories.POST("/export", storyHandler.Export)
		stories.GET("/:id", storyHandler.Get)
		stories.PUT("/:id", storyHandler.Update)
		stories.DELETE("/:id", storyHandler.Delete)
	}

	return &testAPI{t: t, router: r, repo: repo, enc: enc, jira: fj}
}

func (a *testAPI) seedConnection(label string) *model.JiraConnection {
	a.t.Helper()
	encrypted, err := a.enc.Encrypt(testJiraPassword)
	if err != nil {
		a.t.Fatalf("encrypt password: %v", err)
	}
	conn := &model.JiraConnection{
		Label:             label,
		APIURL:            a.jira.srv.URL,
		Username:          "api-user",
		EncryptedPassword: encrypted,
		StoryPointsField:  testPointsField,
	}
	if err := a.repo.CreateConnection(context.Background(), conn); err != nil {
		a.t.Fatalf("seed connection: %v", err)
	}
	return conn
}

func (a *testAPI) seedStory(ticket, title string, points *float64) *model.Story {
	a.t.Helper()
	story := &model.Story{
		TicketNumber: model.NullStringFrom(ticket),
		Title:        title,
		StoryPoints:  model.NullFloatFrom(points),
	}
	if err := a.repo.CreateStory(context.Background(), story); err != nil {
		a.t.Fatalf("seed story: %v", err)
	}
	return story
}

func (a *testAPI) seedSession(name string) *model.PokerSession {
	a.t.Helper()
	session := &model.PokerSession{Name: name}
	if err := a.repo.CreateSession(context.Background(), session); err != nil {
		a.t.Fatalf("seed session: %v", err)
	}
	return session
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func mustDecode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func putJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, r, http.MethodPut, path, body)
}

func getPath(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func deletePath(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
