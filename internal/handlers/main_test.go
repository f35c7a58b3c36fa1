package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/database"
	"github.com/arnold/studytrack-api/internal/logger"
	"github.com/arnold/studytrack-api/internal/middleware"
	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/routes"
	"github.com/arnold/studytrack-api/internal/rpc"
	"github.com/arnold/studytrack-api/internal/services"
	"github.com/arnold/studytrack-api/internal/store"
)

// fakeObjects keeps objects in memory.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return "", errors.New("bucket unreachable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "https://files.test/" + key, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeGoogle map[string]*services.GoogleIdentity

func (g fakeGoogle) Verify(_ context.Context, idToken string) (*services.GoogleIdentity, error) {
	if id, ok := g[idToken]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

type testServer struct {
	app      *fiber.App
	store    *store.Store
	objects  *fakeObjects
	sessions *middleware.Sessions
	cfg      *config.Config

	admin, learner           *models.User
	adminToken, learnerToken string
}

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		JWTSecret:       "test-secret",
		SessionCookie:   "app_session_id",
		AllowOrigins:    "*",
		MaxUploadBytes:  4 << 10,
		GoogleClientIDs: []string{"web.apps"},
		OwnerOpenID:     "google-owner",
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, testConfig(), newFakeObjects())
}

// newTestServerWith leaves the object store to the app when objects is nil.
func newTestServerWith(t *testing.T, cfg *config.Config, objects *fakeObjects) *testServer {
	t.Helper()

	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), gormlogger.Discard)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	ts := &testServer{
		store:    store.New(db, logger.Nop{}),
		objects:  objects,
		sessions: middleware.NewSessions(cfg),
		cfg:      cfg,
	}
	var objectStore services.ObjectStore
	if objects != nil {
		objectStore = objects
	}
	ts.app = routes.New(routes.Deps{
		Config:   cfg,
		Log:      logger.Nop{},
		Store:    ts.store,
		Objects:  objectStore,
		Sessions: ts.sessions,
		Google: fakeGoogle{
			"owner-token":   {Subject: "google-owner", Audience: "web.apps", Email: "owner@example.com", Name: "Owner"},
			"learner-token": {Subject: "google-1", Audience: "web.apps", Email: "ana@example.com", Name: "Ana"},
			"foreign-token": {Subject: "google-2", Audience: "someone.else", Email: "eve@example.com"},
		},
	})

	ts.admin, ts.adminToken = ts.addUser(t, "admin-1", models.RoleAdmin)
	ts.learner, ts.learnerToken = ts.addUser(t, "learner-1", models.RoleUser)
	return ts
}

func (ts *testServer) addUser(t *testing.T, openID, role string) (*models.User, string) {
	t.Helper()
	u := &models.User{OpenID: openID, Name: openID, Role: role}
	require.NoError(t, ts.store.CreateUser(context.Background(), u))
	token, err := ts.sessions.GenerateToken(u)
	require.NoError(t, err)
	return u, token
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *rpc.Error      `json:"error"`
}

func (e envelope) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Result, v), string(e.Result))
}

func (ts *testServer) send(t *testing.T, req *http.Request, token string) (*http.Response, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp, env
}

func (ts *testServer) query(t *testing.T, name string, input interface{}, token string) (int, envelope) {
	t.Helper()
	target := "/api/rpc/" + name
	if input != nil {
		raw, err := json.Marshal(input)
		require.NoError(t, err)
		target += "?input=" + url.QueryEscape(string(raw))
	}
	resp, env := ts.send(t, httptest.NewRequest(http.MethodGet, target, nil), token)
	return resp.StatusCode, env
}

func (ts *testServer) mutate(t *testing.T, name string, input interface{}, token string) (int, envelope) {
	t.Helper()
	raw, err := json.Marshal(input)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/rpc/"+name, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, env := ts.send(t, req, token)
	return resp.StatusCode, env
}

// mustCreate runs an admin create mutation and returns the new id.
func (ts *testServer) mustCreate(t *testing.T, name string, input interface{}) uint {
	t.Helper()
	status, env := ts.mutate(t, name, input, ts.adminToken)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	var res models.SuccessResponse
	env.decode(t, &res)
	require.True(t, res.Success)
	require.NotZero(t, res.ID)
	return res.ID
}

type uploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Error   string `json:"error"`
}

func (ts *testServer) upload(t *testing.T, topicID string, fileName string, content []byte, token string) (int, uploadResult) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if topicID != "" {
		require.NoError(t, w.WriteField("topicId", topicID))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res uploadResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return resp.StatusCode, res
}

func (ts *testServer) ctx() context.Context {
	return context.Background()
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
