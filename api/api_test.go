package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/database/dbtest"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
)

type memRevocations struct {
	mu   sync.Mutex
	keys map[string][]byte
}

func (r *memRevocations) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[key], nil
}

func (r *memRevocations) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[key] = value
	return nil
}

type testServer struct {
	handler      http.Handler
	svc          *services.Services
	db           database.Database
	root         string
	ownerToken   string
	visitorToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := database.New(dbtest.Open(t))
	root := t.TempDir()
	svc := services.New(services.Dependencies{
		DB:       db,
		Ingestor: media.NewIngestor(media.NewLocalStore(root)),
		Tokens:   auth.NewTokenService("test-secret", time.Hour, &memRevocations{keys: map[string][]byte{}}),
		Limits:   services.ImageLimits{MaxWidth: 800, MaxHeight: 600},
		BaseURL:  "https://example.com",
	})

	settings := config.Settings{
		Server: config.ServerSettings{AcceptedOrigins: []string{"*"}},
		Uploads: config.UploadSettings{
			Backend:        config.UploadBackendLocal,
			Folder:         root,
			MaxUploadBytes: 1 << 20,
			MaxWidth:       800,
			MaxHeight:      600,
		},
	}
	handler := newRouter(Dependencies{Services: svc, DB: db, Cache: cache.New("", "", 0), Settings: settings})

	ctx := context.Background()
	_, _, err := svc.Accounts.ProvisionOwner(ctx, services.OwnerSeed{Username: "owner", Email: "owner@example.com", Name: "Owner", Password: "owner-pass"})
	require.NoError(t, err)
	_, err = svc.Accounts.Register(ctx, services.Registration{Username: "visitor", Name: "Visitor", Email: "visitor@example.com", Password: "visitor-pass"})
	require.NoError(t, err)

	ts := &testServer{handler: handler, svc: svc, db: db, root: root}
	ts.ownerToken = ts.login(t, "owner", "owner-pass")
	ts.visitorToken = ts.login(t, "visitor", "visitor-pass")
	return ts
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/login", "", jsonBody(t, map[string]string{"username": username, "password": password}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session services.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session.Token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) project(t *testing.T, title string, published bool) *models.Project {
	t.Helper()
	owner, err := ts.svc.Accounts.About(context.Background())
	require.NoError(t, err)
	res, err := ts.svc.Projects.Create(context.Background(), services.ActorFromUser(owner), services.ProjectInput{
		Title:       title,
		Description: "Description of " + title,
		IsPublished: published,
	})
	require.NoError(t, err)
	return res.Project
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type multipartFile struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string][]string, files ...multipartFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOwnerRoutesDenyOthers(t *testing.T) {
	ts := newTestServer(t)
	project := ts.project(t, "Protected", true)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/owner/dashboard"},
		{http.MethodGet, "/owner/projects"},
		{http.MethodGet, "/owner/tags"},
		{http.MethodGet, "/owner/notifications"},
		{http.MethodPost, "/owner/project"},
		{http.MethodPut, "/owner/project/" + project.ID.String()},
		{http.MethodDelete, "/owner/project/" + project.ID.String()},
		{http.MethodPost, "/owner/tag"},
		{http.MethodPost, "/owner/notifications/mark-read"},
	}
	for _, route := range routes {
		for _, token := range []string{"", ts.visitorToken, "not-a-token"} {
			rec := ts.do(t, route.method, route.path, token, nil, "")
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", route.method, route.path)
		}
	}

	exists, err := ts.db.ProjectRepo().Exists(context.Background(), project.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	rec := ts.do(t, http.MethodGet, "/owner/dashboard", ts.ownerToken, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLikeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	project := ts.project(t, "Likeable", true)
	path := "/project/" + project.ID.String() + "/like"

	rec := ts.do(t, http.MethodPost, path, "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, path, ts.visitorToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":true,"like_count":1}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, path, ts.visitorToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":false,"like_count":0}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/project/not-a-uuid/like", ts.visitorToken, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentEndpoint(t *testing.T) {
	ts := newTestServer(t)
	project := ts.project(t, "Discussed", true)
	path := "/project/" + project.ID.String() + "/comment"

	rec := ts.do(t, http.MethodPost, path, ts.visitorToken, jsonBody(t, map[string]string{"content": "hi"}), "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "content", errResp.Field)

	form := strings.NewReader("content=Really+nice+work")
	req := httptest.NewRequest(http.MethodPost, path, form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+ts.visitorToken)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[models.Comment](t, rec)
	assert.Equal(t, "Really nice work", comment.Content)

	rec = ts.do(t, http.MethodGet, "/owner/notifications?unread=true", ts.ownerToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]models.Notification](t, rec)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "commented on your project")
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/register", "", jsonBody(t, map[string]string{
		"username": "newbie", "name": "New Person", "email": "newbie@example.com",
		"password": "hunter22", "password2": "different",
	}), "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password2", decode[ErrorResponse](t, rec).Field)

	rec = ts.do(t, http.MethodPost, "/auth/register", "", jsonBody(t, map[string]string{
		"username": "newbie", "name": "New Person", "email": "not-an-email",
		"password": "hunter22", "password2": "hunter22",
	}), "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decode[ErrorResponse](t, rec).Field)

	rec = ts.do(t, http.MethodPost, "/auth/register", "", jsonBody(t, map[string]string{
		"username": "visitor", "name": "Copy Cat", "email": "copy@example.com",
		"password": "hunter22", "password2": "hunter22",
	}), "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/register", "", jsonBody(t, map[string]string{
		"username": "newbie", "name": "New Person", "email": "newbie@example.com",
		"password": "hunter22", "password2": "hunter22",
	}), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = ts.do(t, http.MethodPost, "/auth/login", "", jsonBody(t, map[string]string{"username": "newbie", "password": "nope"}), "application/json")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := ts.login(t, "newbie", "hunter22")
	rec = ts.do(t, http.MethodGet, "/auth/profile", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "newbie", decode[models.User](t, rec).Username)

	rec = ts.do(t, http.MethodPost, "/auth/logout", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/auth/profile", token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")

	rec = ts.do(t, http.MethodGet, "/auth/profile", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProjectMultipart(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/owner/tag", ts.ownerToken, jsonBody(t, map[string]string{"name": "go", "color": "#00ADD8"}), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	goTag := decode[models.Tag](t, rec)

	rec = ts.do(t, http.MethodPost, "/owner/tag", ts.ownerToken, jsonBody(t, map[string]string{"name": "go"}), "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/owner/tag", ts.ownerToken, jsonBody(t, map[string]string{"name": "web", "color": "red"}), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType := multipartBody(t, map[string][]string{
		"title":        {"Uploader"},
		"description":  {"Project created through a form"},
		"is_published": {"y"},
		"demo_url":     {""},
		"tags":         {goTag.ID.String(), goTag.ID.String()},
	}, multipartFile{field: "image", name: "cover.png", data: pngData(t, 1200, 900)})
	rec = ts.do(t, http.MethodPost, "/owner/project", ts.ownerToken, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := decode[services.ProjectResult](t, rec)
	assert.Empty(t, result.ImageWarning)
	assert.True(t, result.Project.IsPublished)
	assert.Nil(t, result.Project.DemoURL)
	require.Len(t, result.Project.Tags, 1)
	require.True(t, result.Project.HasImage())

	rec = ts.do(t, http.MethodGet, "/uploads/"+media.ProjectsFolder+"/"+*result.Project.ImageFilename, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg, format, err := image.DecodeConfig(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)

	rec = ts.do(t, http.MethodGet, "/uploads/"+media.ProjectsFolder+"/", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body, contentType = multipartBody(t, map[string][]string{
		"title":       {"Bitmap"},
		"description": {"Unsupported upload format"},
	}, multipartFile{field: "image", name: "cover.bmp", data: []byte("BM....")})
	rec = ts.do(t, http.MethodPost, "/owner/project", ts.ownerToken, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result = decode[services.ProjectResult](t, rec)
	assert.NotEmpty(t, result.ImageWarning)
	assert.False(t, result.Project.HasImage())

	body, contentType = multipartBody(t, map[string][]string{"title": {"No"}, "description": {"Too short a title"}})
	rec = ts.do(t, http.MethodPost, "/owner/project", ts.ownerToken, body, contentType)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title", decode[ErrorResponse](t, rec).Field)
}

func TestUploadTooLarge(t *testing.T) {
	ts := newTestServer(t)
	body, contentType := multipartBody(t, map[string][]string{
		"title":       {"Huge"},
		"description": {"Body over the configured limit"},
	}, multipartFile{field: "image", name: "huge.png", data: bytes.Repeat([]byte{1}, 2<<20)})

	rec := ts.do(t, http.MethodPost, "/owner/project", ts.ownerToken, body, contentType)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestPublicPages(t *testing.T) {
	ts := newTestServer(t)
	published := ts.project(t, "Visible", true)
	draft := ts.project(t, "Invisible", false)

	rec := ts.do(t, http.MethodGet, "/projects?page=1&search=visible", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[services.Page[models.Project]](t, rec)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, published.ID, page.Items[0].ID)

	rec = ts.do(t, http.MethodGet, "/projects?tag=unknown", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	rec = ts.do(t, http.MethodGet, "/project/"+draft.ID.String(), "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodGet, "/project/"+draft.ID.String(), ts.ownerToken, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/project/"+published.ID.String(), ts.visitorToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[services.ProjectDetail](t, rec)
	assert.False(t, detail.Liked)
	assert.Equal(t, "Owner", detail.Project.Author.Name)

	rec = ts.do(t, http.MethodGet, "/", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	home := decode[services.Home](t, rec)
	assert.Len(t, home.Recent, 1)

	rec = ts.do(t, http.MethodGet, "/about", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner", decode[models.User](t, rec).Username)

	rec = ts.do(t, http.MethodGet, "/healthz", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"disabled"`, mustField(t, rec, "cache"))

	rec = ts.do(t, http.MethodGet, "/metrics", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfolio_http_requests_total")
}

func mustField(t *testing.T, rec *httptest.ResponseRecorder, key string) string {
	t.Helper()
	m := decode[map[string]json.RawMessage](t, rec)
	raw, ok := m[key]
	require.True(t, ok, key)
	return string(raw)
}

func TestEmailsStayPrivate(t *testing.T) {
	ts := newTestServer(t)
	project := ts.project(t, "Commented", true)

	rec := ts.do(t, http.MethodPost, "/project/"+project.ID.String()+"/comment", ts.visitorToken,
		jsonBody(t, map[string]string{"content": "Great write-up"}), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "@example.com")

	for _, token := range []string{"", ts.visitorToken} {
		rec = ts.do(t, http.MethodGet, "/project/"+project.ID.String(), token, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Great write-up")
		assert.NotContains(t, rec.Body.String(), "visitor@example.com")
		assert.NotContains(t, rec.Body.String(), "owner@example.com")
	}

	for _, path := range []string{"/", "/projects", "/about"} {
		rec = ts.do(t, http.MethodGet, path, "", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "@example.com", path)
	}

	rec = ts.do(t, http.MethodGet, "/auth/profile", ts.visitorToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"visitor@example.com"`, mustField(t, rec, "email"))

	rec = ts.do(t, http.MethodPost, "/auth/login", "", jsonBody(t, map[string]string{"username": "visitor", "password": "visitor-pass"}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[services.Session](t, rec)
	assert.Equal(t, "visitor@example.com", session.User.Email)
}
