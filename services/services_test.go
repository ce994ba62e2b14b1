package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/database/dbtest"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/worker"
)

type sentMail struct {
	subject    string
	body       string
	recipients []string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, subject, body string, recipients []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{subject: subject, body: body, recipients: recipients})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

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

type testEnv struct {
	db      database.Database
	svc     *Services
	root    string
	store   *media.LocalStore
	mailer  *fakeMailer
	pool    worker.Pool
	owner   *models.User
	visitor *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.New(dbtest.Open(t))
	root := t.TempDir()
	store := media.NewLocalStore(root)
	mailer := &fakeMailer{}
	pool := worker.NewPool(1)
	t.Cleanup(pool.Stop)

	svc := New(Dependencies{
		DB:       db,
		Ingestor: media.NewIngestor(store),
		Tokens:   auth.NewTokenService("test-secret", time.Hour, &memRevocations{keys: map[string][]byte{}}),
		Notifier: NewNotifier(pool, mailer),
		Limits:   ImageLimits{MaxWidth: 800, MaxHeight: 600},
		BaseURL:  "https://example.com",
	})

	env := &testEnv{db: db, svc: svc, root: root, store: store, mailer: mailer, pool: pool}
	env.owner = env.addUser(t, "owner", true)
	env.visitor = env.addUser(t, "visitor", false)
	return env
}

func (e *testEnv) addUser(t *testing.T, username string, owner bool) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		Name:         "Name " + username,
		PasswordHash: hash,
		IsOwner:      owner,
	}
	require.NoError(t, e.db.UserRepo().Add(context.Background(), u))
	return u
}

func (e *testEnv) ownerActor() Actor   { return ActorFromUser(e.owner) }
func (e *testEnv) visitorActor() Actor { return ActorFromUser(e.visitor) }

func (e *testEnv) addTag(t *testing.T, name string) *models.Tag {
	t.Helper()
	tag, err := e.svc.Tags.Create(context.Background(), e.ownerActor(), name, "")
	require.NoError(t, err)
	return tag
}

func (e *testEnv) addProject(t *testing.T, title string, published bool, tags ...*models.Tag) *models.Project {
	t.Helper()
	in := ProjectInput{
		Title:       title,
		Description: "A description for " + title,
		IsPublished: published,
	}
	for _, tag := range tags {
		in.TagIDs = append(in.TagIDs, tag.ID)
	}
	res, err := e.svc.Projects.Create(context.Background(), e.ownerActor(), in)
	require.NoError(t, err)
	return res.Project
}

// files lists the names stored in folder.
func (e *testEnv) files(t *testing.T, folder string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.root, folder))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func pngUpload(t *testing.T, name string, w, h int) *ImageUpload {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{G: 180, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &ImageUpload{Filename: name, Content: &buf}
}
