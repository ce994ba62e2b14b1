package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-site-backend/media"
)

func TestOrphanSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Projects.Create(ctx, env.ownerActor(), ProjectInput{
		Title:       "Referenced",
		Description: "Keeps its image file",
		Image:       pngUpload(t, "keep.png", 10, 10),
	})
	require.NoError(t, err)
	kept := *res.Project.ImageFilename

	require.NoError(t, env.store.Save(ctx, media.ProjectsFolder, "stale.jpg", []byte("x")))
	require.NoError(t, env.store.Save(ctx, media.ProfilesFolder, "stale.jpg", []byte("x")))
	require.NoError(t, env.store.Save(ctx, media.ProjectsFolder, "fresh.jpg", []byte("x")))

	old := time.Now().Add(-3 * time.Hour)
	for _, p := range []string{
		filepath.Join(env.root, media.ProjectsFolder, kept),
		filepath.Join(env.root, media.ProjectsFolder, "stale.jpg"),
		filepath.Join(env.root, media.ProfilesFolder, "stale.jpg"),
	} {
		require.NoError(t, os.Chtimes(p, old, old))
	}

	sweeper := NewOrphanSweeper(env.db, env.store, time.Hour)
	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.ElementsMatch(t, []string{kept, "fresh.jpg"}, env.files(t, media.ProjectsFolder))
	assert.Empty(t, env.files(t, media.ProfilesFolder))

	// later, fresh.jpg is past the grace period too
	sweeper.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	removed, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{kept}, env.files(t, media.ProjectsFolder))
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	env := newTestEnv(t)
	s := NewScheduler()
	sweeper := NewOrphanSweeper(env.db, env.store, time.Hour)

	require.Error(t, s.AddSweep("not a schedule", sweeper))
	require.NoError(t, s.AddSweep("@daily", sweeper))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
