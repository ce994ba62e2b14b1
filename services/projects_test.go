package services

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
)

func tagNames(tags []models.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}

func TestOwnerOperationsRejectOthers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.addProject(t, "Gated", true)

	for name, actor := range map[string]Actor{"anonymous": Anonymous, "visitor": env.visitorActor()} {
		t.Run(name, func(t *testing.T) {
			_, err := env.svc.Projects.Create(ctx, actor, ProjectInput{Title: "Nope", Description: "Not allowed here"})
			assert.True(t, errs.IsAccessDenied(err))

			_, err = env.svc.Projects.Update(ctx, actor, project.ID, ProjectInput{Title: "Nope", Description: "Not allowed here"})
			assert.True(t, errs.IsAccessDenied(err))

			assert.True(t, errs.IsAccessDenied(env.svc.Projects.Delete(ctx, actor, project.ID)))
			assert.True(t, errs.IsAccessDenied(env.svc.Projects.SetTags(ctx, actor, project.ID, nil)))

			_, err = env.svc.Projects.ListAll(ctx, actor, 1)
			assert.True(t, errs.IsAccessDenied(err))

			_, err = env.svc.Tags.Create(ctx, actor, "go", "")
			assert.True(t, errs.IsAccessDenied(err))

			_, err = env.svc.Owner.Dashboard(ctx, actor)
			assert.Equal(t, 403, errs.StatusCode(err))
		})
	}

	still, err := env.db.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gated", still.Title)
}

func TestSetTagsReplacesWholeSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	goTag := env.addTag(t, "go")
	web := env.addTag(t, "web")
	cli := env.addTag(t, "cli")
	project := env.addProject(t, "Tagged", true, goTag, web)

	err := env.svc.Projects.SetTags(ctx, env.ownerActor(), project.ID, []uuid.UUID{cli.ID, web.ID, web.ID, uuid.New()})
	require.NoError(t, err)

	reloaded, err := env.db.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cli", "web"}, tagNames(reloaded.Tags))

	// applying the same set again changes nothing
	require.NoError(t, env.svc.Projects.SetTags(ctx, env.ownerActor(), project.ID, []uuid.UUID{web.ID, cli.ID}))
	reloaded, err = env.db.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cli", "web"}, tagNames(reloaded.Tags))

	require.NoError(t, env.svc.Projects.SetTags(ctx, env.ownerActor(), project.ID, nil))
	reloaded, err = env.db.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Tags)

	err = env.svc.Projects.SetTags(ctx, env.ownerActor(), uuid.New(), []uuid.UUID{cli.ID})
	assert.True(t, errs.IsNotFound(err))
}

func TestListPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	goTag := env.addTag(t, "go")
	for i := 0; i < 11; i++ {
		env.addProject(t, fmt.Sprintf("Project %02d", i), true, goTag)
	}
	env.addProject(t, "Hidden draft", false, goTag)

	first, err := env.svc.Projects.ListPublished(ctx, ProjectQuery{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)
	assert.Len(t, first.Items, PublicPerPage)
	assert.EqualValues(t, 11, first.Total)
	assert.Equal(t, 2, first.Pages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	second, err := env.svc.Projects.ListPublished(ctx, ProjectQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)
	assert.False(t, second.HasNext)

	beyond, err := env.svc.Projects.ListPublished(ctx, ProjectQuery{Page: 7})
	require.NoError(t, err)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)

	search, err := env.svc.Projects.ListPublished(ctx, ProjectQuery{Search: "DRAFT"})
	require.NoError(t, err)
	assert.Empty(t, search.Items)

	search, err = env.svc.Projects.ListPublished(ctx, ProjectQuery{Search: "project 1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, search.Total)

	unknown, err := env.svc.Projects.ListPublished(ctx, ProjectQuery{Tag: "rust"})
	require.NoError(t, err)
	assert.Empty(t, unknown.Items)
	assert.EqualValues(t, 0, unknown.Total)

	all, err := env.svc.Projects.ListAll(ctx, env.ownerActor(), 1)
	require.NoError(t, err)
	assert.EqualValues(t, 12, all.Total)
	assert.Len(t, all.Items, OwnerPerPage)
}

func TestListPublishedHugePageIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProject(t, "Only project", true)

	for _, page := range []int{MaxPage + 1, math.MaxInt/PublicPerPage + 2, math.MaxInt} {
		res, err := env.svc.Projects.ListPublished(ctx, ProjectQuery{Page: page})
		require.NoError(t, err)
		assert.Empty(t, res.Items, "page %d", page)
		assert.Equal(t, MaxPage, res.Page)
		assert.EqualValues(t, 1, res.Total)
	}

	all, err := env.svc.Projects.ListAll(ctx, env.ownerActor(), math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, all.Items)
	assert.Equal(t, MaxPage, all.Page)
	assert.GreaterOrEqual(t, offset(normalizePage(math.MaxInt), OwnerPerPage), 0)
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addTag(t, "web")
	env.addTag(t, "api")
	for i := 0; i < 8; i++ {
		res, err := env.svc.Projects.Create(ctx, env.ownerActor(), ProjectInput{
			Title:       fmt.Sprintf("Home %d", i),
			Description: "Shown on the home page",
			IsPublished: true,
			IsFeatured:  i%2 == 0,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Project)
	}

	home, err := env.svc.Projects.Home(ctx)
	require.NoError(t, err)
	assert.Len(t, home.Featured, 3)
	for _, p := range home.Featured {
		assert.True(t, p.IsFeatured)
	}
	assert.Len(t, home.Recent, 6)
	require.Len(t, home.Tags, 2)
	assert.Equal(t, "api", home.Tags[0].Name)
}

func TestDetailHidesUnpublishedFromVisitors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draft := env.addProject(t, "Draft", false)

	_, err := env.svc.Projects.Detail(ctx, Anonymous, draft.ID)
	assert.True(t, errs.IsNotFound(err))
	_, err = env.svc.Projects.Detail(ctx, env.visitorActor(), draft.ID)
	assert.True(t, errs.IsNotFound(err))

	detail, err := env.svc.Projects.Detail(ctx, env.ownerActor(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft", detail.Project.Title)

	_, err = env.svc.Projects.Detail(ctx, Anonymous, uuid.New())
	assert.True(t, errs.IsNotFound(err))
}

func TestDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	goTag := env.addTag(t, "Go Lang")
	project := env.addProject(t, "Public", true, goTag)

	_, err := env.svc.Engagement.AddComment(ctx, env.visitorActor(), project.ID, "First comment here")
	require.NoError(t, err)
	_, err = env.svc.Engagement.AddComment(ctx, env.visitorActor(), project.ID, "Second comment here")
	require.NoError(t, err)
	_, err = env.svc.Engagement.ToggleLike(ctx, env.visitorActor(), project.ID)
	require.NoError(t, err)

	detail, err := env.svc.Projects.Detail(ctx, env.visitorActor(), project.ID)
	require.NoError(t, err)
	assert.True(t, detail.Liked)
	assert.EqualValues(t, 1, detail.Project.LikeCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "visitor", detail.Comments[0].Author.Username)
	assert.Equal(t, "https://example.com/project/"+project.ID.String(), detail.Share.URL)
	assert.Contains(t, detail.Share.LinkedIn, "share-offsite")
	assert.Contains(t, detail.Share.X, "hashtags=golang")

	anon, err := env.svc.Projects.Detail(ctx, Anonymous, project.ID)
	require.NoError(t, err)
	assert.False(t, anon.Liked)
}

func TestCreateProjectWithImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Projects.Create(ctx, env.ownerActor(), ProjectInput{
		Title:       "Pictured",
		Description: "Has a picture attached",
		IsPublished: true,
		Image:       pngUpload(t, "shot.PNG", 1600, 1200),
	})
	require.NoError(t, err)
	assert.Empty(t, res.ImageWarning)
	require.True(t, res.Project.HasImage())
	assert.Equal(t, []string{*res.Project.ImageFilename}, env.files(t, media.ProjectsFolder))
	assert.Equal(t, env.owner.ID, res.Project.Author.ID)
}

func TestCreateProjectWithRejectedImageStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Projects.Create(ctx, env.ownerActor(), ProjectInput{
		Title:       "Bitmap",
		Description: "Upload in an unsupported format",
		Image:       &ImageUpload{Filename: "shot.bmp", Content: bytes.NewReader([]byte("BM"))},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ImageWarning)
	assert.False(t, res.Project.HasImage())
	assert.Empty(t, env.files(t, media.ProjectsFolder))
}

func TestUpdateProjectReplacesImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	goTag := env.addTag(t, "go")
	web := env.addTag(t, "web")

	created, err := env.svc.Projects.Create(ctx, env.ownerActor(), ProjectInput{
		Title:       "Before",
		Description: "Original description",
		TagIDs:      []uuid.UUID{goTag.ID},
		Image:       pngUpload(t, "a.png", 10, 10),
	})
	require.NoError(t, err)
	oldImage := *created.Project.ImageFilename

	updated, err := env.svc.Projects.Update(ctx, env.ownerActor(), created.Project.ID, ProjectInput{
		Title:       "After",
		Description: "Updated description",
		IsPublished: true,
		TagIDs:      []uuid.UUID{web.ID},
		Image:       pngUpload(t, "b.png", 10, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Project.Title)
	assert.True(t, updated.Project.IsPublished)
	assert.Equal(t, []string{"web"}, tagNames(updated.Project.Tags))
	require.True(t, updated.Project.HasImage())
	assert.NotEqual(t, oldImage, *updated.Project.ImageFilename)
	assert.Equal(t, []string{*updated.Project.ImageFilename}, env.files(t, media.ProjectsFolder))

	// a failed upload keeps the current image
	kept, err := env.svc.Projects.Update(ctx, env.ownerActor(), created.Project.ID, ProjectInput{
		Title:       "After",
		Description: "Updated description",
		Image:       &ImageUpload{Filename: "broken.png", Content: bytes.NewReader([]byte("not a png"))},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, kept.ImageWarning)
	assert.Equal(t, *updated.Project.ImageFilename, *kept.Project.ImageFilename)
}

func TestUpdateFailureRemovesStagedImage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Projects.Update(context.Background(), env.ownerActor(), uuid.New(), ProjectInput{
		Title:       "Ghost",
		Description: "No such project exists",
		Image:       pngUpload(t, "ghost.png", 10, 10),
	})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Empty(t, env.files(t, media.ProjectsFolder))
}

func TestDeleteProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	goTag := env.addTag(t, "go")

	created, err := env.svc.Projects.Create(ctx, env.ownerActor(), ProjectInput{
		Title:       "Doomed",
		Description: "Will be deleted soon",
		IsPublished: true,
		TagIDs:      []uuid.UUID{goTag.ID},
		Image:       pngUpload(t, "a.png", 10, 10),
	})
	require.NoError(t, err)
	id := created.Project.ID

	_, err = env.svc.Engagement.ToggleLike(ctx, env.visitorActor(), id)
	require.NoError(t, err)
	_, err = env.svc.Engagement.AddComment(ctx, env.visitorActor(), id, "Nice work on this")
	require.NoError(t, err)

	require.NoError(t, env.svc.Projects.Delete(ctx, env.ownerActor(), id))

	exists, err := env.db.ProjectRepo().Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
	tagIDs, err := env.db.ProjectTagRepo().FindTagIDs(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, tagIDs)
	likes, err := env.db.LikeRepo().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, likes)
	comments, err := env.db.CommentRepo().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, comments)
	assert.Empty(t, env.files(t, media.ProjectsFolder))

	// the tag itself survives
	_, err = env.db.TagRepo().FindByID(ctx, goTag.ID)
	require.NoError(t, err)

	assert.True(t, errs.IsNotFound(env.svc.Projects.Delete(ctx, env.ownerActor(), id)))
}
