package services

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-site-backend/models"
)

func TestFormatHashtag(t *testing.T) {
	cases := map[string]string{
		"Go":               "go",
		"Machine Learning": "machinelearning",
		"C++":              "c",
		"3D":               "",
		"  snake_case ":    "snake_case",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatHashtag(in), in)
	}
}

func TestBuildShareLinks(t *testing.T) {
	id := uuid.New()
	p := &models.Project{
		ID:    id,
		Title: "My Project",
		Tags:  []models.Tag{{Name: "Go"}, {Name: "go"}, {Name: "3D"}, {Name: "Web Dev"}},
	}

	links := BuildShareLinks("https://example.com/", p)
	assert.Equal(t, "https://example.com/project/"+id.String(), links.URL)

	li, err := url.Parse(links.LinkedIn)
	require.NoError(t, err)
	assert.Equal(t, links.URL, li.Query().Get("url"))

	x, err := url.Parse(links.X)
	require.NoError(t, err)
	assert.Equal(t, "My Project", x.Query().Get("text"))
	assert.Equal(t, "go,webdev", x.Query().Get("hashtags"))

	assert.Equal(t, ShareLinks{}, BuildShareLinks("", p))
}
