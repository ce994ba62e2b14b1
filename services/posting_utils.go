package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/rpupo63/portfolio-site-backend/models"
)

// ShareLinks are prefilled share dialogs for a project page.
type ShareLinks struct {
	URL      string `json:"url"`
	LinkedIn string `json:"linkedin"`
	X        string `json:"x"`
}

// FormatHashtag keeps letters, digits and underscores of tag, lower-cased.
// Hashtags cannot start with a digit, so those yield "".
func FormatHashtag(tag string) string {
	var result strings.Builder
	for _, r := range strings.TrimSpace(tag) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		}
	}

	formatted := strings.ToLower(result.String())
	if formatted != "" && formatted[0] >= '0' && formatted[0] <= '9' {
		return ""
	}
	return formatted
}

// BuildProjectURL constructs the public URL of a project page
func BuildProjectURL(baseURL string, projectID uuid.UUID) string {
	if baseURL == "" || projectID == uuid.Nil {
		return ""
	}
	return fmt.Sprintf("%s/project/%s", strings.TrimSuffix(baseURL, "/"), projectID)
}

// BuildShareLinks returns LinkedIn and X share dialogs for p.
func BuildShareLinks(baseURL string, p *models.Project) ShareLinks {
	projectURL := BuildProjectURL(baseURL, p.ID)
	if projectURL == "" {
		return ShareLinks{}
	}

	hashtags := lo.Uniq(lo.Compact(lo.Map(p.Tags, func(t models.Tag, _ int) string {
		return FormatHashtag(t.Name)
	})))

	x := url.Values{}
	x.Set("url", projectURL)
	x.Set("text", p.Title)
	if len(hashtags) > 0 {
		x.Set("hashtags", strings.Join(hashtags, ","))
	}

	return ShareLinks{
		URL:      projectURL,
		LinkedIn: "https://www.linkedin.com/sharing/share-offsite/?url=" + url.QueryEscape(projectURL),
		X:        "https://twitter.com/intent/tweet?" + x.Encode(),
	}
}
