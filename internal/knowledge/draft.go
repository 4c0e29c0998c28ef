package knowledge

import (
	"strings"

	"github.com/supporthub/support-dashboard/internal/domain"
)

// Draft is the create-article form state. Tags is the raw comma separated input;
// TagList, when set, holds tags that arrived already split and takes precedence.
type Draft struct {
	Title    string
	Content  string
	Category string
	Tags     string
	TagList  []string
}

// Ready reports whether the form may be submitted: title, content and category must all
// be non-blank.
func (d Draft) Ready() bool {
	return strings.TrimSpace(d.Title) != "" &&
		strings.TrimSpace(d.Content) != "" &&
		strings.TrimSpace(d.Category) != ""
}

// Missing lists the blank required fields, in form order.
func (d Draft) Missing() []string {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(d.Content) == "" {
		missing = append(missing, "content")
	}
	return missing
}

// Article converts the draft into an article ready for insertion.
func (d Draft) Article() domain.Article {
	return domain.Article{
		Title:    d.Title,
		Content:  d.Content,
		Category: d.Category,
		Tags:     d.tagSet(),
	}
}

func (d Draft) tagSet() []string {
	if len(d.TagList) > 0 {
		return CleanTags(d.TagList)
	}
	return ParseTags(d.Tags)
}

// ParseTags splits comma separated input, trimming whitespace and dropping empties.
// The result is never nil.
func ParseTags(raw string) []string {
	return CleanTags(strings.Split(raw, ","))
}

// CleanTags trims each tag and drops empties without splitting. The result is never nil.
func CleanTags(list []string) []string {
	tags := []string{}
	for _, tag := range list {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
