// Package knowledge holds the client-side search, category and form rules of the knowledge base.
package knowledge

import (
	"strings"

	"github.com/supporthub/support-dashboard/internal/domain"
)

// AllCategories selects every article regardless of category.
const AllCategories = "all"

// Filter returns the articles whose title, content or tags contain searchTerm
// (case-insensitive), restricted to category unless it is AllCategories or empty.
// The input order is preserved and the input slice is not modified.
func Filter(articles []domain.Article, searchTerm, category string) []domain.Article {
	query := strings.ToLower(searchTerm)
	out := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if query != "" && !matches(article, query) {
			continue
		}
		if category != "" && category != AllCategories && article.Category != category {
			continue
		}
		out = append(out, article)
	}
	return out
}

func matches(article domain.Article, query string) bool {
	if strings.Contains(strings.ToLower(article.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(article.Content), query) {
		return true
	}
	for _, tag := range article.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Categories returns the distinct article categories in first-seen order.
func Categories(articles []domain.Article) []string {
	seen := make(map[string]struct{}, len(articles))
	var out []string
	for _, article := range articles {
		if _, ok := seen[article.Category]; ok {
			continue
		}
		seen[article.Category] = struct{}{}
		out = append(out, article.Category)
	}
	return out
}
