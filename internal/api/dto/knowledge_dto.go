package dto

import "github.com/supporthub/support-dashboard/internal/domain"

// CreateArticleRequest payload. Tags may be sent as a list or as one comma separated string.
type CreateArticleRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	TagsText string   `json:"tags_text,omitempty"`
}

// ArticleDetailResponse includes the rendered markdown.
type ArticleDetailResponse struct {
	domain.Article
	ContentHTML string `json:"content_html"`
}
