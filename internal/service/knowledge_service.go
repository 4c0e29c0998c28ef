package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/knowledge"
	"github.com/supporthub/support-dashboard/internal/repository"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

// KnowledgeService serves the knowledge base.
type KnowledgeService struct {
	articles  repository.ArticleRepository
	publisher events.Publisher
	logger    *zap.Logger
}

// ArticleDetail is an article with its markdown rendered.
type ArticleDetail struct {
	Article     domain.Article
	ContentHTML string
}

// NewKnowledgeService constructs the service.
func NewKnowledgeService(articles repository.ArticleRepository, publisher events.Publisher, logger *zap.Logger) *KnowledgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeService{articles: articles, publisher: publisher, logger: logger}
}

// ListArticles returns articles newest first, narrowed by search term and category.
func (s *KnowledgeService) ListArticles(ctx context.Context, search, category string) ([]domain.Article, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, err
	}
	return knowledge.Filter(articles, search, category), nil
}

// GetArticle loads one article and renders its content.
func (s *KnowledgeService) GetArticle(ctx context.Context, id string) (*ArticleDetail, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "article", id)
	}
	html, err := knowledge.RenderHTML(article.Content)
	if err != nil {
		return nil, err
	}
	return &ArticleDetail{Article: *article, ContentHTML: html}, nil
}

// CreateArticle stores a draft. Incomplete drafts are rejected before touching storage.
func (s *KnowledgeService) CreateArticle(ctx context.Context, draft knowledge.Draft) (*domain.Article, error) {
	if !draft.Ready() {
		return nil, apperrors.NewValidationError("title, content and category are required", map[string]any{
			"missing": draft.Missing(),
		})
	}
	article := draft.Article()
	if err := s.articles.Create(ctx, &article); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event, err := events.NewChangeEvent(events.TableArticles, events.ChangeInsert, article.ID, article, nil)
		if err != nil {
			s.logger.Error("encode change event", zap.Error(err))
		} else {
			_ = s.publisher.Publish(ctx, event)
		}
	}
	return &article, nil
}
