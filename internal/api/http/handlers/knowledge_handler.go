package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supporthub/support-dashboard/internal/api/dto"
	"github.com/supporthub/support-dashboard/internal/knowledge"
	"github.com/supporthub/support-dashboard/internal/service"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

// KnowledgeHandler serves knowledge base endpoints.
type KnowledgeHandler struct {
	service *service.KnowledgeService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{service: knowledgeService}
}

// ListArticles GET /knowledge?search=&category=.
func (h *KnowledgeHandler) ListArticles(c *fiber.Ctx) error {
	articles, err := h.service.ListArticles(c.UserContext(), c.Query("search"), c.Query("category", knowledge.AllCategories))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articles})
}

// GetArticle GET /knowledge/:id.
func (h *KnowledgeHandler) GetArticle(c *fiber.Ctx) error {
	detail, err := h.service.GetArticle(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ArticleDetailResponse{Article: detail.Article, ContentHTML: detail.ContentHTML}})
}

// CreateArticle POST /knowledge.
func (h *KnowledgeHandler) CreateArticle(c *fiber.Ctx) error {
	var req dto.CreateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.CreateArticle(c.UserContext(), knowledge.Draft{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.TagsText,
		TagList:  req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": article})
}
