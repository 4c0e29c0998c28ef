package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supporthub/support-dashboard/internal/domain"
)

// ArticleRepository persists knowledge base articles. Articles are create and read only.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	List(ctx context.Context) ([]domain.Article, error)
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository builds repository.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

func (r *articleRepository) Create(ctx context.Context, article *domain.Article) error {
	if article.Tags == nil {
		article.Tags = []string{}
	}
	const query = `
        INSERT INTO knowledge_base (title, content, category, tags)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		article.Title,
		article.Content,
		article.Category,
		article.Tags,
	).Scan(&article.ID, &article.CreatedAt)
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	const query = `SELECT id, title, content, category, tags, created_at FROM knowledge_base WHERE id=$1`
	var article domain.Article
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Category,
		&article.Tags,
		&article.CreatedAt,
	); err != nil {
		return nil, err
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context) ([]domain.Article, error) {
	const query = `SELECT id, title, content, category, tags, created_at FROM knowledge_base ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Article{}
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.Content,
			&article.Category,
			&article.Tags,
			&article.CreatedAt,
		); err != nil {
			return nil, err
		}
		if article.Tags == nil {
			article.Tags = []string{}
		}
		result = append(result, article)
	}
	return result, rows.Err()
}
