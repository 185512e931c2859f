package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/repository"
	"github.com/utafrali/StorefrontGo/pkg/database"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

const postColumns = `id, title, slug, body, author_id, category_id, status,
	view_count, like_count, dislike_count, last_reaction, created_at, updated_at`

// BlogPostRepository implements repository.BlogPostRepository using PostgreSQL.
type BlogPostRepository struct {
	pool database.DBTX
}

// NewBlogPostRepository creates a new PostgreSQL-backed blog post repository.
func NewBlogPostRepository(pool database.DBTX) *BlogPostRepository {
	return &BlogPostRepository{pool: pool}
}

// Create inserts a new blog post into the database. Counters start at zero
// and are only ever written by the reaction submission path.
func (r *BlogPostRepository) Create(ctx context.Context, post *domain.BlogPost) error {
	query := `
		INSERT INTO blog_posts (id, title, slug, body, author_id, category_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Slug,
		post.Body,
		post.AuthorID,
		post.CategoryID,
		post.Status,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("blog post", "slug", post.Slug)
		}
		return fmt.Errorf("insert blog post: %w", err)
	}

	return nil
}

// GetByID retrieves a blog post by its ID.
func (r *BlogPostRepository) GetByID(ctx context.Context, id string) (*domain.BlogPost, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog_posts WHERE id = $1`, postColumns)
	return r.scanPost(ctx, query, id)
}

// GetBySlug retrieves a blog post by its slug.
func (r *BlogPostRepository) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog_posts WHERE slug = $1`, postColumns)
	return r.scanPost(ctx, query, slug)
}

// IncrementViews bumps the post's view counter. updated_at is left alone
// since a view is not an edit.
func (r *BlogPostRepository) IncrementViews(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE blog_posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("blog post", id)
	}
	return nil
}

// List returns blog posts matching the given filter with the total count.
func (r *BlogPostRepository) List(ctx context.Context, filter repository.PostFilter) ([]domain.BlogPost, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", argIndex))
		args = append(args, *filter.AuthorID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR body ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM blog_posts
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		postColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list blog posts: %w", err)
	}
	defer rows.Close()

	var (
		posts      []domain.BlogPost
		totalCount int
	)

	for rows.Next() {
		var (
			post domain.BlogPost
			last *string
		)

		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Slug,
			&post.Body,
			&post.AuthorID,
			&post.CategoryID,
			&post.Status,
			&post.ViewCount,
			&post.LikeCount,
			&post.DislikeCount,
			&last,
			&post.CreatedAt,
			&post.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan blog post row: %w", err)
		}

		if last != nil {
			d := domain.Direction(*last)
			post.LastReaction = &d
		}

		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate blog post rows: %w", err)
	}

	if posts == nil {
		posts = []domain.BlogPost{}
	}

	return posts, totalCount, nil
}

// Update modifies an existing blog post in the database. The counter columns
// are deliberately excluded.
func (r *BlogPostRepository) Update(ctx context.Context, post *domain.BlogPost) error {
	post.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE blog_posts
		SET title = $1, slug = $2, body = $3, category_id = $4, status = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.pool.Exec(ctx, query,
		post.Title,
		post.Slug,
		post.Body,
		post.CategoryID,
		post.Status,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("blog post", "slug", post.Slug)
		}
		return fmt.Errorf("update blog post: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("blog post", post.ID)
	}

	return nil
}

// Delete removes a blog post from the database by its ID. Reaction rows go
// with it via ON DELETE CASCADE.
func (r *BlogPostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM blog_posts WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete blog post: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("blog post", id)
	}

	return nil
}

// scanPost is a helper that executes a query expected to return a single blog post row.
func (r *BlogPostRepository) scanPost(ctx context.Context, query string, args ...any) (*domain.BlogPost, error) {
	var (
		post domain.BlogPost
		last *string
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Body,
		&post.AuthorID,
		&post.CategoryID,
		&post.Status,
		&post.ViewCount,
		&post.LikeCount,
		&post.DislikeCount,
		&last,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan blog post: %w", err)
	}

	if last != nil {
		d := domain.Direction(*last)
		post.LastReaction = &d
	}

	return &post, nil
}
