package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/pkg/database"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

// ReactionRepository implements the reaction ledger and blog post counter
// persistence using PostgreSQL. The per-user reaction rows are authoritative;
// the post counters and last_reaction are derived and written only here.
type ReactionRepository struct {
	pool   database.DBTX
	runner *database.TxRunner
}

// NewReactionRepository creates a new PostgreSQL-backed reaction repository.
func NewReactionRepository(pool database.DBTX, runner *database.TxRunner) *ReactionRepository {
	return &ReactionRepository{pool: pool, runner: runner}
}

const postForUpdateQuery = `
	SELECT id, title, slug, body, author_id, category_id, status,
	       view_count, like_count, dislike_count, last_reaction,
	       created_at, updated_at
	FROM blog_posts
	WHERE id = $1
	FOR UPDATE`

// Submit applies one reaction submission atomically. The post row is locked
// first, the user's current reaction is read within the same transaction, and
// the transition table decides whether this is a first reaction (insert), a
// flip (update the existing row in place), or a no-op (no writes at all).
func (r *ReactionRepository) Submit(ctx context.Context, postID, userID string, direction domain.Direction) (*domain.BlogPost, *domain.Reaction, domain.ReactionOutcome, error) {
	var (
		updated  *domain.BlogPost
		reaction *domain.Reaction
		outcome  domain.ReactionOutcome
	)

	err := r.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		post, err := scanPostRow(tx.QueryRow(ctx, postForUpdateQuery, postID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NotFound("blog post", postID)
			}
			return fmt.Errorf("lock blog post: %w", err)
		}

		existing, err := getReactionForUpdate(ctx, tx, postID, userID)
		if err != nil {
			return err
		}

		var prev *domain.Direction
		if existing != nil {
			prev = &existing.Direction
		}

		change := domain.NextReaction(prev, direction)
		outcome = change.Outcome

		switch change.Outcome {
		case domain.ReactionNoop:
			updated = post
			reaction = existing
			return nil

		case domain.ReactionFirst:
			now := time.Now().UTC()
			reaction = &domain.Reaction{
				ID:        uuid.NewString(),
				PostID:    postID,
				UserID:    userID,
				Direction: change.Direction,
				CreatedAt: now,
				UpdatedAt: now,
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO blog_post_reactions (id, post_id, user_id, direction, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				reaction.ID, reaction.PostID, reaction.UserID, string(reaction.Direction),
				reaction.CreatedAt, reaction.UpdatedAt,
			)
			if err != nil {
				if isUniqueViolation(err) {
					return apperrors.IntegrityViolation("reaction appeared between guard check and write")
				}
				return fmt.Errorf("insert reaction: %w", err)
			}

		case domain.ReactionFlip:
			reaction = existing
			reaction.Direction = change.Direction
			reaction.UpdatedAt = time.Now().UTC()
			_, err = tx.Exec(ctx,
				`UPDATE blog_post_reactions SET direction = $1, updated_at = $2 WHERE id = $3`,
				string(reaction.Direction), reaction.UpdatedAt, reaction.ID,
			)
			if err != nil {
				return fmt.Errorf("update reaction: %w", err)
			}
		}

		post.LikeCount += change.LikeDelta
		post.DislikeCount += change.DislikeDelta
		post.ViewCount += change.ViewDelta
		last := change.Direction
		post.LastReaction = &last
		post.UpdatedAt = time.Now().UTC()

		_, err = tx.Exec(ctx,
			`UPDATE blog_posts
			 SET view_count = $1, like_count = $2, dislike_count = $3,
			     last_reaction = $4, updated_at = $5
			 WHERE id = $6`,
			post.ViewCount, post.LikeCount, post.DislikeCount,
			string(*post.LastReaction), post.UpdatedAt, post.ID,
		)
		if err != nil {
			return fmt.Errorf("update blog post counters: %w", err)
		}

		updated = post
		return nil
	})
	if err != nil {
		return nil, nil, 0, err
	}

	return updated, reaction, outcome, nil
}

// getReactionForUpdate reads the user's current reaction row inside the
// transaction, locking it so a flip cannot race with another submission.
func getReactionForUpdate(ctx context.Context, tx pgx.Tx, postID, userID string) (*domain.Reaction, error) {
	var (
		rx        domain.Reaction
		direction string
	)

	err := tx.QueryRow(ctx,
		`SELECT id, post_id, user_id, direction, created_at, updated_at
		 FROM blog_post_reactions
		 WHERE post_id = $1 AND user_id = $2
		 FOR UPDATE`,
		postID, userID,
	).Scan(&rx.ID, &rx.PostID, &rx.UserID, &direction, &rx.CreatedAt, &rx.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get existing reaction: %w", err)
	}

	rx.Direction = domain.Direction(direction)
	return &rx, nil
}

// scanPostRow scans a full blog post row including the counter columns.
func scanPostRow(row pgx.Row) (*domain.BlogPost, error) {
	var (
		post domain.BlogPost
		last *string
	)

	err := row.Scan(
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
		return nil, err
	}

	if last != nil {
		d := domain.Direction(*last)
		post.LastReaction = &d
	}

	return &post, nil
}

// EraseUser removes every reaction the user has submitted and recomputes the
// counters and last_reaction of the affected posts from the remaining rows.
// View counts are historical and stay untouched. It returns the number of
// reactions removed.
func (r *ReactionRepository) EraseUser(ctx context.Context, userID string) (int, error) {
	var removed int

	err := r.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		removed = 0

		postIDs, err := affectedPostIDs(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(postIDs) == 0 {
			return nil
		}

		lockRows, err := tx.Query(ctx,
			`SELECT id FROM blog_posts WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
			postIDs,
		)
		if err != nil {
			return fmt.Errorf("lock blog posts: %w", err)
		}
		lockRows.Close()
		if err := lockRows.Err(); err != nil {
			return fmt.Errorf("lock blog posts: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM blog_post_reactions WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("delete reactions: %w", err)
		}
		removed = int(tag.RowsAffected())

		now := time.Now().UTC()
		for _, postID := range postIDs {
			_, err = tx.Exec(ctx,
				`UPDATE blog_posts
				 SET like_count = (SELECT count(*) FROM blog_post_reactions WHERE post_id = $1 AND direction = 'like'),
				     dislike_count = (SELECT count(*) FROM blog_post_reactions WHERE post_id = $1 AND direction = 'dislike'),
				     last_reaction = (SELECT direction FROM blog_post_reactions WHERE post_id = $1 ORDER BY updated_at DESC LIMIT 1),
				     updated_at = $2
				 WHERE id = $1`,
				postID, now,
			)
			if err != nil {
				return fmt.Errorf("update blog post counters: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

func affectedPostIDs(ctx context.Context, tx pgx.Tx, userID string) ([]string, error) {
	rows, err := tx.Query(ctx,
		`SELECT DISTINCT post_id FROM blog_post_reactions WHERE user_id = $1 ORDER BY post_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("find reacted posts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post ids: %w", err)
	}

	return ids, nil
}
