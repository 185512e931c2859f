package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/pkg/database"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

// RatingRepository implements the rating ledger and product aggregate
// persistence using PostgreSQL. All aggregate writes go through Submit; no
// other code path touches the products rating columns.
type RatingRepository struct {
	pool   database.DBTX
	runner *database.TxRunner
}

// NewRatingRepository creates a new PostgreSQL-backed rating repository.
func NewRatingRepository(pool database.DBTX, runner *database.TxRunner) *RatingRepository {
	return &RatingRepository{pool: pool, runner: runner}
}

const productForUpdateQuery = `
	SELECT id, name, slug, description, category_id, status, base_price, currency,
	       rating_counts, total_reviews, rate_average, latest_rating_ids,
	       created_at, updated_at
	FROM products
	WHERE id = $1
	FOR UPDATE`

// Submit records the rating and updates the product aggregate atomically.
// The parent row is locked first so concurrent submissions for the same
// product serialize; the guard check then runs against that snapshot, and the
// unique index on (product_id, user_id) backstops the race where a ledger row
// appears between check and write.
func (r *RatingRepository) Submit(ctx context.Context, rating *domain.Rating) (*domain.Product, error) {
	var updated *domain.Product

	err := r.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		p, err := scanProductRow(tx.QueryRow(ctx, productForUpdateQuery, rating.ProductID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NotFound("product", rating.ProductID)
			}
			return fmt.Errorf("lock product: %w", err)
		}

		var alreadyRated bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM product_ratings WHERE product_id = $1 AND user_id = $2)`,
			rating.ProductID, rating.UserID,
		).Scan(&alreadyRated)
		if err != nil {
			return fmt.Errorf("check existing rating: %w", err)
		}
		if alreadyRated {
			return apperrors.Conflict("user has already rated this product")
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO product_ratings (id, product_id, user_id, value, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			rating.ID, rating.ProductID, rating.UserID, rating.Value, rating.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.IntegrityViolation("rating appeared between guard check and write")
			}
			return fmt.Errorf("insert rating: %w", err)
		}

		p.SetAggregate(p.Aggregate().Apply(rating.Value))
		p.LatestRatingIDs = domain.PushLatestRatingID(p.LatestRatingIDs, rating.ID)
		p.UpdatedAt = time.Now().UTC()

		_, err = tx.Exec(ctx,
			`UPDATE products
			 SET rating_counts = $1, total_reviews = $2, rate_average = $3,
			     latest_rating_ids = $4, updated_at = $5
			 WHERE id = $6`,
			p.RatingCounts[:], p.TotalReviews, p.RateAverage,
			p.LatestRatingIDs, p.UpdatedAt, p.ID,
		)
		if err != nil {
			return fmt.Errorf("update product aggregate: %w", err)
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ListByProduct returns paginated ratings for a product, newest first, along
// with the total count.
func (r *RatingRepository) ListByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Rating, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT id, product_id, user_id, value, created_at,
		       count(*) OVER() AS total_count
		FROM product_ratings
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var (
		ratings    []domain.Rating
		totalCount int
	)

	for rows.Next() {
		var rt domain.Rating

		if err := rows.Scan(
			&rt.ID,
			&rt.ProductID,
			&rt.UserID,
			&rt.Value,
			&rt.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan rating row: %w", err)
		}

		ratings = append(ratings, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rating rows: %w", err)
	}

	if ratings == nil {
		ratings = []domain.Rating{}
	}

	return ratings, totalCount, nil
}

// GetSummary returns the product's current rating aggregate.
func (r *RatingRepository) GetSummary(ctx context.Context, productID string) (domain.RatingAggregate, error) {
	var (
		agg    domain.RatingAggregate
		counts []int64
	)

	err := r.pool.QueryRow(ctx,
		`SELECT rating_counts, total_reviews, rate_average FROM products WHERE id = $1`,
		productID,
	).Scan(&counts, &agg.TotalReviews, &agg.Average)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RatingAggregate{}, apperrors.NotFound("product", productID)
		}
		return domain.RatingAggregate{}, fmt.Errorf("get rating summary: %w", err)
	}

	copy(agg.Counts[:], counts)
	return agg, nil
}

// scanProductRow scans a full product row including the aggregate columns.
func scanProductRow(row pgx.Row) (*domain.Product, error) {
	var (
		p      domain.Product
		counts []int64
		latest []string
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.CategoryID,
		&p.Status,
		&p.BasePrice,
		&p.Currency,
		&counts,
		&p.TotalReviews,
		&p.RateAverage,
		&latest,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	copy(p.RatingCounts[:], counts)
	p.LatestRatingIDs = latest

	return &p, nil
}

// EraseUser removes every rating the user has submitted and rebuilds the
// aggregates of the affected products from the remaining ledger rows. It
// returns the number of ratings removed. Parent rows are locked in a stable
// order before the ledger is touched, matching the lock order of Submit.
func (r *RatingRepository) EraseUser(ctx context.Context, userID string) (int, error) {
	var removed int

	err := r.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		removed = 0

		productIDs, err := affectedProductIDs(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(productIDs) == 0 {
			return nil
		}

		lockRows, err := tx.Query(ctx,
			`SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
			productIDs,
		)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		lockRows.Close()
		if err := lockRows.Err(); err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM product_ratings WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		removed = int(tag.RowsAffected())

		now := time.Now().UTC()
		for _, productID := range productIDs {
			agg, latest, err := rebuildAggregate(ctx, tx, productID)
			if err != nil {
				return err
			}

			_, err = tx.Exec(ctx,
				`UPDATE products
				 SET rating_counts = $1, total_reviews = $2, rate_average = $3,
				     latest_rating_ids = $4, updated_at = $5
				 WHERE id = $6`,
				agg.Counts[:], agg.TotalReviews, agg.Average, latest, now, productID,
			)
			if err != nil {
				return fmt.Errorf("update product aggregate: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

func affectedProductIDs(ctx context.Context, tx pgx.Tx, userID string) ([]string, error) {
	rows, err := tx.Query(ctx,
		`SELECT DISTINCT product_id FROM product_ratings WHERE user_id = $1 ORDER BY product_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("find rated products: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product ids: %w", err)
	}

	return ids, nil
}

// rebuildAggregate recomputes the rating histogram and the recent-rating
// window for a product from the ledger.
func rebuildAggregate(ctx context.Context, tx pgx.Tx, productID string) (domain.RatingAggregate, []string, error) {
	var counts [5]int64

	rows, err := tx.Query(ctx,
		`SELECT value, count(*) FROM product_ratings WHERE product_id = $1 GROUP BY value`,
		productID,
	)
	if err != nil {
		return domain.RatingAggregate{}, nil, fmt.Errorf("rebuild rating counts: %w", err)
	}
	for rows.Next() {
		var (
			value int
			count int64
		)
		if err := rows.Scan(&value, &count); err != nil {
			rows.Close()
			return domain.RatingAggregate{}, nil, fmt.Errorf("scan rating count: %w", err)
		}
		if domain.IsValidRatingValue(value) {
			counts[value-1] = count
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.RatingAggregate{}, nil, fmt.Errorf("iterate rating counts: %w", err)
	}

	latest := []string{}
	latestRows, err := tx.Query(ctx,
		`SELECT id FROM product_ratings WHERE product_id = $1 ORDER BY created_at DESC LIMIT $2`,
		productID, domain.LatestRatingWindow,
	)
	if err != nil {
		return domain.RatingAggregate{}, nil, fmt.Errorf("rebuild latest rating ids: %w", err)
	}
	defer latestRows.Close()
	for latestRows.Next() {
		var id string
		if err := latestRows.Scan(&id); err != nil {
			return domain.RatingAggregate{}, nil, fmt.Errorf("scan latest rating id: %w", err)
		}
		latest = append(latest, id)
	}
	if err := latestRows.Err(); err != nil {
		return domain.RatingAggregate{}, nil, fmt.Errorf("iterate latest rating ids: %w", err)
	}

	return domain.AggregateFromCounts(counts), latest, nil
}
