package domain

import (
	"time"
)

// Product status constants.
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusArchived  = "archived"
)

// Product list sort options.
const (
	SortByNewest    = "newest"
	SortByPriceAsc  = "price_asc"
	SortByPriceDesc = "price_desc"
	SortByNameAsc   = "name_asc"
	SortByNameDesc  = "name_desc"
	SortByTopRated  = "top_rated"
)

// Product represents a product in the catalog. The rating fields are a
// denormalized aggregate derived from the product_ratings ledger; only the
// rating submission path may write them.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	CategoryID  *string        `json:"category_id,omitempty"`
	Status      string         `json:"status"`
	BasePrice   int64          `json:"base_price"`
	Currency    string         `json:"currency"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	RatingCounts    [5]int64 `json:"rating_counts"`
	TotalReviews    int64    `json:"total_reviews"`
	RateAverage     float64  `json:"rate_average"`
	LatestRatingIDs []string `json:"latest_rating_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Aggregate returns the product's rating aggregate view.
func (p *Product) Aggregate() RatingAggregate {
	return RatingAggregate{
		Counts:       p.RatingCounts,
		TotalReviews: p.TotalReviews,
		Average:      p.RateAverage,
	}
}

// SetAggregate writes the aggregate view back onto the product.
func (p *Product) SetAggregate(agg RatingAggregate) {
	p.RatingCounts = agg.Counts
	p.TotalReviews = agg.TotalReviews
	p.RateAverage = agg.Average
}

// ValidStatuses returns the set of valid product statuses.
func ValidStatuses() []string {
	return []string{ProductStatusDraft, ProductStatusPublished, ProductStatusArchived}
}

// IsValidStatus checks whether the given status string is a valid product status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ValidSortByValues returns the set of valid product sort options.
func ValidSortByValues() []string {
	return []string{SortByNewest, SortByPriceAsc, SortByPriceDesc, SortByNameAsc, SortByNameDesc, SortByTopRated}
}

// IsValidSortBy checks whether the given sort option is valid. The empty
// string is valid and means the default ordering.
func IsValidSortBy(sortBy string) bool {
	if sortBy == "" {
		return true
	}
	for _, v := range ValidSortByValues() {
		if v == sortBy {
			return true
		}
	}
	return false
}
