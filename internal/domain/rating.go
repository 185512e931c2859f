package domain

import (
	"time"
)

// Rating value bounds.
const (
	MinRatingValue = 1
	MaxRatingValue = 5
)

// LatestRatingWindow is the number of recent rating ids kept on the product
// aggregate, newest first.
const LatestRatingWindow = 10

// Rating is one user's rating of one product. At most one row exists per
// (product_id, user_id) pair; rows are immutable once created.
type Rating struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValidRatingValue checks whether v is an allowed rating value.
func IsValidRatingValue(v int) bool {
	return v >= MinRatingValue && v <= MaxRatingValue
}

// RatingAggregate is the denormalized rating summary stored on a product.
// Counts[i] holds the number of ratings with value i+1.
type RatingAggregate struct {
	Counts       [5]int64 `json:"counts"`
	TotalReviews int64    `json:"total_reviews"`
	Average      float64  `json:"average"`
}

// Apply returns the aggregate after recording one new rating of the given
// value. It is pure: the receiver is not modified. Callers must validate the
// value first; out-of-range values are returned unchanged.
func (a RatingAggregate) Apply(value int) RatingAggregate {
	if !IsValidRatingValue(value) {
		return a
	}

	next := a
	next.Counts[value-1]++

	var total, weighted int64
	for i, c := range next.Counts {
		total += c
		weighted += c * int64(i+1)
	}

	next.TotalReviews = total
	if total == 0 {
		next.Average = 0
	} else {
		next.Average = float64(weighted) / float64(total)
	}
	return next
}

// AggregateFromCounts rebuilds the aggregate from a full histogram, for
// paths that recompute from the ledger rather than increment.
func AggregateFromCounts(counts [5]int64) RatingAggregate {
	agg := RatingAggregate{Counts: counts}

	var weighted int64
	for i, c := range counts {
		agg.TotalReviews += c
		weighted += c * int64(i+1)
	}
	if agg.TotalReviews > 0 {
		agg.Average = float64(weighted) / float64(agg.TotalReviews)
	}
	return agg
}

// PushLatestRatingID prepends id to ids and trims the result to
// LatestRatingWindow entries.
func PushLatestRatingID(ids []string, id string) []string {
	out := make([]string, 0, LatestRatingWindow)
	out = append(out, id)
	for _, existing := range ids {
		if len(out) == LatestRatingWindow {
			break
		}
		out = append(out, existing)
	}
	return out
}
