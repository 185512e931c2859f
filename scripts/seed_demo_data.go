// Package main implements a standalone seed script that populates the
// storefront database with demo catalog, blog, and engagement data: categories,
// products with consistent rating aggregates, a rating ledger, blog posts, and
// a reaction ledger.
//
// The aggregate columns on products and blog_posts are computed from the
// ledger rows the script inserts, so the seeded database satisfies the same
// consistency the service maintains at runtime.
//
// Run: go run scripts/seed_demo_data.go
//   (from the repo root, or: cd scripts && go run seed_demo_data.go)
package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	totalProducts = 500
	totalPosts    = 80
	totalUsers    = 200
	batchSize     = 100
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// deterministicUUID produces a stable UUID-shaped string from a namespace and
// an integer index so that re-runs always produce the same ids.
func deterministicUUID(namespace string, index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", namespace, index)))
	hex := fmt.Sprintf("%x", h[:16])
	return fmt.Sprintf("%s-%s-4%s-%x%s-%s",
		hex[0:8],
		hex[8:12],
		hex[13:16],
		0x8|(h[8]&0x3),
		hex[17:20],
		hex[20:32],
	)
}

func slugify(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

type categoryDef struct {
	ID   string
	Name string
	Slug string
}

var categories = []categoryDef{
	{"a1000000-0000-0000-0000-000000000001", "Electronics", "electronics"},
	{"a1000000-0000-0000-0000-000000000002", "Home & Kitchen", "home-kitchen"},
	{"a1000000-0000-0000-0000-000000000003", "Outdoor & Garden", "outdoor-garden"},
	{"a1000000-0000-0000-0000-000000000004", "Office Supplies", "office-supplies"},
	{"a1000000-0000-0000-0000-000000000005", "Health & Beauty", "health-beauty"},
	{"a1000000-0000-0000-0000-000000000006", "Toys & Games", "toys-games"},
}

var productAdjectives = []string{
	"Compact", "Wireless", "Ergonomic", "Foldable", "Rechargeable",
	"Stainless", "Portable", "Adjustable", "Smart", "Classic",
	"Heavy-Duty", "Ultra-Slim", "Dual-Zone", "Modular", "Insulated",
}

var productNouns = []string{
	"Desk Lamp", "Water Bottle", "Keyboard", "Coffee Grinder", "Backpack",
	"Bluetooth Speaker", "Standing Desk", "Garden Trowel", "Notebook Stand",
	"Air Purifier", "Camping Stove", "Monitor Arm", "Yoga Mat", "Tool Kit",
	"Label Printer", "Travel Mug", "Door Mat", "Wall Clock", "Pencil Case",
	"Power Bank",
}

var postTopics = []string{
	"Choosing the Right %s for Your Desk",
	"Why We Redesigned Our %s Lineup",
	"Five Ways to Get More Out of a %s",
	"Behind the Scenes: Testing the %s",
	"A Buyer's Guide to the Modern %s",
	"What Our Customers Taught Us About the %s",
}

// ratingEntry is one ledger row plus the timestamp used to order the
// latest-ratings window.
type ratingEntry struct {
	ID        string
	UserID    string
	Value     int
	CreatedAt time.Time
}

func main() {
	ctx := context.Background()

	dbURL := getEnv("DATABASE_URL", fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("POSTGRES_USER", "storefront"),
		getEnv("POSTGRES_PASSWORD", "storefront"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "storefront"),
	))

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	now := time.Now().UTC()
	baseTime := now.Add(-90 * 24 * time.Hour)

	users := make([]string, totalUsers)
	for i := range users {
		users[i] = deterministicUUID("user", i)
	}

	// -------------------------------------------------------------------
	// Categories
	// -------------------------------------------------------------------
	log.Println("Inserting categories...")
	for i, c := range categories {
		_, err := pool.Exec(ctx, `
			INSERT INTO categories (id, name, slug, sort_order, is_active, description, level, created_at, updated_at)
			VALUES ($1, $2, $3, $4, TRUE, '', 0, $5, $5)
			ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.Slug, i, baseTime,
		)
		if err != nil {
			log.Fatalf("insert category %s: %v", c.Slug, err)
		}
	}
	log.Printf("  Inserted %d categories.", len(categories))

	// -------------------------------------------------------------------
	// Products + rating ledger, aggregates computed from the ledger
	// -------------------------------------------------------------------
	log.Println("Inserting products and ratings...")

	var (
		ratingArgs  []interface{}
		ratingSB    strings.Builder
		ratingRows  int
		ratingTotal int
	)
	flushRatings := func() {
		if ratingRows == 0 {
			return
		}
		ratingSB.WriteString(" ON CONFLICT DO NOTHING")
		if _, err := pool.Exec(ctx, ratingSB.String(), ratingArgs...); err != nil {
			log.Fatalf("insert ratings batch: %v", err)
		}
		ratingArgs = ratingArgs[:0]
		ratingSB.Reset()
		ratingRows = 0
	}

	for i := 0; i < totalProducts; i++ {
		productID := deterministicUUID("product", i)
		name := fmt.Sprintf("%s %s",
			productAdjectives[rng.Intn(len(productAdjectives))],
			productNouns[rng.Intn(len(productNouns))],
		)
		slug := fmt.Sprintf("%s-%d", slugify(name), i)
		category := categories[rng.Intn(len(categories))]
		createdAt := baseTime.Add(time.Duration(rng.Intn(60*24)) * time.Hour)
		priceCents := int64(499 + rng.Intn(40000))

		status := "published"
		if rng.Float64() < 0.08 {
			status = "draft"
		}

		// Generate the ledger first; the aggregate columns are derived
		// from it, never invented.
		numRatings := rng.Intn(25)
		if status == "draft" {
			numRatings = 0
		}
		raters := rng.Perm(totalUsers)[:numRatings]

		entries := make([]ratingEntry, 0, numRatings)
		var counts [5]int64
		var sum, total int64
		for j, userIdx := range raters {
			value := 1 + rng.Intn(5)
			// Skew toward favorable ratings like a real storefront.
			if rng.Float64() < 0.6 {
				value = 4 + rng.Intn(2)
			}
			entries = append(entries, ratingEntry{
				ID:        deterministicUUID("rating", i*totalUsers+j),
				UserID:    users[userIdx],
				Value:     value,
				CreatedAt: createdAt.Add(time.Duration(j+1) * time.Hour),
			})
			counts[value-1]++
			sum += int64(value)
			total++
		}

		average := 0.0
		if total > 0 {
			average = float64(sum) / float64(total)
		}

		// Newest first, capped at the same window size the service keeps.
		latest := []string{}
		for k := len(entries) - 1; k >= 0 && len(latest) < 10; k-- {
			latest = append(latest, entries[k].ID)
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, name, slug, description, category_id, status, base_price, currency,
			                      rating_counts, total_reviews, rate_average, latest_rating_ids,
			                      created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'USD', $8, $9, $10, $11, $12, $12)
			ON CONFLICT (id) DO NOTHING`,
			productID, name, slug,
			fmt.Sprintf("Demo listing for the %s.", name),
			category.ID, status, priceCents,
			counts[:], total, average, latest, createdAt,
		)
		if err != nil {
			log.Fatalf("insert product %s: %v", slug, err)
		}

		for _, e := range entries {
			if ratingRows == 0 {
				ratingSB.WriteString("INSERT INTO product_ratings (id, product_id, user_id, value, created_at) VALUES ")
			} else {
				ratingSB.WriteString(", ")
			}
			n := len(ratingArgs)
			fmt.Fprintf(&ratingSB, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
			ratingArgs = append(ratingArgs, e.ID, productID, e.UserID, e.Value, e.CreatedAt)
			ratingRows++
			ratingTotal++
			if ratingRows >= batchSize {
				flushRatings()
			}
		}

		if (i+1)%100 == 0 {
			log.Printf("  Products: %d / %d (%d ratings so far)", i+1, totalProducts, ratingTotal)
		}
	}
	flushRatings()
	log.Printf("  Inserted %d products and %d ratings.", totalProducts, ratingTotal)

	// -------------------------------------------------------------------
	// Blog posts + reaction ledger, counters computed from the ledger
	// -------------------------------------------------------------------
	log.Println("Inserting blog posts and reactions...")

	var (
		reactionArgs  []interface{}
		reactionSB    strings.Builder
		reactionRows  int
		reactionTotal int
	)
	flushReactions := func() {
		if reactionRows == 0 {
			return
		}
		reactionSB.WriteString(" ON CONFLICT DO NOTHING")
		if _, err := pool.Exec(ctx, reactionSB.String(), reactionArgs...); err != nil {
			log.Fatalf("insert reactions batch: %v", err)
		}
		reactionArgs = reactionArgs[:0]
		reactionSB.Reset()
		reactionRows = 0
	}

	for i := 0; i < totalPosts; i++ {
		postID := deterministicUUID("post", i)
		title := fmt.Sprintf(postTopics[rng.Intn(len(postTopics))],
			productNouns[rng.Intn(len(productNouns))])
		slug := fmt.Sprintf("%s-%d", slugify(title), i)
		authorID := users[rng.Intn(totalUsers)]
		category := categories[rng.Intn(len(categories))]
		createdAt := baseTime.Add(time.Duration(rng.Intn(80*24)) * time.Hour)

		status := "published"
		if rng.Float64() < 0.15 {
			status = "draft"
		}

		numReactions := rng.Intn(40)
		if status == "draft" {
			numReactions = 0
		}
		reactors := rng.Perm(totalUsers)[:numReactions]

		var likes, dislikes int64
		var lastReaction *string
		var lastAt time.Time
		for j, userIdx := range reactors {
			direction := "like"
			if rng.Float64() < 0.25 {
				direction = "dislike"
			}
			at := createdAt.Add(time.Duration(j+1) * 30 * time.Minute)
			if direction == "like" {
				likes++
			} else {
				dislikes++
			}
			if at.After(lastAt) {
				lastAt = at
				d := direction
				lastReaction = &d
			}

			if reactionRows == 0 {
				reactionSB.WriteString("INSERT INTO blog_post_reactions (id, post_id, user_id, direction, created_at, updated_at) VALUES ")
			} else {
				reactionSB.WriteString(", ")
			}
			n := len(reactionArgs)
			fmt.Fprintf(&reactionSB, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+5)
			reactionArgs = append(reactionArgs, deterministicUUID("reaction", i*totalUsers+j), postID, users[userIdx], direction, at)
			reactionRows++
			reactionTotal++
			if reactionRows >= batchSize {
				flushReactions()
			}
		}

		// Reads outnumber reactions; every accepted reaction counted a view.
		viewCount := likes + dislikes + int64(rng.Intn(500))

		_, err := pool.Exec(ctx, `
			INSERT INTO blog_posts (id, title, slug, body, author_id, category_id, status,
			                        view_count, like_count, dislike_count, last_reaction,
			                        created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
			ON CONFLICT (id) DO NOTHING`,
			postID, title, slug,
			fmt.Sprintf("%s\n\nThis is seeded demo content for local development.", title),
			authorID, category.ID, status,
			viewCount, likes, dislikes, lastReaction, createdAt,
		)
		if err != nil {
			log.Fatalf("insert post %s: %v", slug, err)
		}
	}
	flushReactions()
	log.Printf("  Inserted %d posts and %d reactions.", totalPosts, reactionTotal)

	log.Println("Seed complete.")
}
