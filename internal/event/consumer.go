package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/StorefrontGo/pkg/kafka"
)

// Kafka topics consumed by the storefront service.
const (
	TopicUserDeleted = "identity.user.deleted"
)

// UserEraser defines the interface required by the event consumer. Both the
// rating and reaction repositories implement it for their own ledgers.
type UserEraser interface {
	EraseUser(ctx context.Context, userID string) (int, error)
}

// UserDeletedData is the expected payload of a user.deleted event.
type UserDeletedData struct {
	UserID string `json:"user_id"`
}

// Consumer processes incoming Kafka events for the storefront service.
type Consumer struct {
	logger    *slog.Logger
	ratings   UserEraser
	reactions UserEraser
}

// NewConsumer creates a new event consumer for the storefront service.
func NewConsumer(ratings, reactions UserEraser, logger *slog.Logger) *Consumer {
	return &Consumer{
		ratings:   ratings,
		reactions: reactions,
		logger:    logger,
	}
}

// HandleUserDeleted processes user.deleted events by erasing the user's
// ratings and reactions and rebuilding the affected aggregates. The whole
// handler is safe to replay: erasing an already-erased user removes zero
// rows and rewrites nothing.
func (c *Consumer) HandleUserDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data UserDeletedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal user.deleted data: %w", err)
	}
	if data.UserID == "" {
		return fmt.Errorf("user.deleted event %s has no user_id", event.EventID)
	}

	c.logger.InfoContext(ctx, "processing user.deleted event",
		slog.String("user_id", data.UserID),
	)

	ratingsRemoved, err := c.ratings.EraseUser(ctx, data.UserID)
	if err != nil {
		return fmt.Errorf("erase ratings for user %s: %w", data.UserID, err)
	}

	reactionsRemoved, err := c.reactions.EraseUser(ctx, data.UserID)
	if err != nil {
		return fmt.Errorf("erase reactions for user %s: %w", data.UserID, err)
	}

	c.logger.InfoContext(ctx, "user data erased",
		slog.String("user_id", data.UserID),
		slog.Int("ratings_removed", ratingsRemoved),
		slog.Int("reactions_removed", reactionsRemoved),
	)

	return nil
}
