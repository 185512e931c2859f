package domain

import (
	"time"
)

// Direction is the direction of a blog post reaction.
type Direction string

// Reaction directions.
const (
	DirectionLike    Direction = "like"
	DirectionDislike Direction = "dislike"
)

// IsValidDirection checks whether d is an allowed reaction direction.
func IsValidDirection(d Direction) bool {
	return d == DirectionLike || d == DirectionDislike
}

// Reaction is one user's like/dislike of one blog post. At most one row
// exists per (post_id, user_id) pair; a direction change updates the row in
// place, it never creates a second one.
type Reaction struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Direction Direction `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReactionOutcome classifies what a reaction submission does.
type ReactionOutcome int

const (
	// ReactionNoop means the user resubmitted their current direction;
	// nothing is written.
	ReactionNoop ReactionOutcome = iota
	// ReactionFirst means the user had no prior reaction; a new row is created.
	ReactionFirst
	// ReactionFlip means the user reversed direction; the existing row is updated.
	ReactionFlip
)

// String returns the outcome name for logs and responses.
func (o ReactionOutcome) String() string {
	switch o {
	case ReactionFirst:
		return "created"
	case ReactionFlip:
		return "changed"
	default:
		return "unchanged"
	}
}

// ReactionChange is the decision for one reaction submission, with the count
// deltas to apply to the post aggregate.
type ReactionChange struct {
	Outcome      ReactionOutcome
	Direction    Direction
	LikeDelta    int64
	DislikeDelta int64
	ViewDelta    int64
}

// NextReaction decides the transition for a reaction submission. prev is the
// user's current direction, nil when the user has not reacted. Only six
// transitions exist: unreacted→like, unreacted→dislike, like→dislike,
// dislike→like, and the two same-direction no-ops. The view counter moves by
// one on every accepted event and never on a no-op.
func NextReaction(prev *Direction, requested Direction) ReactionChange {
	change := ReactionChange{Direction: requested}

	if prev == nil {
		change.Outcome = ReactionFirst
		change.ViewDelta = 1
		if requested == DirectionLike {
			change.LikeDelta = 1
		} else {
			change.DislikeDelta = 1
		}
		return change
	}

	if *prev == requested {
		change.Outcome = ReactionNoop
		return change
	}

	change.Outcome = ReactionFlip
	change.ViewDelta = 1
	if requested == DirectionLike {
		change.LikeDelta = 1
		change.DislikeDelta = -1
	} else {
		change.LikeDelta = -1
		change.DislikeDelta = 1
	}
	return change
}
