package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidDirection(t *testing.T) {
	assert.True(t, IsValidDirection(DirectionLike))
	assert.True(t, IsValidDirection(DirectionDislike))
	assert.False(t, IsValidDirection("love"))
	assert.False(t, IsValidDirection(""))
	assert.False(t, IsValidDirection("LIKE"))
}

func TestNextReaction_TransitionTable(t *testing.T) {
	like := DirectionLike
	dislike := DirectionDislike

	tests := []struct {
		name      string
		prev      *Direction
		requested Direction
		want      ReactionChange
	}{
		{
			name:      "unreacted to liked",
			prev:      nil,
			requested: DirectionLike,
			want:      ReactionChange{Outcome: ReactionFirst, Direction: DirectionLike, LikeDelta: 1, ViewDelta: 1},
		},
		{
			name:      "unreacted to disliked",
			prev:      nil,
			requested: DirectionDislike,
			want:      ReactionChange{Outcome: ReactionFirst, Direction: DirectionDislike, DislikeDelta: 1, ViewDelta: 1},
		},
		{
			name:      "liked to disliked",
			prev:      &like,
			requested: DirectionDislike,
			want:      ReactionChange{Outcome: ReactionFlip, Direction: DirectionDislike, LikeDelta: -1, DislikeDelta: 1, ViewDelta: 1},
		},
		{
			name:      "disliked to liked",
			prev:      &dislike,
			requested: DirectionLike,
			want:      ReactionChange{Outcome: ReactionFlip, Direction: DirectionLike, LikeDelta: 1, DislikeDelta: -1, ViewDelta: 1},
		},
		{
			name:      "liked to liked is a no-op",
			prev:      &like,
			requested: DirectionLike,
			want:      ReactionChange{Outcome: ReactionNoop, Direction: DirectionLike},
		},
		{
			name:      "disliked to disliked is a no-op",
			prev:      &dislike,
			requested: DirectionDislike,
			want:      ReactionChange{Outcome: ReactionNoop, Direction: DirectionDislike},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextReaction(tt.prev, tt.requested))
		})
	}
}

func TestNextReaction_NoopNeverMovesCounters(t *testing.T) {
	for _, d := range []Direction{DirectionLike, DirectionDislike} {
		prev := d
		change := NextReaction(&prev, d)
		assert.Zero(t, change.LikeDelta)
		assert.Zero(t, change.DislikeDelta)
		assert.Zero(t, change.ViewDelta)
	}
}

func TestNextReaction_FlipPreservesTotalReactorCount(t *testing.T) {
	like := DirectionLike
	change := NextReaction(&like, DirectionDislike)
	assert.Equal(t, int64(0), change.LikeDelta+change.DislikeDelta)
}
