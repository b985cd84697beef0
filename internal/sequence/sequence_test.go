package sequence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-planner/internal/models"
	"tournament-planner/internal/sequence"
)

func TestDayOfTeamRound(t *testing.T) {
	assert.Equal(t, 1, sequence.DayOfTeamRound(1))
	assert.Equal(t, 1, sequence.DayOfTeamRound(2))
	assert.Equal(t, 2, sequence.DayOfTeamRound(3))
	assert.Equal(t, 2, sequence.DayOfTeamRound(4))
	assert.Equal(t, 3, sequence.DayOfTeamRound(5))
}

func TestBuildOrdersByTeamRoundThenSibling(t *testing.T) {
	events := []*models.Event{{ID: 1, DeclaredTeamCount: 8}}
	matches := []*models.Match{
		{ID: 3, EventID: 1, MatchType: models.MatchTypeMain, RoundIndex: 1},
		{ID: 2, EventID: 1, MatchType: models.MatchTypeConsolation, RoundIndex: 1},
		{ID: 1, EventID: 1, MatchType: models.MatchTypeMain, RoundIndex: 1},
	}

	entries := sequence.Build(matches, events, map[int64]int{1: 0})
	require.Len(t, entries, 3)

	// MAIN (sibling 0) sorts before CONSOLATION (sibling 2) within the same
	// team round; MAIN matches are further tie-broken by match id.
	assert.Equal(t, int64(1), entries[0].Match.ID)
	assert.Equal(t, int64(3), entries[1].Match.ID)
	assert.Equal(t, int64(2), entries[2].Match.ID)
}

func TestBuildGroupsByEventPriorityAndRotatesByTeamRound(t *testing.T) {
	events := []*models.Event{
		{ID: 1, DeclaredTeamCount: 16}, // higher priority: visited first absent rotation
		{ID: 2, DeclaredTeamCount: 8},
	}
	matches := []*models.Match{
		{ID: 10, EventID: 1, MatchType: models.MatchTypeWF, RoundIndex: 1},
		{ID: 11, EventID: 2, MatchType: models.MatchTypeWF, RoundIndex: 1},
		{ID: 20, EventID: 1, MatchType: models.MatchTypeWF, RoundIndex: 3},
		{ID: 21, EventID: 2, MatchType: models.MatchTypeWF, RoundIndex: 3},
	}

	entries := sequence.Build(matches, events, map[int64]int{1: 4, 2: 4})
	require.Len(t, entries, 4)

	// team round 1 (round_index 1): event 1 visited before event 2 (no rotation yet).
	assert.Equal(t, int64(10), entries[0].Match.ID)
	assert.Equal(t, int64(11), entries[1].Match.ID)
	// team round 3 sits in rotation bucket 1 (3/2==1), flipping visiting order.
	assert.Equal(t, int64(21), entries[2].Match.ID)
	assert.Equal(t, int64(20), entries[3].Match.ID)
}

func TestBuildAssignsIncreasingRank(t *testing.T) {
	events := []*models.Event{{ID: 1, DeclaredTeamCount: 4}}
	matches := []*models.Match{
		{ID: 1, EventID: 1, MatchType: models.MatchTypeRR, RoundIndex: 1},
		{ID: 2, EventID: 1, MatchType: models.MatchTypeRR, RoundIndex: 2},
	}
	entries := sequence.Build(matches, events, map[int64]int{1: 0})
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Less(t, entries[0].PhaseBucket, entries[1].PhaseBucket)
}
