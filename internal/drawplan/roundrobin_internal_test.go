package drawplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-planner/internal/models"
)

func TestCircleMethodRoundsFourTeamPreset(t *testing.T) {
	rounds := circleMethodRounds(4)
	require.Len(t, rounds, 3)
	assert.Equal(t, [][2]int{{0, 3}, {1, 2}}, rounds[0])
	assert.Equal(t, [][2]int{{0, 2}, {1, 3}}, rounds[1])
	assert.Equal(t, [][2]int{{0, 1}, {2, 3}}, rounds[2], "top two seeds must meet in the final round")
}

func TestCircleMethodRoundsEvenGeneral(t *testing.T) {
	rounds := circleMethodRounds(6)
	require.Len(t, rounds, 5)
	for _, r := range rounds {
		assert.Len(t, r, 3, "every round of an even field pairs everyone")
	}
	assertEveryPairPlaysOnce(t, 6, rounds)
}

func TestCircleMethodRoundsOddUsesByeSlot(t *testing.T) {
	rounds := circleMethodRounds(5)
	require.Len(t, rounds, 5)
	for _, r := range rounds {
		assert.Len(t, r, 2, "a bye slot drops one pairing per round for an odd field")
	}
	assertEveryPairPlaysOnce(t, 5, rounds)
}

func TestAppendPoolRoundRobinPlaceholdersEmitsSeedPlaceholders(t *testing.T) {
	event := &models.Event{ID: 1, StandardBlockMins: 60}
	b := &builder{event: event, prefix: "E1"}

	b.appendPoolRoundRobinPlaceholders("A", 4)

	require.NotEmpty(t, b.matches)
	for _, m := range b.matches {
		assert.Nil(t, m.TeamAID, "pool placeholders must not resolve a team before SEED_N is confirmed")
		assert.Nil(t, m.TeamBID)
		assert.Regexp(t, `^SEED_\d+$`, m.PlaceholderSideA)
		assert.Regexp(t, `^SEED_\d+$`, m.PlaceholderSideB)
		assert.Contains(t, m.MatchCode, "_POOLA_RR_")
	}
}

func assertEveryPairPlaysOnce(t *testing.T, n int, rounds [][][2]int) {
	t.Helper()
	seen := map[[2]int]bool{}
	for _, r := range rounds {
		for _, pair := range r {
			a, b := pair[0], pair[1]
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			assert.False(t, seen[key], "pair %v scheduled twice", key)
			seen[key] = true
		}
	}
	expected := n * (n - 1) / 2
	assert.Len(t, seen, expected)
}
