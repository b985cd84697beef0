package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-planner/internal/models"
)

func TestMatchHasBothTeams(t *testing.T) {
	a, b := int64(1), int64(2)
	m := models.Match{TeamAID: &a, TeamBID: &b}
	assert.True(t, m.HasBothTeams())

	m.TeamBID = nil
	assert.False(t, m.HasBothTeams())
}

func TestMatchTeamIDs(t *testing.T) {
	a, b := int64(10), int64(20)

	m := models.Match{TeamAID: &a, TeamBID: &b}
	assert.ElementsMatch(t, []int64{10, 20}, m.TeamIDs())

	m = models.Match{TeamAID: &a}
	assert.Equal(t, []int64{10}, m.TeamIDs())

	m = models.Match{}
	assert.Nil(t, m.TeamIDs())
}

func TestMatchOtherTeam(t *testing.T) {
	a, b := int64(1), int64(2)
	m := models.Match{TeamAID: &a, TeamBID: &b}

	other, ok := m.OtherTeam(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), other)

	other, ok = m.OtherTeam(2)
	require.True(t, ok)
	assert.Equal(t, int64(1), other)

	_, ok = m.OtherTeam(99)
	assert.False(t, ok)

	m.TeamBID = nil
	_, ok = m.OtherTeam(1)
	assert.False(t, ok)
}

func TestMatchSources(t *testing.T) {
	winner, loser := models.RoleWinner, models.RoleLoser
	srcA, srcB := int64(5), int64(6)

	m := models.Match{
		SourceMatchAID: &srcA, SourceARole: &winner,
		SourceMatchBID: &srcB, SourceBRole: &loser,
	}

	sources := m.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, models.Source{Side: "A", SourceMatch: 5, Role: models.RoleWinner}, sources[0])
	assert.Equal(t, models.Source{Side: "B", SourceMatch: 6, Role: models.RoleLoser}, sources[1])

	m = models.Match{}
	assert.Empty(t, m.Sources())

	m = models.Match{SourceMatchAID: &srcA} // no role set
	assert.Empty(t, m.Sources())
}
