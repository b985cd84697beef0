package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tournament-planner/internal/models"
)

func TestEventPriorityOrdersLargestFieldFirst(t *testing.T) {
	big := models.Event{ID: 1, DeclaredTeamCount: 32}
	small := models.Event{ID: 2, DeclaredTeamCount: 8}

	bigCount, bigID := big.Priority()
	smallCount, smallID := small.Priority()

	assert.Less(t, bigCount, smallCount, "a bigger declared team count should sort first (more negative)")
	assert.Equal(t, int64(1), bigID)
	assert.Equal(t, int64(2), smallID)
}

func TestSharesAvoidGroup(t *testing.T) {
	groupA := "club-a"
	groupB := "club-b"

	a := models.Team{AvoidGroup: &groupA}
	b := models.Team{AvoidGroup: &groupA}
	assert.True(t, models.SharesAvoidGroup(a, b))

	c := models.Team{AvoidGroup: &groupB}
	assert.False(t, models.SharesAvoidGroup(a, c))

	d := models.Team{}
	assert.False(t, models.SharesAvoidGroup(a, d))
	assert.False(t, models.SharesAvoidGroup(d, d))
}
