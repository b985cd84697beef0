package placement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-planner/internal/config"
	"tournament-planner/internal/models"
	"tournament-planner/internal/placement"
	"tournament-planner/internal/store/memstore"
)

func TestRunMasterSequencePlacesEveryMatch(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	a, b, c3, d := int64(1), int64(2), int64(3), int64(4)
	matches := []*models.Match{
		{TeamAID: &a, TeamBID: &b, EventID: 1, DurationMinutes: 60, RuntimeStatus: models.StatusScheduled, MatchType: models.MatchTypeRR},
		{TeamAID: &c3, TeamBID: &d, EventID: 1, DurationMinutes: 60, RuntimeStatus: models.StatusScheduled, MatchType: models.MatchTypeRR},
	}
	for _, m := range matches {
		require.NoError(t, tx.CreateMatch(ctx, m))
	}

	events := []*models.Event{{ID: 1, DeclaredTeamCount: 4}}
	base := time.Date(2026, time.August, 1, 8, 0, 0, 0, time.UTC)
	var slots []*models.ScheduleSlot
	for court := 1; court <= 2; court++ {
		s := &models.ScheduleSlot{DayDate: base, StartTime: base, EndTime: base.Add(60 * time.Minute), CourtNumber: court, BlockMinutes: 60, IsActive: true}
		require.NoError(t, tx.CreateSlot(ctx, s))
		slots = append(slots, s)
	}

	pc := placement.NewContext(testSchedulingConfig(), events, matches, slots, nil, nil, nil)
	res, err := placement.RunMasterSequence(ctx, tx, pc, 1, matches, events, slots)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Placed)
	assert.Empty(t, res.Overflow)
}

func TestRunMasterSequenceReportsOverflow(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	a, b := int64(1), int64(2)
	m := &models.Match{TeamAID: &a, TeamBID: &b, EventID: 1, DurationMinutes: 60, MatchType: models.MatchTypeRR}
	require.NoError(t, tx.CreateMatch(ctx, m))

	events := []*models.Event{{ID: 1, DeclaredTeamCount: 2}}
	pc := placement.NewContext(testSchedulingConfig(), events, []*models.Match{m}, nil, nil, nil, nil)
	res, err := placement.RunMasterSequence(ctx, tx, pc, 1, []*models.Match{m}, events, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Placed)
	assert.Equal(t, []int64{m.ID}, res.Overflow)
	require.Len(t, res.Warnings, 1)
}

func TestBuildBatchesDay1OrdersWFBeforeFirstRound(t *testing.T) {
	events := []*models.Event{{ID: 1, DeclaredTeamCount: 16, DrawPlan: models.DrawPlan{Template: models.TemplateWFtoPoolsDynamic}}}
	matches := []*models.Match{
		{ID: 1, EventID: 1, MatchType: models.MatchTypeWF, RoundIndex: 1},
		{ID: 2, EventID: 1, MatchType: models.MatchTypeWF, RoundIndex: 2},
		{ID: 3, EventID: 1, MatchType: models.MatchTypeRR, RoundIndex: 1},
	}

	batches := placement.BuildBatches(placement.DayFirst, time.Time{}, matches, events)
	require.NotEmpty(t, batches)
	assert.Equal(t, []int64{1}, batches[0].MatchIDs, "WF round 1 batches first on day 1")
}

func TestBuildBatchesLastDayGroupsFinals(t *testing.T) {
	matches := []*models.Match{
		{ID: 1, EventID: 1, MatchType: models.MatchTypeMain, RoundIndex: 3},
		{ID: 2, EventID: 1, MatchType: models.MatchTypeConsolation, RoundIndex: 3},
	}
	events := []*models.Event{{ID: 1, DeclaredTeamCount: 8}}

	batches := placement.BuildBatches(placement.DayLast, time.Time{}, matches, events)
	var finals []int64
	for _, b := range batches {
		if b.Name == "all_finals" {
			finals = b.MatchIDs
		}
	}
	assert.ElementsMatch(t, []int64{1, 2}, finals)
}

func testSchedulingConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		RestWFToScoringMinutes:      60,
		RestScoringToScoringMinutes: 90,
		RestUniversalFloorMinutes:   30,
	}
}
