package advancement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tournament-planner/internal/advancement"
	"tournament-planner/internal/models"
	"tournament-planner/internal/store/memstore"
)

func TestResolveRejectsNonFinalMatch(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	m := &models.Match{ID: 1, RuntimeStatus: models.StatusScheduled}
	_, err = advancement.Resolve(ctx, tx, nil, 1, m)
	require.Error(t, err)
}

func TestResolveFillsDownstreamWinnerSlot(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	winner := models.RoleWinner
	a, b := int64(1), int64(2)
	upstream := &models.Match{VersionID: 1, MatchCode: "SF1", TeamAID: &a, TeamBID: &b, RuntimeStatus: models.StatusFinal, WinnerTeamID: &a}
	require.NoError(t, tx.CreateMatch(ctx, upstream))

	downstream := &models.Match{VersionID: 1, MatchCode: "FINAL", SourceMatchAID: &upstream.ID, SourceARole: &winner}
	require.NoError(t, tx.CreateMatch(ctx, downstream))

	res, err := advancement.Resolve(ctx, tx, nil, 1, upstream)
	require.NoError(t, err)
	require.Len(t, res.Updates, 1)
	require.Equal(t, a, res.Updates[0].TeamID)

	refetched, err := tx.GetMatch(ctx, downstream.ID)
	require.NoError(t, err)
	require.NotNil(t, refetched.TeamAID)
	require.Equal(t, a, *refetched.TeamAID)
}

func TestResolveWarnsOnConflictingExistingTeam(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	winner := models.RoleWinner
	a, b, other := int64(1), int64(2), int64(99)
	upstream := &models.Match{VersionID: 1, MatchCode: "SF1", TeamAID: &a, TeamBID: &b, RuntimeStatus: models.StatusFinal, WinnerTeamID: &a}
	require.NoError(t, tx.CreateMatch(ctx, upstream))

	downstream := &models.Match{VersionID: 1, MatchCode: "FINAL", TeamAID: &other, SourceMatchAID: &upstream.ID, SourceARole: &winner}
	require.NoError(t, tx.CreateMatch(ctx, downstream))

	res, err := advancement.Resolve(ctx, tx, nil, 1, upstream)
	require.NoError(t, err)
	require.Empty(t, res.Updates)
	require.Len(t, res.Warnings, 1)
}

func TestResolveIsNoOpWhenTeamAlreadyAdvanced(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	winner := models.RoleWinner
	a, b := int64(1), int64(2)
	upstream := &models.Match{VersionID: 1, MatchCode: "SF1", TeamAID: &a, TeamBID: &b, RuntimeStatus: models.StatusFinal, WinnerTeamID: &a}
	require.NoError(t, tx.CreateMatch(ctx, upstream))
	downstream := &models.Match{VersionID: 1, MatchCode: "FINAL", TeamAID: &a, SourceMatchAID: &upstream.ID, SourceARole: &winner}
	require.NoError(t, tx.CreateMatch(ctx, downstream))

	res, err := advancement.Resolve(ctx, tx, nil, 1, upstream)
	require.NoError(t, err)
	require.Empty(t, res.Updates)
	require.Empty(t, res.Warnings)
}

func TestCorrectClearsOldWinnerAndAppliesNew(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	winner := models.RoleWinner
	a, b := int64(1), int64(2)
	upstream := &models.Match{VersionID: 1, MatchCode: "SF1", TeamAID: &a, TeamBID: &b, RuntimeStatus: models.StatusFinal, WinnerTeamID: &a}
	require.NoError(t, tx.CreateMatch(ctx, upstream))
	downstream := &models.Match{VersionID: 1, MatchCode: "FINAL", TeamAID: &a, SourceMatchAID: &upstream.ID, SourceARole: &winner}
	require.NoError(t, tx.CreateMatch(ctx, downstream))

	res, err := advancement.Correct(ctx, tx, nil, 1, upstream, b)
	require.NoError(t, err)
	require.Len(t, res.Updates, 1)
	require.Equal(t, b, res.Updates[0].TeamID)

	refetched, err := tx.GetMatch(ctx, downstream.ID)
	require.NoError(t, err)
	require.Equal(t, b, *refetched.TeamAID)
}

func TestCorrectWarnsWhenDownstreamAlreadyFinal(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	winner := models.RoleWinner
	a, b := int64(1), int64(2)
	upstream := &models.Match{VersionID: 1, MatchCode: "SF1", TeamAID: &a, TeamBID: &b, RuntimeStatus: models.StatusFinal, WinnerTeamID: &a}
	require.NoError(t, tx.CreateMatch(ctx, upstream))
	downstream := &models.Match{VersionID: 1, MatchCode: "FINAL", TeamAID: &a, RuntimeStatus: models.StatusFinal, SourceMatchAID: &upstream.ID, SourceARole: &winner}
	require.NoError(t, tx.CreateMatch(ctx, downstream))

	res, err := advancement.Correct(ctx, tx, nil, 1, upstream, b)
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
}

func TestRepairRewiresPlaceholdersAndReResolvesFinalMatches(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	a, b := int64(1), int64(2)
	upstream := &models.Match{VersionID: 1, MatchCode: "SF1", TeamAID: &a, TeamBID: &b, RuntimeStatus: models.StatusFinal, WinnerTeamID: &a}
	require.NoError(t, tx.CreateMatch(ctx, upstream))

	downstream := &models.Match{VersionID: 1, MatchCode: "FINAL", PlaceholderSideA: "WINNER:SF1"}
	require.NoError(t, tx.CreateMatch(ctx, downstream))

	res, err := advancement.Repair(ctx, tx, nil, 1)
	require.NoError(t, err)
	require.Len(t, res.Updates, 1)

	refetched, err := tx.GetMatch(ctx, downstream.ID)
	require.NoError(t, err)
	require.NotNil(t, refetched.SourceMatchAID)
	require.Equal(t, upstream.ID, *refetched.SourceMatchAID)
	require.NotNil(t, refetched.SourceARole)
	require.Equal(t, models.RoleWinner, *refetched.SourceARole)
	require.NotNil(t, refetched.TeamAID)
	require.Equal(t, a, *refetched.TeamAID)
}

func TestAutoStartFlipsNextScheduledMatchOnSameCourt(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	a, b := int64(1), int64(2)
	finished := &models.Match{VersionID: 1, MatchCode: "M1", TeamAID: &a, TeamBID: &b, RuntimeStatus: models.StatusFinal}
	require.NoError(t, tx.CreateMatch(ctx, finished))
	next := &models.Match{VersionID: 1, MatchCode: "M2", TeamAID: &a, TeamBID: &b, RuntimeStatus: models.StatusScheduled}
	require.NoError(t, tx.CreateMatch(ctx, next))

	base := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)
	finishedSlot := &models.ScheduleSlot{VersionID: 1, DayDate: base, StartTime: base, EndTime: base.Add(60 * time.Minute), CourtNumber: 1, IsActive: true}
	require.NoError(t, tx.CreateSlot(ctx, finishedSlot))
	nextSlot := &models.ScheduleSlot{VersionID: 1, DayDate: base, StartTime: base.Add(60 * time.Minute), EndTime: base.Add(120 * time.Minute), CourtNumber: 1, IsActive: true}
	require.NoError(t, tx.CreateSlot(ctx, nextSlot))

	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: finished.ID, SlotID: finishedSlot.ID}))
	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: next.ID, SlotID: nextSlot.ID}))

	require.NoError(t, advancement.AutoStart(ctx, tx, 1, finished))

	refetched, err := tx.GetMatch(ctx, next.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, refetched.RuntimeStatus)
}
