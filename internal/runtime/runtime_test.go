package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/runtime"
	"tournament-planner/internal/store/memstore"
)

func assertErrKind(t *testing.T, err error, kind errs.Kind) {
	t.Helper()
	var e *errs.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, kind, e.Kind)
}

func draftVersion(id int64) *models.ScheduleVersion {
	return &models.ScheduleVersion{ID: id, Status: models.VersionDraft}
}

func TestSetStatusRejectsNonDraftVersion(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := &models.ScheduleVersion{ID: 1, Status: models.VersionFinal}
	m := &models.Match{ID: 1}
	err = runtime.SetStatus(ctx, tx, v, m, models.StatusInProgress)
	require.Error(t, err)
	assertErrKind(t, err, errs.VersionNotDraft)
}

func TestSetStatusStampsStartedAt(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	m := &models.Match{VersionID: 1}
	require.NoError(t, tx.CreateMatch(ctx, m))

	require.NoError(t, runtime.SetStatus(ctx, tx, v, m, models.StatusInProgress))
	require.NotNil(t, m.StartedAt)
	require.Equal(t, models.StatusInProgress, m.RuntimeStatus)
}

func TestFinalizeIsIdempotentOnIdenticalResult(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	a, b := int64(1), int64(2)
	m := &models.Match{VersionID: 1, TeamAID: &a, TeamBID: &b}
	require.NoError(t, tx.CreateMatch(ctx, m))

	score := models.NewDisplayScore("8-0")
	res1, err := runtime.Finalize(ctx, tx, nil, v, m, a, score, runtime.FinalizeFlags{})
	require.NoError(t, err)
	require.False(t, res1.NoOp)

	res2, err := runtime.Finalize(ctx, tx, nil, v, m, a, score, runtime.FinalizeFlags{})
	require.NoError(t, err)
	require.True(t, res2.NoOp)
}

func TestFinalizeConflictsOnDifferentResult(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	a, b := int64(1), int64(2)
	m := &models.Match{VersionID: 1, TeamAID: &a, TeamBID: &b}
	require.NoError(t, tx.CreateMatch(ctx, m))

	_, err = runtime.Finalize(ctx, tx, nil, v, m, a, models.NewDisplayScore("8-0"), runtime.FinalizeFlags{})
	require.NoError(t, err)

	_, err = runtime.Finalize(ctx, tx, nil, v, m, b, models.NewDisplayScore("8-1"), runtime.FinalizeFlags{})
	require.Error(t, err)
	assertErrKind(t, err, errs.Conflict)
}

func TestFinalizeRejectsWinnerNotInMatch(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	a, b := int64(1), int64(2)
	m := &models.Match{VersionID: 1, TeamAID: &a, TeamBID: &b}
	require.NoError(t, tx.CreateMatch(ctx, m))

	_, err = runtime.Finalize(ctx, tx, nil, v, m, 99, models.NewDisplayScore("8-0"), runtime.FinalizeFlags{})
	require.Error(t, err)
}

func TestDefaultWeekendFinalizesEveryAssignedMatchForTeam(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	team := &models.Team{ID: 1, EventID: 1}
	a, b, c := int64(1), int64(2), int64(3)
	m1 := &models.Match{VersionID: 1, TeamAID: &a, TeamBID: &b, DurationMinutes: 30}
	m2 := &models.Match{VersionID: 1, TeamAID: &a, TeamBID: &c, DurationMinutes: 45}
	require.NoError(t, tx.CreateMatch(ctx, m1))
	require.NoError(t, tx.CreateMatch(ctx, m2))

	res, err := runtime.DefaultWeekend(ctx, tx, nil, v, team)
	require.NoError(t, err)
	require.NotNil(t, res)

	r1, err := tx.GetMatch(ctx, m1.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFinal, r1.RuntimeStatus)
	require.NotNil(t, r1.WinnerTeamID)
	require.Equal(t, b, *r1.WinnerTeamID)

	r2, err := tx.GetMatch(ctx, m2.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFinal, r2.RuntimeStatus)
	require.Equal(t, c, *r2.WinnerTeamID)
}

func TestBulkPauseAndResume(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	m := &models.Match{VersionID: 1, RuntimeStatus: models.StatusInProgress}
	require.NoError(t, tx.CreateMatch(ctx, m))

	n, err := runtime.BulkPause(ctx, tx, v)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	refetched, err := tx.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPaused, refetched.RuntimeStatus)

	n, err = runtime.BulkResume(ctx, tx, v)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	refetched, err = tx.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, refetched.RuntimeStatus)
}

func TestBulkDelayRestrictsToThresholdAndDay(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	day1 := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	early := &models.Match{VersionID: 1, RuntimeStatus: models.StatusScheduled}
	late := &models.Match{VersionID: 1, RuntimeStatus: models.StatusScheduled}
	require.NoError(t, tx.CreateMatch(ctx, early))
	require.NoError(t, tx.CreateMatch(ctx, late))

	earlySlot := &models.ScheduleSlot{VersionID: 1, DayDate: day1, StartTime: day1.Add(9 * time.Hour), EndTime: day1.Add(10 * time.Hour)}
	lateSlot := &models.ScheduleSlot{VersionID: 1, DayDate: day1, StartTime: day1.Add(15 * time.Hour), EndTime: day1.Add(16 * time.Hour)}
	require.NoError(t, tx.CreateSlot(ctx, earlySlot))
	require.NoError(t, tx.CreateSlot(ctx, lateSlot))
	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: early.ID, SlotID: earlySlot.ID}))
	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: late.ID, SlotID: lateSlot.ID}))

	n, err := runtime.BulkDelay(ctx, tx, v, "14:00", &day1)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	refEarly, _ := tx.GetMatch(ctx, early.ID)
	refLate, _ := tx.GetMatch(ctx, late.ID)
	require.Equal(t, models.StatusScheduled, refEarly.RuntimeStatus)
	require.Equal(t, models.StatusDelayed, refLate.RuntimeStatus)
}

func TestMoveRejectsOccupiedTargetSlot(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	m1 := &models.Match{VersionID: 1}
	m2 := &models.Match{VersionID: 1}
	require.NoError(t, tx.CreateMatch(ctx, m1))
	require.NoError(t, tx.CreateMatch(ctx, m2))

	s1 := &models.ScheduleSlot{VersionID: 1}
	s2 := &models.ScheduleSlot{VersionID: 1}
	require.NoError(t, tx.CreateSlot(ctx, s1))
	require.NoError(t, tx.CreateSlot(ctx, s2))
	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: m1.ID, SlotID: s1.ID}))
	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: m2.ID, SlotID: s2.ID}))

	err = runtime.Move(ctx, tx, v, m1, s2.ID, nil)
	require.Error(t, err)
}

func TestMoveRelocatesAssignment(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	m := &models.Match{VersionID: 1}
	require.NoError(t, tx.CreateMatch(ctx, m))
	s1 := &models.ScheduleSlot{VersionID: 1}
	s2 := &models.ScheduleSlot{VersionID: 1}
	require.NoError(t, tx.CreateSlot(ctx, s1))
	require.NoError(t, tx.CreateSlot(ctx, s2))
	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: m.ID, SlotID: s1.ID}))

	require.NoError(t, runtime.Move(ctx, tx, v, m, s2.ID, nil))

	assignment, err := tx.GetAssignmentByMatch(ctx, 1, m.ID)
	require.NoError(t, err)
	require.Equal(t, s2.ID, assignment.SlotID)
	require.Equal(t, models.AssignedByDeskMove, assignment.AssignedBy)
}

func TestSwapExchangesSlots(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	m1 := &models.Match{VersionID: 1}
	m2 := &models.Match{VersionID: 1}
	require.NoError(t, tx.CreateMatch(ctx, m1))
	require.NoError(t, tx.CreateMatch(ctx, m2))
	s1 := &models.ScheduleSlot{VersionID: 1}
	s2 := &models.ScheduleSlot{VersionID: 1}
	require.NoError(t, tx.CreateSlot(ctx, s1))
	require.NoError(t, tx.CreateSlot(ctx, s2))
	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: m1.ID, SlotID: s1.ID}))
	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: m2.ID, SlotID: s2.ID}))

	require.NoError(t, runtime.Swap(ctx, tx, v, m1, m2))

	a1, err := tx.GetAssignmentByMatch(ctx, 1, m1.ID)
	require.NoError(t, err)
	a2, err := tx.GetAssignmentByMatch(ctx, 1, m2.ID)
	require.NoError(t, err)
	require.Equal(t, s2.ID, a1.SlotID)
	require.Equal(t, s1.ID, a2.SlotID)
}

func TestAddSlotComputesBlockMinutes(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	day := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	start := day.Add(9 * time.Hour)
	end := start.Add(90 * time.Minute)

	s, err := runtime.AddSlot(ctx, tx, v, day, start, end, 3, "Court C")
	require.NoError(t, err)
	require.Equal(t, 90, s.BlockMinutes)
	require.Equal(t, 3, s.CourtNumber)
}

func TestAddCourtSynthesizesMatchingSlots(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	v := draftVersion(1)
	tourn := &models.Tournament{ID: 1, CourtLabels: []string{"Court A"}}
	day := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	existing := &models.ScheduleSlot{VersionID: 1, DayDate: day, StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10 * time.Hour), CourtNumber: 1}
	require.NoError(t, tx.CreateSlot(ctx, existing))

	created, err := runtime.AddCourt(ctx, tx, tourn, v, "Court B", day, true)
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, 2, created[0].CourtNumber)
	require.Equal(t, []string{"Court A", "Court B"}, tourn.CourtLabels)
}
