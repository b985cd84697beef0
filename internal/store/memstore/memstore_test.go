package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-planner/internal/models"
	"tournament-planner/internal/store/memstore"
)

func TestCommitPersistsWritesAcrossTransactions(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()

	tx1, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	m := &models.Match{VersionID: 1, MatchCode: "M1"}
	require.NoError(t, tx1.CreateMatch(ctx, m))
	require.NoError(t, tx1.Commit(ctx))

	tx2, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)
	matches, err := tx2.ListMatchesByVersion(ctx, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "M1", matches[0].MatchCode)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()

	tx1, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	m := &models.Match{VersionID: 1, MatchCode: "M1"}
	require.NoError(t, tx1.CreateMatch(ctx, m))
	require.NoError(t, tx1.Rollback(ctx))

	tx2, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)
	matches, err := tx2.ListMatchesByVersion(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCommitAfterCloseIsRejected(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Error(t, tx.Commit(ctx))
}

func TestRollbackAfterCommitIsNoOp(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, tx.Rollback(ctx))
}

func TestCreateMatchRejectsDuplicateCodeInSameVersion(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, tx.CreateMatch(ctx, &models.Match{VersionID: 1, MatchCode: "M1"}))
	err = tx.CreateMatch(ctx, &models.Match{VersionID: 1, MatchCode: "M1"})
	assert.Error(t, err)
}

func TestCreateMatchAllowsSameCodeInDifferentVersions(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, tx.CreateMatch(ctx, &models.Match{VersionID: 1, MatchCode: "M1"}))
	assert.NoError(t, tx.CreateMatch(ctx, &models.Match{VersionID: 2, MatchCode: "M1"}))
}

func TestCreateAssignmentRejectsDuplicateSlotInSameVersion(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	m1 := &models.Match{VersionID: 1, MatchCode: "M1"}
	m2 := &models.Match{VersionID: 1, MatchCode: "M2"}
	require.NoError(t, tx.CreateMatch(ctx, m1))
	require.NoError(t, tx.CreateMatch(ctx, m2))
	s := &models.ScheduleSlot{VersionID: 1}
	require.NoError(t, tx.CreateSlot(ctx, s))

	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: m1.ID, SlotID: s.ID}))
	err = tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: m2.ID, SlotID: s.ID})
	assert.Error(t, err)
}

func TestCreateAssignmentRejectsDuplicateMatchInSameVersion(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	m := &models.Match{VersionID: 1, MatchCode: "M1"}
	require.NoError(t, tx.CreateMatch(ctx, m))
	s1 := &models.ScheduleSlot{VersionID: 1}
	s2 := &models.ScheduleSlot{VersionID: 1}
	require.NoError(t, tx.CreateSlot(ctx, s1))
	require.NoError(t, tx.CreateSlot(ctx, s2))

	require.NoError(t, tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: m.ID, SlotID: s1.ID}))
	err = tx.CreateAssignment(ctx, &models.MatchAssignment{VersionID: 1, MatchID: m.ID, SlotID: s2.ID})
	assert.Error(t, err)
}

func TestUpdateMatchRejectsUnknownID(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = tx.UpdateMatch(ctx, &models.Match{ID: 999})
	assert.Error(t, err)
}

func TestSeedHelpersBypassTxAndAssignIDs(t *testing.T) {
	ms := memstore.New()
	tID := ms.SeedTournament(&models.Tournament{Name: "Club Open"})
	eID := ms.SeedEvent(&models.Event{Name: "Open Singles"})
	tmID := ms.SeedTeam(&models.Team{Name: "Team A"})
	vID := ms.SeedVersion(&models.ScheduleVersion{TournamentID: tID, Status: models.VersionDraft})

	assert.NotZero(t, tID)
	assert.NotZero(t, eID)
	assert.NotZero(t, tmID)
	assert.NotZero(t, vID)

	ctx := context.Background()
	tx, err := ms.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	tourn, err := tx.GetTournament(ctx, tID)
	require.NoError(t, err)
	assert.Equal(t, "Club Open", tourn.Name)
}
