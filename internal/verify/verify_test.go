package verify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-planner/internal/config"
	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/verify"
)

func cfg() config.SchedulingConfig {
	return config.SchedulingConfig{
		RestWFToScoringMinutes:      60,
		RestScoringToScoringMinutes: 90,
		RestUniversalFloorMinutes:   30,
	}
}

func mkSlot(id int64, day time.Time, startOffsetMin int, durationMin, court int) *models.ScheduleSlot {
	start := day.Add(time.Duration(startOffsetMin) * time.Minute)
	return &models.ScheduleSlot{ID: id, DayDate: day, StartTime: start, EndTime: start.Add(time.Duration(durationMin) * time.Minute), CourtNumber: court, BlockMinutes: durationMin, IsActive: true}
}

func TestDayFindsNoIssuesOnCleanSchedule(t *testing.T) {
	day := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	a, b := int64(1), int64(2)
	m := &models.Match{ID: 1, TeamAID: &a, TeamBID: &b, DurationMinutes: 60, MatchType: models.MatchTypeRR}
	s := mkSlot(100, day, 9*60, 60, 1)
	assignment := &models.MatchAssignment{MatchID: 1, SlotID: 100}

	findings := verify.Day(cfg(), day, []*models.Match{m}, []*models.ScheduleSlot{s}, []*models.MatchAssignment{assignment}, nil)
	assert.Empty(t, findings)
}

func TestDayFlagsTeamOverDailyCap(t *testing.T) {
	day := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	a, b := int64(1), int64(2)
	m1 := &models.Match{ID: 1, TeamAID: &a, TeamBID: &b, DurationMinutes: 60, MatchType: models.MatchTypeRR}
	m2 := &models.Match{ID: 2, TeamAID: &a, TeamBID: &b, DurationMinutes: 60, MatchType: models.MatchTypeRR}
	m3 := &models.Match{ID: 3, TeamAID: &a, TeamBID: &b, DurationMinutes: 60, MatchType: models.MatchTypeRR}
	slots := []*models.ScheduleSlot{mkSlot(100, day, 8*60, 60, 1), mkSlot(101, day, 11*60, 60, 1), mkSlot(102, day, 14*60, 60, 1)}
	assignments := []*models.MatchAssignment{{MatchID: 1, SlotID: 100}, {MatchID: 2, SlotID: 101}, {MatchID: 3, SlotID: 102}}

	findings := verify.Day(cfg(), day, []*models.Match{m1, m2, m3}, slots, assignments, nil)
	require.NotEmpty(t, findings)
	assert.Equal(t, errs.WarnTeamOverDailyCap, findings[0].Code)
}

func TestDayFlagsInsufficientRest(t *testing.T) {
	day := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	a, b, c := int64(1), int64(2), int64(3)
	prior := &models.Match{ID: 1, TeamAID: &a, TeamBID: &b, DurationMinutes: 40, MatchType: models.MatchTypeWF}
	next := &models.Match{ID: 2, TeamAID: &a, TeamBID: &c, DurationMinutes: 60, MatchType: models.MatchTypeMain}
	slots := []*models.ScheduleSlot{mkSlot(100, day, 9*60, 40, 1), mkSlot(101, day, 9*60+50, 60, 2)}
	assignments := []*models.MatchAssignment{{MatchID: 1, SlotID: 100}, {MatchID: 2, SlotID: 101}}

	findings := verify.Day(cfg(), day, []*models.Match{prior, next}, slots, assignments, nil)
	var found bool
	for _, f := range findings {
		if f.Code == errs.WarnRestWFToScoring {
			found = true
		}
	}
	assert.True(t, found, "expected a WF-to-scoring rest finding")
}

func TestDayFlagsUpstreamNotBeforeDownstream(t *testing.T) {
	day := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	winner := models.RoleWinner
	a, b := int64(1), int64(2)
	upstream := &models.Match{ID: 1, TeamAID: &a, TeamBID: &b, DurationMinutes: 60, MatchType: models.MatchTypeMain}
	downstream := &models.Match{ID: 2, DurationMinutes: 60, MatchType: models.MatchTypeMain, SourceMatchAID: &upstream.ID, SourceARole: &winner}

	slots := []*models.ScheduleSlot{mkSlot(100, day, 10*60, 60, 1), mkSlot(101, day, 9*60, 60, 2)} // downstream starts before upstream
	assignments := []*models.MatchAssignment{{MatchID: 1, SlotID: 100}, {MatchID: 2, SlotID: 101}}

	findings := verify.Day(cfg(), day, []*models.Match{upstream, downstream}, slots, assignments, nil)
	var found bool
	for _, f := range findings {
		if f.Code == errs.WarnUnresolvedUpstreamNotBefore {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFullRunsEveryDistinctDay(t *testing.T) {
	day1 := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	a, b := int64(1), int64(2)
	m1 := &models.Match{ID: 1, TeamAID: &a, TeamBID: &b, DurationMinutes: 60, MatchType: models.MatchTypeRR}
	m2 := &models.Match{ID: 2, TeamAID: &a, TeamBID: &b, DurationMinutes: 60, MatchType: models.MatchTypeRR}
	slots := []*models.ScheduleSlot{mkSlot(100, day1, 9*60, 60, 1), mkSlot(101, day2, 9*60, 60, 1)}
	assignments := []*models.MatchAssignment{{MatchID: 1, SlotID: 100}, {MatchID: 2, SlotID: 101}}

	findings := verify.Full(cfg(), []*models.Match{m1, m2}, slots, assignments, nil)
	assert.Empty(t, findings)
}

func TestReportOK(t *testing.T) {
	clean := verify.Report{}
	assert.True(t, clean.OK())

	dirty := verify.Report{Findings: []verify.Finding{{Code: errs.WarnNoAvailableSlot}}}
	assert.False(t, dirty.OK())
}
