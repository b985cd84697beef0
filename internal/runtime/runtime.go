// internal/runtime/runtime.go
// Runtime State Machine (§4.7): per-match status transitions, finalize
// idempotence, default-weekend, bulk ops, move/swap/add-slot/add-court.
// Grounded in the teacher's match-result state transitions
// (TournamentService.UpdateMatchResult), generalized to the full
// SCHEDULED/IN_PROGRESS/PAUSED/DELAYED/FINAL/CANCELLED machine.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tournament-planner/internal/advancement"
	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/store"
)

func requireDraft(v *models.ScheduleVersion) error {
	if !v.IsDraft() {
		return errs.New(errs.VersionNotDraft, "version %d is not a draft", v.ID)
	}
	return nil
}

// SetStatus performs a simple status transition (no business rule besides
// draft-only and stamping started_at on entry to IN_PROGRESS).
func SetStatus(ctx context.Context, tx store.Tx, v *models.ScheduleVersion, m *models.Match, status models.RuntimeStatus) error {
	if err := requireDraft(v); err != nil {
		return err
	}
	if status == models.StatusInProgress && m.StartedAt == nil {
		now := time.Now()
		m.StartedAt = &now
	}
	m.RuntimeStatus = status
	return tx.UpdateMatch(ctx, m)
}

// FinalizeResult is the outcome of a finalize call.
type FinalizeResult struct {
	Advancement *advancement.Result
	NoOp        bool
}

// Finalize transitions a match to FINAL. Idempotent on an identical
// (winner, score) payload; returns a CONFLICT error otherwise unless the
// caller uses Correct.
func Finalize(ctx context.Context, tx store.Tx, log *logrus.Logger, v *models.ScheduleVersion, m *models.Match, winner int64, score models.Score, flags FinalizeFlags) (*FinalizeResult, error) {
	if err := requireDraft(v); err != nil {
		return nil, err
	}
	if winner != derefOr(m.TeamAID, 0) && winner != derefOr(m.TeamBID, 0) {
		return nil, errs.New(errs.Validation, "winner %d is not a side of match %s", winner, m.MatchCode)
	}

	if m.RuntimeStatus == models.StatusFinal {
		if m.WinnerTeamID != nil && *m.WinnerTeamID == winner && scoresEqual(m.ScoreJSON, &score) {
			return &FinalizeResult{NoOp: true}, nil
		}
		return nil, errs.New(errs.Conflict, "match %s already FINAL with a different result", m.MatchCode)
	}

	now := time.Now()
	m.WinnerTeamID = &winner
	m.ScoreJSON = &score
	m.RuntimeStatus = models.StatusFinal
	m.CompletedAt = &now
	if flags.Defaulted {
		m.PlacementType = "DEFAULTED"
	}
	if err := tx.UpdateMatch(ctx, m); err != nil {
		return nil, err
	}

	res, err := advancement.Resolve(ctx, tx, log, v.ID, m)
	if err != nil {
		return nil, err
	}
	if err := advancement.AutoStart(ctx, tx, v.ID, m); err != nil && log != nil {
		log.WithError(err).Warn("auto-start after finalize failed (non-fatal)")
	}
	return &FinalizeResult{Advancement: res}, nil
}

// FinalizeFlags carries optional finalize modifiers (default/retired).
type FinalizeFlags struct {
	Defaulted bool
	Retired   bool
}

// Correct rewires downstream matches for a changed winner/score on an
// already-FINAL match.
func Correct(ctx context.Context, tx store.Tx, log *logrus.Logger, v *models.ScheduleVersion, m *models.Match, winner int64, score models.Score) (*advancement.Result, error) {
	if err := requireDraft(v); err != nil {
		return nil, err
	}
	m.ScoreJSON = &score
	return advancement.Correct(ctx, tx, log, v.ID, m, winner)
}

func scoresEqual(a, b *models.Score) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind == b.Kind && a.Display == b.Display
}

func derefOr(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}

// stylizedScore computes the default-weekend score per duration bucket.
func stylizedScore(durationMinutes int) models.Score {
	switch {
	case durationMinutes <= 35:
		return models.NewDisplayScore("4-0")
	case durationMinutes <= 60:
		return models.NewDisplayScore("8-0")
	default:
		return models.NewSetsScore([]models.SetResult{{A: 6, B: 0}, {A: 6, B: 0}})
	}
}

// DefaultWeekend marks team defaulted and finalizes every non-FINAL,
// non-IN_PROGRESS match of theirs that has both sides assigned, with the
// opponent winning a stylized score. Advancement re-runs after each
// finalize, then the whole pass repeats once more because advancement may
// inject the defaulted team into newly-reachable downstream matches. The
// caller resolves team (it owns the event lookup the team belongs to).
func DefaultWeekend(ctx context.Context, tx store.Tx, log *logrus.Logger, v *models.ScheduleVersion, team *models.Team) (*advancement.Result, error) {
	if err := requireDraft(v); err != nil {
		return nil, err
	}

	teamID := team.ID
	team.IsDefaulted = true
	if err := tx.UpdateTeam(ctx, team); err != nil {
		return nil, err
	}

	total := &advancement.Result{}
	for pass := 0; pass < 2; pass++ {
		matches, err := tx.ListMatchesByVersion(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if m.RuntimeStatus == models.StatusFinal || m.RuntimeStatus == models.StatusInProgress {
				continue
			}
			if !m.HasBothTeams() {
				continue
			}
			opponent, ok := m.OtherTeam(teamID)
			if !ok {
				continue
			}
			score := stylizedScore(m.DurationMinutes)
			res, err := Finalize(ctx, tx, log, v, m, opponent, score, FinalizeFlags{Defaulted: true})
			if err != nil {
				return nil, err
			}
			if res.Advancement != nil {
				total.Updates = append(total.Updates, res.Advancement.Updates...)
				total.Warnings = append(total.Warnings, res.Advancement.Warnings...)
			}
		}
	}
	return total, nil
}

// BulkPause flips every IN_PROGRESS match in the version to PAUSED.
func BulkPause(ctx context.Context, tx store.Tx, v *models.ScheduleVersion) (int, error) {
	return bulkTransition(ctx, tx, v, models.StatusInProgress, models.StatusPaused, nil)
}

// BulkResume flips every PAUSED match back to IN_PROGRESS.
func BulkResume(ctx context.Context, tx store.Tx, v *models.ScheduleVersion) (int, error) {
	return bulkTransition(ctx, tx, v, models.StatusPaused, models.StatusInProgress, nil)
}

// BulkDelay flips every SCHEDULED match starting at or after threshold
// (optionally restricted to one day) to DELAYED.
func BulkDelay(ctx context.Context, tx store.Tx, v *models.ScheduleVersion, threshold string, day *time.Time) (int, error) {
	pred := func(m *models.Match, slot *models.ScheduleSlot) bool {
		if slot == nil {
			return false
		}
		if day != nil && !sameDay(slot.DayDate, *day) {
			return false
		}
		return slot.StartTime.Format("15:04") >= threshold
	}
	return bulkTransition(ctx, tx, v, models.StatusScheduled, models.StatusDelayed, pred)
}

// BulkUndelay flips every DELAYED match back to SCHEDULED.
func BulkUndelay(ctx context.Context, tx store.Tx, v *models.ScheduleVersion) (int, error) {
	return bulkTransition(ctx, tx, v, models.StatusDelayed, models.StatusScheduled, nil)
}

func bulkTransition(ctx context.Context, tx store.Tx, v *models.ScheduleVersion, from, to models.RuntimeStatus, pred func(*models.Match, *models.ScheduleSlot) bool) (int, error) {
	if err := requireDraft(v); err != nil {
		return 0, err
	}
	matches, err := tx.ListMatchesByVersion(ctx, v.ID)
	if err != nil {
		return 0, err
	}
	var slotByMatch map[int64]*models.ScheduleSlot
	if pred != nil {
		slotByMatch, err = assignmentSlotsByMatch(ctx, tx, v.ID)
		if err != nil {
			return 0, err
		}
	}

	count := 0
	for _, m := range matches {
		if m.RuntimeStatus != from {
			continue
		}
		if pred != nil && !pred(m, slotByMatch[m.ID]) {
			continue
		}
		m.RuntimeStatus = to
		if to == models.StatusInProgress && m.StartedAt == nil {
			now := time.Now()
			m.StartedAt = &now
		}
		if err := tx.UpdateMatch(ctx, m); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func assignmentSlotsByMatch(ctx context.Context, tx store.Tx, versionID int64) (map[int64]*models.ScheduleSlot, error) {
	assignments, err := tx.ListAssignmentsByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	slots, err := tx.ListSlotsByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	slotByID := make(map[int64]*models.ScheduleSlot, len(slots))
	for _, s := range slots {
		slotByID[s.ID] = s
	}
	out := make(map[int64]*models.ScheduleSlot, len(assignments))
	for _, a := range assignments {
		out[a.MatchID] = slotByID[a.SlotID]
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Move relocates a draft match's assignment to targetSlot, validating the
// slot is free, has sufficient duration, and that stage ordering / rest
// still hold.
func Move(ctx context.Context, tx store.Tx, v *models.ScheduleVersion, m *models.Match, targetSlotID int64, checkFn CompatibilityCheck) error {
	if err := requireDraft(v); err != nil {
		return err
	}
	existing, err := tx.GetAssignmentBySlot(ctx, v.ID, targetSlotID)
	if err != nil {
		return err
	}
	if existing != nil && existing.MatchID != m.ID {
		return errs.New(errs.Conflict, "target slot already occupied")
	}
	if checkFn != nil {
		if ok, reason := checkFn(m, targetSlotID); !ok {
			return errs.New(errs.Capacity, "move rejected: %s", reason)
		}
	}

	assignment, err := tx.GetAssignmentByMatch(ctx, v.ID, m.ID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return errs.New(errs.NotFound, "match %s has no assignment to move", m.MatchCode)
	}
	assignment.SlotID = targetSlotID
	assignment.AssignedBy = models.AssignedByDeskMove
	return tx.UpdateAssignment(ctx, assignment)
}

// CompatibilityCheck is supplied by the placement package's compatibility
// test so Move reuses the same dependency/rest rules. Swap takes no
// check and exchanges the two slots without validating them.
type CompatibilityCheck func(m *models.Match, slotID int64) (ok bool, reason string)

// Swap atomically exchanges the slot assignments of two matches.
func Swap(ctx context.Context, tx store.Tx, v *models.ScheduleVersion, a, b *models.Match) error {
	if err := requireDraft(v); err != nil {
		return err
	}
	aa, err := tx.GetAssignmentByMatch(ctx, v.ID, a.ID)
	if err != nil {
		return err
	}
	ba, err := tx.GetAssignmentByMatch(ctx, v.ID, b.ID)
	if err != nil {
		return err
	}
	if aa == nil || ba == nil {
		return errs.New(errs.NotFound, "both matches must be assigned to swap")
	}
	aa.SlotID, ba.SlotID = ba.SlotID, aa.SlotID
	aa.AssignedBy, ba.AssignedBy = models.AssignedByDeskSwap, models.AssignedByDeskSwap
	if err := tx.UpdateAssignment(ctx, aa); err != nil {
		return err
	}
	return tx.UpdateAssignment(ctx, ba)
}

// AddSlot inserts a ScheduleSlot at (day, start, end, court).
func AddSlot(ctx context.Context, tx store.Tx, v *models.ScheduleVersion, day, start, end time.Time, court int, courtLabel string) (*models.ScheduleSlot, error) {
	if err := requireDraft(v); err != nil {
		return nil, err
	}
	s := &models.ScheduleSlot{
		VersionID:    v.ID,
		DayDate:      day,
		StartTime:    start,
		EndTime:      end,
		CourtNumber:  court,
		CourtLabel:   courtLabel,
		BlockMinutes: int(end.Sub(start).Minutes()),
		IsActive:     true,
	}
	if err := tx.CreateSlot(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// AddCourt appends a court label to the tournament and, if synthesize is
// true, creates matching slots on every existing time window already used
// by the tournament's other courts for the given day.
func AddCourt(ctx context.Context, tx store.Tx, t *models.Tournament, v *models.ScheduleVersion, label string, day time.Time, synthesize bool) ([]*models.ScheduleSlot, error) {
	t.CourtLabels = append(t.CourtLabels, label)
	if err := tx.UpdateTournament(ctx, t); err != nil {
		return nil, err
	}
	newCourt := len(t.CourtLabels)

	if !synthesize {
		return nil, nil
	}
	slots, err := tx.ListSlotsByVersion(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	windows := map[string][2]time.Time{}
	for _, s := range slots {
		if !sameDay(s.DayDate, day) {
			continue
		}
		windows[fmt.Sprintf("%s-%s", s.StartTime.Format("15:04"), s.EndTime.Format("15:04"))] = [2]time.Time{s.StartTime, s.EndTime}
	}
	var created []*models.ScheduleSlot
	for _, w := range windows {
		s, err := AddSlot(ctx, tx, v, day, w[0], w[1], newCourt, label)
		if err != nil {
			return created, err
		}
		created = append(created, s)
	}
	return created, nil
}
