// internal/advancement/advancement.go
// Advancement Resolver (§4.5): propagates a finalized match's winner/loser
// into downstream matches, handles score correction and the repair pass.
// Grounded in the teacher's bracket-advancement logic in
// TournamentService.UpdateMatchResult, generalized from "next power-of-two
// slot" to arbitrary source_match_x_id/role edges.
package advancement

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/store"
)

// Update records one downstream side filled in by advancement.
type Update struct {
	MatchID int64
	Side    string // "A" or "B"
	TeamID  int64
}

// Result is the outcome of one advancement pass.
type Result struct {
	Updates  []Update
	Warnings []errs.Warning
}

// Resolve propagates match's outcome into every downstream match. match must
// already be FINAL with WinnerTeamID set.
func Resolve(ctx context.Context, tx store.Tx, log *logrus.Logger, versionID int64, match *models.Match) (*Result, error) {
	if match.RuntimeStatus != models.StatusFinal || match.WinnerTeamID == nil {
		return nil, errs.New(errs.Validation, "cannot resolve advancement for non-FINAL match %s", match.MatchCode)
	}

	all, err := tx.ListMatchesByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, d := range all {
		for _, src := range d.Sources() {
			if src.SourceMatch != match.ID {
				continue
			}
			if err := applyEdge(ctx, tx, log, d, src, match, res); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

func advancingTeam(match *models.Match, role models.Role) (int64, bool) {
	if role == models.RoleWinner {
		return *match.WinnerTeamID, true
	}
	return match.OtherTeam(*match.WinnerTeamID)
}

func applyEdge(ctx context.Context, tx store.Tx, log *logrus.Logger, d *models.Match, src models.Source, m *models.Match, res *Result) error {
	teamID, ok := advancingTeam(m, src.Role)
	if !ok {
		return nil
	}

	assignment, _ := tx.GetAssignmentByMatch(ctx, d.VersionID, d.ID)
	locked := assignment != nil && assignment.Locked

	var current *int64
	if src.Side == "A" {
		current = d.TeamAID
	} else {
		current = d.TeamBID
	}

	if locked && current != nil && *current != teamID {
		res.Warnings = append(res.Warnings, errs.NewWarning(errs.WarnSlotLocked,
			map[string]any{"match_code": d.MatchCode, "side": src.Side},
			"downstream match %s side %s is locked; skipping advancement", d.MatchCode, src.Side))
		return nil
	}
	if current != nil && *current != teamID {
		res.Warnings = append(res.Warnings, errs.NewWarning(errs.WarnConflictExistingTeam,
			map[string]any{"match_code": d.MatchCode, "side": src.Side, "existing_team_id": *current, "advancing_team_id": teamID},
			"downstream match %s side %s already holds a different team", d.MatchCode, src.Side))
		return nil
	}
	if current != nil && *current == teamID {
		return nil
	}

	if src.Side == "A" {
		d.TeamAID = &teamID
	} else {
		d.TeamBID = &teamID
	}
	if err := tx.UpdateMatch(ctx, d); err != nil {
		return err
	}
	if log != nil {
		log.WithFields(logrus.Fields{"match_code": d.MatchCode, "side": src.Side, "team_id": teamID}).Debug("advancement filled downstream side")
	}
	res.Updates = append(res.Updates, Update{MatchID: d.ID, Side: src.Side, TeamID: teamID})
	return nil
}

// Correct re-runs advancement after a FINAL match's winner changes: clears
// the old winner's downstream effect on every non-FINAL downstream match,
// warns on any downstream match that is already FINAL, then resolves again
// for the new winner.
func Correct(ctx context.Context, tx store.Tx, log *logrus.Logger, versionID int64, match *models.Match, newWinner int64) (*Result, error) {
	all, err := tx.ListMatchesByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, d := range all {
		for _, src := range d.Sources() {
			if src.SourceMatch != match.ID {
				continue
			}
			if d.RuntimeStatus == models.StatusFinal {
				res.Warnings = append(res.Warnings, errs.NewWarning(errs.WarnDownstreamAlreadyFinal,
					map[string]any{"match_code": d.MatchCode},
					"downstream match %s is already FINAL; correct it manually", d.MatchCode))
				continue
			}
			if src.Side == "A" {
				d.TeamAID = nil
			} else {
				d.TeamBID = nil
			}
			if err := tx.UpdateMatch(ctx, d); err != nil {
				return nil, err
			}
		}
	}

	match.WinnerTeamID = &newWinner
	if err := tx.UpdateMatch(ctx, match); err != nil {
		return nil, err
	}
	after, err := Resolve(ctx, tx, log, versionID, match)
	if err != nil {
		return nil, err
	}
	res.Updates = append(res.Updates, after.Updates...)
	res.Warnings = append(res.Warnings, after.Warnings...)
	return res, nil
}

// AutoStart flips the next unstarted match on the same court (by day, start
// time) to IN_PROGRESS after a finalize. Failure is non-fatal per §5.
func AutoStart(ctx context.Context, tx store.Tx, versionID int64, finalized *models.Match) error {
	assignment, err := tx.GetAssignmentByMatch(ctx, versionID, finalized.ID)
	if err != nil || assignment == nil {
		return nil
	}
	slots, err := tx.ListSlotsByVersion(ctx, versionID)
	if err != nil {
		return nil
	}
	var finishedSlot *models.ScheduleSlot
	for _, s := range slots {
		if s.ID == assignment.SlotID {
			finishedSlot = s
			break
		}
	}
	if finishedSlot == nil {
		return nil
	}

	assignments, err := tx.ListAssignmentsByVersion(ctx, versionID)
	if err != nil {
		return nil
	}

	var best *models.ScheduleSlot
	var bestAssignment *models.MatchAssignment
	for _, a := range assignments {
		if a.MatchID == finalized.ID {
			continue
		}
		var s *models.ScheduleSlot
		for _, cand := range slots {
			if cand.ID == a.SlotID {
				s = cand
				break
			}
		}
		if s == nil || s.CourtNumber != finishedSlot.CourtNumber {
			continue
		}
		if s.DayDate.Before(finishedSlot.DayDate) {
			continue
		}
		if s.DayDate.Equal(finishedSlot.DayDate) && s.StartTime.Before(finishedSlot.EndTime) {
			continue
		}
		if best == nil || s.DayDate.Before(best.DayDate) || (s.DayDate.Equal(best.DayDate) && s.StartTime.Before(best.StartTime)) {
			best = s
			bestAssignment = a
		}
	}
	if best == nil || bestAssignment == nil {
		return nil
	}
	next, err := tx.GetMatch(ctx, bestAssignment.MatchID)
	if err != nil || next == nil || next.RuntimeStatus != models.StatusScheduled {
		return nil
	}
	next.RuntimeStatus = models.StatusInProgress
	return tx.UpdateMatch(ctx, next)
}

// Repair rewires dangling placeholder_side_x strings ("WINNER:code" /
// "LOSER:code") into source_match_x_id + source_x_role links, then re-runs
// advancement for every FINAL match in the version.
func Repair(ctx context.Context, tx store.Tx, log *logrus.Logger, versionID int64) (*Result, error) {
	all, err := tx.ListMatchesByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*models.Match, len(all))
	for _, m := range all {
		byCode[m.MatchCode] = m
	}

	for _, m := range all {
		changed := false
		if m.SourceMatchAID == nil && m.PlaceholderSideA != "" {
			if id, role, ok := resolvePlaceholder(m.PlaceholderSideA, byCode); ok {
				m.SourceMatchAID = &id
				m.SourceARole = &role
				changed = true
			}
		}
		if m.SourceMatchBID == nil && m.PlaceholderSideB != "" {
			if id, role, ok := resolvePlaceholder(m.PlaceholderSideB, byCode); ok {
				m.SourceMatchBID = &id
				m.SourceBRole = &role
				changed = true
			}
		}
		if changed {
			if err := tx.UpdateMatch(ctx, m); err != nil {
				return nil, err
			}
		}
	}

	res := &Result{}
	for _, m := range all {
		if m.RuntimeStatus != models.StatusFinal || m.WinnerTeamID == nil {
			continue
		}
		r, err := Resolve(ctx, tx, log, versionID, m)
		if err != nil {
			return nil, err
		}
		res.Updates = append(res.Updates, r.Updates...)
		res.Warnings = append(res.Warnings, r.Warnings...)
	}
	return res, nil
}

// resolvePlaceholder parses "WINNER:code" / "LOSER:code" against the given
// code index.
func resolvePlaceholder(placeholder string, byCode map[string]*models.Match) (int64, models.Role, bool) {
	parts := strings.SplitN(placeholder, ":", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	role := models.Role(strings.ToUpper(parts[0]))
	if role != models.RoleWinner && role != models.RoleLoser {
		return 0, "", false
	}
	src, ok := byCode[parts[1]]
	if !ok {
		return 0, "", false
	}
	return src.ID, role, true
}
