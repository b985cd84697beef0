// internal/reschedule/reschedule.go
// Reschedule Engine (§4.8): feasibility, preview, apply and rebuild across
// PARTIAL_DAY/FULL_WASHOUT/COURT_LOSS/REBUILD modes. Grounded in the
// teacher's bracket-regeneration pattern (delete + rebuild assignments),
// generalized to a lost-slot-zone model instead of "whole tournament reset".
package reschedule

import (
	"sort"
	"time"

	"tournament-planner/internal/config"
	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
)

// Params describes one reschedule request.
type Params struct {
	Mode             models.RescheduleMode
	AffectedDay      time.Time
	UnavailableFrom  *string // "HH:MM", PARTIAL_DAY
	AvailableFrom    *string // "HH:MM", PARTIAL_DAY (optional re-open time)
	UnavailableCourts []int  // COURT_LOSS
	ExtendDayEnd     *string // "HH:MM", PREVIEW only
}

// DayConfig is one REBUILD input: a day's time window and court count.
type DayConfig struct {
	Date          time.Time
	Start, End    string // "HH:MM"
	CourtCount    int
	ScoringFormat models.ScoringFormat
}

// ConsolationDrop selects how much consolation play REBUILD discards.
type ConsolationDrop string

const (
	DropNone       ConsolationDrop = "NONE"
	DropFinalsOnly ConsolationDrop = "FINALS_ONLY"
	DropAll        ConsolationDrop = "ALL"
)

// FormatFeasibility is one scoring format's fit computation.
type FormatFeasibility struct {
	Format             models.ScoringFormat
	AffectedMatchCount int
	NeededMinutes      int
	AvailableMinutes   int
	Fits               bool
	UtilizationPct     float64
}

// Feasibility is a pure read: for each scoring format, compares the
// unplayed-and-affected match count's total duration against minutes
// available elsewhere.
func Feasibility(params Params, affected []*models.Match, availableSlots []*models.ScheduleSlot) []FormatFeasibility {
	byFormat := map[models.ScoringFormat][]*models.Match{}
	for _, m := range affected {
		f := formatOf(m.DurationMinutes)
		byFormat[f] = append(byFormat[f], m)
	}
	avail := 0
	for _, s := range availableSlots {
		avail += s.BlockMinutes
	}

	formats := []models.ScoringFormat{models.ScoringRegular, models.ScoringProSet8, models.ScoringProSet4}
	var out []FormatFeasibility
	for _, f := range formats {
		ms := byFormat[f]
		needed := len(ms) * f.DurationMinutes()
		util := 0.0
		if avail > 0 {
			util = float64(needed) / float64(avail) * 100
		}
		out = append(out, FormatFeasibility{
			Format: f, AffectedMatchCount: len(ms), NeededMinutes: needed,
			AvailableMinutes: avail, Fits: needed <= avail, UtilizationPct: util,
		})
	}
	return out
}

func formatOf(durationMinutes int) models.ScoringFormat {
	switch {
	case durationMinutes <= models.ScoringProSet4.DurationMinutes():
		return models.ScoringProSet4
	case durationMinutes <= models.ScoringProSet8.DurationMinutes():
		return models.ScoringProSet8
	default:
		return models.ScoringRegular
	}
}

// LostSlots computes which slots are considered lost for the given mode.
func LostSlots(params Params, allSlots []*models.ScheduleSlot) []*models.ScheduleSlot {
	var lost []*models.ScheduleSlot
	for _, s := range allSlots {
		if !sameDay(s.DayDate, params.AffectedDay) {
			continue
		}
		switch params.Mode {
		case models.RescheduleModeFullWashout:
			lost = append(lost, s)
		case models.RescheduleModePartialDay:
			start := s.StartTime.Format("15:04")
			if params.UnavailableFrom != nil && start >= *params.UnavailableFrom {
				if params.AvailableFrom == nil || start < *params.AvailableFrom {
					lost = append(lost, s)
				}
			}
		case models.RescheduleModeCourtLoss:
			if containsInt(params.UnavailableCourts, s.CourtNumber) {
				lost = append(lost, s)
			}
		}
	}
	return lost
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Move is one proposed assignment relocation.
type Move struct {
	MatchID    int64
	FromSlotID int64
	ToSlotID   int64
}

// PreviewResult is the pure (no-write) output of a preview pass.
type PreviewResult struct {
	Moves          []Move
	Unplaceable    []int64 // match ids with no available slot
	DurationUpdate map[int64]int
	Warnings       []errs.Warning
}

// Preview computes, but does not mutate, a reschedule plan. affectedMatches
// must already be pre-filtered to unplayed, non-locked, non-FINAL matches
// whose assignment falls in the lost zone, plus unassigned matches.
// compatFn reuses the placement package's compatibility test (dependency +
// rest) so moved matches obey the same rules as first placement.
func Preview(cfg config.SchedulingConfig, lostSlotIDs map[int64]bool, candidateSlots []*models.ScheduleSlot, affectedAssigned []AffectedMatch, affectedUnassigned []*models.Match, compatFn CompatibilityCheck) *PreviewResult {
	res := &PreviewResult{DurationUpdate: map[int64]int{}}

	sort.Slice(affectedAssigned, func(i, j int) bool {
		return affectedAssigned[i].OriginalStart.Before(affectedAssigned[j].OriginalStart)
	})
	sort.Slice(affectedUnassigned, func(i, j int) bool {
		return matchPriority(affectedUnassigned[i]) < matchPriority(affectedUnassigned[j])
	})

	sort.Slice(candidateSlots, func(i, j int) bool {
		ai, aj := candidateSlots[i], candidateSlots[j]
		if !ai.DayDate.Equal(aj.DayDate) {
			return ai.DayDate.Before(aj.DayDate)
		}
		if !ai.StartTime.Equal(aj.StartTime) {
			return ai.StartTime.Before(aj.StartTime)
		}
		return ai.CourtNumber < aj.CourtNumber
	})

	occupied := map[int64]bool{}
	for _, s := range candidateSlots {
		if lostSlotIDs[s.ID] {
			occupied[s.ID] = true
		}
	}

	place := func(matchID int64, fromSlotID int64, m *models.Match) {
		for _, s := range candidateSlots {
			if occupied[s.ID] {
				continue
			}
			if s.BlockMinutes < m.DurationMinutes {
				continue
			}
			if compatFn != nil {
				if ok, _ := compatFn(m, s.ID); !ok {
					continue
				}
			}
			occupied[s.ID] = true
			res.Moves = append(res.Moves, Move{MatchID: matchID, FromSlotID: fromSlotID, ToSlotID: s.ID})
			return
		}
		res.Unplaceable = append(res.Unplaceable, matchID)
		res.Warnings = append(res.Warnings, errs.NewWarning(errs.WarnNoAvailableSlot,
			map[string]any{"match_id": matchID}, "no available slot for match %d", matchID))
	}

	for _, am := range affectedAssigned {
		place(am.Match.ID, am.SlotID, am.Match)
	}
	for _, m := range affectedUnassigned {
		place(m.ID, 0, m)
	}
	return res
}

// AffectedMatch pairs a match with its original (lost) assignment's slot
// metadata, preserving the director's original intent for sort order.
type AffectedMatch struct {
	Match         *models.Match
	SlotID        int64
	OriginalStart time.Time
}

// CompatibilityCheck mirrors runtime.CompatibilityCheck; duplicated here to
// avoid an import cycle between reschedule and runtime.
type CompatibilityCheck func(m *models.Match, slotID int64) (ok bool, reason string)

func matchPriority(m *models.Match) int {
	typeRank := map[models.MatchType]int{
		models.MatchTypeWF: 0, models.MatchTypeRR: 1, models.MatchTypeMain: 2,
		models.MatchTypeConsolation: 3, models.MatchTypePlacement: 4,
	}
	return typeRank[m.MatchType]*1000 + m.RoundIndex*10 + m.SequenceInRound
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RebuildPlan is what Rebuild computes before the caller writes it: the
// slots to delete, the slots to create, and the matches to re-place in
// order.
type RebuildPlan struct {
	SlotsToDelete []int64
	NewSlots      []*models.ScheduleSlot
	OrderedMatches []*models.Match
}

// Rebuild sorts remaining matches (IN_PROGRESS first, then original order)
// for re-placement against freshly generated slots from dayConfigs. The
// caller deletes non-FINAL assignments/slots on the rebuild dates, creates
// NewSlots, then runs the placement first-fit over OrderedMatches.
func Rebuild(versionID int64, dayConfigs []DayConfig, existingSlots []*models.ScheduleSlot, matches []*models.Match, drop ConsolationDrop) *RebuildPlan {
	plan := &RebuildPlan{}

	rebuildDates := map[string]bool{}
	for _, dc := range dayConfigs {
		rebuildDates[dc.Date.Format("2006-01-02")] = true
	}
	for _, s := range existingSlots {
		if rebuildDates[s.DayDate.Format("2006-01-02")] {
			plan.SlotsToDelete = append(plan.SlotsToDelete, s.ID)
		}
	}

	for _, dc := range dayConfigs {
		start, _ := time.Parse("15:04", dc.Start)
		end, _ := time.Parse("15:04", dc.End)
		dayStart := time.Date(dc.Date.Year(), dc.Date.Month(), dc.Date.Day(), start.Hour(), start.Minute(), 0, 0, dc.Date.Location())
		dayEnd := time.Date(dc.Date.Year(), dc.Date.Month(), dc.Date.Day(), end.Hour(), end.Minute(), 0, 0, dc.Date.Location())
		block := dc.ScoringFormat.DurationMinutes()
		for court := 1; court <= dc.CourtCount; court++ {
			for t := dayStart; t.Add(time.Duration(block) * time.Minute).Compare(dayEnd) <= 0; t = t.Add(time.Duration(block) * time.Minute) {
				plan.NewSlots = append(plan.NewSlots, &models.ScheduleSlot{
					VersionID: versionID, DayDate: dc.Date, StartTime: t,
					EndTime: t.Add(time.Duration(block) * time.Minute), CourtNumber: court,
					BlockMinutes: block, IsActive: true,
				})
			}
		}
	}

	var eligible []*models.Match
	for _, m := range matches {
		if m.RuntimeStatus == models.StatusFinal {
			continue
		}
		if drop == DropAll && (m.MatchType == models.MatchTypeConsolation || m.MatchType == models.MatchTypePlacement) {
			continue
		}
		if drop == DropFinalsOnly && m.MatchType == models.MatchTypeConsolation && isConsolationFinal(m) {
			continue
		}
		eligible = append(eligible, m)
	}
	sort.Slice(eligible, func(i, j int) bool {
		si, sj := statusRank(eligible[i]), statusRank(eligible[j])
		if si != sj {
			return si < sj
		}
		return matchPriority(eligible[i]) < matchPriority(eligible[j])
	})
	plan.OrderedMatches = eligible
	return plan
}

func isConsolationFinal(m *models.Match) bool {
	return m.ConsolationTier != nil && *m.ConsolationTier == 1 && m.RoundIndex >= 2
}

func statusRank(m *models.Match) int {
	if m.RuntimeStatus == models.StatusInProgress {
		return 0
	}
	return 1
}
