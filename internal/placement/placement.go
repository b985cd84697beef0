// internal/placement/placement.go
// Placement Engine (§4.3): two interchangeable drivers (master-sequence,
// daily policy) sharing one first-fit primitive and compatibility test.
// Grounded in the teacher's bracket-to-slot assignment loop
// (TournamentService.scheduleMatches), generalized from "any free slot" to
// the spec's stage-dependency-and-rest compatibility test.
package placement

import (
	"sort"
	"time"

	"tournament-planner/internal/config"
	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
)

// Context bundles everything the compatibility test and first-fit primitive
// need; it is rebuilt once per placement run and mutated as matches place.
type Context struct {
	Cfg         config.SchedulingConfig
	Events      map[int64]*models.Event
	MatchByID   map[int64]*models.Match
	SlotByID    map[int64]*models.ScheduleSlot
	Assigned    map[int64]int64 // match id -> slot id
	SlotTaken   map[int64]int64 // slot id -> match id
	BlockedSlot map[int64]bool  // slot id -> blocked/locked
	PinnedSlot  map[int64]int64 // match id -> pre-locked slot id (MatchLock)

	teamEndTimes map[int64][]placed // team id -> ordered (start,end,type)
}

type placed struct {
	start, end time.Time
	matchType  models.MatchType
}

// NewContext builds a placement Context from the version's current state.
func NewContext(cfg config.SchedulingConfig, events []*models.Event, matches []*models.Match, slots []*models.ScheduleSlot, assignments []*models.MatchAssignment, matchLocks []*models.MatchLock, slotLocks []*models.SlotLock) *Context {
	c := &Context{
		Cfg: cfg, Events: map[int64]*models.Event{}, MatchByID: map[int64]*models.Match{},
		SlotByID: map[int64]*models.ScheduleSlot{}, Assigned: map[int64]int64{}, SlotTaken: map[int64]int64{},
		BlockedSlot: map[int64]bool{}, PinnedSlot: map[int64]int64{}, teamEndTimes: map[int64][]placed{},
	}
	for _, e := range events {
		c.Events[e.ID] = e
	}
	for _, m := range matches {
		c.MatchByID[m.ID] = m
	}
	for _, s := range slots {
		c.SlotByID[s.ID] = s
	}
	for _, a := range assignments {
		c.Assigned[a.MatchID] = a.SlotID
		c.SlotTaken[a.SlotID] = a.MatchID
		if m := c.MatchByID[a.MatchID]; m != nil {
			if s := c.SlotByID[a.SlotID]; s != nil {
				c.recordPlaced(m, s)
			}
		}
	}
	for _, l := range slotLocks {
		c.BlockedSlot[l.SlotID] = true
	}
	for _, l := range matchLocks {
		c.PinnedSlot[l.MatchID] = l.SlotID
	}
	return c
}

func (c *Context) recordPlaced(m *models.Match, s *models.ScheduleSlot) {
	for _, t := range m.TeamIDs() {
		c.teamEndTimes[t] = append(c.teamEndTimes[t], placed{start: s.StartTime, end: s.EndTime, matchType: m.MatchType})
	}
}

func requiredRest(cfg config.SchedulingConfig, a, b models.MatchType) time.Duration {
	if (a == models.MatchTypeWF) != (b == models.MatchTypeWF) {
		return time.Duration(cfg.RestWFToScoringMinutes) * time.Minute
	}
	return time.Duration(cfg.RestScoringToScoringMinutes) * time.Minute
}

// Compatible is the compatibility test from §4.3: excluded/occupied, block
// minutes, day restriction, stage-dependency-and-rest, and per-team rest.
func (c *Context) Compatible(m *models.Match, slotID int64, targetDay *time.Time) (bool, string) {
	if c.BlockedSlot[slotID] {
		return false, "slot blocked or locked"
	}
	if _, taken := c.SlotTaken[slotID]; taken {
		return false, "slot occupied"
	}
	slot, ok := c.SlotByID[slotID]
	if !ok {
		return false, "unknown slot"
	}
	if slot.BlockMinutes < m.DurationMinutes {
		return false, "insufficient block minutes"
	}
	if targetDay != nil && !sameDay(slot.DayDate, *targetDay) {
		return false, "slot not on target day"
	}

	if ok, reason := c.checkStageOrdering(m, slot); !ok {
		return false, reason
	}

	floor := time.Duration(c.Cfg.RestUniversalFloorMinutes) * time.Minute
	if c.Cfg.WeatherRelaxUniversalFloor {
		floor = 0
	}
	for _, t := range m.TeamIDs() {
		for _, p := range c.teamEndTimes[t] {
			if !sameDay(p.start, slot.StartTime) {
				continue
			}
			var gap time.Duration
			if slot.StartTime.After(p.end) {
				gap = slot.StartTime.Sub(p.end)
			} else if p.start.After(slot.EndTime) {
				gap = p.start.Sub(slot.EndTime)
			} else {
				return false, "slot overlaps existing match for team"
			}
			need := requiredRest(c.Cfg, p.matchType, m.MatchType)
			if gap < need && gap < floor {
				return false, "insufficient rest"
			}
		}
	}

	if count := c.dayCount(m, slot.DayDate); count >= 2 {
		return false, "team already at daily cap"
	}

	return true, ""
}

func (c *Context) dayCount(m *models.Match, day time.Time) int {
	max := 0
	for _, t := range m.TeamIDs() {
		n := 0
		for _, p := range c.teamEndTimes[t] {
			if sameDay(p.start, day) {
				n++
			}
		}
		if n > max {
			max = n
		}
	}
	return max
}

// checkStageOrdering implements the WF/RR round-(R-1) and MAIN/CONSOLATION
// source-match dependency-and-rest rules.
func (c *Context) checkStageOrdering(m *models.Match, slot *models.ScheduleSlot) (bool, string) {
	switch m.MatchType {
	case models.MatchTypeWF, models.MatchTypeRR:
		if m.RoundIndex <= 1 {
			return true, ""
		}
		for _, prior := range c.MatchByID {
			if prior.EventID != m.EventID || prior.MatchType != m.MatchType || prior.RoundIndex != m.RoundIndex-1 {
				continue
			}
			priorSlotID, ok := c.Assigned[prior.ID]
			if !ok {
				return false, "prior round not fully assigned"
			}
			priorSlot := c.SlotByID[priorSlotID]
			need := time.Duration(prior.DurationMinutes) * time.Minute
			if slot.StartTime.Sub(priorSlot.EndTime) < need {
				return false, "insufficient inter-round rest"
			}
		}
		return true, ""
	case models.MatchTypeMain, models.MatchTypeConsolation:
		hasSource := false
		for _, src := range m.Sources() {
			hasSource = true
			if _, ok := c.MatchByID[src.SourceMatch]; !ok {
				return false, "source match missing"
			}
			srcSlotID, ok := c.Assigned[src.SourceMatch]
			if !ok {
				return false, "source match not yet assigned"
			}
			srcSlot := c.SlotByID[srcSlotID]
			if !srcSlot.EndTime.Before(slot.StartTime) && !srcSlot.EndTime.Equal(slot.StartTime) {
				return false, "source match does not end before candidate start"
			}
		}
		if hasSource {
			return true, ""
		}
		return true, "" // no source links: position-from-end tiering not enforced without explicit links
	case models.MatchTypePlacement:
		return true, ""
	default:
		return true, ""
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SortedMatchKey is the deterministic match tie-break: (phase_bucket,
// round_index, event_priority, sequence_in_round, match_code).
func SortedMatchKey(m *models.Match, events map[int64]*models.Event, phaseBucket int) (int, int, int, int64, int, string) {
	var teamCountDesc int
	var eventID int64
	if e, ok := events[m.EventID]; ok {
		teamCountDesc, eventID = e.Priority()
	}
	return phaseBucket, m.RoundIndex, teamCountDesc, eventID, m.SequenceInRound, m.MatchCode
}

// SlotSortKey is the deterministic slot tie-break: (day, start_time, court,
// court_label, slot id).
func SlotSortKey(s *models.ScheduleSlot) (time.Time, time.Time, int, string, int64) {
	return s.DayDate, s.StartTime, s.CourtNumber, s.CourtLabel, s.ID
}

// FirstFit claims the first candidate slot (in deterministic order) that
// passes Compatible, assigns it, and records it in the Context. Returns
// (slotID, true) on success.
func (c *Context) FirstFit(m *models.Match, candidates []*models.ScheduleSlot, targetDay *time.Time) (int64, bool) {
	sorted := append([]*models.ScheduleSlot(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		di, ti, ci, li, idi := SlotSortKey(sorted[i])
		dj, tj, cj, lj, idj := SlotSortKey(sorted[j])
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		if ci != cj {
			return ci < cj
		}
		if li != lj {
			return li < lj
		}
		return idi < idj
	})
	for _, s := range sorted {
		if ok, _ := c.Compatible(m, s.ID, targetDay); ok {
			c.Place(m, s)
			return s.ID, true
		}
	}
	return 0, false
}

// Place records m's assignment to s in the Context without persisting (the
// caller is responsible for writing the MatchAssignment row).
func (c *Context) Place(m *models.Match, s *models.ScheduleSlot) {
	c.Assigned[m.ID] = s.ID
	c.SlotTaken[s.ID] = m.ID
	c.recordPlaced(m, s)
}

// ErrNoSlot is returned by callers that want a typed sentinel for "no slot
// found"; the engine facade instead surfaces NO_AVAILABLE_SLOT as a warning
// per §7, so this exists for completeness rather than direct use.
var ErrNoSlot = errs.New(errs.Capacity, "no compatible slot available")
