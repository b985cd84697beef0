// internal/verify/verify.go
// Policy Invariants Verifier (§4.4): re-checks I4-I8 for a day's placement
// and the per-(event, day) fairness rule, returning a structured report. Grounded
// in the teacher's validation-layer style (services/validators.go) of
// returning a slice of typed problems rather than failing fast.
package verify

import (
	"context"
	"sort"
	"time"

	"tournament-planner/internal/config"
	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/store"
)

// Finding is one invariant violation.
type Finding struct {
	Code    errs.WarningCode
	Detail  map[string]any
	Message string
}

// Report is the result of one verify_day or verify_full call.
type Report struct {
	Findings  []Finding
	InputHash string
	OutputHash string
}

// OK reports whether the report carries no findings.
func (r Report) OK() bool { return len(r.Findings) == 0 }

type placedMatch struct {
	match *models.Match
	slot  *models.ScheduleSlot
}

// Day verifies one tournament day's assignments against I4-I8 plus the
// fairness check, given every match/slot/assignment/event for the version
// (the caller filters by day; Day itself is pure).
func Day(cfg config.SchedulingConfig, day time.Time, matches []*models.Match, slots []*models.ScheduleSlot, assignments []*models.MatchAssignment, events []*models.Event) []Finding {
	matchByID := make(map[int64]*models.Match, len(matches))
	for _, m := range matches {
		matchByID[m.ID] = m
	}
	slotByID := make(map[int64]*models.ScheduleSlot, len(slots))
	for _, s := range slots {
		slotByID[s.ID] = s
	}

	var dayPlaced []placedMatch
	for _, a := range assignments {
		s, ok := slotByID[a.SlotID]
		if !ok || !sameDay(s.DayDate, day) {
			continue
		}
		m, ok := matchByID[a.MatchID]
		if !ok {
			continue
		}
		dayPlaced = append(dayPlaced, placedMatch{match: m, slot: s})
	}
	sort.Slice(dayPlaced, func(i, j int) bool { return dayPlaced[i].slot.StartTime.Before(dayPlaced[j].slot.StartTime) })

	var findings []Finding
	findings = append(findings, checkDailyCap(dayPlaced)...)
	findings = append(findings, checkStageOrdering(dayPlaced, matchByID, slotByID)...)
	findings = append(findings, checkRest(cfg, dayPlaced)...)
	findings = append(findings, checkConsolationOrdering(dayPlaced, matches, assignments, slotByID)...)
	findings = append(findings, checkSpareCourt(cfg, dayPlaced, slots, day)...)
	findings = append(findings, checkFairness(dayPlaced, events)...)
	return findings
}

// checkDailyCap enforces I6 (P1): no team plays more than 2 matches/day.
func checkDailyCap(placed []placedMatch) []Finding {
	counts := make(map[int64]int)
	for _, p := range placed {
		for _, t := range p.match.TeamIDs() {
			counts[t]++
		}
	}
	var findings []Finding
	for team, count := range counts {
		if count > 2 {
			findings = append(findings, Finding{
				Code:    errs.WarnTeamOverDailyCap,
				Detail:  map[string]any{"team_id": team, "count": count, "cap": 2},
				Message: "team exceeds daily cap",
			})
		}
	}
	return findings
}

// checkStageOrdering enforces I4/P4/P6 for source-match links: a placed
// upstream match must end before its placed downstream match starts. It
// does not check that a round's prior round is fully assigned.
func checkStageOrdering(placed []placedMatch, matchByID map[int64]*models.Match, slotByID map[int64]*models.ScheduleSlot) []Finding {
	placedByMatch := make(map[int64]placedMatch, len(placed))
	for _, p := range placed {
		placedByMatch[p.match.ID] = p
	}
	var findings []Finding
	for _, p := range placed {
		for _, src := range p.match.Sources() {
			up, ok := placedByMatch[src.SourceMatch]
			if !ok {
				continue
			}
			if up.slot.EndTime.After(p.slot.StartTime) {
				findings = append(findings, Finding{
					Code:    errs.WarnUnresolvedUpstreamNotBefore,
					Detail:  map[string]any{"match_code": p.match.MatchCode, "source_match_code": up.match.MatchCode},
					Message: "upstream match does not end before downstream start",
				})
			}
		}
	}
	return findings
}

func requiredRest(cfg config.SchedulingConfig, a, b models.MatchType) time.Duration {
	wf := a == models.MatchTypeWF || b == models.MatchTypeWF
	if wf && a != b {
		return time.Duration(cfg.RestWFToScoringMinutes) * time.Minute
	}
	return time.Duration(cfg.RestScoringToScoringMinutes) * time.Minute
}

// checkRest enforces I7/P5: adjacent same-day matches for one team must
// respect the stage-specific rest gap (or the universal floor at minimum).
func checkRest(cfg config.SchedulingConfig, placed []placedMatch) []Finding {
	byTeam := make(map[int64][]placedMatch)
	for _, p := range placed {
		for _, t := range p.match.TeamIDs() {
			byTeam[t] = append(byTeam[t], p)
		}
	}
	var findings []Finding
	for team, ps := range byTeam {
		sort.Slice(ps, func(i, j int) bool { return ps[i].slot.StartTime.Before(ps[j].slot.StartTime) })
		for i := 1; i < len(ps); i++ {
			prev, cur := ps[i-1], ps[i]
			gap := cur.slot.StartTime.Sub(prev.slot.EndTime)
			need := requiredRest(cfg, prev.match.MatchType, cur.match.MatchType)
			floor := time.Duration(cfg.RestUniversalFloorMinutes) * time.Minute
			if cfg.WeatherRelaxUniversalFloor {
				floor = 0
			}
			if gap < need && gap < floor {
				code := errs.WarnRestScoringToScoring
				if prev.match.MatchType == models.MatchTypeWF || cur.match.MatchType == models.MatchTypeWF {
					code = errs.WarnRestWFToScoring
				}
				findings = append(findings, Finding{
					Code: code,
					Detail: map[string]any{
						"team_id": team, "match_a": prev.match.MatchCode, "match_b": cur.match.MatchCode,
						"gap_minutes": int(gap.Minutes()), "required_minutes": int(need.Minutes()),
					},
					Message: "insufficient rest between adjacent matches",
				})
			}
		}
	}
	return findings
}

// checkConsolationOrdering enforces I8: consolation round N isn't scheduled
// until round N-1 is fully assigned (partial-round finding otherwise).
func checkConsolationOrdering(placed []placedMatch, allMatches []*models.Match, assignments []*models.MatchAssignment, slotByID map[int64]*models.ScheduleSlot) []Finding {
	assignedMatch := make(map[int64]bool, len(assignments))
	for _, a := range assignments {
		assignedMatch[a.MatchID] = true
	}

	type key struct {
		event int64
		round int
	}
	byRound := make(map[key][]*models.Match)
	for _, m := range allMatches {
		if m.MatchType != models.MatchTypeConsolation {
			continue
		}
		byRound[key{m.EventID, m.RoundIndex}] = append(byRound[key{m.EventID, m.RoundIndex}], m)
	}

	var findings []Finding
	for _, p := range placed {
		if p.match.MatchType != models.MatchTypeConsolation {
			continue
		}
		prior := byRound[key{p.match.EventID, p.match.RoundIndex - 1}]
		for _, pm := range prior {
			if !assignedMatch[pm.ID] {
				findings = append(findings, Finding{
					Code:    errs.WarnConsolationPartialRound,
					Detail:  map[string]any{"match_code": p.match.MatchCode, "blocking_match_code": pm.MatchCode},
					Message: "consolation round placed before prior round fully assigned",
				})
			}
		}
	}
	return findings
}

// checkSpareCourt reports a finding when the day's placed matches exceed
// its slots minus cfg.SpareCourtReservationPerBucket. The reservation is
// subtracted once for the whole day (slots are not grouped into buckets),
// and the finding does not distinguish advisory from capacity-tight days.
func checkSpareCourt(cfg config.SchedulingConfig, placed []placedMatch, allSlots []*models.ScheduleSlot, day time.Time) []Finding {
	var daySlots []*models.ScheduleSlot
	for _, s := range allSlots {
		if sameDay(s.DayDate, day) && s.IsActive {
			daySlots = append(daySlots, s)
		}
	}
	usable := len(daySlots) - cfg.SpareCourtReservationPerBucket
	if usable < 0 {
		usable = 0
	}
	if len(placed) <= usable {
		return nil
	}
	return []Finding{{
		Code:    errs.WarnSpareCourtViolation,
		Detail:  map[string]any{"placed": len(placed), "usable": usable},
		Message: "placed matches exceed usable slots after spare-court reservation",
	}}
}

// checkFairness: per (event, day), no team's second match starts before
// every team in the event has started its first (audit-only, §4.4).
func checkFairness(placed []placedMatch, events []*models.Event) []Finding {
	type eventKey struct{ event int64 }
	firstStartByTeam := make(map[int64]time.Time)
	startsByEvent := make(map[int64][]placedMatch)
	for _, p := range placed {
		startsByEvent[p.match.EventID] = append(startsByEvent[p.match.EventID], p)
	}

	var findings []Finding
	for eventID, ps := range startsByEvent {
		sort.Slice(ps, func(i, j int) bool { return ps[i].slot.StartTime.Before(ps[j].slot.StartTime) })
		seenSecond := make(map[int64]bool)
		lastAllFirstAt := time.Time{}
		allFirstSeen := make(map[int64]bool)
		for _, p := range ps {
			for _, t := range p.match.TeamIDs() {
				if !allFirstSeen[t] {
					allFirstSeen[t] = true
					firstStartByTeam[t] = p.slot.StartTime
					if p.slot.StartTime.After(lastAllFirstAt) {
						lastAllFirstAt = p.slot.StartTime
					}
				}
			}
		}
		for _, p := range ps {
			for _, t := range p.match.TeamIDs() {
				if p.slot.StartTime.After(firstStartByTeam[t]) && !seenSecond[t] && p.slot.StartTime.Before(lastAllFirstAt) {
					seenSecond[t] = true
					findings = append(findings, Finding{
						Code:    errs.WarnFairnessSecondBeforeFirst,
						Detail:  map[string]any{"event_id": eventID, "team_id": t},
						Message: "team's second match starts before every team's first",
					})
				}
			}
		}
		_ = eventKey{eventID}
	}
	return findings
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Full runs Day for every distinct day a slot exists on.
func Full(cfg config.SchedulingConfig, matches []*models.Match, slots []*models.ScheduleSlot, assignments []*models.MatchAssignment, events []*models.Event) []Finding {
	days := map[string]time.Time{}
	for _, s := range slots {
		days[s.DayDate.Format("2006-01-02")] = s.DayDate
	}
	var out []Finding
	var keys []string
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, Day(cfg, days[k], matches, slots, assignments, events)...)
	}
	return out
}

// LoadVersionData is a convenience fetch of everything Day/Full need for a
// version, used by the engine facade.
func LoadVersionData(ctx context.Context, tx store.Tx, tournamentID, versionID int64) ([]*models.Match, []*models.ScheduleSlot, []*models.MatchAssignment, []*models.Event, error) {
	matches, err := tx.ListMatchesByVersion(ctx, versionID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	slots, err := tx.ListSlotsByVersion(ctx, versionID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	assignments, err := tx.ListAssignmentsByVersion(ctx, versionID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	events, err := tx.ListEventsByTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return matches, slots, assignments, events, nil
}
