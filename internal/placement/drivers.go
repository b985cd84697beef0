// internal/placement/drivers.go
// The two interchangeable placement drivers: master-sequence and daily
// policy. Both write MatchAssignment rows through the shared Context.

package placement

import (
	"context"
	"sort"
	"time"

	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/sequence"
	"tournament-planner/internal/store"
)

// AssignResult is the outcome of one placement run.
type AssignResult struct {
	Placed   int
	Overflow []int64 // match ids that spilled past the last day
	Warnings []errs.Warning
}

// RunMasterSequence walks the master sequence in rank order; for each match,
// it claims the first compatible slot across the full remaining slot pool
// in (day, start_time, court) order. All courts are used (spare-court
// reservation disabled per §4.3.1).
func RunMasterSequence(ctx context.Context, tx store.Tx, c *Context, versionID int64, matches []*models.Match, events []*models.Event, slots []*models.ScheduleSlot) (*AssignResult, error) {
	wfRounds := map[int64]int{}
	for _, e := range events {
		wfRounds[e.ID] = e.DrawPlan.WaterfallRounds
	}
	order := sequence.Build(matches, events, wfRounds)

	res := &AssignResult{}
	for _, entry := range order {
		m := entry.Match
		if _, already := c.Assigned[m.ID]; already {
			continue
		}
		slotID, ok := c.FirstFit(m, slots, nil)
		if !ok {
			res.Overflow = append(res.Overflow, m.ID)
			res.Warnings = append(res.Warnings, errs.NewWarning(errs.WarnNoAvailableSlot,
				map[string]any{"match_id": m.ID, "match_code": m.MatchCode}, "no slot available for %s", m.MatchCode))
			continue
		}
		a := &models.MatchAssignment{VersionID: versionID, MatchID: m.ID, SlotID: slotID, AssignedBy: models.AssignedBySequenceV1}
		if err := tx.CreateAssignment(ctx, a); err != nil {
			return nil, err
		}
		res.Placed++
	}
	return res, nil
}

// Batch is a named, ordered list of match ids executed as one unit; the
// daily policy driver builds these per §4.3.2 and re-filters subsequent
// batches through live team-day / event-round counters.
type Batch struct {
	Name     string
	MatchIDs []int64
}

// DayPosition classifies a tournament day for batch-policy purposes.
type DayPosition int

const (
	DayFirst DayPosition = iota
	DayMiddle
	DayLast
)

// BuildBatches constructs the ordered PlacementBatches for one day given its
// position, following §4.3.2's Day-1 / Day-2..N-1 / Last-day policies.
func BuildBatches(pos DayPosition, day time.Time, matches []*models.Match, events []*models.Event) []Batch {
	switch pos {
	case DayFirst:
		return batchesDay1(matches, events)
	case DayLast:
		return batchesLastDay(matches, events)
	default:
		return batchesMiddleDay(matches, events)
	}
}

func sortedEventsByPriority(events []*models.Event) []*models.Event {
	out := append([]*models.Event(nil), events...)
	sort.Slice(out, func(i, j int) bool {
		ci, idi := out[i].Priority()
		cj, idj := out[j].Priority()
		if ci != cj {
			return ci < cj
		}
		return idi < idj
	})
	return out
}

func matchIDsOf(matches []*models.Match, pred func(*models.Match) bool) []int64 {
	var out []int64
	for _, m := range matches {
		if pred(m) {
			out = append(out, m.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func batchesDay1(matches []*models.Match, events []*models.Event) []Batch {
	var batches []Batch
	for _, e := range sortedEventsByPriority(events) {
		ids := matchIDsOf(matches, func(m *models.Match) bool {
			return m.EventID == e.ID && m.MatchType == models.MatchTypeWF && m.RoundIndex == 1
		})
		if len(ids) > 0 {
			batches = append(batches, Batch{Name: "wf_r1_" + e.Name, MatchIDs: ids})
		}
	}
	for _, e := range sortedEventsByPriority(events) {
		if e.DrawPlan.Template == models.TemplateWFtoPoolsDynamic || e.DrawPlan.Template == models.TemplateWFtoPools4 || e.DrawPlan.Template == models.TemplateWFtoBrackets8 {
			continue
		}
		ids := matchIDsOf(matches, func(m *models.Match) bool { return m.EventID == e.ID && m.RoundIndex == 1 })
		if len(ids) > 0 {
			batches = append(batches, Batch{Name: "first_round_" + e.Name, MatchIDs: ids})
		}
	}
	for _, e := range sortedEventsByPriority(events) {
		ids := matchIDsOf(matches, func(m *models.Match) bool {
			return m.EventID == e.ID && m.MatchType == models.MatchTypeWF && m.RoundIndex == 2
		})
		if len(ids) > 0 {
			batches = append(batches, Batch{Name: "wf_r2_" + e.Name, MatchIDs: ids})
		}
	}
	remaining := matchIDsOf(matches, func(m *models.Match) bool { return true })
	if len(remaining) > 0 {
		batches = append(batches, Batch{Name: "day1_remaining", MatchIDs: remaining})
	}
	return batches
}

func batchesMiddleDay(matches []*models.Match, events []*models.Event) []Batch {
	var batches []Batch
	batches = append(batches, Batch{Name: "wf_safety_net", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool { return m.MatchType == models.MatchTypeWF })})
	batches = append(batches, Batch{Name: "qf_rr1", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool {
		return (m.MatchType == models.MatchTypeMain && m.RoundIndex == 1) || (m.MatchType == models.MatchTypeRR && m.RoundIndex == 1)
	})})
	batches = append(batches, Batch{Name: "sf_rr2", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool {
		return (m.MatchType == models.MatchTypeMain && m.RoundIndex == 2) || (m.MatchType == models.MatchTypeRR && m.RoundIndex == 2)
	})})
	batches = append(batches, Batch{Name: "extra_rr_pool_play", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool {
		return m.MatchType == models.MatchTypeRR && m.RoundIndex >= 3
	})})
	batches = append(batches, Batch{Name: "placement", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool { return m.MatchType == models.MatchTypePlacement })})
	return batches
}

func batchesLastDay(matches []*models.Match, events []*models.Event) []Batch {
	var batches []Batch
	batches = append(batches, Batch{Name: "remaining_wf", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool { return m.MatchType == models.MatchTypeWF })})
	batches = append(batches, Batch{Name: "all_qf", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool {
		return (m.MatchType == models.MatchTypeMain || m.MatchType == models.MatchTypeConsolation) && m.RoundIndex == 1
	})})
	batches = append(batches, Batch{Name: "all_sf", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool {
		return (m.MatchType == models.MatchTypeMain || m.MatchType == models.MatchTypeConsolation) && m.RoundIndex == 2
	})})
	batches = append(batches, Batch{Name: "remaining_rr", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool { return m.MatchType == models.MatchTypeRR })})
	batches = append(batches, Batch{Name: "all_finals", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool {
		return (m.MatchType == models.MatchTypeMain || m.MatchType == models.MatchTypeConsolation) && m.RoundIndex >= 3
	})})
	batches = append(batches, Batch{Name: "placement", MatchIDs: matchIDsOf(matches, func(m *models.Match) bool { return m.MatchType == models.MatchTypePlacement })})
	return batches
}

// RunDailyPolicy executes the batch policy for one tournament day, claiming
// only slots on that day.
func RunDailyPolicy(ctx context.Context, tx store.Tx, c *Context, versionID int64, pos DayPosition, day time.Time, matches []*models.Match, events []*models.Event, daySlots []*models.ScheduleSlot) (*AssignResult, error) {
	matchByID := make(map[int64]*models.Match, len(matches))
	for _, m := range matches {
		matchByID[m.ID] = m
	}
	batches := BuildBatches(pos, day, matches, events)

	res := &AssignResult{}
	for _, b := range batches {
		for _, id := range b.MatchIDs {
			m := matchByID[id]
			if m == nil {
				continue
			}
			if _, already := c.Assigned[m.ID]; already {
				continue
			}
			slotID, ok := c.FirstFit(m, daySlots, &day)
			if !ok {
				res.Warnings = append(res.Warnings, errs.NewWarning(errs.WarnNoAvailableSlot,
					map[string]any{"match_id": m.ID, "match_code": m.MatchCode}, "no slot on day for %s", m.MatchCode))
				continue
			}
			a := &models.MatchAssignment{VersionID: versionID, MatchID: m.ID, SlotID: slotID, AssignedBy: models.AssignedByAssignScopeV1}
			if err := tx.CreateAssignment(ctx, a); err != nil {
				return nil, err
			}
			res.Placed++
		}
	}
	return res, nil
}
