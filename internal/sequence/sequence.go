// internal/sequence/sequence.go
// Master Sequence Builder (§4.2): computes one global playing order for a
// version's matches, independent of slots. Grounded in the teacher's
// TournamentService bracket round-numbering (round_index as a sortable
// rank) generalized to a cross-event phase bucket.
package sequence

import (
	"sort"

	"tournament-planner/internal/models"
)

// Entry is one ranked slot in the master sequence.
type Entry struct {
	Match       *models.Match
	PhaseBucket int
	TeamRound   int
	Rank        int
}

// siblingOrder orders match types sharing a team-round: MAIN < RR < CONSOLATION < PLACEMENT.
func siblingOrder(mt models.MatchType) int {
	switch mt {
	case models.MatchTypeMain:
		return 0
	case models.MatchTypeRR, models.MatchTypeWF:
		return 1
	case models.MatchTypeConsolation:
		return 2
	case models.MatchTypePlacement:
		return 3
	default:
		return 9
	}
}

// teamRound computes the team-round index (1st match for a team, 2nd, ...)
// for a match: WF/RR round_index counts directly; bracket/consolation/
// placement stages continue numbering after the event's waterfall rounds.
func teamRound(m *models.Match, wfRounds int) int {
	switch m.MatchType {
	case models.MatchTypeWF, models.MatchTypeRR:
		return m.RoundIndex
	default:
		return wfRounds + m.RoundIndex
	}
}

// phaseBucket packs (team_round, sibling_order) into the tens/units digits
// described in §4.2.
func phaseBucket(teamRound, sibling int) int {
	return teamRound*10 + sibling
}

// Build computes the master sequence for one version's matches. wfRoundsByEvent
// supplies each event's configured waterfall round count (0 for RR_ONLY events).
func Build(matches []*models.Match, events []*models.Event, wfRoundsByEvent map[int64]int) []Entry {
	eventByID := make(map[int64]*models.Event, len(events))
	for _, e := range events {
		eventByID[e.ID] = e
	}

	// Group matches by phase bucket.
	byBucket := make(map[int][]*models.Match)
	buckets := []int{}
	for _, m := range matches {
		wf := wfRoundsByEvent[m.EventID]
		tr := teamRound(m, wf)
		pb := phaseBucket(tr, siblingOrder(m.MatchType))
		if _, ok := byBucket[pb]; !ok {
			buckets = append(buckets, pb)
		}
		byBucket[pb] = append(byBucket[pb], m)
	}
	sort.Ints(buckets)

	var out []Entry
	rank := 0
	for _, pb := range buckets {
		teamRoundIdx := pb / 10
		rotation := teamRoundIdx / 2
		ordered := visitOrder(byBucket[pb], eventByID, rotation)
		for _, m := range ordered {
			rank++
			out = append(out, Entry{Match: m, PhaseBucket: pb, TeamRound: teamRoundIdx, Rank: rank})
		}
	}
	return out
}

// visitOrder groups a phase bucket's matches by event (largest team_count
// first, then event_id), rotates the event visiting order by `rotation`
// positions, then sorts matches within each event by match id.
func visitOrder(matches []*models.Match, eventByID map[int64]*models.Event, rotation int) []*models.Match {
	byEvent := make(map[int64][]*models.Match)
	var eventIDs []int64
	for _, m := range matches {
		if _, ok := byEvent[m.EventID]; !ok {
			eventIDs = append(eventIDs, m.EventID)
		}
		byEvent[m.EventID] = append(byEvent[m.EventID], m)
	}

	sort.Slice(eventIDs, func(i, j int) bool {
		ei, ej := eventByID[eventIDs[i]], eventByID[eventIDs[j]]
		if ei == nil || ej == nil {
			return eventIDs[i] < eventIDs[j]
		}
		ci, idi := ei.Priority()
		cj, idj := ej.Priority()
		if ci != cj {
			return ci < cj
		}
		return idi < idj
	})

	if n := len(eventIDs); n > 0 {
		offset := rotation % n
		eventIDs = append(eventIDs[offset:], eventIDs[:offset]...)
	}

	var out []*models.Match
	for _, eid := range eventIDs {
		ms := byEvent[eid]
		sort.Slice(ms, func(i, j int) bool { return ms[i].ID < ms[j].ID })
		out = append(out, ms...)
	}
	return out
}

// DayOfTeamRound assigns a team-round to a tournament day: two team-rounds
// per day, with any odd trailing team-round landing on the final day by
// construction of the 1-indexed pairing.
func DayOfTeamRound(teamRound int) int {
	return (teamRound-1)/2 + 1
}
