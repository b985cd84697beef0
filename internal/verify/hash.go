// internal/verify/hash.go
// Canonical policy input/output hashing (§6, §8 P7). Pure stdlib:
// encoding/json over fixed-field structs (field order set by the struct
// definitions) and pre-sorted slices, plus crypto/sha256, already gives a
// deterministic, canonical byte stream — no
// third-party canonical-JSON library in the retrieved corpus does this any
// more directly than the standard encoder, so the stdlib is kept here (see
// DESIGN.md).
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"tournament-planner/internal/models"
)

type slotKey struct {
	Day      string `json:"day"`
	Time     string `json:"time"`
	Court    int    `json:"court"`
	Duration int    `json:"duration"`
}

type matchKey struct {
	ID    int64             `json:"id"`
	Event int64             `json:"event"`
	Type  models.MatchType  `json:"type"`
	Round int               `json:"round"`
	Seq   int               `json:"seq"`
}

type eventKey struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	TeamCount int    `json:"team_count"`
	Category  string `json:"category"`
	DrawPlan  string `json:"draw_plan_json"`
}

type lockKey struct {
	Match int64 `json:"match"`
	Slot  int64 `json:"slot"`
}

type slotLockKey struct {
	Slot   int64  `json:"slot"`
	Status string `json:"status"`
}

// InputHash computes the SHA-256 policy input hash over sorted slots,
// matches, events, match_locks, slot_locks and the policy version.
func InputHash(slots []*models.ScheduleSlot, matches []*models.Match, events []*models.Event, matchLocks []*models.MatchLock, slotLocks []*models.SlotLock, policyVersion string) string {
	sk := make([]slotKey, 0, len(slots))
	for _, s := range slots {
		sk = append(sk, slotKey{Day: s.DayDate.Format("2006-01-02"), Time: s.StartTime.Format("15:04"), Court: s.CourtNumber, Duration: s.BlockMinutes})
	}
	sort.Slice(sk, func(i, j int) bool { return lessSlotKey(sk[i], sk[j]) })

	mk := make([]matchKey, 0, len(matches))
	for _, m := range matches {
		mk = append(mk, matchKey{ID: m.ID, Event: m.EventID, Type: m.MatchType, Round: m.RoundIndex, Seq: m.SequenceInRound})
	}
	sort.Slice(mk, func(i, j int) bool { return mk[i].ID < mk[j].ID })

	ek := make([]eventKey, 0, len(events))
	for _, e := range events {
		dp, _ := json.Marshal(e.DrawPlan)
		ek = append(ek, eventKey{ID: e.ID, Name: e.Name, TeamCount: e.DeclaredTeamCount, Category: e.Category, DrawPlan: string(dp)})
	}
	sort.Slice(ek, func(i, j int) bool { return ek[i].ID < ek[j].ID })

	lk := make([]lockKey, 0, len(matchLocks))
	for _, l := range matchLocks {
		lk = append(lk, lockKey{Match: l.MatchID, Slot: l.SlotID})
	}
	sort.Slice(lk, func(i, j int) bool {
		if lk[i].Match != lk[j].Match {
			return lk[i].Match < lk[j].Match
		}
		return lk[i].Slot < lk[j].Slot
	})

	slk := make([]slotLockKey, 0, len(slotLocks))
	for _, l := range slotLocks {
		slk = append(slk, slotLockKey{Slot: l.SlotID, Status: l.Reason})
	}
	sort.Slice(slk, func(i, j int) bool { return slk[i].Slot < slk[j].Slot })

	payload := struct {
		Slots         []slotKey     `json:"slots"`
		Matches       []matchKey    `json:"matches"`
		Events        []eventKey    `json:"events"`
		MatchLocks    []lockKey     `json:"match_locks"`
		SlotLocks     []slotLockKey `json:"slot_locks"`
		PolicyVersion string        `json:"policy_version"`
	}{sk, mk, ek, lk, slk, policyVersion}

	return hashJSON(payload)
}

type assignmentKey struct {
	Day     string `json:"day"`
	Time    string `json:"time"`
	Court   int    `json:"court"`
	MatchID int64  `json:"match_id"`
}

// OutputHash computes the SHA-256 output hash over sorted {day, time,
// court, match_id} assignment tuples.
func OutputHash(assignments []*models.MatchAssignment, slotByID map[int64]*models.ScheduleSlot) string {
	ak := make([]assignmentKey, 0, len(assignments))
	for _, a := range assignments {
		s, ok := slotByID[a.SlotID]
		if !ok {
			continue
		}
		ak = append(ak, assignmentKey{Day: s.DayDate.Format("2006-01-02"), Time: s.StartTime.Format("15:04"), Court: s.CourtNumber, MatchID: a.MatchID})
	}
	sort.Slice(ak, func(i, j int) bool {
		if ak[i].Day != ak[j].Day {
			return ak[i].Day < ak[j].Day
		}
		if ak[i].Time != ak[j].Time {
			return ak[i].Time < ak[j].Time
		}
		if ak[i].Court != ak[j].Court {
			return ak[i].Court < ak[j].Court
		}
		return ak[i].MatchID < ak[j].MatchID
	})
	return hashJSON(ak)
}

// ShortHash returns the first 16 hex characters, the visible short hash.
func ShortHash(full string) string {
	if len(full) < 16 {
		return full
	}
	return full[:16]
}

func hashJSON(v any) string {
	data, _ := json.Marshal(v)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func lessSlotKey(a, b slotKey) bool {
	if a.Day != b.Day {
		return a.Day < b.Day
	}
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.Court < b.Court
}
