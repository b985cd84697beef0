// internal/projection/projection.go
// WF -> Pool Projection (§4.9): computes projected pool assignments from
// whatever subset of WF matches is FINAL, and confirms them by rewriting
// RR SEED_N placeholders into concrete team ids. Grounded in the draw plan
// engine's own bucket/rank logic (internal/drawplan), read back out against
// live match results instead of forward-generated from seeds.
package projection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/store"
)

// Status is the confidence level of one projected team placement.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusProjected Status = "projected"
	StatusPending   Status = "pending"
)

// TeamProjection is one team's projected (pool, seed-within-pool) slot.
type TeamProjection struct {
	TeamID      int64
	Bucket      string // e.g. "W", "L", "WW", "WL", "LW", "LL"
	BucketRank  int
	PoolLabel   string
	Status      Status
}

// Project computes the current WF -> pool projection for one event from its
// WF matches' current results (FINAL or not).
func Project(event *models.Event, teams []*models.Team, wfMatches []*models.Match) []TeamProjection {
	teamByID := make(map[int64]*models.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}

	r1 := filterRound(wfMatches, 1)
	r2 := filterRound(wfMatches, 2)

	bucketOf := make(map[int64]string, len(teams))
	statusOf := make(map[int64]Status, len(teams))

	for _, m := range r1 {
		if m.RuntimeStatus == models.StatusFinal && m.WinnerTeamID != nil {
			loser, _ := m.OtherTeam(*m.WinnerTeamID)
			bucketOf[*m.WinnerTeamID] = "W"
			bucketOf[loser] = "L"
			statusOf[*m.WinnerTeamID] = StatusConfirmed
			statusOf[loser] = StatusConfirmed
		} else {
			for _, id := range m.TeamIDs() {
				bucketOf[id] = "?"
				statusOf[id] = StatusPending
			}
		}
	}

	if len(r2) > 0 {
		for _, m := range r2 {
			if m.RuntimeStatus != models.StatusFinal || m.WinnerTeamID == nil {
				for _, id := range m.TeamIDs() {
					if bucketOf[id] != "?" {
						statusOf[id] = StatusProjected
					}
				}
				continue
			}
			loser, _ := m.OtherTeam(*m.WinnerTeamID)
			track := trackOf(m)
			bucketOf[*m.WinnerTeamID] = track + "W"
			bucketOf[loser] = track + "L"
			statusOf[*m.WinnerTeamID] = StatusConfirmed
			statusOf[loser] = StatusConfirmed
		}
	}

	var projections []TeamProjection
	for id, bucket := range bucketOf {
		projections = append(projections, TeamProjection{TeamID: id, Bucket: bucket, Status: statusOf[id]})
	}
	sort.Slice(projections, func(i, j int) bool {
		if projections[i].Bucket != projections[j].Bucket {
			return projections[i].Bucket < projections[j].Bucket
		}
		si, sj := teamByID[projections[i].TeamID], teamByID[projections[j].TeamID]
		if si == nil || sj == nil {
			return projections[i].TeamID < projections[j].TeamID
		}
		return si.Seed < sj.Seed
	})

	byBucket := map[string][]int{}
	for i, p := range projections {
		byBucket[p.Bucket] = append(byBucket[p.Bucket], i)
	}
	for _, idxs := range byBucket {
		for rank, idx := range idxs {
			projections[idx].BucketRank = rank + 1
		}
	}

	assignPoolLabels(event, projections)
	return projections
}

func filterRound(matches []*models.Match, round int) []*models.Match {
	var out []*models.Match
	for _, m := range matches {
		if m.MatchType == models.MatchTypeWF && m.RoundIndex == round {
			out = append(out, m)
		}
	}
	return out
}

// trackOf derives the winner/loser track prefix a round-2 match belongs to
// from its placeholder string ("WINNER:code" / "LOSER:code").
func trackOf(m *models.Match) string {
	if strings.HasPrefix(m.PlaceholderSideA, string(models.RoleWinner)+":") {
		return "W"
	}
	return "L"
}

// assignPoolLabels fills contiguous seed blocks by WF bucket rank into pool
// labels A, B, C, ... sized by event.DrawPlan.PoolSize.
func assignPoolLabels(event *models.Event, projections []TeamProjection) {
	poolSize := event.DrawPlan.PoolSize
	if poolSize <= 0 {
		poolSize = len(projections)
	}
	buckets := sortedBucketOrder(projections)
	idx := 0
	for _, bucket := range buckets {
		for _, p := range bucketMembers(projections, bucket) {
			pool := idx / poolSize
			projections[p].PoolLabel = string(rune('A' + pool))
			idx++
		}
	}
}

func sortedBucketOrder(projections []TeamProjection) []string {
	seen := map[string]bool{}
	var order []string
	for _, p := range projections {
		if !seen[p.Bucket] {
			seen[p.Bucket] = true
			order = append(order, p.Bucket)
		}
	}
	sort.Strings(order)
	return order
}

func bucketMembers(projections []TeamProjection, bucket string) []int {
	var out []int
	for i, p := range projections {
		if p.Bucket == bucket {
			out = append(out, i)
		}
	}
	return out
}

// ConfirmPayload is the explicit {pool_label, team_ids[]} confirmation
// request. Draft-only, and only valid once every WF match is FINAL.
type ConfirmPayload struct {
	PoolLabel string
	TeamIDs   []int64
}

// Confirm rewrites RR matches' SEED_N placeholders into concrete team ids
// for one pool, once all WF matches are FINAL.
func Confirm(ctx context.Context, tx store.Tx, v *models.ScheduleVersion, eventID int64, wfMatches []*models.Match, payload ConfirmPayload) error {
	if !v.IsDraft() {
		return errs.New(errs.VersionNotDraft, "version %d is not a draft", v.ID)
	}
	for _, m := range wfMatches {
		if m.RuntimeStatus != models.StatusFinal {
			return errs.New(errs.Validation, "cannot confirm pool placement until all WF matches are FINAL")
		}
	}

	rrMatches, err := tx.ListMatchesByVersionAndEvent(ctx, v.ID, eventID)
	if err != nil {
		return err
	}
	poolMarker := fmt.Sprintf("_POOL%s_", payload.PoolLabel)
	for _, m := range rrMatches {
		if m.MatchType != models.MatchTypeRR {
			continue
		}
		if !strings.Contains(m.MatchCode, poolMarker) {
			continue
		}
		changed := false
		if seed, ok := seedIndex(m.PlaceholderSideA); ok && seed-1 < len(payload.TeamIDs) {
			id := payload.TeamIDs[seed-1]
			m.TeamAID = &id
			m.PlaceholderSideA = ""
			changed = true
		}
		if seed, ok := seedIndex(m.PlaceholderSideB); ok && seed-1 < len(payload.TeamIDs) {
			id := payload.TeamIDs[seed-1]
			m.TeamBID = &id
			m.PlaceholderSideB = ""
			changed = true
		}
		if changed {
			if err := tx.UpdateMatch(ctx, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedIndex(placeholder string) (int, bool) {
	var n int
	if _, err := fmt.Sscanf(placeholder, "SEED_%d", &n); err != nil {
		return 0, false
	}
	return n, true
}
