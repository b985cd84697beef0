// internal/drawplan/pools.go
// WF_TO_POOLS_DYNAMIC and WF_TO_POOLS_4: a shallow waterfall (1-2 rounds)
// buckets teams by finishing track, then each bucket plays full round-robin
// as a pool. WF_TO_POOLS_4 is the legacy 16-team/2-round case; the dynamic
// template covers every other supported pool size.

package drawplan

import (
	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
)

// poolSizes maps declared team count to (pool count, pool size) for
// WF_TO_POOLS_DYNAMIC. All listed sizes split evenly; §4.1 names this set
// as the supported dynamic range.
var poolSizes = map[int][2]int{
	8:  {2, 4},
	10: {2, 5},
	12: {3, 4},
	16: {4, 4},
	20: {4, 5},
	24: {6, 4},
	28: {7, 4},
}

// buildWaterfallToPools runs the WF rounds configured on the draw plan, then
// buckets the field into pools by WF-round finishing track and plays a full
// round robin within each pool.
func (b *builder) buildWaterfallToPools() {
	n := len(b.teams)
	dims, ok := poolSizes[n]
	if !ok {
		b.warnings = append(b.warnings, errs.NewWarning(errs.WarnUnsupportedFieldSize,
			map[string]any{"team_count": n},
			"field size %d has no configured WF_TO_POOLS_DYNAMIC preset; falling back to n/4 pools of 4", n))
		dims = [2]int{n / 4, 4}
	}
	poolCount, poolSize := dims
	if b.event.DrawPlan.PoolCount > 0 {
		poolCount = b.event.DrawPlan.PoolCount
	}
	if b.event.DrawPlan.PoolSize > 0 {
		poolSize = b.event.DrawPlan.PoolSize
	}

	r1, r1Warnings := b.buildWFRound1(b.prefix, b.teams, b.waterfallDuration())
	b.warnings = append(b.warnings, r1Warnings...)

	buckets := make([][]wfMatchRef, 0)
	wfRounds := b.event.DrawPlan.WaterfallRounds
	if wfRounds <= 0 {
		wfRounds = 1
	}

	if wfRounds == 1 || len(r1) < 4 {
		// One WF round: buckets are contiguous groups of R1 matches, each
		// bucket poolSize/2 matches (both entrants of each) -> pool of poolSize.
		buckets = bucketizeSingleRound(r1, poolCount)
	} else {
		winners, losers, r2Warnings := b.buildWFRound2(b.prefix, r1, b.waterfallDuration())
		b.warnings = append(b.warnings, r2Warnings...)
		buckets = bucketizeTwoRounds(winners, losers, poolCount)
	}

	for i, bucket := range buckets {
		label := poolLabel(i)
		// Bucket membership is provisional until the WF matches feeding it
		// are finalized (an upset changes who lands in this pool), so pool
		// play can only be generated against SEED_N placeholders here, sized
		// to however many entrants the bucket actually resolves to. Concrete
		// teams are substituted in later by projection.Confirm (§4.9, §8 S6).
		size := len(poolTeamsFromBucket(bucket, poolSize))
		b.appendPoolRoundRobinPlaceholders(label, size)
	}
}

// bucketizeSingleRound splits R1 matches into poolCount buckets by simple
// contiguous grouping: match i belongs to bucket i / ceil(len(r1)/poolCount).
// Each R1 match contributes both its entrants directly (one WF round is not
// enough to separate winners from losers before pool assignment).
func bucketizeSingleRound(r1 []wfMatchRef, poolCount int) [][]wfMatchRef {
	if poolCount <= 0 {
		poolCount = 1
	}
	perBucket := (len(r1) + poolCount - 1) / poolCount
	buckets := make([][]wfMatchRef, 0, poolCount)
	for i := 0; i < len(r1); i += perBucket {
		end := i + perBucket
		if end > len(r1) {
			end = len(r1)
		}
		buckets = append(buckets, r1[i:end])
	}
	return buckets
}

// bucketizeTwoRounds assigns each team to a bucket by its R2 finishing
// track (winner-track matches rank above loser-track matches), contiguous
// seed blocks by WF bucket rank as described in §4.1's projection rules.
// winners/losers already carry their entrant pool forward from R1 (see
// buildWFRound2), since the eventual winner/loser isn't known at generation
// time.
func bucketizeTwoRounds(winners, losers []wfMatchRef, poolCount int) [][]wfMatchRef {
	track := make([]wfMatchRef, 0, len(winners)+len(losers))
	track = append(track, winners...)
	track = append(track, losers...)
	return bucketizeSingleRound(track, poolCount)
}

// poolTeamsFromBucket flattens a bucket's match entrants into a team list
// capped at poolSize, seed-sorted so appendPoolRoundRobin's round-robin
// numbering stays deterministic.
func poolTeamsFromBucket(bucket []wfMatchRef, poolSize int) []*models.Team {
	seen := make(map[int64]bool)
	var teams []*models.Team
	for _, ref := range bucket {
		for _, t := range []*models.Team{ref.teamA, ref.teamB} {
			if t == nil || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			teams = append(teams, t)
		}
	}
	teams = sortedBySeed(teams)
	if poolSize > 0 && len(teams) > poolSize {
		teams = teams[:poolSize]
	}
	return teams
}

func poolLabel(i int) string {
	return string(rune('A' + i))
}

// bucketizeTeamsDirect splits an already seed-sorted team list into
// contiguous groups of groupSize, for templates with no real waterfall round
// to bucket by (wf_rounds == 0: membership is known upfront from declared
// seed position, so there's nothing to defer resolving).
func bucketizeTeamsDirect(teams []*models.Team, groupCount, groupSize int) [][]*models.Team {
	if groupCount <= 0 {
		groupCount = 1
	}
	groups := make([][]*models.Team, 0, groupCount)
	for i := 0; i < groupCount; i++ {
		start := i * groupSize
		if start >= len(teams) {
			break
		}
		end := start + groupSize
		if end > len(teams) {
			end = len(teams)
		}
		groups = append(groups, teams[start:end])
	}
	return groups
}
