// internal/drawplan/roundrobin.go
// RR_ONLY template and the pool round-robin generator shared by
// WF_TO_POOLS_*. Mirrors the teacher's generateRoundRobinFixtures, but
// assigns round_index via the circle method (with the pool-size-4 preset
// from §4.1) instead of dumping every pairing into round 1.

package drawplan

import (
	"fmt"

	"tournament-planner/internal/models"
)

// circleMethodRounds returns, for n teams (indices 0..n-1), one []pair per
// round using the standard circle method: fix team 0, rotate the rest. An
// odd n gets a bye slot, so one team sits out each round. For n == 4 this is overridden by the exact preset in §4.1 so
// that the top two seeds meet in the final round.
func circleMethodRounds(n int) [][][2]int {
	if n == 4 {
		return [][][2]int{
			{{0, 3}, {1, 2}}, // R1: 1v4 2v3
			{{0, 2}, {1, 3}}, // R2: 1v3 2v4
			{{0, 1}, {2, 3}}, // R3: 1v2 3v4 (top-2 seeds meet last)
		}
	}

	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	rounds := n - 1
	if n%2 != 0 {
		// Odd team count: add a bye slot (-1); circle method still applies.
		ids = append(ids, -1)
		rounds = len(ids) - 1
	}
	m := len(ids)
	out := make([][][2]int, 0, rounds)
	for r := 0; r < rounds; r++ {
		var pairs [][2]int
		for i := 0; i < m/2; i++ {
			a, bb := ids[i], ids[m-1-i]
			if a != -1 && bb != -1 {
				pairs = append(pairs, [2]int{a, bb})
			}
		}
		out = append(out, pairs)
		// rotate all but the first element
		last := ids[m-1]
		copy(ids[2:], ids[1:m-1])
		ids[1] = last
	}
	return out
}

// buildRoundRobinOnly implements the RR_ONLY template: n(n-1)/2 matches.
func (b *builder) buildRoundRobinOnly() {
	b.appendPoolRoundRobin("", b.teams)
}

// appendPoolRoundRobin generates round-robin matches among teams (already
// sorted by seed), with match codes scoped to poolLabel (empty string for a
// plain RR_ONLY event, "A"/"B"/... for WF_TO_POOLS_*). sequence_in_round is
// deterministic by seed order within the round.
func (b *builder) appendPoolRoundRobin(poolLabel string, teams []*models.Team) {
	rounds := circleMethodRounds(len(teams))
	codePrefix := b.prefix
	if poolLabel != "" {
		codePrefix = fmt.Sprintf("%s_POOL%s", b.prefix, poolLabel)
	}
	for r, pairs := range rounds {
		round := r + 1
		for seq, pair := range pairs {
			a, bb := teams[pair[0]], teams[pair[1]]
			code := fmt.Sprintf("%s_RR_R%d_M%02d", codePrefix, round, seq+1)
			m := b.newMatch(models.MatchTypeRR, round, seq+1, b.standardDuration(), code)
			m.TeamAID = &a.ID
			m.TeamBID = &bb.ID
		}
	}
}

// appendPoolRoundRobinPlaceholders generates a pool's round-robin fixtures
// before its entrants are known: each slot carries a SEED_N placeholder
// (1-based, within this pool) instead of a resolved team id.
// projection.Confirm rewrites these once the WF matches that feed the pool
// are final (§4.9, §8 S6) — an upset in the waterfall changes who SEED_N
// actually is.
func (b *builder) appendPoolRoundRobinPlaceholders(poolLabel string, poolSize int) {
	rounds := circleMethodRounds(poolSize)
	codePrefix := fmt.Sprintf("%s_POOL%s", b.prefix, poolLabel)
	for r, pairs := range rounds {
		round := r + 1
		for seq, pair := range pairs {
			code := fmt.Sprintf("%s_RR_R%d_M%02d", codePrefix, round, seq+1)
			m := b.newMatch(models.MatchTypeRR, round, seq+1, b.standardDuration(), code)
			m.PlaceholderSideA = fmt.Sprintf("SEED_%d", pair[0]+1)
			m.PlaceholderSideB = fmt.Sprintf("SEED_%d", pair[1]+1)
		}
	}
}
