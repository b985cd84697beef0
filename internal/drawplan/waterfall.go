// internal/drawplan/waterfall.go
// Waterfall round generation: the avoid-group-aware R1 half-split solver
// and the block-of-4 R2 wiring described in §4.1. Shared by
// WF_TO_POOLS_DYNAMIC/_4 and WF_TO_BRACKETS_8.

package drawplan

import (
	"fmt"
	"sort"

	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
)

// wfMatchRef is a generated WF match plus the team ids seeded into it, kept
// alongside the *models.Match so round-2 wiring can reason about avoid
// groups without a second lookup pass.
type wfMatchRef struct {
	match *models.Match
	teamA *models.Team
	teamB *models.Team
}

func avoidGroupsOf(teams ...*models.Team) map[string]bool {
	groups := map[string]bool{}
	for _, t := range teams {
		if t != nil && t.AvoidGroup != nil && *t.AvoidGroup != "" {
			groups[*t.AvoidGroup] = true
		}
	}
	return groups
}

func intersects(a, b map[string]bool) bool {
	for g := range a {
		if b[g] {
			return true
		}
	}
	return false
}

// buildWFRound1 pairs the given seed-sorted teams half-split (top half vs
// bottom half), then greedily resolves avoid-group collisions by swapping
// bottom-half partners, tie-broken by seed-minimum. Unavoidable conflicts
// are surfaced as warnings, never errors.
func (b *builder) buildWFRound1(codePrefix string, teams []*models.Team, duration int) ([]wfMatchRef, []errs.Warning) {
	n := len(teams)
	half := n / 2
	top := teams[:half]
	bottom := append([]*models.Team(nil), teams[half:]...)

	// Greedy conflict resolution: for each top[i] initially paired with
	// bottom[i], if that's a conflict, look for the lowest-seed bottom[j]
	// (j>i) whose swap removes the conflict without introducing a new one.
	for i := 0; i < len(bottom); i++ {
		if !models.SharesAvoidGroup(*top[i], *bottom[i]) {
			continue
		}
		for j := i + 1; j < len(bottom); j++ {
			if models.SharesAvoidGroup(*top[i], *bottom[j]) {
				continue
			}
			if models.SharesAvoidGroup(*top[j], *bottom[i]) {
				continue
			}
			bottom[i], bottom[j] = bottom[j], bottom[i]
			break
		}
	}

	var warnings []errs.Warning
	refs := make([]wfMatchRef, 0, half)
	for i := 0; i < half; i++ {
		a, bb := top[i], bottom[i]
		code := fmt.Sprintf("%s_WF_R1_M%02d", codePrefix, i+1)
		m := b.newMatch(models.MatchTypeWF, 1, i+1, duration, code)
		m.TeamAID = &a.ID
		m.TeamBID = &bb.ID
		refs = append(refs, wfMatchRef{match: m, teamA: a, teamB: bb})
		if models.SharesAvoidGroup(*a, *bb) {
			warnings = append(warnings, errs.NewWarning(errs.WarnWFR1AvoidGroupConflict,
				map[string]any{"match_code": code, "avoid_group": *a.AvoidGroup},
				"R1 pairing %s could not avoid shared avoid_group %q", code, *a.AvoidGroup))
		}
	}
	return refs, warnings
}

// blockPairingOptions enumerates the three ways to pair 4 consecutive
// matches into two pairs, in the spec's default tie-break order.
var blockPairingOptions = [3][2][2]int{
	{{0, 1}, {2, 3}},
	{{0, 2}, {1, 3}},
	{{0, 3}, {1, 2}},
}

// bestBlockPairing scores each of the 3 pairing options by the number of
// intersected avoid-groups between the paired matches' entrant pools, and
// returns the option with the lowest score (first such option on ties).
func bestBlockPairing(groups []map[string]bool) [2][2]int {
	bestScore := -1
	best := blockPairingOptions[0]
	for _, opt := range blockPairingOptions {
		score := 0
		for _, pair := range opt {
			if intersects(groups[pair[0]], groups[pair[1]]) {
				score++
			}
		}
		if bestScore == -1 || score < bestScore {
			bestScore = score
			best = opt
		}
	}
	return best
}

// buildWFRound2 wires R2 from blocks of 4 consecutive R1 matches: the
// winner-track fills WW-style R2 slots, the loser-track fills LL-style
// slots. Blocks are evaluated independently; an R1 count not divisible by
// 4 falls back to simple sequential pairing for the remainder (documented
// in DESIGN.md as a deliberate simplification for small/odd pool counts).
//
// Returned as wfMatchRef rather than *models.Match: R2 matches carry no
// TeamAID/TeamBID of their own (only placeholders, since the actual
// winner/loser isn't known until the match is played), so downstream pool
// bucketing needs the entrant pool carried forward explicitly instead of
// looked up by Match.ID, which is still zero at generation time. Each
// winner-track ref carries the entrants of its first source R1 match and
// each loser-track ref those of its second, so every R1 matchup is
// represented once across the two tracks.
func (b *builder) buildWFRound2(codePrefix string, r1 []wfMatchRef, duration int) (winners, losers []wfMatchRef, warnings []errs.Warning) {
	seq := 1
	for blockStart := 0; blockStart < len(r1); blockStart += 4 {
		blockEnd := blockStart + 4
		if blockEnd > len(r1) {
			// Remainder smaller than a full block: pair sequentially.
			for i := blockStart; i+1 < len(r1); i += 2 {
				wm := b.wireR2Match(codePrefix, "W", seq, r1[i].match, r1[i+1].match, duration)
				winners = append(winners, wfMatchRef{match: wm, teamA: r1[i].teamA, teamB: r1[i].teamB})
				lm := b.wireR2Match(codePrefix, "L", seq, r1[i].match, r1[i+1].match, duration)
				losers = append(losers, wfMatchRef{match: lm, teamA: r1[i+1].teamA, teamB: r1[i+1].teamB})
				seq++
			}
			continue
		}
		block := r1[blockStart:blockEnd]
		groups := make([]map[string]bool, 4)
		for i, ref := range block {
			groups[i] = avoidGroupsOf(ref.teamA, ref.teamB)
		}
		wPairing := bestBlockPairing(groups)
		for _, pair := range wPairing {
			wm := b.wireR2Match(codePrefix, "W", seq, block[pair[0]].match, block[pair[1]].match, duration)
			winners = append(winners, wfMatchRef{match: wm, teamA: block[pair[0]].teamA, teamB: block[pair[0]].teamB})
			if intersects(groups[pair[0]], groups[pair[1]]) {
				warnings = append(warnings, errs.NewWarning(errs.WarnWFR2AvoidGroupPotential,
					map[string]any{"matches": []string{block[pair[0]].match.MatchCode, block[pair[1]].match.MatchCode}},
					"R2 winner pairing of %s/%s has a potential avoid_group collision",
					block[pair[0]].match.MatchCode, block[pair[1]].match.MatchCode))
			}
			seq++
		}
		lPairing := bestBlockPairing(groups)
		for _, pair := range lPairing {
			lm := b.wireR2Match(codePrefix, "L", seq, block[pair[0]].match, block[pair[1]].match, duration)
			losers = append(losers, wfMatchRef{match: lm, teamA: block[pair[1]].teamA, teamB: block[pair[1]].teamB})
			seq++
		}
	}
	return winners, losers, warnings
}

// wireR2Match creates one R2 match sourced from the WINNER (track=="W") or
// LOSER (track=="L") of two R1 matches.
func (b *builder) wireR2Match(codePrefix, track string, seq int, srcA, srcB *models.Match, duration int) *models.Match {
	role := models.RoleWinner
	if track == "L" {
		role = models.RoleLoser
	}
	code := fmt.Sprintf("%s_WF_R2_%s%02d", codePrefix, track, seq)
	m := b.newMatch(models.MatchTypeWF, 2, seq, duration, code)
	m.PlaceholderSideA = fmt.Sprintf("%s:%s", role, srcA.MatchCode)
	m.PlaceholderSideB = fmt.Sprintf("%s:%s", role, srcB.MatchCode)
	m.SourceMatchAID = &srcA.ID
	m.SourceARole = &role
	m.SourceMatchBID = &srcB.ID
	m.SourceBRole = &role
	return m
}

// sortedBySeed returns a copy of teams sorted by seed ascending.
func sortedBySeed(teams []*models.Team) []*models.Team {
	out := append([]*models.Team(nil), teams...)
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out
}
