// internal/drawplan/brackets.go
// WF_TO_BRACKETS_8: a waterfall front end feeds up to 4 independent 8-team
// single elimination brackets labeled WW/WL/LW/LL (QF/SF/Final), each with
// its own consolation tail sized by the event's guarantee (4 -> 2
// consolation semis, 5 -> a consolation final plus 2 placement matches).
// Mirrors the teacher's generateSingleEliminationFixtures bracket-depth
// numbering, generalized from one global bracket to K parallel ones wired
// off the waterfall's round-2 winner/loser tracks.

package drawplan

import (
	"fmt"

	"tournament-planner/internal/models"
)

// bracketSizes lists the supported WF_TO_BRACKETS_8 field sizes and how many
// 8-team brackets they split into.
var bracketSizes = map[int]int{
	8:  1,
	16: 2,
	24: 3,
	32: 4,
}

// bracketLabels is the fixed division-label order WF_TO_BRACKETS_8 draws
// from: WW/WL pull from the WF R2 winner track, LW/LL from the loser track.
var bracketLabels = []string{"WW", "WL", "LW", "LL"}

// qfFoldPairs is the standard 8-entrant bracket fold (1v8, 4v5, 3v6, 2v7),
// reused both for seed-direct QFs and for WF-R2-sourced QFs.
var qfFoldPairs = [4][2]int{{0, 7}, {3, 4}, {2, 5}, {1, 6}}

// buildWaterfallToBrackets runs the waterfall front end (when the draw plan
// configures at least 2 WF rounds), then wires each of the K bracket
// divisions' quarterfinals off the corresponding WF R2 track. Without a real
// 2-round waterfall (wf_rounds < 2), brackets are seeded directly from
// declared seed order and no WF matches are generated; with 2 WF rounds but
// fewer than 4 R1 matches, brackets are seeded from the bucketed R1 entrant
// pool (there is no WF R2 to depend on).
func (b *builder) buildWaterfallToBrackets() {
	n := len(b.teams)
	k, ok := bracketSizes[n]
	if !ok {
		k = n / 8
		if k < 1 {
			k = 1
		}
	}
	if b.event.DrawPlan.BracketCount > 0 {
		k = b.event.DrawPlan.BracketCount
	}
	if k > len(bracketLabels) {
		k = len(bracketLabels)
	}

	wfRounds := b.event.DrawPlan.WaterfallRounds
	if wfRounds < 2 {
		// No real 2-round waterfall to depend on: seed brackets straight from
		// declared seed position instead of generating orphaned WF matches
		// nothing would ever reference.
		groups := bucketizeTeamsDirect(sortedBySeed(b.teams), k, 8)
		for i, teams := range groups {
			if i >= len(bracketLabels) {
				break
			}
			b.buildBracketFromSeeds(bracketLabels[i], teams)
		}
		return
	}

	r1, r1Warnings := b.buildWFRound1(b.prefix, b.teams, b.waterfallDuration())
	b.warnings = append(b.warnings, r1Warnings...)
	if len(r1) < 4 {
		groups := bucketizeSingleRound(r1, k)
		for i, group := range groups {
			if i >= len(bracketLabels) {
				break
			}
			teams := poolTeamsFromBucket(group, 8)
			b.buildBracketFromSeeds(bracketLabels[i], teams)
		}
		return
	}

	winners, losers, r2Warnings := b.buildWFRound2(b.prefix, r1, b.waterfallDuration())
	b.warnings = append(b.warnings, r2Warnings...)

	for i := 0; i < k; i++ {
		label := bracketLabels[i]
		track, role := winners, models.RoleWinner
		switch label {
		case "WL":
			track, role = winners, models.RoleLoser
		case "LW":
			track, role = losers, models.RoleWinner
		case "LL":
			track, role = losers, models.RoleLoser
		}
		b.buildBracketFromWFR2(label, track, role)
	}
}

// buildBracketFromSeeds generates one 8-team bracket's quarterfinals
// straight from seed position, used when there is no real WF R2 to depend
// on (wf_rounds < 2).
func (b *builder) buildBracketFromSeeds(label string, teams []*models.Team) {
	codePrefix := fmt.Sprintf("%s_BKT%s", b.prefix, label)
	duration := b.standardDuration()

	seeded := sortedBySeed(teams)
	for len(seeded) < 8 {
		seeded = append(seeded, nil) // bye
	}

	qf := make([]*models.Match, 4)
	for i, pair := range qfFoldPairs {
		code := fmt.Sprintf("%s_QF%d", codePrefix, i+1)
		m := b.newMatch(models.MatchTypeMain, 1, i+1, duration, code)
		if a := seeded[pair[0]]; a != nil {
			m.TeamAID = &a.ID
		}
		if bb := seeded[pair[1]]; bb != nil {
			m.TeamBID = &bb.ID
		}
		qf[i] = m
	}
	b.buildBracketShell(codePrefix, qf, duration)
}

// buildBracketFromWFR2 generates one 8-team bracket's quarterfinals wired to
// a WF R2 track (the winner or loser track, per label), folding the track's
// entries the same 1v8/4v5/3v6/2v7 way a seeded bracket would. A track
// shorter than 8 entries (small fields, or wf_rounds=2 with n<32) wraps via
// modulo rather than leaving QFs unwired — still a real dependency on a
// played WF match, just not a distinct one per QF slot.
func (b *builder) buildBracketFromWFR2(label string, track []wfMatchRef, role models.Role) {
	codePrefix := fmt.Sprintf("%s_BKT%s", b.prefix, label)
	duration := b.standardDuration()
	t := len(track)
	if t == 0 {
		return
	}

	qf := make([]*models.Match, 4)
	for i, pair := range qfFoldPairs {
		code := fmt.Sprintf("%s_QF%d", codePrefix, i+1)
		m := b.newMatch(models.MatchTypeMain, 1, i+1, duration, code)
		srcA := track[pair[0]%t].match
		srcB := track[pair[1]%t].match
		m.SourceMatchAID = &srcA.ID
		m.SourceARole = &role
		m.SourceMatchBID = &srcB.ID
		m.SourceBRole = &role
		m.PlaceholderSideA = fmt.Sprintf("%s:%s", role, srcA.MatchCode)
		m.PlaceholderSideB = fmt.Sprintf("%s:%s", role, srcB.MatchCode)
		qf[i] = m
	}
	b.buildBracketShell(codePrefix, qf, duration)
}

// buildBracketShell wires SF (from QF winners), the Final (from SF
// winners), and the consolation tail — the part of a bracket that's
// identical regardless of how its QFs were sourced.
func (b *builder) buildBracketShell(codePrefix string, qf []*models.Match, duration int) {
	sf := make([]*models.Match, 2)
	sfPairs := [2][2]int{{0, 1}, {2, 3}}
	for i, pair := range sfPairs {
		code := fmt.Sprintf("%s_SF%d", codePrefix, i+1)
		m := b.newMatch(models.MatchTypeMain, 2, i+1, duration, code)
		winner := models.RoleWinner
		m.SourceMatchAID = &qf[pair[0]].ID
		m.SourceARole = &winner
		m.SourceMatchBID = &qf[pair[1]].ID
		m.SourceBRole = &winner
		m.PlaceholderSideA = fmt.Sprintf("%s:%s", winner, qf[pair[0]].MatchCode)
		m.PlaceholderSideB = fmt.Sprintf("%s:%s", winner, qf[pair[1]].MatchCode)
		sf[i] = m
	}

	final := b.newMatch(models.MatchTypeMain, 3, 1, duration, fmt.Sprintf("%s_FINAL", codePrefix))
	winner := models.RoleWinner
	final.SourceMatchAID = &sf[0].ID
	final.SourceARole = &winner
	final.SourceMatchBID = &sf[1].ID
	final.SourceBRole = &winner
	final.PlaceholderSideA = fmt.Sprintf("%s:%s", winner, sf[0].MatchCode)
	final.PlaceholderSideB = fmt.Sprintf("%s:%s", winner, sf[1].MatchCode)

	b.buildConsolationTail(codePrefix, qf, sf, duration)
}

// buildConsolationTail builds the consolation matches for one bracket:
// guarantee 4 plays the two QF-loser pairs as consolation semis (tier 1);
// guarantee 5 adds a consolation final (tier 1) between their winners, a
// placement match (tier 2) seeded from the SF losers, and a second
// placement match (tier 2) between the consolation-semi losers.
func (b *builder) buildConsolationTail(codePrefix string, qf, sf []*models.Match, duration int) {
	loser := models.RoleLoser
	tier1 := 1
	consSemis := make([]*models.Match, 2)
	consPairs := [2][2]int{{0, 1}, {2, 3}}
	for i, pair := range consPairs {
		code := fmt.Sprintf("%s_CONS_SF%d", codePrefix, i+1)
		m := b.newMatch(models.MatchTypeConsolation, 1, i+1, duration, code)
		m.SourceMatchAID = &qf[pair[0]].ID
		m.SourceARole = &loser
		m.SourceMatchBID = &qf[pair[1]].ID
		m.SourceBRole = &loser
		m.PlaceholderSideA = fmt.Sprintf("%s:%s", loser, qf[pair[0]].MatchCode)
		m.PlaceholderSideB = fmt.Sprintf("%s:%s", loser, qf[pair[1]].MatchCode)
		m.ConsolationTier = &tier1
		consSemis[i] = m
	}

	if b.event.Guarantee < 5 {
		return
	}

	tier2 := 2
	consFinal := b.newMatch(models.MatchTypeConsolation, 2, 1, duration, fmt.Sprintf("%s_CONS_FINAL", codePrefix))
	winner := models.RoleWinner
	consFinal.SourceMatchAID = &consSemis[0].ID
	consFinal.SourceARole = &winner
	consFinal.SourceMatchBID = &consSemis[1].ID
	consFinal.SourceBRole = &winner
	consFinal.PlaceholderSideA = fmt.Sprintf("%s:%s", winner, consSemis[0].MatchCode)
	consFinal.PlaceholderSideB = fmt.Sprintf("%s:%s", winner, consSemis[1].MatchCode)
	consFinal.ConsolationTier = &tier1

	placement7th := b.newMatch(models.MatchTypePlacement, 2, 2, duration, fmt.Sprintf("%s_PLACEMENT_7TH", codePrefix))
	placement7th.SourceMatchAID = &sf[0].ID
	placement7th.SourceARole = &loser
	placement7th.SourceMatchBID = &sf[1].ID
	placement7th.SourceBRole = &loser
	placement7th.PlaceholderSideA = fmt.Sprintf("%s:%s", loser, sf[0].MatchCode)
	placement7th.PlaceholderSideB = fmt.Sprintf("%s:%s", loser, sf[1].MatchCode)
	placement7th.ConsolationTier = &tier2
	placement7th.PlacementType = "7TH_8TH"

	placement2xl := b.newMatch(models.MatchTypePlacement, 2, 3, duration, fmt.Sprintf("%s_PLACEMENT_2XL", codePrefix))
	placement2xl.SourceMatchAID = &consSemis[0].ID
	placement2xl.SourceARole = &loser
	placement2xl.SourceMatchBID = &consSemis[1].ID
	placement2xl.SourceBRole = &loser
	placement2xl.PlaceholderSideA = fmt.Sprintf("%s:%s", loser, consSemis[0].MatchCode)
	placement2xl.PlaceholderSideB = fmt.Sprintf("%s:%s", loser, consSemis[1].MatchCode)
	placement2xl.ConsolationTier = &tier2
	placement2xl.PlacementType = "2XL"
}
