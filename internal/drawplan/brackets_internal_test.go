package drawplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-planner/internal/models"
)

func TestBuildBracketGuarantee4HasNoConsolationFinal(t *testing.T) {
	teams := seedTeams(8)
	event := &models.Event{ID: 1, Guarantee: 4, StandardBlockMins: 60}
	b := &builder{event: event, teams: teams, prefix: "E1"}

	b.buildBracketFromSeeds("WW", teams)

	var codes []string
	for _, m := range b.matches {
		codes = append(codes, m.MatchCode)
	}
	assert.Contains(t, codes, "E1_BKTWW_QF1")
	assert.Contains(t, codes, "E1_BKTWW_SF1")
	assert.Contains(t, codes, "E1_BKTWW_FINAL")
	assert.Contains(t, codes, "E1_BKTWW_CONS_SF1")
	assert.NotContains(t, codes, "E1_BKTWW_CONS_FINAL")
	assert.NotContains(t, codes, "E1_BKTWW_PLACEMENT_7TH")
	assert.NotContains(t, codes, "E1_BKTWW_PLACEMENT_2XL")
}

func TestBuildBracketGuarantee5AddsConsolationFinalAndBothPlacements(t *testing.T) {
	teams := seedTeams(8)
	event := &models.Event{ID: 1, Guarantee: 5, StandardBlockMins: 60}
	b := &builder{event: event, teams: teams, prefix: "E1"}

	b.buildBracketFromSeeds("WW", teams)

	var codes []string
	for _, m := range b.matches {
		codes = append(codes, m.MatchCode)
	}
	assert.Contains(t, codes, "E1_BKTWW_CONS_FINAL")
	assert.Contains(t, codes, "E1_BKTWW_PLACEMENT_7TH")
	assert.Contains(t, codes, "E1_BKTWW_PLACEMENT_2XL")
	assert.Len(t, codes, 12, "guarantee 5 bracket must total 12 matches (7 MAIN + 2 cons semis + 1 cons final + 2 placement)")

	p2xl := findByCode(t, b.matches, "E1_BKTWW_PLACEMENT_2XL")
	consSF1 := findByCode(t, b.matches, "E1_BKTWW_CONS_SF1")
	consSF2 := findByCode(t, b.matches, "E1_BKTWW_CONS_SF2")
	require.NotNil(t, p2xl.SourceMatchAID)
	require.NotNil(t, p2xl.SourceMatchBID)
	assert.Equal(t, consSF1.ID, *p2xl.SourceMatchAID)
	assert.Equal(t, consSF2.ID, *p2xl.SourceMatchBID)
	require.NotNil(t, p2xl.SourceARole)
	assert.Equal(t, models.RoleLoser, *p2xl.SourceARole)
}

func TestBuildBracketFromSeedsQFSeeding(t *testing.T) {
	teams := seedTeams(8)
	event := &models.Event{ID: 1, Guarantee: 4, StandardBlockMins: 60}
	b := &builder{event: event, teams: teams, prefix: "E1"}

	b.buildBracketFromSeeds("WW", teams)

	qf1 := findByCode(t, b.matches, "E1_BKTWW_QF1")
	require.NotNil(t, qf1.TeamAID)
	require.NotNil(t, qf1.TeamBID)
	assert.Equal(t, teams[0].ID, *qf1.TeamAID, "seed 1")
	assert.Equal(t, teams[7].ID, *qf1.TeamBID, "seed 8")
}

// TestBuildBracketFromWFR2WiresQFToRealMatches is the regression guard for
// the decorative-waterfall defect: QFs must depend on actual WF R2 matches
// by (source_match_id, role), never resolve teams directly from the
// unplayed R1 entrant pool.
func TestBuildBracketFromWFR2WiresQFToRealMatches(t *testing.T) {
	teams := seedTeams(8)
	event := &models.Event{ID: 1, Guarantee: 4, StandardBlockMins: 60}
	b := &builder{event: event, teams: teams, prefix: "E1"}

	r1, _ := b.buildWFRound1("E1", teams, 40)
	winners, _, _ := b.buildWFRound2("E1", r1, 40)

	b.buildBracketFromWFR2("WW", winners, models.RoleWinner)

	qf1 := findByCode(t, b.matches, "E1_BKTWW_QF1")
	assert.Nil(t, qf1.TeamAID, "QF teams must not be resolved before WF R2 is played")
	assert.Nil(t, qf1.TeamBID)
	require.NotNil(t, qf1.SourceMatchAID)
	require.NotNil(t, qf1.SourceARole)
	assert.Equal(t, models.RoleWinner, *qf1.SourceARole)
}

func TestBuildWaterfallToBracketsUsesWFLabelsAndRealDependencies(t *testing.T) {
	teams := seedTeams(16)
	event := &models.Event{ID: 1, Guarantee: 5, StandardBlockMins: 60, DrawPlan: models.DrawPlan{WaterfallRounds: 2}}
	b := &builder{event: event, teams: teams, prefix: "E1"}

	b.buildWaterfallToBrackets()

	var codes []string
	for _, m := range b.matches {
		codes = append(codes, m.MatchCode)
	}
	assert.Contains(t, codes, "E1_BKTWW_QF1")
	assert.Contains(t, codes, "E1_BKTWL_QF1")
	assert.NotContains(t, codes, "E1_BKTA_QF1")

	qfWW1 := findByCode(t, b.matches, "E1_BKTWW_QF1")
	require.NotNil(t, qfWW1.SourceMatchAID, "QF must be wired off a real WF R2 match, not assigned a team directly")
	assert.Nil(t, qfWW1.TeamAID)
}

func findByCode(t *testing.T, matches []*models.Match, code string) *models.Match {
	t.Helper()
	for _, m := range matches {
		if m.MatchCode == code {
			return m
		}
	}
	t.Fatalf("no match with code %q", code)
	return nil
}
