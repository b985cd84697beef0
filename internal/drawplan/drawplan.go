// internal/drawplan/drawplan.go
// Draw Plan Engine (§4.1): compiles an Event's draw plan into a concrete,
// dependency-wired set of Match records. Grounded in the teacher's
// TournamentService.GenerateFixtures / generateSingleEliminationFixtures /
// generateRoundRobinFixtures (bracket seeding, round-robin pairing) but
// reworked around the spec's match/event/team model instead of the
// teacher's participant/match model, and extended with the waterfall
// pairing and avoid-group solving the teacher's formats never needed.
package drawplan

import (
	"fmt"
	"sort"

	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
)

// Result is everything GenerateMatches produces for one Event.
type Result struct {
	Matches  []*models.Match
	Warnings []errs.Warning
}

// GenerateMatches compiles event.DrawPlan + the event's teams into a wired
// Match set. Determinism (P7): identical (event, team list, ordering) input
// yields identical match_codes and dependency graphs across calls.
func GenerateMatches(event *models.Event, teams []*models.Team) (*Result, error) {
	sorted := append([]*models.Team(nil), teams...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seed < sorted[j].Seed })

	prefix := fmt.Sprintf("E%d", event.ID)
	b := &builder{event: event, teams: sorted, prefix: prefix}

	switch event.DrawPlan.Template {
	case models.TemplateRRonly:
		b.buildRoundRobinOnly()
	case models.TemplateWFtoPoolsDynamic, models.TemplateWFtoPools4:
		b.buildWaterfallToPools()
	case models.TemplateWFtoBrackets8:
		b.buildWaterfallToBrackets()
	default:
		return nil, errs.New(errs.Validation, "unsupported draw template %q", event.DrawPlan.Template)
	}

	if err := checkDuplicateCodes(b.matches); err != nil {
		return nil, err
	}

	return &Result{Matches: b.matches, Warnings: b.warnings}, nil
}

func checkDuplicateCodes(matches []*models.Match) error {
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if seen[m.MatchCode] {
			return errs.New(errs.DuplicateMatchCode, "duplicate match_code %q", m.MatchCode)
		}
		seen[m.MatchCode] = true
	}
	return nil
}

// builder accumulates matches for one event and assigns sequence numbers.
type builder struct {
	event    *models.Event
	teams    []*models.Team // sorted by seed
	prefix   string
	matches  []*models.Match
	warnings []errs.Warning
}

func (b *builder) newMatch(mt models.MatchType, round, seq int, duration int, code string) *models.Match {
	m := &models.Match{
		TournamentID:    b.event.TournamentID,
		EventID:         b.event.ID,
		MatchCode:       code,
		MatchType:       mt,
		RoundIndex:      round,
		SequenceInRound: seq,
		DurationMinutes: duration,
		RuntimeStatus:   models.StatusScheduled,
	}
	b.matches = append(b.matches, m)
	return m
}

func (b *builder) standardDuration() int {
	if b.event.StandardBlockMins > 0 {
		return b.event.StandardBlockMins
	}
	return models.ScoringRegular.DurationMinutes()
}

func (b *builder) waterfallDuration() int {
	if b.event.WaterfallBlockMins > 0 {
		return b.event.WaterfallBlockMins
	}
	return models.ScoringRegular.DurationMinutes()
}
