// internal/models/event.go
// Event and Team entities.

package models

import "time"

// Event is a competitive category within a Tournament (e.g. Mixed Doubles).
type Event struct {
	ID                   int64     `json:"id" db:"id"`
	TournamentID         int64     `json:"tournament_id" db:"tournament_id"`
	Name                 string    `json:"name" db:"name"`
	Category             string    `json:"category" db:"category"`
	DeclaredTeamCount    int       `json:"declared_team_count" db:"declared_team_count"`
	Guarantee            int       `json:"guarantee" db:"guarantee"` // 4 or 5
	WaterfallBlockMins   int       `json:"waterfall_block_minutes" db:"waterfall_block_minutes"`
	StandardBlockMins    int       `json:"standard_block_minutes" db:"standard_block_minutes"`
	DrawPlan             DrawPlan  `json:"draw_plan" db:"draw_plan"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// Priority is the event-priority sort key used throughout Placement and the
// Master Sequence Builder: largest team_count first, then event_id.
func (e Event) Priority() (teamCountDesc int, id int64) {
	return -e.DeclaredTeamCount, e.ID
}

// Team belongs to an Event.
type Team struct {
	ID            int64   `json:"id" db:"id"`
	EventID       int64   `json:"event_id" db:"event_id"`
	Seed          int     `json:"seed" db:"seed"` // 1..n within event
	Name          string  `json:"name" db:"name"`
	DisplayName   string  `json:"display_name" db:"display_name"`
	AvoidGroup    *string `json:"avoid_group,omitempty" db:"avoid_group"`
	WFGroupIndex  *int    `json:"wf_group_index,omitempty" db:"wf_group_index"`
	IsDefaulted   bool    `json:"is_defaulted" db:"is_defaulted"`
}

// SharesAvoidGroup reports whether two teams carry the same non-null
// avoid_group tag and should not be paired in waterfall if avoidable.
func SharesAvoidGroup(a, b Team) bool {
	if a.AvoidGroup == nil || b.AvoidGroup == nil {
		return false
	}
	return *a.AvoidGroup == *b.AvoidGroup
}
