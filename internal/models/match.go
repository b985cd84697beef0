// internal/models/match.go
// Match, ScheduleSlot, MatchAssignment and lock entities.

package models

import "time"

// Match belongs to (Tournament, Event, ScheduleVersion).
type Match struct {
	ID               int64     `json:"id" db:"id"`
	TournamentID     int64     `json:"tournament_id" db:"tournament_id"`
	EventID          int64     `json:"event_id" db:"event_id"`
	VersionID        int64     `json:"version_id" db:"version_id"`
	MatchCode        string    `json:"match_code" db:"match_code"`
	MatchType        MatchType `json:"match_type" db:"match_type"`
	RoundIndex       int       `json:"round_index" db:"round_index"`
	SequenceInRound  int       `json:"sequence_in_round" db:"sequence_in_round"`
	DurationMinutes  int       `json:"duration_minutes" db:"duration_minutes"`

	TeamAID *int64 `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID *int64 `json:"team_b_id,omitempty" db:"team_b_id"`

	PlaceholderSideA string `json:"placeholder_side_a,omitempty" db:"placeholder_side_a"`
	PlaceholderSideB string `json:"placeholder_side_b,omitempty" db:"placeholder_side_b"`

	SourceMatchAID *int64 `json:"source_match_a_id,omitempty" db:"source_match_a_id"`
	SourceARole    *Role  `json:"source_a_role,omitempty" db:"source_a_role"`
	SourceMatchBID *int64 `json:"source_match_b_id,omitempty" db:"source_match_b_id"`
	SourceBRole    *Role  `json:"source_b_role,omitempty" db:"source_b_role"`

	RuntimeStatus RuntimeStatus `json:"runtime_status" db:"runtime_status"`
	StartedAt     *time.Time    `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	WinnerTeamID  *int64        `json:"winner_team_id,omitempty" db:"winner_team_id"`
	ScoreJSON     *Score        `json:"score_json,omitempty" db:"score_json"`

	ConsolationTier *int    `json:"consolation_tier,omitempty" db:"consolation_tier"` // 1 or 2
	PlacementType   string  `json:"placement_type,omitempty" db:"placement_type"`
	PreferredDay    *int    `json:"preferred_day,omitempty" db:"preferred_day"` // weekday hint

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasBothTeams reports whether both sides of the match are resolved.
func (m Match) HasBothTeams() bool {
	return m.TeamAID != nil && m.TeamBID != nil
}

// TeamIDs returns the non-nil team ids involved in the match.
func (m Match) TeamIDs() []int64 {
	var ids []int64
	if m.TeamAID != nil {
		ids = append(ids, *m.TeamAID)
	}
	if m.TeamBID != nil {
		ids = append(ids, *m.TeamBID)
	}
	return ids
}

// OtherTeam returns the team id opposite the given one, if both are set.
func (m Match) OtherTeam(teamID int64) (int64, bool) {
	if m.TeamAID != nil && *m.TeamAID == teamID && m.TeamBID != nil {
		return *m.TeamBID, true
	}
	if m.TeamBID != nil && *m.TeamBID == teamID && m.TeamAID != nil {
		return *m.TeamAID, true
	}
	return 0, false
}

// Sources returns the (side, source match id, role) triples this match
// depends on, skipping unset sides.
type Source struct {
	Side         string // "A" or "B"
	SourceMatch  int64
	Role         Role
}

func (m Match) Sources() []Source {
	var out []Source
	if m.SourceMatchAID != nil && m.SourceARole != nil {
		out = append(out, Source{Side: "A", SourceMatch: *m.SourceMatchAID, Role: *m.SourceARole})
	}
	if m.SourceMatchBID != nil && m.SourceBRole != nil {
		out = append(out, Source{Side: "B", SourceMatch: *m.SourceMatchBID, Role: *m.SourceBRole})
	}
	return out
}

// ScheduleSlot is a (day, start-end, court) cell that can host one match.
type ScheduleSlot struct {
	ID            int64     `json:"id" db:"id"`
	VersionID     int64     `json:"version_id" db:"version_id"`
	DayDate       time.Time `json:"day_date" db:"day_date"`
	StartTime     time.Time `json:"start_time" db:"start_time"`
	EndTime       time.Time `json:"end_time" db:"end_time"`
	CourtNumber   int       `json:"court_number" db:"court_number"`
	CourtLabel    string    `json:"court_label" db:"court_label"`
	BlockMinutes  int       `json:"block_minutes" db:"block_minutes"`
	IsActive      bool      `json:"is_active" db:"is_active"`
}

// MatchAssignment links a Match to a ScheduleSlot within a version.
type MatchAssignment struct {
	ID         int64      `json:"id" db:"id"`
	VersionID  int64      `json:"version_id" db:"version_id"`
	MatchID    int64      `json:"match_id" db:"match_id"`
	SlotID     int64      `json:"slot_id" db:"slot_id"`
	AssignedBy AssignedBy `json:"assigned_by" db:"assigned_by"`
	Locked     bool       `json:"locked" db:"locked"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// MatchLock pre-assigns a match to a slot before placement runs.
type MatchLock struct {
	VersionID int64 `json:"version_id" db:"version_id"`
	MatchID   int64 `json:"match_id" db:"match_id"`
	SlotID    int64 `json:"slot_id" db:"slot_id"`
}

// SlotLock excludes a slot from assignment (e.g. a blocked court window).
type SlotLock struct {
	VersionID int64  `json:"version_id" db:"version_id"`
	SlotID    int64  `json:"slot_id" db:"slot_id"`
	Reason    string `json:"reason,omitempty" db:"reason"`
}
