// internal/models/tournament.go
// Tournament, TournamentDay and ScheduleVersion entities.

package models

import "time"

// Tournament is the top-level entity: courts, active days, and the
// published-version pointer.
type Tournament struct {
	ID                 int64           `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Timezone           string          `json:"timezone" db:"timezone"`
	StartDate          time.Time       `json:"start_date" db:"start_date"`
	EndDate            time.Time       `json:"end_date" db:"end_date"`
	CourtLabels        []string        `json:"court_labels" db:"court_labels"`
	PublishedVersionID *int64          `json:"published_version_id,omitempty" db:"published_version_id"`
	Days               []TournamentDay `json:"days" db:"-"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// TournamentDay is one active day of play: its time window grid.
type TournamentDay struct {
	Date          time.Time `json:"date"`
	EarliestStart string    `json:"earliest_start"` // "HH:MM"
	LatestEnd     string    `json:"latest_end"`      // "HH:MM"
}

// ScheduleVersion is a named snapshot of matches/slots/assignments for a
// Tournament. Exactly one is "published"; at most one draft additionally
// carries DeskDraftTag.
type ScheduleVersion struct {
	ID           int64         `json:"id" db:"id"`
	TournamentID int64         `json:"tournament_id" db:"tournament_id"`
	Status       VersionStatus `json:"status" db:"status"`
	Tag          string        `json:"tag,omitempty" db:"tag"`
	ClonedFromID *int64        `json:"cloned_from_id,omitempty" db:"cloned_from_id"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// IsDraft reports whether mutation is permitted (I9).
func (v ScheduleVersion) IsDraft() bool {
	return v.Status == VersionDraft
}

// IsDeskDraft reports whether this version is the distinguished desk draft.
func (v ScheduleVersion) IsDeskDraft() bool {
	return v.Tag == DeskDraftTag
}

// CourtState is a per-tournament, per-court runtime annotation. It affects
// only human display; blocked courts are enforced via SlotLock instead.
type CourtState struct {
	TournamentID int64  `json:"tournament_id" db:"tournament_id"`
	CourtNumber  int    `json:"court_number" db:"court_number"`
	IsClosed     bool   `json:"is_closed" db:"is_closed"`
	Note         string `json:"note,omitempty" db:"note"`
}
