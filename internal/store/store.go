// internal/store/store.go
// Store is the persistence contract the core consumes, per §1/§6: "The core
// consumes a persistence interface for entities". It mirrors the teacher's
// repositories.Container + BeginTx pattern, but as a single interface rather
// than one struct per table, since every engine operation needs the same
// one-transaction-per-operation shape (§5).
//
// Two backings implement it: store/memstore (in-memory, used by every
// engine test and the cmd/planner smoke runner) and store/pgstore (a
// pgx/v5-backed implementation for production use).

package store

import (
	"context"

	"tournament-planner/internal/models"
)

// Store opens transactions. Every public engine operation runs inside
// exactly one Tx (§5: "acquires an effective per-version write lock ... and
// commits atomically").
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a transactional handle over every entity in §3. Implementations
// must serialize writes to the same ScheduleVersion (§5); read-only
// operations may run against concurrent transactions.
type Tx interface {
	// Tournament
	GetTournament(ctx context.Context, id int64) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, t *models.Tournament) error

	// Event / Team
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	ListEventsByTournament(ctx context.Context, tournamentID int64) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, e *models.Event) error
	ListTeamsByEvent(ctx context.Context, eventID int64) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, t *models.Team) error

	// ScheduleVersion
	GetVersion(ctx context.Context, id int64) (*models.ScheduleVersion, error)
	ListVersionsByTournament(ctx context.Context, tournamentID int64) ([]*models.ScheduleVersion, error)
	CreateVersion(ctx context.Context, v *models.ScheduleVersion) error
	UpdateVersion(ctx context.Context, v *models.ScheduleVersion) error

	// Match
	CreateMatch(ctx context.Context, m *models.Match) error
	UpdateMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	GetMatchByCode(ctx context.Context, versionID int64, code string) (*models.Match, error)
	ListMatchesByVersion(ctx context.Context, versionID int64) ([]*models.Match, error)
	ListMatchesByVersionAndEvent(ctx context.Context, versionID, eventID int64) ([]*models.Match, error)
	DeleteMatch(ctx context.Context, id int64) error

	// ScheduleSlot
	CreateSlot(ctx context.Context, s *models.ScheduleSlot) error
	ListSlotsByVersion(ctx context.Context, versionID int64) ([]*models.ScheduleSlot, error)
	DeleteSlot(ctx context.Context, id int64) error

	// MatchAssignment
	CreateAssignment(ctx context.Context, a *models.MatchAssignment) error
	UpdateAssignment(ctx context.Context, a *models.MatchAssignment) error
	DeleteAssignment(ctx context.Context, id int64) error
	ListAssignmentsByVersion(ctx context.Context, versionID int64) ([]*models.MatchAssignment, error)
	GetAssignmentByMatch(ctx context.Context, versionID, matchID int64) (*models.MatchAssignment, error)
	GetAssignmentBySlot(ctx context.Context, versionID, slotID int64) (*models.MatchAssignment, error)

	// Locks
	ListMatchLocks(ctx context.Context, versionID int64) ([]*models.MatchLock, error)
	ListSlotLocks(ctx context.Context, versionID int64) ([]*models.SlotLock, error)
	CreateMatchLock(ctx context.Context, l *models.MatchLock) error
	CreateSlotLock(ctx context.Context, l *models.SlotLock) error

	// CourtState
	ListCourtStates(ctx context.Context, tournamentID int64) ([]*models.CourtState, error)
	UpsertCourtState(ctx context.Context, cs *models.CourtState) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
