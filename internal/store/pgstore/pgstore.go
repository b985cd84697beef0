// internal/store/pgstore/pgstore.go
// Postgres-backed Store implementation over pgx/v5, grounded in
// albapepper-scoracle-data's handler style: queries are issued directly
// against pgxpool, no ORM layer. The SQL schema itself is an external,
// non-goal concern (§1) — these statements assume tables matching the
// `db` struct tags in internal/models already exist, the way albapepper's
// handlers assume its Postgres functions already exist.
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tournament-planner/internal/models"
	"tournament-planner/internal/store"
)

// Store is the Postgres-backed entity store.
type Store struct {
	pool *pgxpool.Pool
}

// New opens a pgxpool against dsn.
func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = maxConns
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// BeginTx starts a real Postgres transaction at the default isolation
// level; Placement and Runtime mutation against the same version serialize
// via Postgres row locking on the version's assignment rows (§5).
func (s *Store) BeginTx(ctx context.Context) (store.Tx, error) {
	pgTx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &tx{pgTx: pgTx}, nil
}

type tx struct {
	pgTx pgx.Tx
}

func (t *tx) Commit(ctx context.Context) error   { return t.pgTx.Commit(ctx) }
func (t *tx) Rollback(ctx context.Context) error { return t.pgTx.Rollback(ctx) }

func (t *tx) GetTournament(ctx context.Context, id int64) (*models.Tournament, error) {
	row := t.pgTx.QueryRow(ctx, `SELECT id, name, timezone, start_date, end_date, court_labels,
		published_version_id, created_at, updated_at FROM tournaments WHERE id = $1`, id)
	var tm models.Tournament
	if err := row.Scan(&tm.ID, &tm.Name, &tm.Timezone, &tm.StartDate, &tm.EndDate, &tm.CourtLabels,
		&tm.PublishedVersionID, &tm.CreatedAt, &tm.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get tournament %d: %w", id, err)
	}
	return &tm, nil
}

func (t *tx) UpdateTournament(ctx context.Context, tm *models.Tournament) error {
	_, err := t.pgTx.Exec(ctx, `UPDATE tournaments SET name=$2, timezone=$3, start_date=$4, end_date=$5,
		court_labels=$6, published_version_id=$7, updated_at=now() WHERE id=$1`,
		tm.ID, tm.Name, tm.Timezone, tm.StartDate, tm.EndDate, tm.CourtLabels, tm.PublishedVersionID)
	return err
}

func (t *tx) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	row := t.pgTx.QueryRow(ctx, `SELECT id, tournament_id, name, category, declared_team_count, guarantee,
		waterfall_block_minutes, standard_block_minutes, draw_plan, created_at, updated_at
		FROM events WHERE id = $1`, id)
	var e models.Event
	if err := row.Scan(&e.ID, &e.TournamentID, &e.Name, &e.Category, &e.DeclaredTeamCount, &e.Guarantee,
		&e.WaterfallBlockMins, &e.StandardBlockMins, &e.DrawPlan, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return &e, nil
}

func (t *tx) ListEventsByTournament(ctx context.Context, tournamentID int64) ([]*models.Event, error) {
	rows, err := t.pgTx.Query(ctx, `SELECT id, tournament_id, name, category, declared_team_count, guarantee,
		waterfall_block_minutes, standard_block_minutes, draw_plan, created_at, updated_at
		FROM events WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.TournamentID, &e.Name, &e.Category, &e.DeclaredTeamCount, &e.Guarantee,
			&e.WaterfallBlockMins, &e.StandardBlockMins, &e.DrawPlan, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (t *tx) UpdateEvent(ctx context.Context, e *models.Event) error {
	_, err := t.pgTx.Exec(ctx, `INSERT INTO events (id, tournament_id, name, category, declared_team_count,
		guarantee, waterfall_block_minutes, standard_block_minutes, draw_plan, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())
		ON CONFLICT (id) DO UPDATE SET name=$3, category=$4, declared_team_count=$5, guarantee=$6,
		waterfall_block_minutes=$7, standard_block_minutes=$8, draw_plan=$9, updated_at=now()`,
		e.ID, e.TournamentID, e.Name, e.Category, e.DeclaredTeamCount, e.Guarantee,
		e.WaterfallBlockMins, e.StandardBlockMins, e.DrawPlan)
	return err
}

func (t *tx) ListTeamsByEvent(ctx context.Context, eventID int64) ([]*models.Team, error) {
	rows, err := t.pgTx.Query(ctx, `SELECT id, event_id, seed, name, display_name, avoid_group,
		wf_group_index, is_defaulted FROM teams WHERE event_id = $1 ORDER BY seed`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Team
	for rows.Next() {
		var tm models.Team
		if err := rows.Scan(&tm.ID, &tm.EventID, &tm.Seed, &tm.Name, &tm.DisplayName, &tm.AvoidGroup,
			&tm.WFGroupIndex, &tm.IsDefaulted); err != nil {
			return nil, err
		}
		out = append(out, &tm)
	}
	return out, rows.Err()
}

func (t *tx) UpdateTeam(ctx context.Context, tm *models.Team) error {
	_, err := t.pgTx.Exec(ctx, `UPDATE teams SET is_defaulted=$2 WHERE id=$1`, tm.ID, tm.IsDefaulted)
	return err
}

func (t *tx) GetVersion(ctx context.Context, id int64) (*models.ScheduleVersion, error) {
	row := t.pgTx.QueryRow(ctx, `SELECT id, tournament_id, status, tag, cloned_from_id, created_at, updated_at
		FROM schedule_versions WHERE id = $1`, id)
	var v models.ScheduleVersion
	if err := row.Scan(&v.ID, &v.TournamentID, &v.Status, &v.Tag, &v.ClonedFromID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get version %d: %w", id, err)
	}
	return &v, nil
}

func (t *tx) ListVersionsByTournament(ctx context.Context, tournamentID int64) ([]*models.ScheduleVersion, error) {
	rows, err := t.pgTx.Query(ctx, `SELECT id, tournament_id, status, tag, cloned_from_id, created_at, updated_at
		FROM schedule_versions WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.ScheduleVersion
	for rows.Next() {
		var v models.ScheduleVersion
		if err := rows.Scan(&v.ID, &v.TournamentID, &v.Status, &v.Tag, &v.ClonedFromID, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (t *tx) CreateVersion(ctx context.Context, v *models.ScheduleVersion) error {
	return t.pgTx.QueryRow(ctx, `INSERT INTO schedule_versions (tournament_id, status, tag, cloned_from_id,
		created_at, updated_at) VALUES ($1,$2,$3,$4,now(),now()) RETURNING id`,
		v.TournamentID, v.Status, v.Tag, v.ClonedFromID).Scan(&v.ID)
}

func (t *tx) UpdateVersion(ctx context.Context, v *models.ScheduleVersion) error {
	_, err := t.pgTx.Exec(ctx, `UPDATE schedule_versions SET status=$2, tag=$3, updated_at=now() WHERE id=$1`,
		v.ID, v.Status, v.Tag)
	return err
}

func (t *tx) CreateMatch(ctx context.Context, m *models.Match) error {
	return t.pgTx.QueryRow(ctx, `INSERT INTO matches (tournament_id, event_id, version_id, match_code,
		match_type, round_index, sequence_in_round, duration_minutes, team_a_id, team_b_id,
		placeholder_side_a, placeholder_side_b, source_match_a_id, source_a_role, source_match_b_id,
		source_b_role, runtime_status, consolation_tier, placement_type, preferred_day, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,now(),now())
		RETURNING id`,
		m.TournamentID, m.EventID, m.VersionID, m.MatchCode, m.MatchType, m.RoundIndex, m.SequenceInRound,
		m.DurationMinutes, m.TeamAID, m.TeamBID, m.PlaceholderSideA, m.PlaceholderSideB, m.SourceMatchAID,
		m.SourceARole, m.SourceMatchBID, m.SourceBRole, m.RuntimeStatus, m.ConsolationTier, m.PlacementType,
		m.PreferredDay).Scan(&m.ID)
}

func (t *tx) UpdateMatch(ctx context.Context, m *models.Match) error {
	_, err := t.pgTx.Exec(ctx, `UPDATE matches SET team_a_id=$2, team_b_id=$3, runtime_status=$4,
		started_at=$5, completed_at=$6, winner_team_id=$7, score_json=$8, updated_at=now() WHERE id=$1`,
		m.ID, m.TeamAID, m.TeamBID, m.RuntimeStatus, m.StartedAt, m.CompletedAt, m.WinnerTeamID, m.ScoreJSON)
	return err
}

func (t *tx) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	return t.scanMatchRow(t.pgTx.QueryRow(ctx, matchSelect+` WHERE id = $1`, id))
}

func (t *tx) GetMatchByCode(ctx context.Context, versionID int64, code string) (*models.Match, error) {
	return t.scanMatchRow(t.pgTx.QueryRow(ctx, matchSelect+` WHERE version_id = $1 AND match_code = $2`, versionID, code))
}

func (t *tx) ListMatchesByVersion(ctx context.Context, versionID int64) ([]*models.Match, error) {
	rows, err := t.pgTx.Query(ctx, matchSelect+` WHERE version_id = $1`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return t.scanMatchRows(rows)
}

func (t *tx) ListMatchesByVersionAndEvent(ctx context.Context, versionID, eventID int64) ([]*models.Match, error) {
	rows, err := t.pgTx.Query(ctx, matchSelect+` WHERE version_id = $1 AND event_id = $2`, versionID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return t.scanMatchRows(rows)
}

func (t *tx) DeleteMatch(ctx context.Context, id int64) error {
	_, err := t.pgTx.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	return err
}

const matchSelect = `SELECT id, tournament_id, event_id, version_id, match_code, match_type, round_index,
	sequence_in_round, duration_minutes, team_a_id, team_b_id, placeholder_side_a, placeholder_side_b,
	source_match_a_id, source_a_role, source_match_b_id, source_b_role, runtime_status, started_at,
	completed_at, winner_team_id, score_json, consolation_tier, placement_type, preferred_day,
	created_at, updated_at FROM matches`

func (t *tx) scanMatchRow(row pgx.Row) (*models.Match, error) {
	var m models.Match
	if err := row.Scan(&m.ID, &m.TournamentID, &m.EventID, &m.VersionID, &m.MatchCode, &m.MatchType,
		&m.RoundIndex, &m.SequenceInRound, &m.DurationMinutes, &m.TeamAID, &m.TeamBID, &m.PlaceholderSideA,
		&m.PlaceholderSideB, &m.SourceMatchAID, &m.SourceARole, &m.SourceMatchBID, &m.SourceBRole,
		&m.RuntimeStatus, &m.StartedAt, &m.CompletedAt, &m.WinnerTeamID, &m.ScoreJSON, &m.ConsolationTier,
		&m.PlacementType, &m.PreferredDay, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *tx) scanMatchRows(rows pgx.Rows) ([]*models.Match, error) {
	var out []*models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.TournamentID, &m.EventID, &m.VersionID, &m.MatchCode, &m.MatchType,
			&m.RoundIndex, &m.SequenceInRound, &m.DurationMinutes, &m.TeamAID, &m.TeamBID, &m.PlaceholderSideA,
			&m.PlaceholderSideB, &m.SourceMatchAID, &m.SourceARole, &m.SourceMatchBID, &m.SourceBRole,
			&m.RuntimeStatus, &m.StartedAt, &m.CompletedAt, &m.WinnerTeamID, &m.ScoreJSON, &m.ConsolationTier,
			&m.PlacementType, &m.PreferredDay, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (t *tx) CreateSlot(ctx context.Context, s *models.ScheduleSlot) error {
	return t.pgTx.QueryRow(ctx, `INSERT INTO schedule_slots (version_id, day_date, start_time, end_time,
		court_number, court_label, block_minutes, is_active) VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		s.VersionID, s.DayDate, s.StartTime, s.EndTime, s.CourtNumber, s.CourtLabel, s.BlockMinutes, s.IsActive).
		Scan(&s.ID)
}

func (t *tx) ListSlotsByVersion(ctx context.Context, versionID int64) ([]*models.ScheduleSlot, error) {
	rows, err := t.pgTx.Query(ctx, `SELECT id, version_id, day_date, start_time, end_time, court_number,
		court_label, block_minutes, is_active FROM schedule_slots WHERE version_id = $1`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.ScheduleSlot
	for rows.Next() {
		var s models.ScheduleSlot
		if err := rows.Scan(&s.ID, &s.VersionID, &s.DayDate, &s.StartTime, &s.EndTime, &s.CourtNumber,
			&s.CourtLabel, &s.BlockMinutes, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (t *tx) DeleteSlot(ctx context.Context, id int64) error {
	_, err := t.pgTx.Exec(ctx, `DELETE FROM schedule_slots WHERE id = $1`, id)
	return err
}

func (t *tx) CreateAssignment(ctx context.Context, a *models.MatchAssignment) error {
	return t.pgTx.QueryRow(ctx, `INSERT INTO match_assignments (version_id, match_id, slot_id, assigned_by,
		locked, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,now(),now()) RETURNING id`,
		a.VersionID, a.MatchID, a.SlotID, a.AssignedBy, a.Locked).Scan(&a.ID)
}

func (t *tx) UpdateAssignment(ctx context.Context, a *models.MatchAssignment) error {
	_, err := t.pgTx.Exec(ctx, `UPDATE match_assignments SET slot_id=$2, assigned_by=$3, locked=$4,
		updated_at=now() WHERE id=$1`, a.ID, a.SlotID, a.AssignedBy, a.Locked)
	return err
}

func (t *tx) DeleteAssignment(ctx context.Context, id int64) error {
	_, err := t.pgTx.Exec(ctx, `DELETE FROM match_assignments WHERE id = $1`, id)
	return err
}

func (t *tx) ListAssignmentsByVersion(ctx context.Context, versionID int64) ([]*models.MatchAssignment, error) {
	rows, err := t.pgTx.Query(ctx, `SELECT id, version_id, match_id, slot_id, assigned_by, locked,
		created_at, updated_at FROM match_assignments WHERE version_id = $1`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.MatchAssignment
	for rows.Next() {
		var a models.MatchAssignment
		if err := rows.Scan(&a.ID, &a.VersionID, &a.MatchID, &a.SlotID, &a.AssignedBy, &a.Locked,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (t *tx) GetAssignmentByMatch(ctx context.Context, versionID, matchID int64) (*models.MatchAssignment, error) {
	row := t.pgTx.QueryRow(ctx, `SELECT id, version_id, match_id, slot_id, assigned_by, locked, created_at,
		updated_at FROM match_assignments WHERE version_id = $1 AND match_id = $2`, versionID, matchID)
	var a models.MatchAssignment
	if err := row.Scan(&a.ID, &a.VersionID, &a.MatchID, &a.SlotID, &a.AssignedBy, &a.Locked, &a.CreatedAt,
		&a.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (t *tx) GetAssignmentBySlot(ctx context.Context, versionID, slotID int64) (*models.MatchAssignment, error) {
	row := t.pgTx.QueryRow(ctx, `SELECT id, version_id, match_id, slot_id, assigned_by, locked, created_at,
		updated_at FROM match_assignments WHERE version_id = $1 AND slot_id = $2`, versionID, slotID)
	var a models.MatchAssignment
	if err := row.Scan(&a.ID, &a.VersionID, &a.MatchID, &a.SlotID, &a.AssignedBy, &a.Locked, &a.CreatedAt,
		&a.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (t *tx) ListMatchLocks(ctx context.Context, versionID int64) ([]*models.MatchLock, error) {
	rows, err := t.pgTx.Query(ctx, `SELECT version_id, match_id, slot_id FROM match_locks WHERE version_id = $1`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.MatchLock
	for rows.Next() {
		var l models.MatchLock
		if err := rows.Scan(&l.VersionID, &l.MatchID, &l.SlotID); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (t *tx) ListSlotLocks(ctx context.Context, versionID int64) ([]*models.SlotLock, error) {
	rows, err := t.pgTx.Query(ctx, `SELECT version_id, slot_id, reason FROM slot_locks WHERE version_id = $1`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.SlotLock
	for rows.Next() {
		var l models.SlotLock
		if err := rows.Scan(&l.VersionID, &l.SlotID, &l.Reason); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (t *tx) CreateMatchLock(ctx context.Context, l *models.MatchLock) error {
	_, err := t.pgTx.Exec(ctx, `INSERT INTO match_locks (version_id, match_id, slot_id) VALUES ($1,$2,$3)`,
		l.VersionID, l.MatchID, l.SlotID)
	return err
}

func (t *tx) CreateSlotLock(ctx context.Context, l *models.SlotLock) error {
	_, err := t.pgTx.Exec(ctx, `INSERT INTO slot_locks (version_id, slot_id, reason) VALUES ($1,$2,$3)`,
		l.VersionID, l.SlotID, l.Reason)
	return err
}

func (t *tx) ListCourtStates(ctx context.Context, tournamentID int64) ([]*models.CourtState, error) {
	rows, err := t.pgTx.Query(ctx, `SELECT tournament_id, court_number, is_closed, note FROM court_states
		WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.CourtState
	for rows.Next() {
		var cs models.CourtState
		if err := rows.Scan(&cs.TournamentID, &cs.CourtNumber, &cs.IsClosed, &cs.Note); err != nil {
			return nil, err
		}
		out = append(out, &cs)
	}
	return out, rows.Err()
}

func (t *tx) UpsertCourtState(ctx context.Context, cs *models.CourtState) error {
	_, err := t.pgTx.Exec(ctx, `INSERT INTO court_states (tournament_id, court_number, is_closed, note)
		VALUES ($1,$2,$3,$4) ON CONFLICT (tournament_id, court_number) DO UPDATE SET is_closed=$3, note=$4`,
		cs.TournamentID, cs.CourtNumber, cs.IsClosed, cs.Note)
	return err
}
