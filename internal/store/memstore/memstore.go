// internal/store/memstore/memstore.go
// In-memory Store implementation used by every engine test and by
// cmd/planner. Grounded in the locking style of
// albapepper-scoracle-data's internal/cache.Cache: a single mutex guarding
// plain Go maps, snapshotted per-transaction so Commit/Rollback are atomic.
//
// Concurrency note (§5): this backing serializes all writes behind one
// mutex regardless of ScheduleVersion, which is stricter than the spec
// requires (distinct versions may run placement in parallel) but is
// correct and adequate for tests and the demo runner; pgstore is the
// production backing where per-version concurrency actually matters.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"tournament-planner/internal/models"
	"tournament-planner/internal/store"
)

type tables struct {
	tournaments map[int64]*models.Tournament
	events      map[int64]*models.Event
	teams       map[int64]*models.Team
	versions    map[int64]*models.ScheduleVersion
	matches     map[int64]*models.Match
	slots       map[int64]*models.ScheduleSlot
	assignments map[int64]*models.MatchAssignment
	matchLocks  []*models.MatchLock
	slotLocks   []*models.SlotLock
	courtStates map[string]*models.CourtState // key: tournamentID|courtNumber
}

func newTables() *tables {
	return &tables{
		tournaments: map[int64]*models.Tournament{},
		events:      map[int64]*models.Event{},
		teams:       map[int64]*models.Team{},
		versions:    map[int64]*models.ScheduleVersion{},
		matches:     map[int64]*models.Match{},
		slots:       map[int64]*models.ScheduleSlot{},
		assignments: map[int64]*models.MatchAssignment{},
		courtStates: map[string]*models.CourtState{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.tournaments {
		cp := *v
		c.tournaments[k] = &cp
	}
	for k, v := range t.events {
		cp := *v
		c.events[k] = &cp
	}
	for k, v := range t.teams {
		cp := *v
		c.teams[k] = &cp
	}
	for k, v := range t.versions {
		cp := *v
		c.versions[k] = &cp
	}
	for k, v := range t.matches {
		cp := *v
		c.matches[k] = &cp
	}
	for k, v := range t.slots {
		cp := *v
		c.slots[k] = &cp
	}
	for k, v := range t.assignments {
		cp := *v
		c.assignments[k] = &cp
	}
	for k, v := range t.courtStates {
		cp := *v
		c.courtStates[k] = &cp
	}
	c.matchLocks = append(c.matchLocks, t.matchLocks...)
	c.slotLocks = append(c.slotLocks, t.slotLocks...)
	return c
}

// Store is the in-memory backing.
type Store struct {
	mu     sync.Mutex
	data   *tables
	nextID int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: newTables()}
}

// BeginTx acquires the single write lock and returns a snapshot Tx.
func (s *Store) BeginTx(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	return &tx{store: s, work: s.data.clone()}, nil
}

// SeedTournament inserts a Tournament directly, bypassing the Tx contract
// (there is no generate_matches-adjacent "create_tournament" operation in
// §6; tournaments are provisioned by the surrounding ops system and handed
// to the core already existing). Assigns an id if none is set. Used by the
// cmd/planner demo runner and by package tests that need a seeded fixture.
func (s *Store) SeedTournament(t *models.Tournament) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		s.nextID++
		t.ID = s.nextID
	}
	s.data.tournaments[t.ID] = t
	return t.ID
}

// SeedEvent inserts an Event directly; see SeedTournament.
func (s *Store) SeedEvent(e *models.Event) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		s.nextID++
		e.ID = s.nextID
	}
	s.data.events[e.ID] = e
	return e.ID
}

// SeedTeam inserts a Team directly; see SeedTournament.
func (s *Store) SeedTeam(tm *models.Team) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tm.ID == 0 {
		s.nextID++
		tm.ID = s.nextID
	}
	s.data.teams[tm.ID] = tm
	return tm.ID
}

// SeedVersion inserts a ScheduleVersion directly; see SeedTournament.
func (s *Store) SeedVersion(v *models.ScheduleVersion) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		s.nextID++
		v.ID = s.nextID
	}
	s.data.versions[v.ID] = v
	return v.ID
}

type tx struct {
	store *Store
	work  *tables
	done  bool
}

func (t *tx) nextID() int64 {
	t.store.nextID++
	return t.store.nextID
}

func (t *tx) checkOpen() error {
	if t.done {
		return fmt.Errorf("transaction already closed")
	}
	return nil
}

func (t *tx) Commit(ctx context.Context) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	t.store.data = t.work
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

// --- Tournament ---

func (t *tx) GetTournament(ctx context.Context, id int64) (*models.Tournament, error) {
	v, ok := t.work.tournaments[id]
	if !ok {
		return nil, fmt.Errorf("tournament %d not found", id)
	}
	cp := *v
	return &cp, nil
}

func (t *tx) UpdateTournament(ctx context.Context, tour *models.Tournament) error {
	if tour.ID == 0 {
		tour.ID = t.nextID()
	}
	cp := *tour
	t.work.tournaments[tour.ID] = &cp
	return nil
}

// --- Event / Team ---

func (t *tx) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	v, ok := t.work.events[id]
	if !ok {
		return nil, fmt.Errorf("event %d not found", id)
	}
	cp := *v
	return &cp, nil
}

func (t *tx) ListEventsByTournament(ctx context.Context, tournamentID int64) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range t.work.events {
		if e.TournamentID == tournamentID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) UpdateEvent(ctx context.Context, e *models.Event) error {
	if e.ID == 0 {
		e.ID = t.nextID()
	}
	cp := *e
	t.work.events[e.ID] = &cp
	return nil
}

func (t *tx) ListTeamsByEvent(ctx context.Context, eventID int64) ([]*models.Team, error) {
	var out []*models.Team
	for _, tm := range t.work.teams {
		if tm.EventID == eventID {
			cp := *tm
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) UpdateTeam(ctx context.Context, tm *models.Team) error {
	if tm.ID == 0 {
		tm.ID = t.nextID()
	}
	cp := *tm
	t.work.teams[tm.ID] = &cp
	return nil
}

// --- ScheduleVersion ---

func (t *tx) GetVersion(ctx context.Context, id int64) (*models.ScheduleVersion, error) {
	v, ok := t.work.versions[id]
	if !ok {
		return nil, fmt.Errorf("version %d not found", id)
	}
	cp := *v
	return &cp, nil
}

func (t *tx) ListVersionsByTournament(ctx context.Context, tournamentID int64) ([]*models.ScheduleVersion, error) {
	var out []*models.ScheduleVersion
	for _, v := range t.work.versions {
		if v.TournamentID == tournamentID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) CreateVersion(ctx context.Context, v *models.ScheduleVersion) error {
	v.ID = t.nextID()
	cp := *v
	t.work.versions[v.ID] = &cp
	return nil
}

func (t *tx) UpdateVersion(ctx context.Context, v *models.ScheduleVersion) error {
	if _, ok := t.work.versions[v.ID]; !ok {
		return fmt.Errorf("version %d not found", v.ID)
	}
	cp := *v
	t.work.versions[v.ID] = &cp
	return nil
}

// --- Match ---

func (t *tx) CreateMatch(ctx context.Context, m *models.Match) error {
	for _, existing := range t.work.matches {
		if existing.VersionID == m.VersionID && existing.MatchCode == m.MatchCode {
			return fmt.Errorf("duplicate match_code %q in version %d", m.MatchCode, m.VersionID)
		}
	}
	m.ID = t.nextID()
	cp := *m
	t.work.matches[m.ID] = &cp
	return nil
}

func (t *tx) UpdateMatch(ctx context.Context, m *models.Match) error {
	if _, ok := t.work.matches[m.ID]; !ok {
		return fmt.Errorf("match %d not found", m.ID)
	}
	cp := *m
	t.work.matches[m.ID] = &cp
	return nil
}

func (t *tx) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	v, ok := t.work.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %d not found", id)
	}
	cp := *v
	return &cp, nil
}

func (t *tx) GetMatchByCode(ctx context.Context, versionID int64, code string) (*models.Match, error) {
	for _, m := range t.work.matches {
		if m.VersionID == versionID && m.MatchCode == code {
			cp := *m
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("match_code %q not found in version %d", code, versionID)
}

func (t *tx) ListMatchesByVersion(ctx context.Context, versionID int64) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range t.work.matches {
		if m.VersionID == versionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) ListMatchesByVersionAndEvent(ctx context.Context, versionID, eventID int64) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range t.work.matches {
		if m.VersionID == versionID && m.EventID == eventID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) DeleteMatch(ctx context.Context, id int64) error {
	delete(t.work.matches, id)
	return nil
}

// --- ScheduleSlot ---

func (t *tx) CreateSlot(ctx context.Context, s *models.ScheduleSlot) error {
	s.ID = t.nextID()
	cp := *s
	t.work.slots[s.ID] = &cp
	return nil
}

func (t *tx) ListSlotsByVersion(ctx context.Context, versionID int64) ([]*models.ScheduleSlot, error) {
	var out []*models.ScheduleSlot
	for _, s := range t.work.slots {
		if s.VersionID == versionID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) DeleteSlot(ctx context.Context, id int64) error {
	delete(t.work.slots, id)
	return nil
}

// --- MatchAssignment ---

func (t *tx) CreateAssignment(ctx context.Context, a *models.MatchAssignment) error {
	for _, existing := range t.work.assignments {
		if existing.VersionID == a.VersionID && existing.SlotID == a.SlotID {
			return fmt.Errorf("slot %d already assigned in version %d", a.SlotID, a.VersionID)
		}
		if existing.VersionID == a.VersionID && existing.MatchID == a.MatchID {
			return fmt.Errorf("match %d already assigned in version %d", a.MatchID, a.VersionID)
		}
	}
	a.ID = t.nextID()
	cp := *a
	t.work.assignments[a.ID] = &cp
	return nil
}

func (t *tx) UpdateAssignment(ctx context.Context, a *models.MatchAssignment) error {
	if _, ok := t.work.assignments[a.ID]; !ok {
		return fmt.Errorf("assignment %d not found", a.ID)
	}
	cp := *a
	t.work.assignments[a.ID] = &cp
	return nil
}

func (t *tx) DeleteAssignment(ctx context.Context, id int64) error {
	delete(t.work.assignments, id)
	return nil
}

func (t *tx) ListAssignmentsByVersion(ctx context.Context, versionID int64) ([]*models.MatchAssignment, error) {
	var out []*models.MatchAssignment
	for _, a := range t.work.assignments {
		if a.VersionID == versionID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) GetAssignmentByMatch(ctx context.Context, versionID, matchID int64) (*models.MatchAssignment, error) {
	for _, a := range t.work.assignments {
		if a.VersionID == versionID && a.MatchID == matchID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *tx) GetAssignmentBySlot(ctx context.Context, versionID, slotID int64) (*models.MatchAssignment, error) {
	for _, a := range t.work.assignments {
		if a.VersionID == versionID && a.SlotID == slotID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// --- Locks ---

func (t *tx) ListMatchLocks(ctx context.Context, versionID int64) ([]*models.MatchLock, error) {
	var out []*models.MatchLock
	for _, l := range t.work.matchLocks {
		if l.VersionID == versionID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) ListSlotLocks(ctx context.Context, versionID int64) ([]*models.SlotLock, error) {
	var out []*models.SlotLock
	for _, l := range t.work.slotLocks {
		if l.VersionID == versionID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) CreateMatchLock(ctx context.Context, l *models.MatchLock) error {
	cp := *l
	t.work.matchLocks = append(t.work.matchLocks, &cp)
	return nil
}

func (t *tx) CreateSlotLock(ctx context.Context, l *models.SlotLock) error {
	cp := *l
	t.work.slotLocks = append(t.work.slotLocks, &cp)
	return nil
}

// --- CourtState ---

func courtKey(tournamentID int64, courtNumber int) string {
	return fmt.Sprintf("%d|%d", tournamentID, courtNumber)
}

func (t *tx) ListCourtStates(ctx context.Context, tournamentID int64) ([]*models.CourtState, error) {
	var out []*models.CourtState
	for _, cs := range t.work.courtStates {
		if cs.TournamentID == tournamentID {
			cp := *cs
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) UpsertCourtState(ctx context.Context, cs *models.CourtState) error {
	cp := *cs
	t.work.courtStates[courtKey(cs.TournamentID, cs.CourtNumber)] = &cp
	return nil
}
