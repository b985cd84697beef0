// internal/engine/engine.go
// Engine is the core's sole public entry surface: one Go method per row of
// the operation table (§6). Transport (HTTP/gRPC/CLI) is the consumer's
// job, per Non-goals; Engine only wraps store.Store transactions around the
// component packages, the way the teacher's TournamentService wraps its
// repository container.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tournament-planner/internal/advancement"
	"tournament-planner/internal/config"
	"tournament-planner/internal/draft"
	"tournament-planner/internal/drawplan"
	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/obscache"
	"tournament-planner/internal/obslog"
	"tournament-planner/internal/placement"
	"tournament-planner/internal/projection"
	"tournament-planner/internal/reschedule"
	"tournament-planner/internal/runtime"
	"tournament-planner/internal/store"
	"tournament-planner/internal/utils"
	"tournament-planner/internal/verify"
)

// Engine composes the entity store and scheduling configuration behind the
// spec's operation surface.
type Engine struct {
	Store store.Store
	Log   *logrus.Logger
	Cfg   config.SchedulingConfig
	Cache *obscache.Cache // optional; a nil *Cache is a valid no-op
}

// New builds an Engine. cache may be nil (equivalent to a disabled cache).
func New(s store.Store, log *logrus.Logger, cfg config.SchedulingConfig, cache *obscache.Cache) *Engine {
	return &Engine{Store: s, Log: log, Cfg: cfg, Cache: cache}
}

// withTx runs fn in exactly one transaction (§5), tagging the call with a
// correlation id so every log line it emits can be grepped back together.
func (e *Engine) withTx(ctx context.Context, op string, fn func(tx store.Tx) error) error {
	runID := utils.GenerateRunID(op)
	entry := obslog.For(e.Log, "engine", logrus.Fields{"op": op, "run_id": runID})

	tx, err := e.Store.BeginTx(ctx)
	if err != nil {
		entry.WithError(err).Error("begin transaction failed")
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		entry.WithError(err).Warn("operation rolled back")
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		entry.WithError(err).Error("commit failed")
		return err
	}
	entry.Debug("operation committed")
	return nil
}

func requireDraftVersion(tx store.Tx, ctx context.Context, versionID int64) (*models.ScheduleVersion, error) {
	v, err := tx.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errs.New(errs.NotFound, "version %d not found", versionID)
	}
	return v, nil
}

// GenerateMatches compiles event.DrawPlan + its teams into wired Match rows
// (generate_matches).
func (e *Engine) GenerateMatches(ctx context.Context, versionID, eventID int64) (*drawplan.Result, error) {
	var result *drawplan.Result
	err := e.withTx(ctx, "GenerateMatches", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		if !v.IsDraft() {
			return errs.New(errs.VersionNotDraft, "version %d is not a draft", versionID)
		}
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return errs.New(errs.NotFound, "event %d not found", eventID)
		}
		teams, err := tx.ListTeamsByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		result, err = drawplan.GenerateMatches(event, teams)
		if err != nil {
			return err
		}
		for _, m := range result.Matches {
			m.VersionID = versionID
			if err := tx.CreateMatch(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	return result, err
}

// AssignBySequence runs the master-sequence driver (assign_by_sequence).
func (e *Engine) AssignBySequence(ctx context.Context, versionID int64) (*placement.AssignResult, error) {
	var result *placement.AssignResult
	err := e.withTx(ctx, "AssignBySequence", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		if !v.IsDraft() {
			return errs.New(errs.VersionNotDraft, "version %d is not a draft", versionID)
		}
		matches, slots, assignments, events, err := verify.LoadVersionData(ctx, tx, v.TournamentID, versionID)
		if err != nil {
			return err
		}
		matchLocks, err := tx.ListMatchLocks(ctx, versionID)
		if err != nil {
			return err
		}
		slotLocks, err := tx.ListSlotLocks(ctx, versionID)
		if err != nil {
			return err
		}
		c := placement.NewContext(e.Cfg, events, matches, slots, assignments, matchLocks, slotLocks)
		result, err = placement.RunMasterSequence(ctx, tx, c, versionID, matches, events, slots)
		return err
	})
	return result, err
}

// RunDailyPolicy runs the daily policy driver for one day (run_daily_policy).
func (e *Engine) RunDailyPolicy(ctx context.Context, versionID int64, day time.Time, pos placement.DayPosition) (*placement.AssignResult, error) {
	var result *placement.AssignResult
	err := e.withTx(ctx, "RunDailyPolicy", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		if !v.IsDraft() {
			return errs.New(errs.VersionNotDraft, "version %d is not a draft", versionID)
		}
		matches, slots, assignments, events, err := verify.LoadVersionData(ctx, tx, v.TournamentID, versionID)
		if err != nil {
			return err
		}
		matchLocks, err := tx.ListMatchLocks(ctx, versionID)
		if err != nil {
			return err
		}
		slotLocks, err := tx.ListSlotLocks(ctx, versionID)
		if err != nil {
			return err
		}
		var daySlots []*models.ScheduleSlot
		for _, s := range slots {
			if sameDay(s.DayDate, day) {
				daySlots = append(daySlots, s)
			}
		}
		c := placement.NewContext(e.Cfg, events, matches, slots, assignments, matchLocks, slotLocks)
		result, err = placement.RunDailyPolicy(ctx, tx, c, versionID, pos, day, matches, events, daySlots)
		return err
	})
	return result, err
}

// RunFullPolicy runs the daily policy driver for every tournament day in
// order (run_full_policy).
func (e *Engine) RunFullPolicy(ctx context.Context, versionID int64, days []time.Time) ([]*placement.AssignResult, error) {
	var out []*placement.AssignResult
	for i, d := range days {
		pos := placement.DayMiddle
		if i == 0 {
			pos = placement.DayFirst
		} else if i == len(days)-1 {
			pos = placement.DayLast
		}
		r, err := e.RunDailyPolicy(ctx, versionID, d, pos)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// FinalizeMatch transitions a match to FINAL (finalize_match).
func (e *Engine) FinalizeMatch(ctx context.Context, versionID, matchID, winner int64, score models.Score, flags runtime.FinalizeFlags) (*runtime.FinalizeResult, error) {
	var result *runtime.FinalizeResult
	err := e.withTx(ctx, "FinalizeMatch", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		m, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return errs.New(errs.NotFound, "match %d not found", matchID)
		}
		result, err = runtime.Finalize(ctx, tx, e.Log, v, m, winner, score, flags)
		return err
	})
	return result, err
}

// CorrectMatch rewires downstream if winner changed (correct_match).
func (e *Engine) CorrectMatch(ctx context.Context, versionID, matchID, winner int64, score models.Score) (*advancement.Result, error) {
	var result *advancement.Result
	err := e.withTx(ctx, "CorrectMatch", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		m, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return errs.New(errs.NotFound, "match %d not found", matchID)
		}
		result, err = runtime.Correct(ctx, tx, e.Log, v, m, winner, score)
		return err
	})
	return result, err
}

// SetStatus performs a simple status transition (set_status).
func (e *Engine) SetStatus(ctx context.Context, versionID, matchID int64, status models.RuntimeStatus) error {
	return e.withTx(ctx, "SetStatus", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		m, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return errs.New(errs.NotFound, "match %d not found", matchID)
		}
		return runtime.SetStatus(ctx, tx, v, m, status)
	})
}

// ApplyAdvancement recomputes downstream from current match state
// (apply_advancement).
func (e *Engine) ApplyAdvancement(ctx context.Context, versionID, matchID int64) (*advancement.Result, error) {
	var result *advancement.Result
	err := e.withTx(ctx, "ApplyAdvancement", func(tx store.Tx) error {
		m, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return errs.New(errs.NotFound, "match %d not found", matchID)
		}
		result, err = advancement.Resolve(ctx, tx, e.Log, versionID, m)
		return err
	})
	return result, err
}

// ResolveAllDependencies repairs and advances every FINAL match
// (resolve_all_dependencies).
func (e *Engine) ResolveAllDependencies(ctx context.Context, versionID int64) (*advancement.Result, error) {
	var result *advancement.Result
	err := e.withTx(ctx, "ResolveAllDependencies", func(tx store.Tx) error {
		var err error
		result, err = advancement.Repair(ctx, tx, e.Log, versionID)
		return err
	})
	return result, err
}

// MoveMatch validates and relocates a match's assignment (move_match).
func (e *Engine) MoveMatch(ctx context.Context, versionID, matchID, targetSlotID int64) error {
	return e.withTx(ctx, "MoveMatch", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		m, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return errs.New(errs.NotFound, "match %d not found", matchID)
		}
		checkFn, err := e.compatibilityCheck(ctx, tx, v)
		if err != nil {
			return err
		}
		return runtime.Move(ctx, tx, v, m, targetSlotID, checkFn)
	})
}

// SwapMatches atomically exchanges two matches' slots (swap_matches).
func (e *Engine) SwapMatches(ctx context.Context, versionID, matchAID, matchBID int64) error {
	return e.withTx(ctx, "SwapMatches", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		a, err := tx.GetMatch(ctx, matchAID)
		if err != nil {
			return err
		}
		b, err := tx.GetMatch(ctx, matchBID)
		if err != nil {
			return err
		}
		if a == nil || b == nil {
			return errs.New(errs.NotFound, "both matches must exist to swap")
		}
		return runtime.Swap(ctx, tx, v, a, b)
	})
}

func (e *Engine) compatibilityCheck(ctx context.Context, tx store.Tx, v *models.ScheduleVersion) (runtime.CompatibilityCheck, error) {
	matches, slots, assignments, events, err := verify.LoadVersionData(ctx, tx, v.TournamentID, v.ID)
	if err != nil {
		return nil, err
	}
	matchLocks, err := tx.ListMatchLocks(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	slotLocks, err := tx.ListSlotLocks(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	c := placement.NewContext(e.Cfg, events, matches, slots, assignments, matchLocks, slotLocks)
	return func(m *models.Match, slotID int64) (bool, string) {
		return c.Compatible(m, slotID, nil)
	}, nil
}

// CloneToDeskDraft produces (or returns the existing) draft version
// (clone_to_desk_draft).
func (e *Engine) CloneToDeskDraft(ctx context.Context, tournamentID int64) (*draft.CreateResult, error) {
	var result *draft.CreateResult
	err := e.withTx(ctx, "CloneToDeskDraft", func(tx store.Tx) error {
		var err error
		result, err = draft.CreateDeskDraft(ctx, tx, tournamentID)
		return err
	})
	return result, err
}

// ResolveLiveVersion resolves explicit > desk draft > published > latest
// final, for the runtime snapshot endpoint.
func (e *Engine) ResolveLiveVersion(ctx context.Context, tournamentID int64, explicitVersionID *int64) (*models.ScheduleVersion, error) {
	var result *models.ScheduleVersion
	err := e.withTx(ctx, "ResolveLiveVersion", func(tx store.Tx) error {
		var err error
		result, err = draft.ResolveLive(ctx, tx, tournamentID, explicitVersionID)
		return err
	})
	return result, err
}

// VerifyDay returns the InvariantReport for one day (verify_day). Results
// are cached for the configured TTL, keyed by (version, day, output state) —
// safe per §5 since verification is read-only against a consistent snapshot.
func (e *Engine) VerifyDay(ctx context.Context, tournamentID, versionID int64, day time.Time) (*verify.Report, error) {
	cacheKey := fmt.Sprintf("verify:day:%d:%s", versionID, day.Format("2006-01-02"))
	var cached verify.Report
	if e.Cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var report *verify.Report
	err := e.withTx(ctx, "VerifyDay", func(tx store.Tx) error {
		matches, slots, assignments, events, err := verify.LoadVersionData(ctx, tx, tournamentID, versionID)
		if err != nil {
			return err
		}
		findings := verify.Day(e.Cfg, day, matches, slots, assignments, events)
		report = &verify.Report{Findings: findings}
		e.stampHashes(ctx, report, versionID, matches, slots, assignments, events, tx)
		return nil
	})
	if err == nil {
		_ = e.Cache.Set(ctx, cacheKey, report)
	}
	return report, err
}

// VerifyFull returns the InvariantReport across every day (verify_full).
// Cached the same way as VerifyDay, keyed by version only.
func (e *Engine) VerifyFull(ctx context.Context, tournamentID, versionID int64) (*verify.Report, error) {
	cacheKey := fmt.Sprintf("verify:full:%d", versionID)
	var cached verify.Report
	if e.Cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var report *verify.Report
	err := e.withTx(ctx, "VerifyFull", func(tx store.Tx) error {
		matches, slots, assignments, events, err := verify.LoadVersionData(ctx, tx, tournamentID, versionID)
		if err != nil {
			return err
		}
		findings := verify.Full(e.Cfg, matches, slots, assignments, events)
		report = &verify.Report{Findings: findings}
		e.stampHashes(ctx, report, versionID, matches, slots, assignments, events, tx)
		return nil
	})
	if err == nil {
		_ = e.Cache.Set(ctx, cacheKey, report)
	}
	return report, err
}

func (e *Engine) stampHashes(ctx context.Context, report *verify.Report, versionID int64, matches []*models.Match, slots []*models.ScheduleSlot, assignments []*models.MatchAssignment, events []*models.Event, tx store.Tx) {
	matchLocks, _ := tx.ListMatchLocks(ctx, versionID)
	slotLocks, _ := tx.ListSlotLocks(ctx, versionID)
	report.InputHash = verify.InputHash(slots, matches, events, matchLocks, slotLocks, e.Cfg.PolicyVersion)
	slotByID := make(map[int64]*models.ScheduleSlot, len(slots))
	for _, s := range slots {
		slotByID[s.ID] = s
	}
	report.OutputHash = verify.OutputHash(assignments, slotByID)
}

// ReschedulePreview computes a reschedule plan without writing (preview).
func (e *Engine) ReschedulePreview(ctx context.Context, versionID int64, params reschedule.Params) (*reschedule.PreviewResult, error) {
	var result *reschedule.PreviewResult
	err := e.withTx(ctx, "ReschedulePreview", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		matches, slots, assignments, _, err := verify.LoadVersionData(ctx, tx, v.TournamentID, versionID)
		if err != nil {
			return err
		}
		lost := reschedule.LostSlots(params, slots)
		lostIDs := map[int64]bool{}
		for _, s := range lost {
			lostIDs[s.ID] = true
		}

		assignedByMatch := make(map[int64]*models.MatchAssignment, len(assignments))
		for _, a := range assignments {
			assignedByMatch[a.MatchID] = a
		}
		slotByID := make(map[int64]*models.ScheduleSlot, len(slots))
		for _, s := range slots {
			slotByID[s.ID] = s
		}

		var affectedAssigned []reschedule.AffectedMatch
		var affectedUnassigned []*models.Match
		for _, m := range matches {
			if m.RuntimeStatus == models.StatusFinal {
				continue
			}
			a, has := assignedByMatch[m.ID]
			if !has {
				affectedUnassigned = append(affectedUnassigned, m)
				continue
			}
			if lostIDs[a.SlotID] {
				s := slotByID[a.SlotID]
				affectedAssigned = append(affectedAssigned, reschedule.AffectedMatch{Match: m, SlotID: a.SlotID, OriginalStart: s.StartTime})
			}
		}

		slotTaken := make(map[int64]bool, len(assignments))
		for _, a := range assignments {
			slotTaken[a.SlotID] = true
		}
		var candidates []*models.ScheduleSlot
		for _, s := range slots {
			if lostIDs[s.ID] {
				continue
			}
			if slotTaken[s.ID] {
				continue
			}
			candidates = append(candidates, s)
		}

		checkFn, err := e.compatibilityCheck(ctx, tx, v)
		if err != nil {
			return err
		}
		result = reschedule.Preview(e.Cfg, lostIDs, candidates, affectedAssigned, affectedUnassigned, reschedule.CompatibilityCheck(checkFn))
		return nil
	})
	return result, err
}

// RescheduleApply writes a previously computed reschedule plan (apply).
func (e *Engine) RescheduleApply(ctx context.Context, versionID int64, moves []reschedule.Move) error {
	return e.withTx(ctx, "RescheduleApply", func(tx store.Tx) error {
		for _, mv := range moves {
			a, err := tx.GetAssignmentByMatch(ctx, versionID, mv.MatchID)
			if err != nil {
				return err
			}
			if a == nil {
				a = &models.MatchAssignment{VersionID: versionID, MatchID: mv.MatchID, SlotID: mv.ToSlotID, AssignedBy: models.AssignedByReschedule, Locked: true}
				if err := tx.CreateAssignment(ctx, a); err != nil {
					return err
				}
				continue
			}
			a.SlotID = mv.ToSlotID
			a.AssignedBy = models.AssignedByReschedule
			a.Locked = true
			if err := tx.UpdateAssignment(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RebuildPreview computes a rebuild plan for a set of days without writing
// (rebuild_preview).
func (e *Engine) RebuildPreview(ctx context.Context, versionID int64, dayConfigs []reschedule.DayConfig, drop reschedule.ConsolationDrop) (*reschedule.RebuildPlan, error) {
	var plan *reschedule.RebuildPlan
	err := e.withTx(ctx, "RebuildPreview", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		matches, slots, _, _, err := verify.LoadVersionData(ctx, tx, v.TournamentID, versionID)
		if err != nil {
			return err
		}
		plan = reschedule.Rebuild(versionID, dayConfigs, slots, matches, drop)
		return nil
	})
	return plan, err
}

// RebuildApply deletes the rebuilt days' slots/assignments, creates the new
// slots, and re-places the plan's ordered matches against them
// (rebuild_apply).
func (e *Engine) RebuildApply(ctx context.Context, versionID int64, plan *reschedule.RebuildPlan) (*placement.AssignResult, error) {
	var result *placement.AssignResult
	err := e.withTx(ctx, "RebuildApply", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		assignments, err := tx.ListAssignmentsByVersion(ctx, versionID)
		if err != nil {
			return err
		}
		toDelete := make(map[int64]bool, len(plan.SlotsToDelete))
		for _, id := range plan.SlotsToDelete {
			toDelete[id] = true
		}
		for _, a := range assignments {
			if toDelete[a.SlotID] {
				if err := tx.DeleteAssignment(ctx, a.ID); err != nil {
					return err
				}
			}
		}
		for _, id := range plan.SlotsToDelete {
			if err := tx.DeleteSlot(ctx, id); err != nil {
				return err
			}
		}
		for _, s := range plan.NewSlots {
			if err := tx.CreateSlot(ctx, s); err != nil {
				return err
			}
		}

		matches, slots, newAssignments, events, err := verify.LoadVersionData(ctx, tx, v.TournamentID, versionID)
		if err != nil {
			return err
		}
		matchLocks, err := tx.ListMatchLocks(ctx, versionID)
		if err != nil {
			return err
		}
		slotLocks, err := tx.ListSlotLocks(ctx, versionID)
		if err != nil {
			return err
		}
		c := placement.NewContext(e.Cfg, events, matches, slots, newAssignments, matchLocks, slotLocks)
		result, err = placement.RunMasterSequence(ctx, tx, c, versionID, plan.OrderedMatches, events, slots)
		return err
	})
	return result, err
}

// BulkPauseMatches pauses every IN_PROGRESS match on the version
// (bulk_pause).
func (e *Engine) BulkPauseMatches(ctx context.Context, versionID int64) (int, error) {
	var n int
	err := e.withTx(ctx, "BulkPauseMatches", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		n, err = runtime.BulkPause(ctx, tx, v)
		return err
	})
	return n, err
}

// BulkResumeMatches resumes every PAUSED match on the version (bulk_resume).
func (e *Engine) BulkResumeMatches(ctx context.Context, versionID int64) (int, error) {
	var n int
	err := e.withTx(ctx, "BulkResumeMatches", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		n, err = runtime.BulkResume(ctx, tx, v)
		return err
	})
	return n, err
}

// BulkDelayMatches marks as DELAYED every scheduled match on the given day
// starting at or after threshold ("HH:MM") (bulk_delay).
func (e *Engine) BulkDelayMatches(ctx context.Context, versionID int64, threshold string, day *time.Time) (int, error) {
	var n int
	err := e.withTx(ctx, "BulkDelayMatches", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		n, err = runtime.BulkDelay(ctx, tx, v, threshold, day)
		return err
	})
	return n, err
}

// BulkUndelayMatches reverts every DELAYED match to SCHEDULED (bulk_undelay).
func (e *Engine) BulkUndelayMatches(ctx context.Context, versionID int64) (int, error) {
	var n int
	err := e.withTx(ctx, "BulkUndelayMatches", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		n, err = runtime.BulkUndelay(ctx, tx, v)
		return err
	})
	return n, err
}

// DefaultWeekendTeam finalizes every one of a withdrawing team's remaining
// assigned matches as a default loss (default_weekend).
func (e *Engine) DefaultWeekendTeam(ctx context.Context, versionID int64, team *models.Team) (*advancement.Result, error) {
	var result *advancement.Result
	err := e.withTx(ctx, "DefaultWeekendTeam", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		result, err = runtime.DefaultWeekend(ctx, tx, e.Log, v, team)
		return err
	})
	return result, err
}

// AddDeskSlot inserts one manually specified slot for the day (add_slot).
func (e *Engine) AddDeskSlot(ctx context.Context, versionID int64, day, start, end time.Time, court int, courtLabel string) (*models.ScheduleSlot, error) {
	var slot *models.ScheduleSlot
	err := e.withTx(ctx, "AddDeskSlot", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		slot, err = runtime.AddSlot(ctx, tx, v, day, start, end, court, courtLabel)
		return err
	})
	return slot, err
}

// AddDeskCourt appends a new court label to the tournament and, if
// synthesize is set, mirrors every existing time window on that day onto
// the new court (add_court).
func (e *Engine) AddDeskCourt(ctx context.Context, tournamentID, versionID int64, label string, day time.Time, synthesize bool) ([]*models.ScheduleSlot, error) {
	var slots []*models.ScheduleSlot
	err := e.withTx(ctx, "AddDeskCourt", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		t, err := tx.GetTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t == nil {
			return errs.New(errs.NotFound, "tournament %d not found", tournamentID)
		}
		slots, err = runtime.AddCourt(ctx, tx, t, v, label, day, synthesize)
		return err
	})
	return slots, err
}

// ProjectPools reports the current WF -> pool projection for one event: for
// each team, its bucket and, once WF play resolves it, pool label
// (project_pools, §4.9).
func (e *Engine) ProjectPools(ctx context.Context, versionID, eventID int64) ([]projection.TeamProjection, error) {
	var result []projection.TeamProjection
	err := e.withTx(ctx, "ProjectPools", func(tx store.Tx) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return errs.New(errs.NotFound, "event %d not found", eventID)
		}
		teams, err := tx.ListTeamsByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		matches, err := tx.ListMatchesByVersionAndEvent(ctx, versionID, eventID)
		if err != nil {
			return err
		}
		var wfMatches []*models.Match
		for _, m := range matches {
			if m.MatchType == models.MatchTypeWF {
				wfMatches = append(wfMatches, m)
			}
		}
		result = projection.Project(event, teams, wfMatches)
		return nil
	})
	return result, err
}

// ConfirmPlacement rewrites one pool's SEED_N placeholders into concrete
// team ids once every WF match feeding it is FINAL (confirm_placement,
// §4.9, §8 S6).
func (e *Engine) ConfirmPlacement(ctx context.Context, versionID, eventID int64, payload projection.ConfirmPayload) error {
	return e.withTx(ctx, "ConfirmPlacement", func(tx store.Tx) error {
		v, err := requireDraftVersion(tx, ctx, versionID)
		if err != nil {
			return err
		}
		matches, err := tx.ListMatchesByVersionAndEvent(ctx, versionID, eventID)
		if err != nil {
			return err
		}
		var wfMatches []*models.Match
		for _, m := range matches {
			if m.MatchType == models.MatchTypeWF {
				wfMatches = append(wfMatches, m)
			}
		}
		return projection.Confirm(ctx, tx, v, eventID, wfMatches, payload)
	})
}
