// internal/draft/draft.go
// Working Draft Manager (§4.6): idempotent Desk Draft creation/cloning and
// live version resolution. Grounded in the teacher's clone-on-write pattern
// for duplicating a tournament bracket into a new editable copy.
package draft

import (
	"context"

	"tournament-planner/internal/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/store"
)

// CreateResult reports whether a new Desk Draft was created or an existing
// one was found.
type CreateResult struct {
	Version *models.ScheduleVersion
	Created bool
}

// CreateDeskDraft is idempotent: if a version tagged DeskDraftTag already
// exists for the tournament, it is returned with Created=false. Otherwise
// the tournament's published version (or its latest final) is cloned into a
// new draft, and the tournament's published pointer is repointed to it.
func CreateDeskDraft(ctx context.Context, tx store.Tx, tournamentID int64) (*CreateResult, error) {
	versions, err := tx.ListVersionsByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.IsDeskDraft() {
			return &CreateResult{Version: v, Created: false}, nil
		}
	}

	source, err := resolveCloneSource(ctx, tx, tournamentID, versions)
	if err != nil {
		return nil, err
	}

	draft := &models.ScheduleVersion{
		TournamentID: tournamentID,
		Status:       models.VersionDraft,
		Tag:          models.DeskDraftTag,
	}
	if source != nil {
		draft.ClonedFromID = &source.ID
	}
	if err := tx.CreateVersion(ctx, draft); err != nil {
		return nil, err
	}

	if source != nil {
		if err := cloneVersionContents(ctx, tx, source.ID, draft.ID); err != nil {
			return nil, err
		}
	}

	tournament, err := tx.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	tournament.PublishedVersionID = &draft.ID
	if err := tx.UpdateTournament(ctx, tournament); err != nil {
		return nil, err
	}

	return &CreateResult{Version: draft, Created: true}, nil
}

func resolveCloneSource(ctx context.Context, tx store.Tx, tournamentID int64, versions []*models.ScheduleVersion) (*models.ScheduleVersion, error) {
	tournament, err := tx.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.PublishedVersionID != nil {
		for _, v := range versions {
			if v.ID == *tournament.PublishedVersionID {
				return v, nil
			}
		}
	}
	var latestFinal *models.ScheduleVersion
	for _, v := range versions {
		if v.Status != models.VersionFinal {
			continue
		}
		if latestFinal == nil || v.ID > latestFinal.ID {
			latestFinal = v
		}
	}
	return latestFinal, nil
}

// cloneVersionContents copies matches, slots, assignments and locks from
// source into dest, preserving every cross-reference: match ids are
// remapped through idMap so source_match_x_id edges and assignment links
// stay internally consistent inside the new version.
func cloneVersionContents(ctx context.Context, tx store.Tx, sourceID, destID int64) error {
	matches, err := tx.ListMatchesByVersion(ctx, sourceID)
	if err != nil {
		return err
	}
	idMap := make(map[int64]int64, len(matches))
	clones := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		clone := *m
		clone.ID = 0
		clone.VersionID = destID
		if err := tx.CreateMatch(ctx, &clone); err != nil {
			return err
		}
		idMap[m.ID] = clone.ID
		clones = append(clones, &clone)
	}
	for _, c := range clones {
		if c.SourceMatchAID != nil {
			if newID, ok := idMap[*c.SourceMatchAID]; ok {
				c.SourceMatchAID = &newID
			}
		}
		if c.SourceMatchBID != nil {
			if newID, ok := idMap[*c.SourceMatchBID]; ok {
				c.SourceMatchBID = &newID
			}
		}
		if err := tx.UpdateMatch(ctx, c); err != nil {
			return err
		}
	}

	slots, err := tx.ListSlotsByVersion(ctx, sourceID)
	if err != nil {
		return err
	}
	slotIDMap := make(map[int64]int64, len(slots))
	for _, s := range slots {
		clone := *s
		clone.ID = 0
		clone.VersionID = destID
		if err := tx.CreateSlot(ctx, &clone); err != nil {
			return err
		}
		slotIDMap[s.ID] = clone.ID
	}

	assignments, err := tx.ListAssignmentsByVersion(ctx, sourceID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		newMatchID, ok := idMap[a.MatchID]
		if !ok {
			continue
		}
		newSlotID, ok := slotIDMap[a.SlotID]
		if !ok {
			continue
		}
		clone := *a
		clone.ID = 0
		clone.VersionID = destID
		clone.MatchID = newMatchID
		clone.SlotID = newSlotID
		if err := tx.CreateAssignment(ctx, &clone); err != nil {
			return err
		}
	}

	matchLocks, err := tx.ListMatchLocks(ctx, sourceID)
	if err != nil {
		return err
	}
	for _, l := range matchLocks {
		newMatchID, ok1 := idMap[l.MatchID]
		newSlotID, ok2 := slotIDMap[l.SlotID]
		if !ok1 || !ok2 {
			continue
		}
		if err := tx.CreateMatchLock(ctx, &models.MatchLock{VersionID: destID, MatchID: newMatchID, SlotID: newSlotID}); err != nil {
			return err
		}
	}

	slotLocks, err := tx.ListSlotLocks(ctx, sourceID)
	if err != nil {
		return err
	}
	for _, l := range slotLocks {
		newSlotID, ok := slotIDMap[l.SlotID]
		if !ok {
			continue
		}
		if err := tx.CreateSlotLock(ctx, &models.SlotLock{VersionID: destID, SlotID: newSlotID, Reason: l.Reason}); err != nil {
			return err
		}
	}

	return nil
}

// ResolveLive resolves the live version for the runtime snapshot endpoint:
// an explicit versionID argument wins; otherwise the active desk draft;
// otherwise the published pointer; otherwise the latest final.
func ResolveLive(ctx context.Context, tx store.Tx, tournamentID int64, explicitVersionID *int64) (*models.ScheduleVersion, error) {
	if explicitVersionID != nil {
		v, err := tx.GetVersion(ctx, *explicitVersionID)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errs.New(errs.NotFound, "version %d not found", *explicitVersionID)
		}
		return v, nil
	}

	versions, err := tx.ListVersionsByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.IsDeskDraft() {
			return v, nil
		}
	}

	tournament, err := tx.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.PublishedVersionID != nil {
		for _, v := range versions {
			if v.ID == *tournament.PublishedVersionID {
				return v, nil
			}
		}
	}

	var latestFinal *models.ScheduleVersion
	for _, v := range versions {
		if v.Status != models.VersionFinal {
			continue
		}
		if latestFinal == nil || v.ID > latestFinal.ID {
			latestFinal = v
		}
	}
	if latestFinal == nil {
		return nil, errs.New(errs.NotFound, "no resolvable version for tournament %d", tournamentID)
	}
	return latestFinal, nil
}
