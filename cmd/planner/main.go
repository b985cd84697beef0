// cmd/planner/main.go
// Demo/smoke CLI for the scheduling core. Wires config + logger + an
// in-memory store behind engine.Engine and drives one seed -> generate ->
// place -> verify cycle, the way the teacher's cmd/server wires its own
// service container behind cobra commands. No match is finalized or
// advanced by the demo.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tournament-planner/internal/config"
	"tournament-planner/internal/engine"
	"tournament-planner/internal/models"
	"tournament-planner/internal/obscache"
	"tournament-planner/internal/obslog"
	"tournament-planner/internal/store/memstore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planner",
		Short: "Tournament scheduling core demo runner",
	}
	root.AddCommand(newDemoCmd())
	return root
}

func newDemoCmd() *cobra.Command {
	var teamCount int
	var template string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Seed a single event and run one generate/place/verify cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), teamCount, models.DrawTemplate(template))
		},
	}
	cmd.Flags().IntVar(&teamCount, "teams", 16, "team count for the seeded event")
	cmd.Flags().StringVar(&template, "template", string(models.TemplateWFtoPoolsDynamic), "draw plan template")
	return cmd
}

func runDemo(ctx context.Context, teamCount int, template models.DrawTemplate) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := obslog.New(cfg.LogLevel)
	entry := obslog.For(log, "cmd.planner", nil)

	ms := memstore.New()
	cache := obscache.New(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL, cfg.Cache.Enabled)
	eng := engine.New(ms, log, cfg.Scheduling, cache)

	tournamentID, versionID, eventID := seedTournament(ms, teamCount, template)
	entry.WithFields(map[string]any{
		"tournament_id": tournamentID, "version_id": versionID, "event_id": eventID,
	}).Info("seeded tournament")

	genResult, err := eng.GenerateMatches(ctx, versionID, eventID)
	if err != nil {
		return fmt.Errorf("generate_matches: %w", err)
	}
	entry.WithFields(map[string]any{"matches": len(genResult.Matches), "warnings": len(genResult.Warnings)}).Info("generated draw")
	for _, w := range genResult.Warnings {
		entry.Warn(w.Message)
	}

	assignResult, err := eng.AssignBySequence(ctx, versionID)
	if err != nil {
		return fmt.Errorf("assign_by_sequence: %w", err)
	}
	entry.WithFields(map[string]any{"placed": assignResult.Placed, "overflow": len(assignResult.Overflow)}).Info("placed matches")

	report, err := eng.VerifyFull(ctx, tournamentID, versionID)
	if err != nil {
		return fmt.Errorf("verify_full: %w", err)
	}
	entry.WithFields(map[string]any{
		"findings": len(report.Findings), "input_hash": report.InputHash, "output_hash": report.OutputHash,
	}).Info("verified schedule")
	for _, f := range report.Findings {
		entry.Warn(f.Message)
	}

	return nil
}

// seedTournament builds a one-event tournament fixture directly against the
// in-memory store (there is no create_tournament operation in the engine
// surface; tournaments are provisioned upstream of the core per §1).
func seedTournament(ms *memstore.Store, teamCount int, template models.DrawTemplate) (tournamentID, versionID, eventID int64) {
	startDate := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 0, 2)

	t := &models.Tournament{
		Name:        "Demo Invitational",
		Timezone:    "UTC",
		StartDate:   startDate,
		EndDate:     endDate,
		CourtLabels: []string{"Court 1", "Court 2", "Court 3", "Court 4"},
		Days: []models.TournamentDay{
			{Date: startDate, EarliestStart: "08:00", LatestEnd: "20:00"},
			{Date: startDate.AddDate(0, 0, 1), EarliestStart: "08:00", LatestEnd: "20:00"},
			{Date: endDate, EarliestStart: "08:00", LatestEnd: "18:00"},
		},
	}
	tournamentID = ms.SeedTournament(t)

	waterfallRounds := 0
	switch template {
	case models.TemplateWFtoPoolsDynamic, models.TemplateWFtoPools4, models.TemplateWFtoBrackets8:
		waterfallRounds = 2
	}

	event := &models.Event{
		TournamentID:       tournamentID,
		Name:                "Open Division",
		Category:            "Open",
		DeclaredTeamCount:   teamCount,
		Guarantee:           4,
		WaterfallBlockMins:  40,
		StandardBlockMins:   60,
		DrawPlan: models.DrawPlan{
			Template:        template,
			WaterfallRounds: waterfallRounds,
			Guarantee:       4,
		},
	}
	eventID = ms.SeedEvent(event)

	for seed := 1; seed <= teamCount; seed++ {
		ms.SeedTeam(&models.Team{
			EventID:     eventID,
			Seed:        seed,
			Name:        fmt.Sprintf("Team %d", seed),
			DisplayName: fmt.Sprintf("Team %d", seed),
		})
	}

	version := &models.ScheduleVersion{
		TournamentID: tournamentID,
		Status:       models.VersionDraft,
		Tag:          "Working Draft",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	versionID = ms.SeedVersion(version)

	seedSlots(ms, versionID, t)
	return tournamentID, versionID, eventID
}

func seedSlots(ms *memstore.Store, versionID int64, t *models.Tournament) {
	ctx := context.Background()
	tx, err := ms.BeginTx(ctx)
	if err != nil {
		return
	}
	defer tx.Rollback(ctx)

	for _, day := range t.Days {
		start, _ := time.Parse("15:04", day.EarliestStart)
		end, _ := time.Parse("15:04", day.LatestEnd)
		dayStart := time.Date(day.Date.Year(), day.Date.Month(), day.Date.Day(), start.Hour(), start.Minute(), 0, 0, time.UTC)
		dayEnd := time.Date(day.Date.Year(), day.Date.Month(), day.Date.Day(), end.Hour(), end.Minute(), 0, 0, time.UTC)
		const blockMinutes = 40
		for court := 1; court <= len(t.CourtLabels); court++ {
			for cur := dayStart; cur.Add(blockMinutes*time.Minute).Compare(dayEnd) <= 0; cur = cur.Add(blockMinutes * time.Minute) {
				_ = tx.CreateSlot(ctx, &models.ScheduleSlot{
					VersionID:    versionID,
					DayDate:      day.Date,
					StartTime:    cur,
					EndTime:      cur.Add(blockMinutes * time.Minute),
					CourtNumber:  court,
					CourtLabel:   t.CourtLabels[court-1],
					BlockMinutes: blockMinutes,
					IsActive:     true,
				})
			}
		}
	}
	_ = tx.Commit(ctx)
}
