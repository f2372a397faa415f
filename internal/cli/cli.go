// Package cli implements qualifyctl, the jury's command-line companion to
// the selection service: offline ranking of a roster file and demo seeding
// of a live service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/scoring"
)

// Defaults for the seed command.
const (
	defaultSeedTeams      = 40
	defaultSeedTimeout    = 30 * time.Second
	defaultRunTimeout     = 10 * time.Minute
	defaultInterviewShare = 0.8
	workersPerCPU         = 2
)

// NewRootCommand builds the qualifyctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "qualifyctl",
		Short:         "Competition selection tooling",
		Long:          "qualifyctl ranks team rosters offline with the same rules as the selection service and seeds a running service with demo teams.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRankCommand(), newPointsCommand(), newSeedCommand())
	return root
}

func newRankCommand() *cobra.Command {
	var (
		tieBreak string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "rank <roster.yaml>",
		Short: "Rank a roster and print standings per category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := LoadRosterFile(args[0])
			if err != nil {
				return err
			}
			res, err := RankRoster(roster, tieBreak, scoring.NewCalculator())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"standings": res.Standings,
					"failures":  res.Failures,
				})
			}
			for _, c := range model.Categories {
				renderStandings(out, c, res.Standings[c])
			}
			for _, f := range res.Failures {
				renderWarning(out, "skipped %s: %s", f.ID, f.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tieBreak, "tie-break", "", "Tie-break policy: input_order or qcm_then_id (default: roster value)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of tables")
	return cmd
}

func newPointsCommand() *cobra.Command {
	var (
		genderBonus float64
		skillPoints float64
	)
	cmd := &cobra.Command{
		Use:   "points <roster.yaml>",
		Short: "Print the points breakdown of every team in a roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := LoadRosterFile(args[0])
			if err != nil {
				return err
			}
			calc := scoring.NewCalculator(scoring.WithGenderBonus(genderBonus), scoring.WithSkillPoints(skillPoints))
			renderPoints(cmd.OutOrStdout(), roster.Teams, calc)
			return nil
		},
	}
	cmd.Flags().Float64Var(&genderBonus, "gender-bonus", 5, "Bonus for a mixed-gender team")
	cmd.Flags().Float64Var(&skillPoints, "skill-points", 2, "Points per declared skill")
	return cmd
}

func newSeedCommand() *cobra.Command {
	var (
		baseURL string
		cfg     SeedConfig
		timeout time.Duration
		total   time.Duration
		verify  bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register demo teams against a running service and check the resulting standings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := contextWithTimeout(cmd, total)
			defer cancel()

			client := NewClient(baseURL, timeout)
			rep, err := Seed(ctx, client, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "registered=%d replayed=%d qualified=%d failed=%d interviewed=%d errors=%d in %s\n",
				rep.Registered, rep.Replayed, rep.Qualified, rep.Failed, rep.Interviewed, rep.Errors,
				rep.Duration.Round(time.Millisecond))
			for _, c := range model.Categories {
				renderStandings(out, c, rep.Standings[c])
			}
			if !verify {
				return nil
			}

			var settings model.Settings
			if _, err := client.do(ctx, http.MethodGet, "/settings", nil, &settings, nil); err != nil {
				return err
			}
			for _, c := range model.Categories {
				quota, err := settings.Quota(c)
				if err != nil {
					return err
				}
				if err := VerifyStandings(rep.Standings[c], quota); err != nil {
					return fmt.Errorf("%s: %w", c, err)
				}
			}
			fmt.Fprintln(out, "standings verified")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&baseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&cfg.Teams, "teams", defaultSeedTeams, "Number of teams to register")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*workersPerCPU, "Concurrent submissions")
	f.Float64Var(&cfg.InterviewShare, "interview-share", defaultInterviewShare, "Fraction of qualified teams that get an interview score")
	f.StringVar(&cfg.Date, "date", "", "Interview date, YYYY-MM-DD (default: today)")
	f.DurationVar(&timeout, "timeout", defaultSeedTimeout, "HTTP request timeout")
	f.DurationVar(&total, "deadline", defaultRunTimeout, "Overall run deadline")
	f.BoolVar(&verify, "verify", true, "Check rank order and decisions after seeding")
	return cmd
}

func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
