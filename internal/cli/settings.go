package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/metrics"
	"tradejournal/internal/sessions"
)

// addSettingsCommands adds settings and session commands.
func addSettingsCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSettingsCmd(app))
	rootCmd.AddCommand(newSessionsCmd(app))
}

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Journal settings",
		Long:  "View and change journal settings: balance, fees, systems, risk.",
	}

	cmd.AddCommand(newSettingsShowCmd(app))
	cmd.AddCommand(newSettingsSetCmd(app))
	cmd.AddCommand(newSettingsRiskCmd(app))

	return cmd
}

func newSettingsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			settings, err := app.Journal.Settings(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(settings)
			}

			output.Bold("Account")
			output.Printf("  Balance:           %s\n", FormatCurrency(settings.AccountBalance))
			output.Printf("  Default risk:      %s per trade\n", FormatCurrency(settings.DefaultIdealRisk))
			output.Printf("  Risk tolerance:    %.1f%% deviation\n", settings.RiskDeviationTolerance)
			output.Println()

			output.Bold("Asset Fees (per unit)")
			assets := make([]string, 0, len(settings.AssetFees))
			for asset := range settings.AssetFees {
				assets = append(assets, asset)
			}
			sort.Strings(assets)
			for _, asset := range assets {
				output.Printf("  %-6s %s\n", asset, FormatCurrency(settings.AssetFees[asset]))
			}
			output.Println()

			output.Bold("Systems")
			for _, system := range settings.TradingSystems {
				risk := settings.IdealRiskFor(system)
				output.Printf("  %-16s ideal risk %s\n", system, FormatCurrency(risk))
			}
			return nil
		},
	}
}

func newSettingsSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Long: `Change one or more settings.

Changing values that feed the calculator (fees, tolerance, balance) does
not touch stored trades; run 'trade recalc' afterwards to refresh metrics.`,
		Example: `  tradejournal settings set --balance 10000
  tradejournal settings set --tolerance 15 --default-risk 150
  tradejournal settings set --fee BTC=18 --fee SOL=0.5
  tradejournal settings set --system-risk "NYC Breakout=200"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			settings, err := app.Journal.Settings(ctx)
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("balance") {
				settings.AccountBalance, _ = cmd.Flags().GetFloat64("balance")
				changed = true
			}
			if cmd.Flags().Changed("tolerance") {
				settings.RiskDeviationTolerance, _ = cmd.Flags().GetFloat64("tolerance")
				changed = true
			}
			if cmd.Flags().Changed("default-risk") {
				settings.DefaultIdealRisk, _ = cmd.Flags().GetFloat64("default-risk")
				changed = true
			}
			if cmd.Flags().Changed("fee") {
				pairs, _ := cmd.Flags().GetStringToString("fee")
				for asset, fee := range pairs {
					parsed, err := parsePositiveFloat(fee)
					if err != nil {
						return err
					}
					settings.AssetFees[metrics.NormalizeAssetKey(asset)] = parsed
					changed = true
				}
			}
			if cmd.Flags().Changed("system-risk") {
				pairs, _ := cmd.Flags().GetStringToString("system-risk")
				for system, risk := range pairs {
					parsed, err := parsePositiveFloat(risk)
					if err != nil {
						return err
					}
					settings.SystemIdealRisk[system] = parsed
					changed = true
				}
			}
			if cmd.Flags().Changed("add-system") {
				system, _ := cmd.Flags().GetString("add-system")
				settings.TradingSystems = append(settings.TradingSystems, system)
				changed = true
			}

			if !changed {
				output.Warning("Nothing to change; pass at least one flag.")
				return nil
			}

			if err := app.Journal.SaveSettings(ctx, settings); err != nil {
				return err
			}
			output.Success("Settings saved")
			output.Dim("Stored trade metrics are unchanged; run 'tradejournal trade recalc' to refresh them.")
			return nil
		},
	}
	cmd.Flags().Float64("balance", 0, "account balance")
	cmd.Flags().Float64("tolerance", 0, "risk deviation tolerance in percent")
	cmd.Flags().Float64("default-risk", 0, "default ideal risk per trade")
	cmd.Flags().StringToString("fee", nil, "asset fee, ASSET=fee (repeatable)")
	cmd.Flags().StringToString("system-risk", nil, "per-system ideal risk, SYSTEM=risk (repeatable)")
	cmd.Flags().String("add-system", "", "add a trading system label")
	return cmd
}

func parsePositiveFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("must not be negative: %s", s)
	}
	return v, nil
}

func newSettingsRiskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Show grade-adjusted position risk",
		Long: `Show the risk amount to take for a setup, scaled by grade.

Higher-conviction grades size up from the system's ideal risk, weak grades
size down.`,
		Example: `  tradejournal settings risk --system "NYC Breakout" --grade A++
  tradejournal settings risk --grade C`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			settings, err := app.Journal.Settings(ctx)
			if err != nil {
				return err
			}

			system, _ := cmd.Flags().GetString("system")
			grade, _ := cmd.Flags().GetString("grade")

			base := settings.IdealRiskFor(system)
			multiplier := metrics.GradeRiskMultiplier(grade)
			adjusted := metrics.GradeAdjustedRisk(settings, system, grade)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"system":     system,
					"grade":      grade,
					"base_risk":  base,
					"multiplier": multiplier,
					"risk":       adjusted,
				})
			}
			output.Printf("  Base risk:  %s\n", FormatCurrency(base))
			output.Printf("  Grade:      %s (x%.2f)\n", grade, multiplier)
			output.Bold("  Position risk: %s", FormatCurrency(adjusted))
			output.Dim("Apply to recorded trades with 'trade bulk --grade-risk' or at entry with 'trade add --grade-risk'.")
			return nil
		},
	}
	cmd.Flags().String("system", "", "trading system")
	cmd.Flags().String("grade", "", "setup grade")
	return cmd
}

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Trading sessions",
		Long:  "Show configured trading sessions and classify times of day.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			settings, err := app.Journal.Settings(ctx)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(settings.TradingSessions)
			}

			table := NewTable(output, "Session", "Hours (UTC)", "Description")
			for _, s := range settings.TradingSessions {
				table.AddRow(s.Name, sessions.FormatRange(s), s.Description)
			}
			table.Render()
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "classify <HH:MM>",
		Short: "Classify a time of day into its session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := sessions.ParseClock(args[0]); err != nil {
				return err
			}

			settings, err := app.Journal.Settings(ctx)
			if err != nil {
				return err
			}

			session := sessions.Classify(args[0], settings.TradingSessions)
			if output.IsJSON() {
				return output.JSON(session)
			}
			output.Printf("  %s falls in %s (%s)\n", args[0], session.Name, sessions.FormatRange(session))
			return nil
		},
	})

	return cmd
}
