package cli

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/models"
	"tradejournal/internal/stats"
	"tradejournal/internal/store"
)

// addStatsCommands adds performance analysis commands.
func addStatsCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatsCmd(app))
}

func newStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Portfolio statistics",
		Long: `Aggregate statistics over the whole journal or a filtered slice.

With --by, trades are grouped and a per-group breakdown is shown instead.`,
		Example: `  tradejournal stats
  tradejournal stats --from 2026-08-01
  tradejournal stats --by session
  tradejournal stats --by system`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			filter := store.TradeFilter{}
			filter.Asset, _ = cmd.Flags().GetString("asset")
			filter.System, _ = cmd.Flags().GetString("system")
			filter.DateFrom, _ = cmd.Flags().GetString("from")
			filter.DateTo, _ = cmd.Flags().GetString("to")

			trades, err := app.Journal.ListTrades(ctx, filter)
			if err != nil {
				return err
			}

			groupKey, _ := cmd.Flags().GetString("by")
			if groupKey != "" {
				return renderBreakdown(output, trades, groupKey)
			}

			settings, err := app.Journal.Settings(ctx)
			if err != nil {
				return err
			}
			adjustments, err := app.Journal.ListAdjustments(ctx)
			if err != nil {
				return err
			}

			result := stats.Aggregate(trades, adjustments, settings)
			if output.IsJSON() {
				if math.IsInf(result.ProfitFactor, 0) {
					result.ProfitFactor = 0
				}
				return output.JSON(result)
			}
			renderStats(output, result)
			return nil
		},
	}
	cmd.Flags().String("by", "", "group by: system, timeframe, session, day, month")
	cmd.Flags().String("asset", "", "filter by asset")
	cmd.Flags().String("system", "", "filter by system")
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD, inclusive)")
	return cmd
}

func renderStats(output *Output, s models.TradeStats) {
	output.Bold("Performance")
	output.Printf("  Trades:          %d  (%d wins / %d losses)\n", s.TotalTrades, s.WinningTrades, s.LosingTrades)
	output.Printf("  Win rate:        %s  (EV win rate %s)\n", FormatWinRate(s.WinRate), FormatWinRate(s.EVWinRate))
	output.Printf("  Net P&L:         %s  (gross %s, fees %s)\n",
		output.FormatPnL(s.TotalPnL), FormatCurrency(s.GrossPnL), FormatCurrency(s.TotalFees))
	output.Printf("  Total R:         %s  (avg %s)\n", FormatRMultiple(s.TotalR), FormatRMultiple(s.AverageR))
	output.Printf("  Expected R:      %s total, %s avg\n", FormatRMultiple(s.TotalExpectedR), FormatRMultiple(s.AverageExpectedR))
	output.Printf("  Profit factor:   %s\n", formatProfitFactor(s.ProfitFactor))
	output.Printf("  Expectancy:      %s per trade\n", output.FormatPnL(s.Expectancy))
	output.Printf("  Largest win:     %s\n", output.FormatPnL(s.LargestWin))
	output.Printf("  Largest loss:    %s\n", output.FormatPnL(s.LargestLoss))
	output.Println()

	output.Bold("Risk Discipline")
	output.Printf("  Total risk:      %s actual vs %s ideal\n", FormatCurrency(s.TotalRisk), FormatCurrency(s.TotalIdealRisk))
	output.Printf("  Avg deviation:   %s\n", FormatPercent(s.AvgRiskDeviation))
	output.Printf("  Sizing:          %d good / %d over / %d under\n", s.GoodRiskTrades, s.OverRiskedTrades, s.UnderRiskedTrades)
	output.Println()

	output.Bold("Balance")
	output.Printf("  Adjusted:        %s\n", FormatCurrency(s.AdjustedBalance))
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞ (no losing trades)"
	}
	return fmt.Sprintf("%.2f", pf)
}

func renderBreakdown(output *Output, trades []models.Trade, groupKey string) error {
	var breakdowns []stats.Breakdown
	switch groupKey {
	case "system":
		breakdowns = stats.BySystem(trades)
	case "timeframe":
		breakdowns = stats.ByTimeframe(trades)
	case "session":
		breakdowns = stats.BySession(trades)
	case "day":
		breakdowns = stats.ByDayOfWeek(trades)
	case "month":
		breakdowns = stats.ByMonth(trades)
	default:
		return fmt.Errorf("unknown group: %s (use system, timeframe, session, day, or month)", groupKey)
	}

	if output.IsJSON() {
		return output.JSON(breakdowns)
	}
	if len(breakdowns) == 0 {
		output.Info("No trades found.")
		return nil
	}

	table := NewTable(output, "Group", "Trades", "Wins", "Win Rate", "P&L", "Avg Exp R")
	for _, b := range breakdowns {
		table.AddRow(
			b.Key,
			fmt.Sprintf("%d", b.Trades),
			fmt.Sprintf("%d", b.Wins),
			FormatWinRate(b.WinRate),
			output.FormatPnL(b.TotalPnL),
			FormatRMultiple(b.AvgExpectedR),
		)
	}
	table.Render()

	if len(breakdowns) > 1 {
		best := stats.Best(breakdowns)
		worst := stats.Worst(breakdowns)
		output.Println()
		output.Printf("  Best:  %s (%s avg expected R)\n", best.Key, FormatRMultiple(best.AvgExpectedR))
		output.Printf("  Worst: %s (%s avg expected R)\n", worst.Key, FormatRMultiple(worst.AvgExpectedR))
	}
	return nil
}
