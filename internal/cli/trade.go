package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/journal"
	"tradejournal/internal/metrics"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

// addTradeCommands adds trade CRUD commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Trade management",
		Long:  "Record, review, update, and delete trades.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeUpdateCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))
	cmd.AddCommand(newTradeBulkCmd(app))
	cmd.AddCommand(newTradeRecalcCmd(app))

	rootCmd.AddCommand(cmd)
}

func addTradeInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("date", "", "trade date (YYYY-MM-DD)")
	cmd.Flags().String("time", "", "entry time (HH:MM, UTC)")
	cmd.Flags().String("end-date", "", "exit date (YYYY-MM-DD)")
	cmd.Flags().String("end-time", "", "exit time (HH:MM, UTC)")
	cmd.Flags().String("asset", "", "asset traded (e.g. BTC, XAU)")
	cmd.Flags().String("type", "", "trade direction: Long or Short")
	cmd.Flags().Float64("entry", 0, "entry price")
	cmd.Flags().Float64("exit", 0, "exit price")
	cmd.Flags().Float64("stop", 0, "stop loss price")
	cmd.Flags().Float64("tp", 0, "take profit price")
	cmd.Flags().Float64("size", 0, "position size")
	cmd.Flags().Float64("ideal-risk", 0, "intended risk amount (defaults per system)")
	cmd.Flags().String("system", "", "trading system")
	cmd.Flags().String("timeframe", "", "chart timeframe (e.g. M15, H1)")
	cmd.Flags().String("grade", "", "setup grade (A++++ .. F)")
	cmd.Flags().StringSlice("tags", nil, "comma-separated tags")
	cmd.Flags().String("notes", "", "free-form notes")
}

func tradeFromFlags(cmd *cobra.Command, trade *models.Trade) {
	if cmd.Flags().Changed("date") {
		trade.Date, _ = cmd.Flags().GetString("date")
	}
	if cmd.Flags().Changed("time") {
		trade.Time, _ = cmd.Flags().GetString("time")
	}
	if cmd.Flags().Changed("end-date") {
		trade.EndDate, _ = cmd.Flags().GetString("end-date")
	}
	if cmd.Flags().Changed("end-time") {
		trade.EndTime, _ = cmd.Flags().GetString("end-time")
	}
	if cmd.Flags().Changed("asset") {
		trade.Asset, _ = cmd.Flags().GetString("asset")
	}
	if cmd.Flags().Changed("type") {
		direction, _ := cmd.Flags().GetString("type")
		if strings.EqualFold(direction, "short") {
			trade.TradeType = models.Short
		} else {
			trade.TradeType = models.Long
		}
	}
	if cmd.Flags().Changed("entry") {
		trade.EntryPrice, _ = cmd.Flags().GetFloat64("entry")
	}
	if cmd.Flags().Changed("exit") {
		trade.ExitPrice, _ = cmd.Flags().GetFloat64("exit")
	}
	if cmd.Flags().Changed("stop") {
		trade.StopLoss, _ = cmd.Flags().GetFloat64("stop")
	}
	if cmd.Flags().Changed("tp") {
		trade.TakeProfit, _ = cmd.Flags().GetFloat64("tp")
	}
	if cmd.Flags().Changed("size") {
		trade.PositionSize, _ = cmd.Flags().GetFloat64("size")
	}
	if cmd.Flags().Changed("ideal-risk") {
		trade.IdealRiskAmount, _ = cmd.Flags().GetFloat64("ideal-risk")
	}
	if cmd.Flags().Changed("system") {
		trade.System, _ = cmd.Flags().GetString("system")
	}
	if cmd.Flags().Changed("timeframe") {
		trade.Timeframe, _ = cmd.Flags().GetString("timeframe")
	}
	if cmd.Flags().Changed("grade") {
		trade.Grade, _ = cmd.Flags().GetString("grade")
	}
	if cmd.Flags().Changed("tags") {
		trade.Tags, _ = cmd.Flags().GetStringSlice("tags")
	}
	if cmd.Flags().Changed("notes") {
		trade.Notes, _ = cmd.Flags().GetString("notes")
	}
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a trade",
		Long: `Record a closed trade in the journal.

Derived metrics (fee, risk, P&L, R-multiple, session, outcome) are computed
automatically from the inputs and current settings.`,
		Example: `  tradejournal trade add --asset BTC --type Long --entry 43500 --exit 44100 --stop 43200 --size 0.5 --system "NYC Breakout"
  tradejournal trade add --asset XAU --type Short --entry 2045 --exit 2050 --stop 2052 --size 2 --grade B --tags news,fomc
  tradejournal trade add --asset BTC --type Long --entry 43500 --exit 44100 --stop 43200 --size 0.5 --grade A++ --grade-risk`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			trade := &models.Trade{}
			tradeFromFlags(cmd, trade)
			if trade.Date == "" {
				trade.Date = time.Now().UTC().Format("2006-01-02")
			}
			if trade.Time == "" {
				trade.Time = time.Now().UTC().Format("15:04")
			}

			// Per-system ideal risk applies when none was given; with
			// --grade-risk it is scaled by the setup grade as well.
			if !cmd.Flags().Changed("ideal-risk") {
				settings, err := app.Journal.Settings(ctx)
				if err != nil {
					return err
				}
				if gradeRisk, _ := cmd.Flags().GetBool("grade-risk"); gradeRisk {
					trade.IdealRiskAmount = metrics.GradeAdjustedRisk(settings, trade.System, trade.Grade)
				} else {
					trade.IdealRiskAmount = settings.IdealRiskFor(trade.System)
				}
			}

			if err := app.Journal.AddTrade(ctx, trade); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("Trade recorded: %s", trade.ID)
			printTradeDetail(output, trade)
			return nil
		},
	}
	addTradeInputFlags(cmd)
	cmd.Flags().Bool("grade-risk", false, "derive ideal risk from the system's base risk scaled by grade")
	cmd.MarkFlagsMutuallyExclusive("ideal-risk", "grade-risk")
	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		Long:  "List trades, newest first, optionally filtered.",
		Example: `  tradejournal trade list
  tradejournal trade list --system "NYC Breakout" --outcome Win
  tradejournal trade list --from 2026-08-01 --to 2026-08-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			filter := store.TradeFilter{}
			filter.Asset, _ = cmd.Flags().GetString("asset")
			filter.System, _ = cmd.Flags().GetString("system")
			filter.Timeframe, _ = cmd.Flags().GetString("timeframe")
			filter.Session, _ = cmd.Flags().GetString("session")
			filter.Outcome, _ = cmd.Flags().GetString("outcome")
			filter.Grade, _ = cmd.Flags().GetString("grade")
			filter.DateFrom, _ = cmd.Flags().GetString("from")
			filter.DateTo, _ = cmd.Flags().GetString("to")
			filter.Limit, _ = cmd.Flags().GetInt("limit")

			trades, err := app.Journal.ListTrades(ctx, filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Time", "Asset", "Type", "Size", "P&L", "R", "Outcome", "Session", "System")
			for i := range trades {
				t := &trades[i]
				id := t.ID
				if len(id) > 8 {
					id = id[:8]
				}
				outcome := output.OutcomeText(string(t.Outcome))
				if t.NeedsRecalc {
					outcome += output.Yellow("*")
				}
				table.AddRow(
					id,
					t.Date,
					t.Time,
					t.Asset,
					string(t.TradeType),
					FormatPrice(t.PositionSize),
					output.FormatPnL(t.PnL),
					output.FormatR(t.RMultiple),
					outcome,
					t.Session,
					TruncateString(t.System, 15),
				)
			}
			table.Render()
			output.Println()
			output.Dim("%d trade(s). * marks stale metrics, run 'trade recalc'.", len(trades))
			return nil
		},
	}
	cmd.Flags().String("asset", "", "filter by asset")
	cmd.Flags().String("system", "", "filter by system")
	cmd.Flags().String("timeframe", "", "filter by timeframe")
	cmd.Flags().String("session", "", "filter by session name")
	cmd.Flags().String("outcome", "", "filter by outcome: Win, Loss, Breakeven")
	cmd.Flags().String("grade", "", "filter by grade")
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD, inclusive)")
	cmd.Flags().Int("limit", 0, "maximum number of trades")
	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show one trade in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			trade, err := app.Journal.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trade)
			}
			printTradeDetail(output, trade)
			return nil
		},
	}
}

func newTradeUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <trade-id>",
		Short: "Update a trade",
		Long: `Update input fields of a trade.

Only the flags you pass change; derived metrics are always recomputed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			trade, err := app.Journal.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}
			tradeFromFlags(cmd, trade)

			if err := app.Journal.UpdateTrade(ctx, trade); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("Trade updated: %s", trade.ID)
			printTradeDetail(output, trade)
			return nil
		},
	}
	addTradeInputFlags(cmd)
	return cmd
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.Journal.DeleteTrade(ctx, args[0]); err != nil {
				return err
			}
			output.Success("Trade deleted: %s", args[0])
			return nil
		},
	}
}

func newTradeBulkCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk <trade-id>...",
		Short: "Update several trades at once",
		Long: `Apply the same change to several trades.

Changing the ideal risk without --recalc leaves derived metrics stale; the
affected trades are marked until the next recalculation.`,
		Example: `  tradejournal trade bulk a1b2 c3d4 --system "London Open"
  tradejournal trade bulk a1b2 c3d4 --ideal-risk 150 --recalc
  tradejournal trade bulk a1b2 c3d4 --grade A+ --grade-risk
  tradejournal trade bulk a1b2 --add-tags reviewed --remove-tags pending`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			update := journal.BulkUpdate{}
			if cmd.Flags().Changed("system") {
				v, _ := cmd.Flags().GetString("system")
				update.System = &v
			}
			if cmd.Flags().Changed("timeframe") {
				v, _ := cmd.Flags().GetString("timeframe")
				update.Timeframe = &v
			}
			if cmd.Flags().Changed("grade") {
				v, _ := cmd.Flags().GetString("grade")
				update.Grade = &v
			}
			if cmd.Flags().Changed("ideal-risk") {
				v, _ := cmd.Flags().GetFloat64("ideal-risk")
				update.IdealRiskAmount = &v
			}
			update.AddTags, _ = cmd.Flags().GetStringSlice("add-tags")
			update.RemoveTags, _ = cmd.Flags().GetStringSlice("remove-tags")
			update.ApplyGradeRisk, _ = cmd.Flags().GetBool("grade-risk")
			update.RecalculateMetrics, _ = cmd.Flags().GetBool("recalc")

			updated, err := app.Journal.BulkUpdateTrades(ctx, args, update)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"updated":      updated,
					"recalculated": update.RecalculateMetrics,
				})
			}
			output.Success("Updated %d trade(s)", updated)
			if update.IdealRiskAmount != nil && !update.RecalculateMetrics {
				output.Warning("Ideal risk changed without --recalc; metrics on these trades are stale.")
			}
			return nil
		},
	}
	cmd.Flags().String("system", "", "set trading system")
	cmd.Flags().String("timeframe", "", "set timeframe")
	cmd.Flags().String("grade", "", "set grade")
	cmd.Flags().Float64("ideal-risk", 0, "set ideal risk amount")
	cmd.Flags().StringSlice("add-tags", nil, "tags to add")
	cmd.Flags().StringSlice("remove-tags", nil, "tags to remove")
	cmd.Flags().Bool("grade-risk", false, "set ideal risk from each trade's system and grade, then recompute")
	cmd.Flags().Bool("recalc", false, "recompute derived metrics after applying changes")
	cmd.MarkFlagsMutuallyExclusive("ideal-risk", "grade-risk")
	return cmd
}

func newTradeRecalcCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "Recompute metrics for all trades",
		Long:  "Recompute derived metrics for every trade against current settings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			updated, err := app.Journal.RecalculateAll(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]int{"updated": updated})
			}
			output.Success("Recomputed metrics for %d trade(s)", updated)
			return nil
		},
	}
}

func printTradeDetail(output *Output, t *models.Trade) {
	output.Println()
	output.Bold("%s %s  %s", t.Asset, string(t.TradeType), output.OutcomeText(string(t.Outcome)))
	output.Printf("  ID:         %s\n", t.ID)
	output.Printf("  Opened:     %s %s (%s, %s)\n", t.Date, t.Time, t.DayOfWeek, t.Session)
	if t.EndDate != "" || t.EndTime != "" {
		output.Printf("  Closed:     %s %s\n", t.EndDate, t.EndTime)
	}
	if t.Duration != "" {
		output.Printf("  Duration:   %s\n", t.Duration)
	}
	output.Printf("  Entry/Exit: %s / %s  (stop %s", FormatPrice(t.EntryPrice), FormatPrice(t.ExitPrice), FormatPrice(t.StopLoss))
	if t.TakeProfit != 0 {
		output.Printf(", tp %s", FormatPrice(t.TakeProfit))
	}
	output.Printf(")\n")
	output.Printf("  Size:       %s\n", FormatPrice(t.PositionSize))
	output.Printf("  P&L:        %s  (fee %s)\n", output.FormatPnL(t.PnL), FormatCurrency(t.Fee))
	output.Printf("  R-multiple: %s  expected %s\n", output.FormatR(t.RMultiple), FormatRMultiple(t.ExpectedR))
	output.Printf("  Risk:       %s actual vs %s ideal (%s deviation, %.2f%% of balance)\n",
		FormatCurrency(t.ActualRiskAmount), FormatCurrency(t.IdealRiskAmount), FormatPercent(t.RiskDeviation), t.RiskPercent)
	if t.IsOverRisked {
		output.Warning("  Over-risked")
	}
	if t.IsUnderRisked {
		output.Warning("  Under-risked")
	}
	if t.System != "" || t.Timeframe != "" || t.Grade != "" {
		output.Printf("  Setup:      system=%s timeframe=%s grade=%s\n", t.System, t.Timeframe, t.Grade)
	}
	if len(t.Tags) > 0 {
		output.Printf("  Tags:       %s\n", strings.Join(t.Tags, ", "))
	}
	if t.Ticket != "" {
		output.Printf("  Ticket:     %s\n", t.Ticket)
	}
	if t.Notes != "" {
		output.Printf("  Notes:      %s\n", t.Notes)
	}
	if t.NeedsRecalc {
		output.Warning("  Metrics stale, run 'tradejournal trade recalc'.")
	}
}
