package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/broker"
	"tradejournal/internal/stats"
	"tradejournal/internal/store"
)

// addImportExportCommands adds broker import and journal export commands.
func addImportExportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a broker statement or a journal export",
		Long: `Import closed positions from a broker CSV statement, or restore a
journal JSON export with --format journal.

Broker rows already in the journal (matched by ticket) are skipped and
reported. Malformed rows are skipped and reported too, unless --strict is
set, in which case the first bad row aborts the whole batch.`,
		Example: `  tradejournal import statement.csv
  tradejournal import statement.csv --ideal-risk 150 --strict
  tradejournal import journal.json --format journal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if format, _ := cmd.Flags().GetString("format"); format == "journal" {
				return runJournalRestore(ctx, app, output, f)
			}

			rows, err := broker.ParseStatement(f)
			if err != nil {
				return err
			}

			settings, err := app.Journal.Settings(ctx)
			if err != nil {
				return err
			}

			idealRisk, _ := cmd.Flags().GetFloat64("ideal-risk")
			if !cmd.Flags().Changed("ideal-risk") {
				idealRisk = app.Config.Import.DefaultIdealRisk
			}
			strict, _ := cmd.Flags().GetBool("strict")
			if !cmd.Flags().Changed("strict") {
				strict = app.Config.Import.Strict
			}

			candidates, rowErrs, err := broker.ConvertAll(rows, settings, idealRisk, strict)
			if err != nil {
				return err
			}

			// Preview stop placement drift per row: where the stop should
			// have sat for actual risk to equal the intended amount.
			for i := range candidates {
				t := &candidates[i]
				app.Logger.Debug().
					Str("ticket", t.Ticket).
					Float64("stop_loss", t.StopLoss).
					Float64("ideal_stop_loss", broker.IdealStopLoss(t.EntryPrice, t.PositionSize, t.IdealRiskAmount, t.Fee, t.TradeType)).
					Msg("Import preview")
			}

			result, err := app.Journal.ImportTrades(ctx, candidates)
			if err != nil {
				return err
			}
			result.Skipped = len(rowErrs)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"imported":          result.Imported,
					"duplicates":        result.Duplicates,
					"skipped":           result.Skipped,
					"duplicate_tickets": result.DuplicateTickets,
				})
			}

			output.Success("Imported %d trade(s)", result.Imported)
			if result.Duplicates > 0 {
				output.Warning("Skipped %d duplicate ticket(s): %v", result.Duplicates, result.DuplicateTickets)
			}
			for _, rowErr := range rowErrs {
				output.Warning("Skipped row: %v", rowErr)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "broker", "import format: broker or journal")
	cmd.Flags().Float64("ideal-risk", 0, "ideal risk assigned to imported trades")
	cmd.Flags().Bool("strict", false, "abort the batch on the first malformed row")
	return cmd
}

func runJournalRestore(ctx context.Context, app *App, output *Output, r io.Reader) error {
	doc, err := store.ReadExportDocument(r)
	if err != nil {
		return err
	}

	result, err := app.Journal.Restore(ctx, doc)
	if err != nil {
		return err
	}

	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"trades":      result.Trades,
			"adjustments": result.Adjustments,
			"skipped":     result.Skipped,
		})
	}

	output.Success("Restored %d trade(s) and %d adjustment(s)", result.Trades, result.Adjustments)
	if result.Skipped > 0 {
		output.Info("Skipped %d record(s) already in the journal", result.Skipped)
	}
	return nil
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the journal",
		Long: `Export the full journal to a file.

JSON exports carry trades, settings, balance adjustments, and a stats
snapshot. CSV exports carry the trades only.`,
		Example: `  tradejournal export journal.json
  tradejournal export trades.csv --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			trades, err := app.Journal.ListTrades(ctx, store.TradeFilter{})
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			format, _ := cmd.Flags().GetString("format")
			if format == "csv" {
				if err := store.WriteTradesCSV(f, trades); err != nil {
					return err
				}
				output.Success("Exported %d trade(s) to %s", len(trades), args[0])
				return nil
			}

			settings, err := app.Journal.Settings(ctx)
			if err != nil {
				return err
			}
			adjustments, err := app.Journal.ListAdjustments(ctx)
			if err != nil {
				return err
			}

			snapshot := stats.Aggregate(trades, adjustments, settings)
			doc := store.NewExportDocument(trades, settings, adjustments, &snapshot)
			if err := doc.WriteJSON(f); err != nil {
				return err
			}

			output.Success("Exported %d trade(s), settings, and %d adjustment(s) to %s",
				len(trades), len(adjustments), args[0])
			return nil
		},
	}
	cmd.Flags().String("format", "json", "export format: json or csv")
	return cmd
}
