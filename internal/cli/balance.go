package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/models"
)

// addBalanceCommands adds balance adjustment commands.
func addBalanceCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance adjustments",
		Long: `Manual corrections to the account balance.

Deposits, withdrawals, and reconciliation entries live here; trade P&L is
tracked separately and never needs an adjustment.`,
	}

	cmd.AddCommand(newBalanceAddCmd(app, models.AdjustmentAdd))
	cmd.AddCommand(newBalanceAddCmd(app, models.AdjustmentSubtract))
	cmd.AddCommand(newBalanceListCmd(app))
	cmd.AddCommand(newBalanceDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newBalanceAddCmd(app *App, adjType models.AdjustmentType) *cobra.Command {
	use := "add <amount>"
	short := "Record a balance addition"
	if adjType == models.AdjustmentSubtract {
		use = "subtract <amount>"
		short = "Record a balance subtraction"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return err
			}

			reason, _ := cmd.Flags().GetString("reason")
			notes, _ := cmd.Flags().GetString("notes")
			now := time.Now().UTC()

			adj := &models.BalanceAdjustment{
				Amount: amount,
				Type:   adjType,
				Date:   now.Format("2006-01-02"),
				Time:   now.Format("15:04"),
				Reason: reason,
				Notes:  notes,
			}
			if err := app.Journal.AddAdjustment(ctx, adj); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(adj)
			}
			sign := "+"
			if adjType == models.AdjustmentSubtract {
				sign = "-"
			}
			output.Success("Adjustment recorded: %s%s (%s)", sign, FormatCurrency(amount), adj.ID)
			return nil
		},
	}
	cmd.Flags().String("reason", "", "reason for the adjustment (e.g. deposit, withdrawal)")
	cmd.Flags().String("notes", "", "free-form notes")
	return cmd
}

func newBalanceListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List balance adjustments",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			adjustments, err := app.Journal.ListAdjustments(ctx)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(adjustments)
			}
			if len(adjustments) == 0 {
				output.Info("No balance adjustments recorded.")
				return nil
			}

			var total float64
			table := NewTable(output, "ID", "Date", "Time", "Amount", "Reason")
			for i := range adjustments {
				a := &adjustments[i]
				total += a.Signed()
				id := a.ID
				if len(id) > 8 {
					id = id[:8]
				}
				table.AddRow(
					id,
					a.Date,
					a.Time,
					output.FormatPnL(a.Signed()),
					a.Reason,
				)
			}
			table.Render()
			output.Println()
			output.Printf("  Net adjustment: %s\n", output.FormatPnL(total))
			return nil
		},
	}
}

func newBalanceDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <adjustment-id>",
		Short: "Delete a balance adjustment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.Journal.DeleteAdjustment(ctx, args[0]); err != nil {
				return err
			}
			output.Success("Adjustment deleted: %s", args[0])
			return nil
		},
	}
}
