package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mutuelle-network/mutuelle/internal/daemon"
)

func init() {
	rootCmd.AddCommand(sweepCmd)
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the maintenance sweeps once and exit",
	Long: `Runs the status synchronization (close ended periods and their
sessions) and the financial sweep (flip overdue loans to Late), then exits.
Both sweeps are idempotent.`,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := daemon.New(cfg, newLogger())
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := d.Service().SynchronizeStatuses(ctx); err != nil {
		return err
	}
	changed, err := d.Service().ReconcileLateLoans(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sweep done, %d loan(s) reconciled\n", changed)
	return nil
}
