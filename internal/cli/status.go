package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mutuelle-network/mutuelle/internal/daemon"
	"github.com/mutuelle-network/mutuelle/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the association-wide snapshot",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := daemon.New(cfg, newLogger())
	if err != nil {
		return err
	}

	snap, err := d.Service().GetSystemSnapshot(context.Background())
	if errors.Is(err, domain.ErrNoActivePeriod) {
		fmt.Println("no active period")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("fund balance:     %s\n", snap.FundBalance.StringFixed(2))
	fmt.Printf("total savings:    %s\n", snap.TotalSavings.StringFixed(2))
	fmt.Printf("total liquidity:  %s\n", snap.TotalLiquidity.StringFixed(2))
	fmt.Printf("commitments:      %s\n", snap.Commitments.StringFixed(2))
	fmt.Printf("members:          %d (%d in good standing)\n", snap.Members, snap.InGoodStanding)
	fmt.Printf("loans:            %d active, %d late, %d settled\n",
		snap.Loans.Active, snap.Loans.Late, snap.Loans.Settled)
	return nil
}
