package cmd

import (
	"github.com/spf13/cobra"
)

var balanceCenter string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Analyze a center's workload distribution",
	RunE:  runBalance,
}

func init() {
	balanceCmd.Flags().StringVar(&balanceCenter, "center", "center-1", "service center id")
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close() //nolint:errcheck

	report, err := svc.Balancer.Analyze(cmd.Context(), balanceCenter)
	if err != nil {
		return err
	}
	cmd.Printf("center %s: %d technicians, mean %.2f, stddev %.2f, balanced=%v\n",
		report.CenterID, report.Technicians, report.Mean, report.StdDev, report.Balanced)
	for _, a := range report.Overloaded {
		cmd.Printf("  overloaded: %s (%s) workload=%d  %s\n", a.Name, a.TechnicianID, a.Workload, a.Message)
	}
	for _, a := range report.Underloaded {
		cmd.Printf("  underloaded: %s (%s) workload=%d  %s\n", a.Name, a.TechnicianID, a.Workload, a.Message)
	}
	return nil
}
