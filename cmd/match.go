package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenchworks/dispatch/core/civil"
	"github.com/wrenchworks/dispatch/core/matching"
)

var (
	matchCenter string
	matchDate   string
	matchStart  string
	matchSkills []string
	matchTop    int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank technicians for a service job",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchCenter, "center", "center-1", "service center id")
	matchCmd.Flags().StringVar(&matchDate, "date", "", "service date, YYYY-MM-DD (default today)")
	matchCmd.Flags().StringVar(&matchStart, "start", "", "requested start time, HH:MM")
	matchCmd.Flags().StringSliceVar(&matchSkills, "skill", nil, "required skill, repeatable")
	matchCmd.Flags().IntVar(&matchTop, "top", 0, "number of candidates to list (default from config)")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close() //nolint:errcheck

	now := time.Now()
	crit := matching.Criteria{
		CenterID:       matchCenter,
		RequiredSkills: matchSkills,
	}
	if matchDate == "" {
		n := now.UTC()
		crit.Date = civil.Date{Year: n.Year(), Month: n.Month(), Day: n.Day()}
	} else {
		d, err := civil.ParseDate(matchDate)
		if err != nil {
			return err
		}
		crit.Date = d
	}
	if matchStart != "" {
		t, err := civil.ParseTimeOfDay(matchStart)
		if err != nil {
			return err
		}
		crit.Start = &t
	}

	ranked, err := svc.Ranker.FindTopN(cmd.Context(), crit, matchTop, now)
	if err != nil {
		return err
	}
	if len(ranked) == 0 {
		cmd.Println("no available technicians")
		return nil
	}
	for i, c := range ranked {
		cmd.Printf("%d. %s (%s) score=%.2f workload=%d  %s\n",
			i+1, c.Technician.Name, c.Technician.ID, c.WeightedScore, c.Workload, c.Reason)
	}
	return nil
}
