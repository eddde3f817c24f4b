package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenchworks/dispatch/core/model"
)

var (
	checkinLabel string
	checkinNotes string
	checkinAt    string
	checkoutAt   string
)

var checkinCmd = &cobra.Command{
	Use:   "checkin <technician-id> <center-id>",
	Short: "Record a technician check-in",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheckin,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <technician-id>",
	Short: "Close a technician's open shift",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckout,
}

func init() {
	checkinCmd.Flags().StringVar(&checkinLabel, "label", "", "explicit shift label (FullDay, Morning, Afternoon, Evening, Night)")
	checkinCmd.Flags().StringVar(&checkinNotes, "notes", "", "free-form notes")
	checkinCmd.Flags().StringVar(&checkinAt, "at", "", "check-in instant, RFC 3339 (default now)")
	checkoutCmd.Flags().StringVar(&checkoutAt, "at", "", "check-out instant, RFC 3339 (default now)")
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(checkoutCmd)
}

func parseInstant(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant: %w", err)
	}
	return t, nil
}

func runCheckin(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close() //nolint:errcheck

	label, err := model.ParseShiftLabel(checkinLabel)
	if err != nil {
		return err
	}
	at, err := parseInstant(checkinAt)
	if err != nil {
		return err
	}
	rec, err := svc.Tracker.CheckIn(cmd.Context(), args[0], args[1], label, checkinNotes, at)
	if err != nil {
		return err
	}
	cmd.Printf("checked in %s at %s: shift %s %s, late=%v (%d min)\n",
		rec.TechnicianID, rec.CheckIn.Format(time.RFC3339), rec.Label, rec.Window, rec.Late, rec.LateMinutes)
	return nil
}

func runCheckout(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close() //nolint:errcheck

	at, err := parseInstant(checkoutAt)
	if err != nil {
		return err
	}
	rec, err := svc.Tracker.CheckOut(cmd.Context(), args[0], at)
	if err != nil {
		return err
	}
	cmd.Printf("checked out %s: worked %.2fh, net %.2fh, early=%v\n",
		rec.TechnicianID, rec.WorkedHours, rec.NetWorkingHours, rec.EarlyLeave)
	return nil
}
