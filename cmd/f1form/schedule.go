package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/f1-form/internal/models"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <season>",
	Short: "Print the race calendar of a season",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid season %q", args[0])
		}

		src, err := newSource()
		if err != nil {
			return err
		}
		events, err := src.FetchSchedule(cmd.Context(), season)
		if err != nil {
			return err
		}

		for _, e := range events {
			date := ""
			if !e.Date.IsZero() {
				date = e.Date.Format(models.DateLayout)
			}
			fmt.Printf("%2d  %-10s  %-30s  %s\n", e.Round, date, e.RaceName, e.Location)
		}
		return nil
	},
}
