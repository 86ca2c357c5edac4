package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/yourusername/f1-form/internal/models"
)

var (
	fetchStart int
	fetchEnd   int
	noProgress bool
)

func init() {
	fetchCmd.Flags().IntVar(&fetchStart, "start", 0, "First season to fetch (defaults to data.start_season)")
	fetchCmd.Flags().IntVar(&fetchEnd, "end", 0, "Last season to fetch (defaults to data.end_season)")
	fetchCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download race results into the results table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchStart > 0 {
			cfg.Data.StartSeason = fetchStart
		}
		if fetchEnd > 0 {
			cfg.Data.EndSeason = fetchEnd
		}
		if cfg.Data.StartSeason > cfg.Data.EndSeason {
			return fmt.Errorf("start season %d is after end season %d", cfg.Data.StartSeason, cfg.Data.EndSeason)
		}

		pipeline, err := newPipeline(true)
		if err != nil {
			return err
		}

		if !noProgress {
			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("fetching"),
				progressbar.OptionShowCount(),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionClearOnFinish(),
			)
			defer bar.Finish()
			pipeline.Ingestion().OnProgress(func(event models.RaceEvent, err error) {
				bar.Describe(fmt.Sprintf("%d %s", event.Season, event.RaceName))
				_ = bar.Add(1)
			})
		}

		report, err := pipeline.Fetch(cmd.Context())
		if report != nil {
			fmt.Println(report.String())
		}
		return err
	},
}
