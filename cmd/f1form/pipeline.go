package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/f1-form/internal/scheduler"
)

var runCron bool

func init() {
	pipelineCmd.Flags().BoolVar(&runCron, "cron", false, "Keep running and repeat the pipeline on schedule.pipeline")
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run fetch, features and train in sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := newPipeline(true)
		if err != nil {
			return err
		}

		if runCron {
			if cfg.Schedule.Pipeline == "" {
				return fmt.Errorf("--cron requires schedule.pipeline to be set")
			}
			sched := scheduler.NewScheduler(pipeline, logger)
			if err := sched.SchedulePipeline(cfg.Schedule.Pipeline); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			logger.WithField("next_run", sched.NextRun()).Info("Waiting for scheduled runs")
			<-cmd.Context().Done()
			sched.Stop()
			return nil
		}

		summary, err := pipeline.Run(cmd.Context())
		if summary != nil && summary.Fetch != nil {
			fmt.Println(summary.Fetch.String())
		}
		if err != nil {
			return err
		}
		fmt.Printf("Run %s: %d engineered rows, model %s version %d\n",
			summary.RunID, summary.Records, summary.Model.ID, summary.Model.Version)
		fmt.Print(summary.Evaluation.String())
		return nil
	},
}
