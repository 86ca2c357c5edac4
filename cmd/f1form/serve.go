package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/f1-form/internal/api"
	applog "github.com/yourusername/f1-form/internal/logger"
	"github.com/yourusername/f1-form/internal/scheduler"
)

var withScheduler bool

func init() {
	serveCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "Also run the pipeline on schedule.pipeline; a new model is served after restart")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve race predictions over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		serving, err := loadServingContext(cmd)
		if err != nil {
			return err
		}
		applog.NewAuditLogger(logger).LogModelLoaded(serving.Artifact().ID.String(),
			cfg.Training.ModelPath, serving.Artifact().CreatedAt, serving.Drivers())

		src, err := newSource()
		if err != nil {
			return err
		}

		if withScheduler && cfg.Schedule.Pipeline != "" {
			pipeline, err := newPipeline(true)
			if err != nil {
				return err
			}
			sched := scheduler.NewScheduler(pipeline, logger)
			if err := sched.SchedulePipeline(cfg.Schedule.Pipeline); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		return api.NewServer(cfg, serving, src, logger).Run(cmd.Context())
	},
}
