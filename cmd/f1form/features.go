package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/f1-form/internal/dataset"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Build the engineered dataset from the results table",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := newPipeline(false)
		if err != nil {
			return err
		}

		engineered, err := pipeline.BuildFeatures(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d rows (%d winners, seasons %v) to %s\n",
			len(engineered), dataset.Positives(engineered), dataset.Seasons(engineered), repos.Dataset.Path())
		return nil
	},
}
