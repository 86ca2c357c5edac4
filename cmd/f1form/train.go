package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	walkForward     bool
	minTrainSeasons int
)

func init() {
	trainCmd.Flags().BoolVar(&walkForward, "walk-forward", false, "Report season-by-season walk-forward validation instead of saving a model")
	trainCmd.Flags().IntVar(&minTrainSeasons, "min-train-seasons", 2, "Seasons in the first walk-forward training window")
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and evaluate the winner model on the engineered dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := newPipeline(false)
		if err != nil {
			return err
		}

		if walkForward {
			records, err := repos.Dataset.Load(cmd.Context())
			if err != nil {
				return err
			}
			report, err := pipeline.Trainer().WalkForward(records, minTrainSeasons)
			if err != nil {
				return err
			}
			fmt.Print(report.String())
			return nil
		}

		artifact, info, err := pipeline.Train(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Model %s version %d saved to %s\n", info.ID, info.Version, info.Path)
		fmt.Printf("Train seasons %v, test seasons %v, scale_pos_weight %.2f\n",
			artifact.TrainSeasons, artifact.TestSeasons, artifact.ScalePosWeight)
		fmt.Print(artifact.Evaluation.String())
		return nil
	},
}
