package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/f1-form/internal/datasource"
	"github.com/yourusername/f1-form/internal/ml"
	"github.com/yourusername/f1-form/internal/models"
	"github.com/yourusername/f1-form/internal/repository"
)

var (
	predictSeason int
	predictRace   string
	predictGrid   string
	predictTop    int
	predictJSON   bool
)

func init() {
	predictCmd.Flags().IntVar(&predictSeason, "season", 0, "Season of the race to predict")
	predictCmd.Flags().StringVar(&predictRace, "race", "", "Round number or race name")
	predictCmd.Flags().StringVar(&predictGrid, "grid", "", "CSV file with driverId,constructorId,grid columns")
	predictCmd.Flags().IntVar(&predictTop, "top", 0, "Number of drivers to print (defaults to prediction.top_n, -1 for all)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print the ranking as JSON")
	predictCmd.MarkFlagsMutuallyExclusive("grid", "race")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Rank the drivers of a grid by win probability",
	Example: `  f1form predict --season 2024 --race 5
  f1form predict --season 2024 --race "Monaco Grand Prix"
  f1form predict --grid ./data/grid.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serving, err := loadServingContext(cmd)
		if err != nil {
			return err
		}

		label := predictGrid
		var grid []models.GridEntry
		switch {
		case predictGrid != "":
			grid, err = repository.LoadGrid(predictGrid)
		case predictSeason > 0 && predictRace != "":
			var src datasource.DataSource
			src, err = newSource()
			if err != nil {
				return err
			}
			var event models.RaceEvent
			event, err = datasource.ResolveRace(cmd.Context(), src, predictSeason, predictRace)
			if err != nil {
				return err
			}
			label = fmt.Sprintf("%d %s", event.Season, event.RaceName)
			grid, err = datasource.FetchGrid(cmd.Context(), src, event.Season, event.Round)
		default:
			return fmt.Errorf("either --grid or --season with --race is required")
		}
		if err != nil {
			return err
		}

		preds, err := serving.PredictRace(grid)
		if err != nil {
			return err
		}

		n := predictTop
		if n == 0 {
			n = cfg.Prediction.TopN
		}
		if n > 0 {
			preds = ml.Top(preds, n)
		}
		return printPredictions(label, preds)
	},
}

func loadServingContext(cmd *cobra.Command) (*ml.ServingContext, error) {
	artifact, err := ml.LoadArtifact(cfg.Training.ModelPath)
	if err != nil {
		return nil, err
	}
	records, err := repos.Dataset.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	return ml.NewServingContext(artifact, records, cfg.Prediction.UnknownDriverPolicy)
}

func printPredictions(label string, preds []ml.Prediction) error {
	if predictJSON {
		out := make([]ml.Prediction, len(preds))
		for i, p := range preds {
			p.Probability = ml.Round4(p.Probability)
			out[i] = p
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"prediction": out})
	}

	fmt.Printf("Predicted winner ranking: %s\n", label)
	for i, p := range preds {
		grid := strconv.Itoa(p.Grid)
		if p.Grid == 0 {
			grid = "PL"
		}
		note := ""
		if p.ColdStart {
			note = " (no history)"
		}
		fmt.Printf("%2d. %-20s grid %-3s %6.2f%%%s\n", i+1, p.DriverID, grid, p.Probability*100, note)
	}
	return nil
}
