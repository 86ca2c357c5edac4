package datasource

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/models"
)

// NewFromConfig builds the cached Ergast data source described by the upstream configuration
func NewFromConfig(cfg config.UpstreamConfig, logger *logrus.Logger) (DataSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("upstream base_url is required")
	}

	httpClient := NewRateLimitedHTTPClient(HTTPClientConfigFrom(cfg), logger)
	client := NewErgastClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.PageSize, logger)

	if cfg.CacheTTLSeconds == 0 {
		return client, nil
	}
	return NewCachedSource(client, cfg.CacheTTL()), nil
}

// ResolveRace finds a scheduled race by round number or case-insensitive race name
func ResolveRace(ctx context.Context, src DataSource, season int, race string) (models.RaceEvent, error) {
	schedule, err := src.FetchSchedule(ctx, season)
	if err != nil {
		return models.RaceEvent{}, err
	}

	race = strings.TrimSpace(race)
	if round, err := strconv.Atoi(race); err == nil {
		for _, ev := range schedule {
			if ev.Round == round {
				return ev, nil
			}
		}
	} else {
		for _, ev := range schedule {
			if strings.EqualFold(ev.RaceName, race) {
				return ev, nil
			}
		}
	}

	return models.RaceEvent{}, NewDataSourceError(src.Name(), ErrCodeNotFound,
		fmt.Sprintf("race %q not found in %d schedule", race, season), nil)
}

// FetchGrid returns the starting grid of a race: the grid column of the results if the race
// already ran, otherwise the qualifying order. Entries are ordered by grid slot, pit-lane starts last.
func FetchGrid(ctx context.Context, src DataSource, season, round int) ([]models.GridEntry, error) {
	results, err := src.FetchRaceResults(ctx, season, round)
	if err != nil {
		return nil, err
	}

	var grid []models.GridEntry
	if len(results) > 0 {
		grid = make([]models.GridEntry, 0, len(results))
		for _, r := range results {
			grid = append(grid, models.GridEntry{DriverID: r.DriverID, ConstructorID: r.ConstructorID, Grid: r.Grid})
		}
	} else {
		grid, err = src.FetchQualifying(ctx, season, round)
		if err != nil {
			return nil, err
		}
	}

	if len(grid) == 0 {
		return nil, NewDataSourceError(src.Name(), ErrCodeNotFound,
			fmt.Sprintf("no grid available for %d/%d", season, round), nil)
	}

	sort.SliceStable(grid, func(i, j int) bool {
		gi, gj := grid[i].Grid, grid[j].Grid
		if (gi == 0) != (gj == 0) {
			return gj == 0
		}
		return gi < gj
	})
	return grid, nil
}
