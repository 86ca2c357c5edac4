package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/f1-form/internal/metrics"
	"github.com/yourusername/f1-form/internal/models"
)

const (
	ergastSourceName = "ergast"

	endpointSchedule   = "schedule"
	endpointResults    = "results"
	endpointQualifying = "qualifying"
)

// ErgastClient implements DataSource for Ergast-compatible APIs such as Jolpica
type ErgastClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	pageSize   int
	logger     *logrus.Entry
}

type ergastResponse struct {
	MRData struct {
		Limit     string `json:"limit"`
		Offset    string `json:"offset"`
		Total     string `json:"total"`
		RaceTable struct {
			Races []ergastRace `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

type ergastRace struct {
	Season   string `json:"season"`
	Round    string `json:"round"`
	RaceName string `json:"raceName"`
	Date     string `json:"date"`
	Circuit  struct {
		CircuitID   string `json:"circuitId"`
		CircuitName string `json:"circuitName"`
		Location    struct {
			Locality string `json:"locality"`
			Country  string `json:"country"`
		} `json:"Location"`
	} `json:"Circuit"`
	Sprint *struct {
		Date string `json:"date"`
	} `json:"Sprint"`
	Results           []ergastResult     `json:"Results"`
	QualifyingResults []ergastQualifying `json:"QualifyingResults"`
}

type ergastDriver struct {
	DriverID string `json:"driverId"`
}

type ergastConstructor struct {
	ConstructorID string `json:"constructorId"`
}

type ergastResult struct {
	Position     string            `json:"position"`
	PositionText string            `json:"positionText"`
	Points       string            `json:"points"`
	Grid         string            `json:"grid"`
	Status       string            `json:"status"`
	Driver       ergastDriver      `json:"Driver"`
	Constructor  ergastConstructor `json:"Constructor"`
}

type ergastQualifying struct {
	Position    string            `json:"position"`
	Driver      ergastDriver      `json:"Driver"`
	Constructor ergastConstructor `json:"Constructor"`
}

// NewErgastClient creates a new Ergast-compatible API client
func NewErgastClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, pageSize int, logger *logrus.Logger) *ErgastClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	return &ErgastClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		pageSize:   pageSize,
		logger:     logger.WithField("source", ergastSourceName),
	}
}

// Name returns the name of the data source
func (c *ErgastClient) Name() string {
	return ergastSourceName
}

// FetchSchedule retrieves the race calendar of a season
func (c *ErgastClient) FetchSchedule(ctx context.Context, season int) ([]models.RaceEvent, error) {
	races, err := c.fetchRaces(ctx, endpointSchedule, fmt.Sprintf("/%d.json", season))
	if err != nil {
		return nil, err
	}
	if len(races) == 0 {
		return nil, NewDataSourceError(ergastSourceName, ErrCodeNotFound, fmt.Sprintf("no races scheduled for season %d", season), nil)
	}

	events := make([]models.RaceEvent, 0, len(races))
	for i := range races {
		event, err := convertEvent(&races[i])
		if err != nil {
			return nil, NewDataSourceError(ergastSourceName, ErrCodeInvalidData, "malformed schedule entry", err)
		}
		events = append(events, event)
	}
	return events, nil
}

// FetchRaceResults retrieves the main-race classification. Sprint results are never requested.
func (c *ErgastClient) FetchRaceResults(ctx context.Context, season, round int) ([]models.ResultRecord, error) {
	races, err := c.fetchRaces(ctx, endpointResults, fmt.Sprintf("/%d/%d/results.json", season, round))
	if err != nil {
		return nil, err
	}

	var records []models.ResultRecord
	for i := range races {
		event, err := convertEvent(&races[i])
		if err != nil {
			return nil, NewDataSourceError(ergastSourceName, ErrCodeInvalidData, "malformed race header", err)
		}
		for j := range races[i].Results {
			rec, err := convertResult(event, &races[i].Results[j])
			if err != nil {
				return nil, NewDataSourceError(ergastSourceName, ErrCodeInvalidData,
					fmt.Sprintf("malformed result for %s", races[i].Results[j].Driver.DriverID), err)
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// FetchQualifying retrieves the qualifying order of a race
func (c *ErgastClient) FetchQualifying(ctx context.Context, season, round int) ([]models.GridEntry, error) {
	races, err := c.fetchRaces(ctx, endpointQualifying, fmt.Sprintf("/%d/%d/qualifying.json", season, round))
	if err != nil {
		return nil, err
	}

	var grid []models.GridEntry
	for i := range races {
		for _, q := range races[i].QualifyingResults {
			pos, err := strconv.Atoi(q.Position)
			if err != nil {
				return nil, NewDataSourceError(ergastSourceName, ErrCodeInvalidData,
					fmt.Sprintf("malformed qualifying position for %s", q.Driver.DriverID), err)
			}
			grid = append(grid, models.GridEntry{
				DriverID:      q.Driver.DriverID,
				ConstructorID: q.Constructor.ConstructorID,
				Grid:          pos,
			})
		}
	}
	return grid, nil
}

// fetchRaces follows the API's limit/offset pagination and merges pages by race
func (c *ErgastClient) fetchRaces(ctx context.Context, endpoint, path string) ([]ergastRace, error) {
	var (
		races  []ergastRace
		offset int
	)
	index := make(map[string]int)

	for {
		page, err := c.getPage(ctx, endpoint, path, offset)
		if err != nil {
			return nil, err
		}

		rows := 0
		for _, race := range page.MRData.RaceTable.Races {
			rows += max(len(race.Results)+len(race.QualifyingResults), 1)
			key := race.Season + "/" + race.Round
			if i, ok := index[key]; ok {
				races[i].Results = append(races[i].Results, race.Results...)
				races[i].QualifyingResults = append(races[i].QualifyingResults, race.QualifyingResults...)
				continue
			}
			index[key] = len(races)
			races = append(races, race)
		}

		total, err := strconv.Atoi(page.MRData.Total)
		if err != nil || rows == 0 || offset+rows >= total {
			return races, nil
		}
		offset += rows
	}
}

func (c *ErgastClient) getPage(ctx context.Context, endpoint, path string, offset int) (*ergastResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.pageSize))
	query.Set("offset", strconv.Itoa(offset))
	target := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, NewDataSourceError(ergastSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, 0, time.Since(start).Seconds())
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		code := ErrCodeNetworkError
		if errors.Is(err, ErrCircuitOpen) {
			code = ErrCodeCircuitOpen
		}
		return nil, NewDataSourceError(ergastSourceName, code, "failed to fetch "+path, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(endpoint, resp.StatusCode, time.Since(start).Seconds())

	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"path":     path,
		"offset":   offset,
		"status":   resp.StatusCode,
	}).Debug("Upstream response received")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewDataSourceError(ergastSourceName, ErrCodeNotFound, path+" not found", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(ergastSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return nil, NewDataSourceError(ergastSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(ergastSourceName, ErrCodeInvalidData,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var page ergastResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, NewDataSourceError(ergastSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return &page, nil
}

func convertEvent(race *ergastRace) (models.RaceEvent, error) {
	season, err := strconv.Atoi(race.Season)
	if err != nil {
		return models.RaceEvent{}, fmt.Errorf("invalid season %q: %w", race.Season, err)
	}
	round, err := strconv.Atoi(race.Round)
	if err != nil {
		return models.RaceEvent{}, fmt.Errorf("invalid round %q: %w", race.Round, err)
	}

	event := models.RaceEvent{
		Season:    season,
		Round:     round,
		RaceName:  race.RaceName,
		CircuitID: race.Circuit.CircuitID,
		Location:  race.Circuit.Location.Locality,

		SprintWeekend: race.Sprint != nil,
	}
	if race.Date != "" {
		date, err := time.Parse(models.DateLayout, race.Date)
		if err != nil {
			return models.RaceEvent{}, fmt.Errorf("invalid date %q: %w", race.Date, err)
		}
		event.Date = date
	}
	return event, nil
}

// convertResult maps one classification row. Non-numeric position text (R, D, E, W, F, N) means not classified.
func convertResult(event models.RaceEvent, r *ergastResult) (models.ResultRecord, error) {
	position, err := strconv.Atoi(r.PositionText)
	if err != nil {
		position = 0
	}

	grid, err := strconv.Atoi(r.Grid)
	if err != nil {
		return models.ResultRecord{}, fmt.Errorf("invalid grid %q: %w", r.Grid, err)
	}

	points := decimal.Zero
	if r.Points != "" {
		points, err = decimal.NewFromString(r.Points)
		if err != nil {
			return models.ResultRecord{}, fmt.Errorf("invalid points %q: %w", r.Points, err)
		}
	}

	return models.ResultRecord{
		Season:        event.Season,
		Round:         event.Round,
		CircuitID:     event.CircuitID,
		RaceName:      event.RaceName,
		Date:          event.Date,
		DriverID:      r.Driver.DriverID,
		ConstructorID: r.Constructor.ConstructorID,
		Grid:          grid,
		Position:      position,
		Points:        points.InexactFloat64(),
		Status:        r.Status,
	}, nil
}
