package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/logger"
)

const scheduleJSON = `{"MRData":{"limit":"100","offset":"0","total":"2","RaceTable":{"season":"2024","Races":[
 {"season":"2024","round":"1","raceName":"Bahrain Grand Prix","date":"2024-03-02",
  "Circuit":{"circuitId":"bahrain","circuitName":"Bahrain International Circuit","Location":{"locality":"Sakhir","country":"Bahrain"}}},
 {"season":"2024","round":"2","raceName":"Saudi Arabian Grand Prix","date":"2024-03-09",
  "Circuit":{"circuitId":"jeddah","circuitName":"Jeddah Corniche Circuit","Location":{"locality":"Jeddah","country":"Saudi Arabia"}},
  "Sprint":{"date":"2024-03-08","time":"15:30:00Z"}}
]}}}`

const resultsJSON = `{"MRData":{"limit":"100","offset":"0","total":"3","RaceTable":{"Races":[
 {"season":"2024","round":"1","raceName":"Bahrain Grand Prix","date":"2024-03-02",
  "Circuit":{"circuitId":"bahrain","Location":{"locality":"Sakhir"}},
  "Results":[
   {"position":"1","positionText":"1","points":"26","grid":"1","status":"Finished","Driver":{"driverId":"max_verstappen"},"Constructor":{"constructorId":"red_bull"}},
   {"position":"2","positionText":"2","points":"18","grid":"5","status":"Finished","Driver":{"driverId":"perez"},"Constructor":{"constructorId":"red_bull"}},
   {"position":"20","positionText":"R","points":"0.5","grid":"0","status":"Brakes","Driver":{"driverId":"hamilton"},"Constructor":{"constructorId":"mercedes"}}
  ]}
]}}}`

const qualifyingJSON = `{"MRData":{"limit":"100","offset":"0","total":"2","RaceTable":{"Races":[
 {"season":"2024","round":"2","raceName":"Saudi Arabian Grand Prix","date":"2024-03-09",
  "Circuit":{"circuitId":"jeddah","Location":{"locality":"Jeddah"}},
  "QualifyingResults":[
   {"position":"2","Driver":{"driverId":"leclerc"},"Constructor":{"constructorId":"ferrari"}},
   {"position":"1","Driver":{"driverId":"max_verstappen"},"Constructor":{"constructorId":"red_bull"}}
  ]}
]}}}`

const emptyRacesJSON = `{"MRData":{"limit":"100","offset":"0","total":"0","RaceTable":{"Races":[]}}}`

func testHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        1,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      2 * time.Millisecond,
		RateLimit:         0,
		CircuitBreakerMax: 0,
	}
}

func newTestClient(t *testing.T, handler http.Handler, cfg HTTPClientConfig) *ErgastClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := logger.Discard()
	return NewErgastClient(NewRateLimitedHTTPClient(cfg, log), srv.URL, "", 100, log)
}

func fixtureMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/2024.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, scheduleJSON)
	})
	mux.HandleFunc("/2024/1/results.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, resultsJSON)
	})
	mux.HandleFunc("/2024/2/results.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, emptyRacesJSON)
	})
	mux.HandleFunc("/2024/2/qualifying.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, qualifyingJSON)
	})
	return mux
}

func TestFetchSchedule(t *testing.T) {
	client := newTestClient(t, fixtureMux(), testHTTPConfig())

	events, err := client.FetchSchedule(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, 1, events[0].Round)
	assert.Equal(t, "Bahrain Grand Prix", events[0].RaceName)
	assert.Equal(t, "bahrain", events[0].CircuitID)
	assert.Equal(t, "Sakhir", events[0].Location)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), events[0].Date)
	assert.False(t, events[0].SprintWeekend)
	assert.True(t, events[1].SprintWeekend)
}

func TestFetchRaceResultsMapping(t *testing.T) {
	client := newTestClient(t, fixtureMux(), testHTTPConfig())

	records, err := client.FetchRaceResults(context.Background(), 2024, 1)
	require.NoError(t, err)
	require.Len(t, records, 3)

	winner := records[0]
	assert.Equal(t, "max_verstappen", winner.DriverID)
	assert.Equal(t, "red_bull", winner.ConstructorID)
	assert.Equal(t, 1, winner.Position)
	assert.Equal(t, 26.0, winner.Points)
	assert.Equal(t, 2024, winner.Season)
	assert.Equal(t, "bahrain", winner.CircuitID)

	retired := records[2]
	assert.Equal(t, 0, retired.Position, "non-numeric position text is unclassified")
	assert.Equal(t, 0, retired.Grid, "pit-lane start kept as zero")
	assert.Equal(t, 0.5, retired.Points)
	assert.Equal(t, "Brakes", retired.Status)
}

func TestFetchRaceResultsNotYetRun(t *testing.T) {
	client := newTestClient(t, fixtureMux(), testHTTPConfig())

	records, err := client.FetchRaceResults(context.Background(), 2024, 2)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchRaceResultsPagination(t *testing.T) {
	page := func(offset int) string {
		rows := ""
		for i := offset; i < offset+2 && i < 3; i++ {
			if rows != "" {
				rows += ","
			}
			rows += fmt.Sprintf(`{"positionText":"%d","points":"0","grid":"%d","Driver":{"driverId":"d%d"},"Constructor":{"constructorId":"c"}}`, i+1, i+1, i)
		}
		return fmt.Sprintf(`{"MRData":{"total":"3","RaceTable":{"Races":[{"season":"2024","round":"1","raceName":"R","Results":[%s]}]}}}`, rows)
	}

	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		fmt.Fprint(w, page(offset))
	})

	srv := httptest.NewServer(handler)
	defer srv.Close()
	log := logger.Discard()
	client := NewErgastClient(NewRateLimitedHTTPClient(testHTTPConfig(), log), srv.URL, "", 2, log)

	records, err := client.FetchRaceResults(context.Background(), 2024, 1)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "d2", records[2].DriverID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestFetchNotFound(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler(), testHTTPConfig())

	_, err := client.FetchSchedule(context.Background(), 1899)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var dsErr DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, ErrCodeNotFound, dsErr.Code)
}

func TestFetchServerErrorRetried(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client := newTestClient(t, handler, testHTTPConfig())

	_, err := client.FetchRaceResults(context.Background(), 2024, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests), "one attempt plus one retry")
}

func TestFetchInvalidJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"MRData":`)
	})
	client := newTestClient(t, handler, testHTTPConfig())

	_, err := client.FetchSchedule(context.Background(), 2024)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestCircuitBreakerOpens(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	cfg := testHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	client := newTestClient(t, handler, cfg)

	for i := 0; i < 2; i++ {
		_, err := client.FetchSchedule(context.Background(), 2024)
		assert.ErrorIs(t, err, ErrServerError)
	}

	_, err := client.FetchSchedule(context.Background(), 2024)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))

	client.httpClient.Reset()
	_, err = client.FetchSchedule(context.Background(), 2024)
	assert.ErrorIs(t, err, ErrServerError)
}

func TestFetchHonorsCancelledContext(t *testing.T) {
	client := newTestClient(t, fixtureMux(), testHTTPConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchSchedule(ctx, 2024)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedSourceMemoizes(t *testing.T) {
	var requests int32
	mux := fixtureMux()
	counting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		mux.ServeHTTP(w, r)
	})
	cached := NewCachedSource(newTestClient(t, counting, testHTTPConfig()), time.Minute)

	for i := 0; i < 3; i++ {
		events, err := cached.FetchSchedule(context.Background(), 2024)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))

	// empty results are never cached
	for i := 0; i < 2; i++ {
		_, err := cached.FetchRaceResults(context.Background(), 2024, 2)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))

	cached.Flush()
	_, err := cached.FetchSchedule(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&requests))
	assert.Equal(t, "ergast", cached.Name())
}

func TestResolveRace(t *testing.T) {
	client := newTestClient(t, fixtureMux(), testHTTPConfig())
	ctx := context.Background()

	ev, err := ResolveRace(ctx, client, 2024, "2")
	require.NoError(t, err)
	assert.Equal(t, "Saudi Arabian Grand Prix", ev.RaceName)

	ev, err = ResolveRace(ctx, client, 2024, "bahrain grand prix")
	require.NoError(t, err)
	assert.Equal(t, 1, ev.Round)

	_, err = ResolveRace(ctx, client, 2024, "Monaco Grand Prix")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ResolveRace(ctx, client, 2024, "9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchGrid(t *testing.T) {
	client := newTestClient(t, fixtureMux(), testHTTPConfig())
	ctx := context.Background()

	// race already ran: grid comes from results, pit-lane starters last
	grid, err := FetchGrid(ctx, client, 2024, 1)
	require.NoError(t, err)
	require.Len(t, grid, 3)
	assert.Equal(t, "max_verstappen", grid[0].DriverID)
	assert.Equal(t, "perez", grid[1].DriverID)
	assert.Equal(t, "hamilton", grid[2].DriverID)

	// upcoming race: qualifying order
	grid, err = FetchGrid(ctx, client, 2024, 2)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "max_verstappen", grid[0].DriverID)
	assert.Equal(t, 1, grid[0].Grid)
	assert.Equal(t, "leclerc", grid[1].DriverID)
}

func TestNewFromConfigWrapsCache(t *testing.T) {
	log := logrus.New()

	src, err := NewFromConfig(testUpstreamConfig(3600), log)
	require.NoError(t, err)
	assert.IsType(t, &CachedSource{}, src)

	src, err = NewFromConfig(testUpstreamConfig(0), log)
	require.NoError(t, err)
	assert.IsType(t, &ErgastClient{}, src)
}

func testUpstreamConfig(cacheTTLSeconds int) config.UpstreamConfig {
	return config.UpstreamConfig{
		BaseURL:           "http://localhost:1",
		TimeoutSeconds:    1,
		RequestsPerSecond: 1,
		CacheTTLSeconds:   cacheTTLSeconds,
		PageSize:          100,
	}
}
