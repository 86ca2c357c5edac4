package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/f1-form/internal/datasource"
	"github.com/yourusername/f1-form/internal/metrics"
	"github.com/yourusername/f1-form/internal/ml"
	"github.com/yourusername/f1-form/internal/models"
)

type errorResponse struct {
	Error          string   `json:"error"`
	UnknownDrivers []string `json:"unknown_drivers,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
	ModelID   string `json:"model_id,omitempty"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type modelResponse struct {
	ID             string             `json:"id"`
	CreatedAt      time.Time          `json:"created_at"`
	TrainSeasons   []int              `json:"train_seasons"`
	TestSeasons    []int              `json:"test_seasons"`
	FeatureNames   []string           `json:"feature_names"`
	ScalePosWeight float64            `json:"scale_pos_weight"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	Drivers        int                `json:"drivers"`
	Policy         string             `json:"unknown_driver_policy"`
}

type scheduleEntry struct {
	Round     int    `json:"round"`
	RaceName  string `json:"raceName"`
	CircuitID string `json:"circuitId"`
	Location  string `json:"location"`
	Date      string `json:"date,omitempty"`
}

type scheduleResponse struct {
	Season   int             `json:"season"`
	Schedule []scheduleEntry `json:"schedule"`
}

type predictionEntry struct {
	Driver         string  `json:"driver"`
	WinProbability float64 `json:"win_probability"`
	Grid           int     `json:"grid"`
	ColdStart      bool    `json:"cold_start,omitempty"`
}

type predictionResponse struct {
	Season     int               `json:"season"`
	Round      int               `json:"round"`
	RaceName   string            `json:"raceName"`
	ModelID    string            `json:"model_id"`
	Prediction []predictionEntry `json:"prediction"`
}

func respondError(c *gin.Context, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var unknown *models.UnknownDriverError
	if errors.As(err, &unknown) {
		resp.UnknownDrivers = unknown.DriverIDs
	}
	c.AbortWithStatusJSON(status, resp)
}

// statusFor maps domain and upstream errors onto HTTP status codes
func statusFor(err error) (int, string) {
	var dsErr datasource.DataSourceError
	switch {
	case errors.Is(err, models.ErrUnknownDriver):
		return http.StatusUnprocessableEntity, "unknown_driver"
	case errors.Is(err, datasource.ErrNotFound), errors.Is(err, ml.ErrEmptyGrid):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &dsErr), errors.Is(err, ml.ErrDuplicateDriver):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "error"
	}
}

func parseYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1950 {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid season %q", c.Param("year")))
		return 0, false
	}
	return year, true
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := healthResponse{
		Status:    "ok",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}
	if s.serving != nil {
		resp.ModelID = s.serving.Artifact().ID.String()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleReady(c *gin.Context) {
	checks := map[string]string{"service": "ok", "model": "ok"}
	ready := true
	if !s.IsReady() {
		checks["service"] = "not_ready"
		ready = false
	}
	if s.serving == nil {
		checks["model"] = "not_loaded"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, readyResponse{Status: "not_ready", Checks: checks})
		return
	}
	c.JSON(http.StatusOK, readyResponse{Status: "ok", Checks: checks})
}

func (s *Server) handleModel(c *gin.Context) {
	if s.serving == nil {
		respondError(c, http.StatusServiceUnavailable, errors.New("no model loaded"))
		return
	}
	a := s.serving.Artifact()
	resp := modelResponse{
		ID:             a.ID.String(),
		CreatedAt:      a.CreatedAt,
		TrainSeasons:   a.TrainSeasons,
		TestSeasons:    a.TestSeasons,
		FeatureNames:   a.FeatureNames,
		ScalePosWeight: a.ScalePosWeight,
		Drivers:        s.serving.Drivers(),
		Policy:         s.serving.Policy(),
	}
	if a.Evaluation != nil {
		resp.Metrics = a.Evaluation.Metrics()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSchedule(c *gin.Context) {
	year, ok := parseYear(c)
	if !ok {
		return
	}

	events, err := s.source.FetchSchedule(c.Request.Context(), year)
	if err != nil {
		status, _ := statusFor(err)
		respondError(c, status, err)
		return
	}

	resp := scheduleResponse{Season: year, Schedule: make([]scheduleEntry, 0, len(events))}
	for _, e := range events {
		entry := scheduleEntry{
			Round:     e.Round,
			RaceName:  e.RaceName,
			CircuitID: e.CircuitID,
			Location:  e.Location,
		}
		if !e.Date.IsZero() {
			entry.Date = e.Date.Format(models.DateLayout)
		}
		resp.Schedule = append(resp.Schedule, entry)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePredict(c *gin.Context) {
	start := time.Now()
	if s.serving == nil {
		respondError(c, http.StatusServiceUnavailable, errors.New("no model loaded"))
		return
	}
	year, ok := parseYear(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	fail := func(raceName string, err error) {
		status, label := statusFor(err)
		metrics.RecordPrediction(label, time.Since(start).Seconds())
		s.mlLog.LogPredictionError(raceName, err)
		respondError(c, status, err)
	}

	event, err := datasource.ResolveRace(ctx, s.source, year, c.Param("race"))
	if err != nil {
		fail(c.Param("race"), err)
		return
	}

	key := ml.CacheKey{ModelID: s.serving.Artifact().ID, Season: event.Season, Round: event.Round}
	preds, cached := s.lookup(key)
	if !cached {
		grid, err := datasource.FetchGrid(ctx, s.source, event.Season, event.Round)
		if err != nil {
			fail(event.RaceName, err)
			return
		}
		preds, err = s.serving.PredictRace(grid)
		if err != nil {
			fail(event.RaceName, err)
			return
		}
		if s.cache != nil {
			s.cache.Set(key, preds)
		}
	}

	top := ml.Top(preds, s.cfg.Prediction.TopN)
	resp := predictionResponse{
		Season:     event.Season,
		Round:      event.Round,
		RaceName:   event.RaceName,
		ModelID:    key.ModelID.String(),
		Prediction: make([]predictionEntry, 0, len(top)),
	}
	for _, p := range top {
		resp.Prediction = append(resp.Prediction, predictionEntry{
			Driver:         p.DriverID,
			WinProbability: ml.Round4(p.Probability),
			Grid:           p.Grid,
			ColdStart:      p.ColdStart,
		})
	}

	latency := time.Since(start)
	metrics.RecordPrediction("success", latency.Seconds())
	s.mlLog.LogPrediction(event.RaceName, len(preds), preds[0].DriverID, preds[0].Probability, latency)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) lookup(key ml.CacheKey) ([]ml.Prediction, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}
