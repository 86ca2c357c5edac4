package ml

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/gbt"
	"github.com/yourusername/f1-form/internal/models"
	"github.com/yourusername/f1-form/internal/repository"
)

// ArtifactKind tags every artifact so foreign files are rejected on load
const ArtifactKind = "f1-form/winner-model"

// ArtifactVersion is the current artifact layout
const ArtifactVersion = 1

// Artifact is a self-describing trained model
type Artifact struct {
	Kind            string       `json:"kind"`
	Version         int          `json:"version"`
	ID              uuid.UUID    `json:"id"`
	CreatedAt       time.Time    `json:"created_at"`
	FeatureNames    []string     `json:"feature_names"`
	Hyperparameters gbt.Params   `json:"hyperparameters"`
	ScalePosWeight  float64      `json:"scale_pos_weight"`
	TrainSeasons    []int        `json:"train_seasons"`
	TestSeasons     []int        `json:"test_seasons"`
	Evaluation      *Report      `json:"evaluation,omitempty"`
	Booster         *gbt.Booster `json:"booster"`
}

// NewArtifact wraps a fitted booster with fresh identity metadata
func NewArtifact(booster *gbt.Booster, trainSeasons, testSeasons []int, evaluation *Report) *Artifact {
	return &Artifact{
		Kind:            ArtifactKind,
		Version:         ArtifactVersion,
		ID:              uuid.New(),
		CreatedAt:       time.Now().UTC(),
		FeatureNames:    slices.Clone(models.FeatureNames),
		Hyperparameters: booster.Params,
		ScalePosWeight:  booster.Params.ScalePosWeight,
		TrainSeasons:    trainSeasons,
		TestSeasons:     testSeasons,
		Evaluation:      evaluation,
		Booster:         booster,
	}
}

// Info summarises the artifact for the model index
func (a *Artifact) Info(name string, version int, path string) *models.ModelInfo {
	info := &models.ModelInfo{
		ID:           a.ID,
		Name:         name,
		Version:      version,
		Path:         path,
		TrainedAt:    a.CreatedAt,
		TrainSeasons: a.TrainSeasons,
		TestSeasons:  a.TestSeasons,
		Hyperparameters: map[string]float64{
			"n_estimators":     float64(a.Hyperparameters.NEstimators),
			"max_depth":        float64(a.Hyperparameters.MaxDepth),
			"learning_rate":    a.Hyperparameters.LearningRate,
			"scale_pos_weight": a.ScalePosWeight,
		},
	}
	if a.Evaluation != nil {
		info.Metrics = a.Evaluation.Metrics()
	}
	return info
}

// Validate rejects artifacts that cannot score the current feature layout
func (a *Artifact) Validate() error {
	if a.Kind != ArtifactKind {
		return fmt.Errorf("%w: kind %q", ErrInvalidArtifact, a.Kind)
	}
	if a.Version < 1 || a.Version > ArtifactVersion {
		return fmt.Errorf("%w: version %d, supported up to %d", ErrIncompatibleArtifact, a.Version, ArtifactVersion)
	}
	if a.Booster == nil {
		return fmt.Errorf("%w: no booster", ErrInvalidArtifact)
	}
	if !slices.Equal(a.FeatureNames, models.FeatureNames) {
		return fmt.Errorf("%w: features %v, expected %v", ErrIncompatibleArtifact, a.FeatureNames, models.FeatureNames)
	}
	if a.Booster.NumFeatures != len(a.FeatureNames) {
		return fmt.Errorf("%w: booster expects %d features", ErrIncompatibleArtifact, a.Booster.NumFeatures)
	}
	if err := a.Booster.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return nil
}

// Encode writes the artifact in the given format
func Encode(w io.Writer, a *Artifact, format string) error {
	switch format {
	case config.ArtifactFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case config.ArtifactFormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(a)
	default:
		return fmt.Errorf("unsupported artifact format %q", format)
	}
}

// Decode reads an artifact, detecting gzip compression and the encoding from the content
func Decode(r io.Reader) (*Artifact, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	var src io.Reader = br
	if head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
		defer gz.Close()
		src = gz
	}

	body, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	var a Artifact
	if trimmed := bytes.TrimLeft(body, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(body, &a)
	} else {
		dec := msgpack.NewDecoder(bytes.NewReader(body))
		dec.SetCustomStructTag("json")
		err = dec.Decode(&a)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// FormatForPath picks the encoding from the file extension, ignoring a trailing .gz
func FormatForPath(path, fallback string) string {
	switch filepath.Ext(strings.TrimSuffix(path, ".gz")) {
	case ".json":
		return config.ArtifactFormatJSON
	case ".msgpack", ".mpk":
		return config.ArtifactFormatMsgpack
	}
	return fallback
}

// SaveArtifact writes the artifact atomically. A .gz suffix gzips the payload.
func SaveArtifact(path string, a *Artifact, format string) error {
	return repository.WriteFileAtomic(path, func(w io.Writer) error {
		if !strings.HasSuffix(path, ".gz") {
			return Encode(w, a, format)
		}
		gz := gzip.NewWriter(w)
		if err := Encode(gz, a, format); err != nil {
			return err
		}
		return gz.Close()
	})
}

// LoadArtifact reads and validates an artifact file
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.MissingInputError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer f.Close()

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}
