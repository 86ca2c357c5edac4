package ml

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/models"
)

var probeVectors = [][]float64{
	{1, 12, 2, 10, 0.5},
	{4, 0, 0, 0, 0},
	{20, 1, 15, 2, -3},
	{0, 25, 1, 18, 4},
}

func TestArtifactRoundTrip(t *testing.T) {
	artifact, _ := trainTestArtifact(t)
	dir := t.TempDir()

	for _, name := range []string{"model.json", "model.msgpack", "model.json.gz", "model.msgpack.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveArtifact(path, artifact, FormatForPath(path, config.ArtifactFormatJSON)))

			loaded, err := LoadArtifact(path)
			require.NoError(t, err)

			assert.Equal(t, artifact.ID, loaded.ID)
			assert.True(t, artifact.CreatedAt.Equal(loaded.CreatedAt))
			assert.Equal(t, artifact.FeatureNames, loaded.FeatureNames)
			assert.Equal(t, artifact.Hyperparameters, loaded.Hyperparameters)
			assert.Equal(t, artifact.ScalePosWeight, loaded.ScalePosWeight)
			assert.Equal(t, artifact.Evaluation, loaded.Evaluation)
			assert.Equal(t, artifact.Booster, loaded.Booster)

			for _, x := range probeVectors {
				assert.Equal(t, artifact.Booster.PredictProba(x), loaded.Booster.PredictProba(x))
			}
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, config.ArtifactFormatJSON, FormatForPath("m.json", config.ArtifactFormatMsgpack))
	assert.Equal(t, config.ArtifactFormatJSON, FormatForPath("m.json.gz", config.ArtifactFormatMsgpack))
	assert.Equal(t, config.ArtifactFormatMsgpack, FormatForPath("m.msgpack", config.ArtifactFormatJSON))
	assert.Equal(t, config.ArtifactFormatMsgpack, FormatForPath("m.mpk.gz", config.ArtifactFormatJSON))
	assert.Equal(t, config.ArtifactFormatMsgpack, FormatForPath("m.bin", config.ArtifactFormatMsgpack))
}

func TestEncodeUnknownFormat(t *testing.T) {
	artifact, _ := trainTestArtifact(t)
	assert.Error(t, Encode(&bytes.Buffer{}, artifact, "pickle"))
}

func TestLoadArtifactMissingFile(t *testing.T) {
	_, err := LoadArtifact(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, models.ErrMissingInput)
}

func TestDecodeRejectsForeignContent(t *testing.T) {
	artifact, _ := trainTestArtifact(t)

	_, err := Decode(bytes.NewReader([]byte("not a model")))
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = Decode(bytes.NewReader([]byte(`{"kind":"something-else","version":1}`)))
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	renamed := *artifact
	renamed.FeatureNames = []string{"grid", "qualifying_gap", "a", "b", "c"}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &renamed, config.ArtifactFormatJSON))
	_, err = Decode(&buf)
	assert.ErrorIs(t, err, ErrIncompatibleArtifact)

	future := *artifact
	future.Version = ArtifactVersion + 1
	buf.Reset()
	require.NoError(t, Encode(&buf, &future, config.ArtifactFormatMsgpack))
	_, err = Decode(&buf)
	assert.ErrorIs(t, err, ErrIncompatibleArtifact)
}

func TestSaveArtifactIsAtomic(t *testing.T) {
	artifact, _ := trainTestArtifact(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "model.json")

	require.NoError(t, SaveArtifact(path, artifact, config.ArtifactFormatJSON))
	require.NoError(t, SaveArtifact(path, artifact, config.ArtifactFormatJSON))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}
