package regime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArtifactJSON = `{
  "initial_dist": [0.5, 0.5],
  "transition": [[0.9, 0.1], [0.1, 0.9]],
  "means": [[-1.0, -1.0], [1.0, 1.0]],
  "variances": [[1.0, 1.0], [1.0, 1.0]],
  "scaler_mean": [0.0, 0.0],
  "scaler_std": [1.0, 1.0],
  "bayes": {
    "priors": {"0": 0.5, "1": 0.5},
    "cond_params": {
      "0": {"tmv": [0.01, 0.005], "tlen": [3, 1]},
      "1": {"tmv": [0.05, 0.01], "tlen": [10, 3]}
    }
  }
}`

const sampleArtifactJSONMissingBayesClass = `{
  "initial_dist": [0.5, 0.5],
  "transition": [[0.9, 0.1], [0.1, 0.9]],
  "means": [[-1.0, -1.0], [1.0, 1.0]],
  "variances": [[1.0, 1.0], [1.0, 1.0]],
  "scaler_mean": [0.0, 0.0],
  "scaler_std": [1.0, 1.0],
  "bayes": {
    "priors": {"0": 0.5},
    "cond_params": {
      "0": {"tmv": [0.01, 0.005], "tlen": [3, 1]}
    }
  }
}`

const sampleArtifactJSONNoBayes = `{
  "initial_dist": [0.5, 0.5],
  "transition": [[0.9, 0.1], [0.1, 0.9]],
  "means": [[-1.0, -1.0], [1.0, 1.0]],
  "variances": [[1.0, 1.0], [1.0, 1.0]],
  "scaler_mean": [0.0, 0.0],
  "scaler_std": [1.0, 1.0]
}`

func writeArtifact(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadModelArtifact_FullArtifact(t *testing.T) {
	path := writeArtifact(t, sampleArtifactJSON)

	model, scaler, bayes, err := LoadModelArtifact(path)
	require.NoError(t, err)

	assert.Equal(t, [nStates]float64{0.5, 0.5}, model.InitialDist)
	assert.Equal(t, 0.9, model.Transition[0][0])
	assert.Equal(t, -1.0, model.Means[0][0])
	assert.Equal(t, 1.0, scaler.Std[0])
	require.NotNil(t, bayes)
	assert.Equal(t, [2]float64{0.5, 0.5}, bayes.Priors)
	assert.Equal(t, 0.01, bayes.CondParams[0].TMV.Mean)
	assert.Equal(t, 0.005, bayes.CondParams[0].TMV.Std)
	assert.Equal(t, 10.0, bayes.CondParams[1].TLen.Mean)
	assert.Equal(t, 3.0, bayes.CondParams[1].TLen.Std)
}

func TestLoadModelArtifact_MissingBayesClassKeyErrors(t *testing.T) {
	path := writeArtifact(t, sampleArtifactJSONMissingBayesClass)

	_, _, _, err := LoadModelArtifact(path)
	assert.Error(t, err)
}

func TestLoadModelArtifact_NoBayesSectionYieldsNilArtifacts(t *testing.T) {
	path := writeArtifact(t, sampleArtifactJSONNoBayes)

	_, _, bayes, err := LoadModelArtifact(path)
	require.NoError(t, err)
	assert.Nil(t, bayes)
}

func TestLoadModelArtifact_MissingFile(t *testing.T) {
	_, _, _, err := LoadModelArtifact("/nonexistent/path/model.json")
	assert.Error(t, err)
}

func TestLoadModelArtifact_MalformedJSON(t *testing.T) {
	path := writeArtifact(t, "{not valid json")

	_, _, _, err := LoadModelArtifact(path)
	assert.Error(t, err)
}

func TestLoadModelArtifact_RoundTripsThroughNewHMMTracker(t *testing.T) {
	path := writeArtifact(t, sampleArtifactJSON)
	model, scaler, _, err := LoadModelArtifact(path)
	require.NoError(t, err)

	tracker, err := NewHMMTracker(model, scaler)
	require.NoError(t, err)
	assert.NotNil(t, tracker)
}
