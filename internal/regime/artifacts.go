package regime

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// modelArtifact is the on-disk shape of the model-json file a
// cmd/regime-monitor or cmd/regime-indicator driver loads. It mirrors
// the (hmm, scaler) tuple the offline trainer would persist, plus an
// optional Bayes artifact — decoding only, no training logic lives here
// (spec.md §5 Non-goals).
type modelArtifact struct {
	InitialDist [nStates]float64            `json:"initial_dist"`
	Transition  [nStates][nStates]float64   `json:"transition"`
	Means       [nStates][nFeatures]float64 `json:"means"`
	Variances   [nStates][nFeatures]float64 `json:"variances"`
	ScalerMean  [nFeatures]float64          `json:"scaler_mean"`
	ScalerStd   [nFeatures]float64          `json:"scaler_std"`
	Bayes       *nbArtifactJSON             `json:"bayes,omitempty"`
}

// nbArtifactJSON mirrors the Bayes artifact schema spec.md §5 gives
// verbatim: priors and cond_params are JSON objects keyed by the
// class-index strings "0"/"1", not arrays.
type nbArtifactJSON struct {
	Priors     map[string]float64          `json:"priors"`
	CondParams map[string]nbClassParamJSON `json:"cond_params"`
}

// nbClassParamJSON holds tmv/tlen as the 2-element [mean, std] arrays
// spec.md §5 specifies, rather than {mean,std} objects.
type nbClassParamJSON struct {
	TMV  [2]float64 `json:"tmv"`
	TLen [2]float64 `json:"tlen"`
}

// LoadModelArtifact reads an HMMModel, Scaler, and optional NBArtifacts
// from a JSON file at path. The Bayes artifact is nil when the file
// carries no "bayes" section.
func LoadModelArtifact(path string) (HMMModel, Scaler, *NBArtifacts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HMMModel{}, Scaler{}, nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var raw modelArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return HMMModel{}, Scaler{}, nil, fmt.Errorf("parsing model artifact: %w", err)
	}

	model := HMMModel{
		InitialDist: raw.InitialDist,
		Transition:  raw.Transition,
		Means:       raw.Means,
		Variances:   raw.Variances,
	}
	scaler := Scaler{Mean: raw.ScalerMean, Std: raw.ScalerStd}

	var bayes *NBArtifacts
	if raw.Bayes != nil {
		b, err := raw.Bayes.toNBArtifacts()
		if err != nil {
			return HMMModel{}, Scaler{}, nil, fmt.Errorf("parsing bayes artifact: %w", err)
		}
		bayes = b
	}

	return model, scaler, bayes, nil
}

// toNBArtifacts maps the "0"/"1"-keyed JSON shape onto the core's
// index-0/index-1 NBArtifacts, failing if either class key is absent.
func (raw *nbArtifactJSON) toNBArtifacts() (*NBArtifacts, error) {
	var out NBArtifacts
	for cls := 0; cls < 2; cls++ {
		key := strconv.Itoa(cls)
		prior, ok := raw.Priors[key]
		if !ok {
			return nil, fmt.Errorf("missing priors class %q", key)
		}
		params, ok := raw.CondParams[key]
		if !ok {
			return nil, fmt.Errorf("missing cond_params class %q", key)
		}
		out.Priors[cls] = prior
		out.CondParams[cls] = NBClassParams{
			TMV:  NBFeatureParams{Mean: params.TMV[0], Std: params.TMV[1]},
			TLen: NBFeatureParams{Mean: params.TLen[0], Std: params.TLen[1]},
		}
	}
	return &out, nil
}
