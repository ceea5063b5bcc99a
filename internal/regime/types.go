// Package regime implements the online regime-streaming detector: a
// directional-change event extractor, an incremental HMM posterior
// tracker, an optional Naive-Bayes event classifier, and a window
// confirmation state machine, composed into a single causal pipeline
// that turns a stream of OHLC bars into regime windows.
package regime

import "github.com/ducminhle1904/regime-stream/pkg/types"

// Bar is the input unit consumed by every component in this package.
// Only Timestamp and Close are read; the remaining fields are accepted
// and ignored, matching the upstream OHLCV shape the rest of the
// repository already produces.
type Bar = types.OHLCV

// nStates is the number of latent HMM states (fixed at 2: "state 0" and
// "state 1") and nFeatures is the dimensionality of the scaled
// observation vector (ret, rv_20d).
const (
	nStates   = 2
	nFeatures = 2
)
