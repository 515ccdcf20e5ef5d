package schema

import (
	_ "embed"
)

//go:embed parameters.csv
var defaultTable []byte

// DefaultRows returns the parameter table shipped with the pipeline. It
// covers the standard MEG/EEG processing steps (filtering, epoching, ICA,
// inverse modeling, time-frequency analysis).
func DefaultRows() ([]Row, error) {
	return Load(SourceFromBytes("parameters.csv"), WithData(defaultTable))
}
