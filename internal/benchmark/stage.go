package benchmark

import "fmt"

// Stage is a step of a benchmark run.
type Stage int

const (
	StageConfigured Stage = iota
	StageDataLoaded
	StageTraining
	StageAggregated
	StageReported
)

// String returns string representation.
func (s Stage) String() string {
	switch s {
	case StageConfigured:
		return "configured"
	case StageDataLoaded:
		return "data_loaded"
	case StageTraining:
		return "training"
	case StageAggregated:
		return "aggregated"
	case StageReported:
		return "reported"
	default:
		return "unknown"
	}
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stage name.
func (s *Stage) UnmarshalText(text []byte) error {
	for st := StageConfigured; st <= StageReported; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}
