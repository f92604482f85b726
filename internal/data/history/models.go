package history

import "time"

const SchemaVersion = 1

// Snapshot is a copy of one finished coverage result.
type Snapshot struct {
	SchemaVersion  int       `json:"schema_version"`
	Project        string    `json:"project"`
	Path           string    `json:"path"`
	Timestamp      time.Time `json:"timestamp"`
	RunID          string    `json:"run_id"`
	Style          string    `json:"style"`
	Threshold      int       `json:"threshold"`
	Total          int       `json:"total"`
	Documented     int       `json:"documented"`
	Percentage     float64   `json:"percentage"`
	Passed         bool      `json:"passed"`
	ViolationCount int       `json:"violation_count"`
}

type TrendPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	RunID           string    `json:"run_id"`
	Total           int       `json:"total"`
	Documented      int       `json:"documented"`
	Percentage      float64   `json:"percentage"`
	Passed          bool      `json:"passed"`
	DeltaPercentage float64   `json:"delta_percentage"`
	DeltaDocumented int       `json:"delta_documented"`
}

// TrendReport summarizes how coverage moved between the first and last
// snapshot of a window. An empty Path means the whole project.
type TrendReport struct {
	SchemaVersion   int          `json:"schema_version"`
	Project         string       `json:"project"`
	Path            string       `json:"path,omitempty"`
	Since           time.Time    `json:"since"`
	Until           time.Time    `json:"until"`
	RunCount        int          `json:"run_count"`
	First           TrendPoint   `json:"first"`
	Last            TrendPoint   `json:"last"`
	DeltaPercentage float64      `json:"delta_percentage"`
	Points          []TrendPoint `json:"points"`
}
