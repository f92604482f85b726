package history

import (
	"errors"
	"math"
)

// ErrNoSnapshots is returned when a trend is requested over an empty window.
var ErrNoSnapshots = errors.New("no snapshots available")

// BuildTrendReport folds snapshots into one point per run (files of the same
// run are aggregated) and computes deltas between consecutive runs.
func BuildTrendReport(snapshots []Snapshot) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, ErrNoSnapshots
	}

	runs := AggregateRuns(snapshots)
	points := make([]TrendPoint, 0, len(runs))
	for i, run := range runs {
		point := TrendPoint{
			Timestamp:  run.Timestamp,
			RunID:      run.RunID,
			Total:      run.Total,
			Documented: run.Documented,
			Percentage: round2(run.Percentage),
			Passed:     run.Passed,
		}
		if i > 0 {
			prev := points[i-1]
			point.DeltaPercentage = round2(point.Percentage - prev.Percentage)
			point.DeltaDocumented = point.Documented - prev.Documented
		}
		points = append(points, point)
	}

	first, last := points[0], points[len(points)-1]
	return TrendReport{
		SchemaVersion:   SchemaVersion,
		Project:         snapshots[0].Project,
		Since:           first.Timestamp,
		Until:           last.Timestamp,
		RunCount:        len(points),
		First:           first,
		Last:            last,
		DeltaPercentage: round2(last.Percentage - first.Percentage),
		Points:          points,
	}, nil
}

// AggregateRuns merges snapshots sharing a run ID into one snapshot whose
// totals are summed. Snapshots without a run ID stay separate. The result
// keeps the order in which runs first appear.
func AggregateRuns(snapshots []Snapshot) []Snapshot {
	out := make([]Snapshot, 0, len(snapshots))
	index := make(map[string]int)
	for _, s := range snapshots {
		if s.RunID == "" {
			out = append(out, s)
			continue
		}
		i, ok := index[s.RunID]
		if !ok {
			index[s.RunID] = len(out)
			s.Path = ""
			out = append(out, s)
			continue
		}
		agg := &out[i]
		agg.Total += s.Total
		agg.Documented += s.Documented
		agg.ViolationCount += s.ViolationCount
		agg.Passed = agg.Passed && s.Passed
		if s.Timestamp.After(agg.Timestamp) {
			agg.Timestamp = s.Timestamp
		}
	}

	for i := range out {
		if out[i].Total == 0 {
			out[i].Percentage = 100
		} else {
			out[i].Percentage = float64(out[i].Documented) * 100 / float64(out[i].Total)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
