package coverage

import (
	"fmt"

	"doccov/internal/core/errors"
)

const (
	MinThreshold = 0
	MaxThreshold = 100
)

// Compliance is the outcome of comparing a report against a threshold.
type Compliance struct {
	Passed     bool
	Vacuous    bool
	Threshold  int
	Percentage float64
	// Shortfall is how many more declarations need a docstring to pass.
	Shortfall int
}

func (c Compliance) Status() string {
	if c.Passed {
		return "PASSED"
	}
	return "FAILED"
}

func ValidateThreshold(threshold int) error {
	if threshold < MinThreshold || threshold > MaxThreshold {
		return errors.New(errors.CodeValidationError,
			fmt.Sprintf("threshold must be between %d and %d, got %d", MinThreshold, MaxThreshold, threshold))
	}
	return nil
}

// Evaluate compares r against threshold. A report without declarations
// always passes, whatever the threshold.
func Evaluate(r *Report, threshold int) (Compliance, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return Compliance{}, err
	}
	if r == nil {
		return Compliance{}, errors.New(errors.CodeValidationError, "report is required")
	}

	c := Compliance{
		Threshold:  threshold,
		Percentage: r.Percentage,
	}
	if r.Total == 0 {
		c.Passed = true
		c.Vacuous = true
		return c, nil
	}

	// Integer comparison keeps documented/total*100 >= threshold exact.
	c.Passed = r.Documented*100 >= threshold*r.Total
	if !c.Passed {
		needed := (threshold*r.Total + 99) / 100
		c.Shortfall = needed - r.Documented
	}
	return c, nil
}
