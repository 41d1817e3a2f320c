package pricing

import "fmt"

// OverrideViolation names the bound a manual override broke.
type OverrideViolation string

const (
	OverrideNoVans       OverrideViolation = "noVans"
	OverrideBelowMinimum OverrideViolation = "belowMinimum"
	OverrideAboveMaximum OverrideViolation = "aboveMaximum"
)

// MaxMoversPerVan caps how many movers a single van can carry.
const MaxMoversPerVan = 3

// OverrideError reports a manual van/mover count outside the resourcing bounds.
type OverrideError struct {
	Kind        OverrideViolation `json:"kind"`
	Bound       int               `json:"bound"`
	Vans        int               `json:"vans"`
	Movers      int               `json:"movers"`
	Recommended Resources         `json:"recommended"`
}

func (e *OverrideError) Error() string {
	switch e.Kind {
	case OverrideNoVans:
		return fmt.Sprintf("need at least %d van", e.Bound)
	case OverrideBelowMinimum:
		return fmt.Sprintf("need at least %d movers for %d vans", e.Bound, e.Vans)
	default:
		return fmt.Sprintf("Maximum %d movers for %d vans", e.Bound, e.Vans)
	}
}

// ValidateOverride checks a user-supplied allocation: at least one mover per
// van and at most MaxMoversPerVan movers per van. The recommendation is
// carried on the error so callers can show it next to the message.
func ValidateOverride(candidate, recommendation Resources) error {
	if candidate.Vans < 1 {
		return &OverrideError{
			Kind:        OverrideNoVans,
			Bound:       1,
			Vans:        candidate.Vans,
			Movers:      candidate.Movers,
			Recommended: recommendation,
		}
	}

	if candidate.Movers < candidate.Vans {
		return &OverrideError{
			Kind:        OverrideBelowMinimum,
			Bound:       candidate.Vans,
			Vans:        candidate.Vans,
			Movers:      candidate.Movers,
			Recommended: recommendation,
		}
	}

	if maxMovers := MaxMoversPerVan * candidate.Vans; candidate.Movers > maxMovers {
		return &OverrideError{
			Kind:        OverrideAboveMaximum,
			Bound:       maxMovers,
			Vans:        candidate.Vans,
			Movers:      candidate.Movers,
			Recommended: recommendation,
		}
	}

	return nil
}
