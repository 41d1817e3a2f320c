// Package geo resolves addresses and driving distances for quotes.
package geo

import (
	"context"
	"errors"
	"strings"

	"github.com/Simplici0/movequote/internal/calculator"
)

// ErrNoMatch is returned when an address cannot be geocoded.
var ErrNoMatch = errors.New("address not found")

// Provider normalizes addresses and measures driving distance in miles.
type Provider interface {
	Normalize(ctx context.Context, addr calculator.Address) (calculator.Address, error)
	Mileage(ctx context.Context, from, to calculator.Address) (float64, error)
}

// Fixed answers every distance query with the same mileage and returns
// addresses unchanged. It backs deployments without a geocoding key.
type Fixed struct {
	Miles float64
}

func (f Fixed) Normalize(_ context.Context, addr calculator.Address) (calculator.Address, error) {
	return addr, nil
}

func (f Fixed) Mileage(_ context.Context, _, _ calculator.Address) (float64, error) {
	return f.Miles, nil
}

// query renders addr as a single free-text search string.
func query(addr calculator.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{addr.Line1, addr.Line2, addr.City, addr.Postcode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
