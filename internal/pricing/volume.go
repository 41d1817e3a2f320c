package pricing

import (
	"errors"
	"fmt"
)

// Resources is a van and mover allocation.
type Resources struct {
	Vans   int `json:"vans"`
	Movers int `json:"movers"`
}

// FurnitureInput describes a furniture-only move.
type FurnitureInput struct {
	ItemCount      int
	NeedsTwoPerson bool
	HasHeavyItems  bool
}

// VolumeInput is the descriptor used to estimate volume. Exactly one of
// Property, Office or Furniture is expected to be set.
type VolumeInput struct {
	Property  PropertySize
	Office    OfficeSize
	Furniture *FurnitureInput
	// Slider is the 1-5 "how full" position, or 0 when the step was skipped.
	Slider int
}

var errNoDescriptor = errors.New("volume input has no property, office or furniture descriptor")

// SliderMultiplier returns the scale factor for a slider position. Position 0
// means the slider was not shown and leaves the base volume untouched.
func (t Table) SliderMultiplier(position int) (float64, error) {
	if position == 0 {
		return 1, nil
	}
	m, ok := t.SliderMultipliers[position]
	if !ok {
		return 0, fmt.Errorf("slider position %d out of range", position)
	}
	return m, nil
}

// EstimateCubes computes the estimated volume for a move.
func (t Table) EstimateCubes(in VolumeInput) (float64, error) {
	var base float64
	switch {
	case in.Furniture != nil:
		if in.Furniture.ItemCount < 0 {
			return 0, fmt.Errorf("furniture item count %d is negative", in.Furniture.ItemCount)
		}
		base = float64(in.Furniture.ItemCount) * t.FurnitureCubesPerItem
		if in.Furniture.HasHeavyItems {
			base += t.HeavyItemsCubes
		}
		if in.Furniture.NeedsTwoPerson {
			base += t.TwoPersonCubes
		}
	case in.Office != "":
		cubes, ok := t.OfficeCubes[in.Office]
		if !ok {
			return 0, fmt.Errorf("unknown office size %q", in.Office)
		}
		base = cubes
	case in.Property != "":
		cubes, ok := t.PropertyCubes[in.Property]
		if !ok {
			return 0, fmt.Errorf("unknown property size %q", in.Property)
		}
		base = cubes
	default:
		return 0, errNoDescriptor
	}

	multiplier, err := t.SliderMultiplier(in.Slider)
	if err != nil {
		return 0, err
	}
	return base * multiplier, nil
}

// Recommend buckets cubes into a van and mover recommendation. The result is
// monotonically non-decreasing in cubes.
func (t Table) Recommend(cubes float64) Resources {
	for _, tier := range t.ResourceTiers {
		if cubes <= tier.MaxCubes {
			return Resources{Vans: tier.Vans, Movers: tier.Movers}
		}
	}
	last := t.ResourceTiers[len(t.ResourceTiers)-1]
	return Resources{Vans: last.Vans, Movers: last.Movers}
}

// RecommendFor estimates cubes for in and returns them with the matching
// recommendation. Furniture moves needing two people get at least two movers.
func (t Table) RecommendFor(in VolumeInput) (float64, Resources, error) {
	cubes, err := t.EstimateCubes(in)
	if err != nil {
		return 0, Resources{}, err
	}
	rec := t.Recommend(cubes)
	if in.Furniture != nil && in.Furniture.NeedsTwoPerson && rec.Movers < 2 {
		rec.Movers = 2
	}
	return cubes, rec, nil
}

// PackingSize categorizes cubes for packing prices and UI sizing. Every
// caller that needs a volume category goes through here.
func (t Table) PackingSize(cubes float64) PackingSize {
	switch {
	case cubes <= t.PackingSmallMax:
		return PackingSizeSmall
	case cubes <= t.PackingMediumMax:
		return PackingSizeMedium
	case cubes <= t.PackingLargeMax:
		return PackingSizeLarge
	default:
		return PackingSizeXL
	}
}
