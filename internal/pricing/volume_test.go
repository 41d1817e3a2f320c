package pricing

import "testing"

func TestEstimateCubes_MonotonicInSlider(t *testing.T) {
	table := DefaultTable()

	for size := range table.PropertyCubes {
		previous := -1.0
		for position := 1; position <= 5; position++ {
			cubes, err := table.EstimateCubes(VolumeInput{Property: size, Slider: position})
			if err != nil {
				t.Fatalf("EstimateCubes(%s, %d): %v", size, position, err)
			}
			if cubes < previous {
				t.Fatalf("cubes for %s decreased at slider %d: %v < %v", size, position, cubes, previous)
			}
			previous = cubes
		}
	}
}

func TestEstimateCubes_SliderExtremesOnly(t *testing.T) {
	table := DefaultTable()

	low, _ := table.EstimateCubes(VolumeInput{Property: Property3Bed, Slider: 1})
	mid2, _ := table.EstimateCubes(VolumeInput{Property: Property3Bed, Slider: 2})
	mid4, _ := table.EstimateCubes(VolumeInput{Property: Property3Bed, Slider: 4})
	high, _ := table.EstimateCubes(VolumeInput{Property: Property3Bed, Slider: 5})
	skipped, _ := table.EstimateCubes(VolumeInput{Property: Property3Bed})

	nearlyEqual(t, "slider 1", low, 990)
	nearlyEqual(t, "slider 2", mid2, 1100)
	nearlyEqual(t, "slider 4", mid4, 1100)
	nearlyEqual(t, "slider 5", high, 1320)
	nearlyEqual(t, "no slider", skipped, 1100)
}

func TestEstimateCubes_Furniture(t *testing.T) {
	table := DefaultTable()

	cubes, err := table.EstimateCubes(VolumeInput{Furniture: &FurnitureInput{ItemCount: 5}})
	if err != nil {
		t.Fatalf("EstimateCubes: %v", err)
	}
	nearlyEqual(t, "plain", cubes, 150)

	cubes, err = table.EstimateCubes(VolumeInput{Furniture: &FurnitureInput{ItemCount: 5, HasHeavyItems: true, NeedsTwoPerson: true}})
	if err != nil {
		t.Fatalf("EstimateCubes: %v", err)
	}
	nearlyEqual(t, "heavy two-person", cubes, 350)
}

func TestEstimateCubes_Errors(t *testing.T) {
	table := DefaultTable()

	inputs := []VolumeInput{
		{},
		{Property: "castle"},
		{Office: "campus"},
		{Property: Property1Bed, Slider: 6},
		{Furniture: &FurnitureInput{ItemCount: -1}},
	}
	for _, in := range inputs {
		if _, err := table.EstimateCubes(in); err == nil {
			t.Fatalf("expected error for %+v", in)
		}
	}
}

func TestRecommend_MonotonicAndWithinOverrideBounds(t *testing.T) {
	table := DefaultTable()

	previous := Resources{}
	for cubes := 0.0; cubes <= 3000; cubes += 10 {
		rec := table.Recommend(cubes)
		if rec.Vans < previous.Vans || rec.Movers < previous.Movers {
			t.Fatalf("recommendation decreased at %v cubes: %+v after %+v", cubes, rec, previous)
		}
		if err := ValidateOverride(rec, rec); err != nil {
			t.Fatalf("recommendation %+v breaks override bounds: %v", rec, err)
		}
		previous = rec
	}
}

func TestRecommendFor_TwoPersonFurnitureGetsTwoMovers(t *testing.T) {
	table := DefaultTable()

	cubes, rec, err := table.RecommendFor(VolumeInput{Furniture: &FurnitureInput{ItemCount: 1, NeedsTwoPerson: true}})
	if err != nil {
		t.Fatalf("RecommendFor: %v", err)
	}
	nearlyEqual(t, "cubes", cubes, 80)
	if rec.Vans != 1 || rec.Movers != 2 {
		t.Fatalf("recommendation = %+v, want 1 van 2 movers", rec)
	}
}

func TestPackingSize_Boundaries(t *testing.T) {
	table := DefaultTable()

	cases := []struct {
		cubes float64
		want  PackingSize
	}{
		{0, PackingSizeSmall},
		{500, PackingSizeSmall},
		{501, PackingSizeMedium},
		{1000, PackingSizeMedium},
		{1001, PackingSizeLarge},
		{1750, PackingSizeLarge},
		{1751, PackingSizeXL},
	}
	for _, tc := range cases {
		if got := table.PackingSize(tc.cubes); got != tc.want {
			t.Fatalf("PackingSize(%v) = %s, want %s", tc.cubes, got, tc.want)
		}
	}
}
