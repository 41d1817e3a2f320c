package pricing

import "math"

// PropertySize is a residential property size category.
type PropertySize string

const (
	PropertyStudio   PropertySize = "studio"
	Property1Bed     PropertySize = "1bed"
	Property2Bed     PropertySize = "2bed"
	Property3Bed     PropertySize = "3bed"
	Property4Bed     PropertySize = "4bed"
	Property5BedPlus PropertySize = "5bed-plus"
)

// OfficeSize is an office move size category.
type OfficeSize string

const (
	OfficeSmall  OfficeSize = "small"
	OfficeMedium OfficeSize = "medium"
	OfficeLarge  OfficeSize = "large"
)

// PackingTier is the packing service level chosen as an extra.
type PackingTier string

const (
	PackingFragileOnly PackingTier = "fragileOnly"
	PackingStandard    PackingTier = "standard"
	PackingPremium     PackingTier = "premium"
)

// PackingSize is the volume category used to price packing.
type PackingSize string

const (
	PackingSizeSmall  PackingSize = "small"
	PackingSizeMedium PackingSize = "medium"
	PackingSizeLarge  PackingSize = "large"
	PackingSizeXL     PackingSize = "xl"
)

// StorageSize is the storage unit size chosen as an extra.
type StorageSize string

const (
	StorageSmall  StorageSize = "small"
	StorageMedium StorageSize = "medium"
	StorageLarge  StorageSize = "large"
)

// AssemblyComplexity groups assembly item types into flat-rate tiers.
type AssemblyComplexity string

const (
	AssemblySimple   AssemblyComplexity = "simple"
	AssemblyStandard AssemblyComplexity = "standard"
	AssemblyComplex  AssemblyComplexity = "complex"
)

// AssemblyItemType is a furniture item that can be (dis)assembled.
type AssemblyItemType string

// SpecialistItem is a furniture item that always needs a human callback.
type SpecialistItem string

const (
	SpecialistPiano            SpecialistItem = "piano"
	SpecialistSafe             SpecialistItem = "safe"
	SpecialistPoolTable        SpecialistItem = "poolTable"
	SpecialistGrandfatherClock SpecialistItem = "grandfatherClock"
	SpecialistAquarium         SpecialistItem = "aquarium"
)

// ResourceTier maps an upper cube bound to a van and mover count.
type ResourceTier struct {
	MaxCubes float64
	Vans     int
	Movers   int
}

// Table holds every static price and volume figure used by the calculator.
type Table struct {
	PropertyCubes map[PropertySize]float64
	OfficeCubes   map[OfficeSize]float64

	FurnitureCubesPerItem float64
	HeavyItemsCubes       float64
	TwoPersonCubes        float64

	SliderMultipliers map[int]float64
	ResourceTiers     []ResourceTier

	PackingSmallMax  float64
	PackingMediumMax float64
	PackingLargeMax  float64

	Packing     map[PackingTier]map[PackingSize]float64
	PackingFlat map[PackingTier]float64

	CleaningPerRoom  float64
	CleaningMinRooms int
	CleaningMaxRooms int

	StorageWeekly        map[StorageSize]float64
	StorageDiscountWeeks int
	StorageDiscountRate  float64

	AssemblyRates   map[AssemblyComplexity]float64
	AssemblyCatalog map[AssemblyItemType]AssemblyComplexity

	ComplicationUplift float64
	CallbackCubes      float64
	SpecialistItems    map[SpecialistItem]bool
}

// DefaultTable returns a fresh copy of the production pricing table.
func DefaultTable() Table {
	return Table{
		PropertyCubes: map[PropertySize]float64{
			PropertyStudio:   250,
			Property1Bed:     450,
			Property2Bed:     750,
			Property3Bed:     1100,
			Property4Bed:     1500,
			Property5BedPlus: 1850,
		},
		OfficeCubes: map[OfficeSize]float64{
			OfficeSmall:  600,
			OfficeMedium: 1200,
			OfficeLarge:  2200,
		},

		FurnitureCubesPerItem: 30,
		HeavyItemsCubes:       150,
		TwoPersonCubes:        50,

		SliderMultipliers: map[int]float64{1: 0.9, 2: 1.0, 3: 1.0, 4: 1.0, 5: 1.2},
		ResourceTiers: []ResourceTier{
			{MaxCubes: 300, Vans: 1, Movers: 1},
			{MaxCubes: 600, Vans: 1, Movers: 2},
			{MaxCubes: 1000, Vans: 1, Movers: 3},
			{MaxCubes: 1500, Vans: 2, Movers: 4},
			{MaxCubes: 2000, Vans: 2, Movers: 5},
			{MaxCubes: math.Inf(1), Vans: 3, Movers: 6},
		},

		PackingSmallMax:  500,
		PackingMediumMax: 1000,
		PackingLargeMax:  1750,

		Packing: map[PackingTier]map[PackingSize]float64{
			PackingStandard: {
				PackingSizeSmall:  240,
				PackingSizeMedium: 390,
				PackingSizeLarge:  560,
				PackingSizeXL:     780,
			},
			PackingPremium: {
				PackingSizeSmall:  380,
				PackingSizeMedium: 620,
				PackingSizeLarge:  890,
				PackingSizeXL:     1240,
			},
		},
		PackingFlat: map[PackingTier]float64{
			PackingFragileOnly: 140,
		},

		CleaningPerRoom:  45,
		CleaningMinRooms: 1,
		CleaningMaxRooms: 6,

		StorageWeekly: map[StorageSize]float64{
			StorageSmall:  25,
			StorageMedium: 40,
			StorageLarge:  65,
		},
		StorageDiscountWeeks: 8,
		StorageDiscountRate:  0.5,

		AssemblyRates: map[AssemblyComplexity]float64{
			AssemblySimple:   20,
			AssemblyStandard: 40,
			AssemblyComplex:  70,
		},
		AssemblyCatalog: map[AssemblyItemType]AssemblyComplexity{
			"chair":           AssemblySimple,
			"bedsideTable":    AssemblySimple,
			"desk":            AssemblyStandard,
			"bed":             AssemblyStandard,
			"diningTable":     AssemblyStandard,
			"wardrobe":        AssemblyComplex,
			"bunkBed":         AssemblyComplex,
			"slidingWardrobe": AssemblyComplex,
		},

		ComplicationUplift: 0.07,
		CallbackCubes:      2000,
		SpecialistItems: map[SpecialistItem]bool{
			SpecialistPiano:            true,
			SpecialistSafe:             true,
			SpecialistPoolTable:        true,
			SpecialistGrandfatherClock: true,
			SpecialistAquarium:         true,
		},
	}
}

// Rates are the admin-editable base cost figures.
type Rates struct {
	VanRate     float64 `json:"van_rate"`
	MoverRate   float64 `json:"mover_rate"`
	PerMileRate float64 `json:"per_mile_rate"`
	Currency    string  `json:"currency"`
}

// DefaultRates returns the rates seeded on first startup.
func DefaultRates() Rates {
	return Rates{
		VanRate:     180,
		MoverRate:   110,
		PerMileRate: 1.2,
		Currency:    "GBP",
	}
}

// ValidPropertySize reports whether size is a known property size.
func (t Table) ValidPropertySize(size PropertySize) bool {
	_, ok := t.PropertyCubes[size]
	return ok
}

// ValidOfficeSize reports whether size is a known office size.
func (t Table) ValidOfficeSize(size OfficeSize) bool {
	_, ok := t.OfficeCubes[size]
	return ok
}

// ValidPackingTier reports whether tier has a price entry.
func (t Table) ValidPackingTier(tier PackingTier) bool {
	if _, ok := t.PackingFlat[tier]; ok {
		return true
	}
	_, ok := t.Packing[tier]
	return ok
}

// ValidStorageSize reports whether size has a weekly rate.
func (t Table) ValidStorageSize(size StorageSize) bool {
	_, ok := t.StorageWeekly[size]
	return ok
}

// IsSpecialist reports whether item forces a callback.
func (t Table) IsSpecialist(item SpecialistItem) bool {
	return t.SpecialistItems[item]
}
