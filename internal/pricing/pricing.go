package pricing

import (
	"math"
	"sort"
)

// Complication is a move condition that changes price or resourcing.
type Complication string

const (
	ComplicationLargeFragile     Complication = "largeFragile"
	ComplicationStairs           Complication = "stairs"
	ComplicationRestrictedAccess Complication = "restrictedAccess"
	ComplicationPlants           Complication = "plants"
	ComplicationNone             Complication = "none"
)

var complicationOrder = map[Complication]int{
	ComplicationLargeFragile:     0,
	ComplicationStairs:           1,
	ComplicationRestrictedAccess: 2,
	ComplicationPlants:           3,
}

// ValidComplication reports whether c is a known tag, including none.
func ValidComplication(c Complication) bool {
	if c == ComplicationNone {
		return true
	}
	_, ok := complicationOrder[c]
	return ok
}

// NormalizeComplications deduplicates tags into a stable order. A none tag
// clears every other tag and yields an empty, non-nil set.
func NormalizeComplications(tags []Complication) []Complication {
	seen := make(map[Complication]bool, len(tags))
	out := make([]Complication, 0, len(tags))
	for _, tag := range tags {
		if tag == ComplicationNone {
			return []Complication{}
		}
		if _, ok := complicationOrder[tag]; !ok || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool {
		return complicationOrder[out[i]] < complicationOrder[out[j]]
	})
	return out
}

func isPercentComplication(c Complication) bool {
	switch c {
	case ComplicationLargeFragile, ComplicationStairs, ComplicationRestrictedAccess:
		return true
	}
	return false
}

// AssemblyItem is an assembly extra line.
type AssemblyItem struct {
	Type     AssemblyItemType `json:"type"`
	Quantity int              `json:"quantity"`
}

// Extras are the optional add-on services.
type Extras struct {
	PackingTier   PackingTier    `json:"packing_tier,omitempty"`
	CleaningRooms int            `json:"cleaning_rooms,omitempty"`
	StorageSize   StorageSize    `json:"storage_size,omitempty"`
	StorageWeeks  int            `json:"storage_weeks,omitempty"`
	Assembly      []AssemblyItem `json:"assembly,omitempty"`
}

// Input is everything the calculator needs for one quote.
type Input struct {
	Resources     Resources
	Cubes         float64
	Mileage       float64
	Complications []Complication
	Extras        Extras
}

// Line codes used in the breakdown.
const (
	LineVans          = "vans"
	LineMovers        = "movers"
	LineMileage       = "mileage"
	LineComplications = "complications"
	LinePacking       = "packing"
	LineCleaning      = "cleaning"
	LineStorage       = "storage"
	LineAssembly      = "assembly"
)

// Line is a single priced entry of the breakdown.
type Line struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

// Breakdown contains the resourcing used and every priced line of the quote.
type Breakdown struct {
	Vans                   int         `json:"vans"`
	Movers                 int         `json:"movers"`
	Mileage                float64     `json:"mileage"`
	PackingSize            PackingSize `json:"packing_size"`
	BaseCost               float64     `json:"base_cost"`
	ComplicationMultiplier float64     `json:"complication_multiplier"`
	ComplicationUplift     float64     `json:"complication_uplift"`
	PackingCost            float64     `json:"packing_cost"`
	CleaningCost           float64     `json:"cleaning_cost"`
	StorageCost            float64     `json:"storage_cost"`
	AssemblyCost           float64     `json:"assembly_cost"`
	Lines                  []Line      `json:"lines"`
}

// Totals contains roll-up values from the pricing calculation.
type Totals struct {
	// Subtotal is the base cost after the complication multiplier.
	Subtotal float64 `json:"subtotal"`
	// Total is the exact sum of the breakdown lines.
	Total   float64 `json:"total"`
	Rounded float64 `json:"rounded"`
	Display string  `json:"display"`
}

// Result groups the full pricing output, including detailed breakdown and totals.
type Result struct {
	Breakdown Breakdown `json:"breakdown"`
	Totals    Totals    `json:"totals"`
}

// Calculate prices a move. The stages run in a fixed order: resourcing,
// base cost, the multiplicative complication stage, then the additive
// extras stage.
func (t Table) Calculate(in Input, rates Rates) Result {
	complications := NormalizeComplications(in.Complications)

	b := Breakdown{
		Mileage:     in.Mileage,
		PackingSize: t.PackingSize(in.Cubes),
	}

	b.Vans, b.Movers = resourcingStage(in.Resources, complications)
	baseStage(&b, rates)
	t.multiplyStage(&b, complications)
	t.addStage(&b, in.Extras)

	total := 0.0
	for _, line := range b.Lines {
		total += line.Amount
	}
	rounded := math.Round(total*100) / 100

	return Result{
		Breakdown: b,
		Totals: Totals{
			Subtotal: b.BaseCost * b.ComplicationMultiplier,
			Total:    total,
			Rounded:  rounded,
			Display:  FormatMoney(rounded, rates.Currency),
		},
	}
}

func resourcingStage(base Resources, complications []Complication) (vans, movers int) {
	vans, movers = base.Vans, base.Movers
	for _, c := range complications {
		if c == ComplicationPlants {
			vans++
			movers++
		}
	}
	return vans, movers
}

func baseStage(b *Breakdown, rates Rates) {
	vansCost := float64(b.Vans) * rates.VanRate
	moversCost := float64(b.Movers) * rates.MoverRate
	mileageCost := b.Mileage * rates.PerMileRate * float64(b.Vans)

	b.BaseCost = vansCost + moversCost + mileageCost
	b.Lines = append(b.Lines,
		Line{Code: LineVans, Amount: vansCost},
		Line{Code: LineMovers, Amount: moversCost},
		Line{Code: LineMileage, Amount: mileageCost},
	)
}

func (t Table) multiplyStage(b *Breakdown, complications []Complication) {
	b.ComplicationMultiplier = t.ComplicationMultiplier(complications)
	if b.ComplicationMultiplier == 1 {
		return
	}
	b.ComplicationUplift = b.BaseCost*b.ComplicationMultiplier - b.BaseCost
	b.Lines = append(b.Lines, Line{Code: LineComplications, Amount: b.ComplicationUplift})
}

func (t Table) addStage(b *Breakdown, extras Extras) {
	b.PackingCost = t.PackingCost(extras.PackingTier, b.PackingSize)
	b.CleaningCost = t.CleaningCost(extras.CleaningRooms)
	b.StorageCost = t.StorageCost(extras.StorageSize, extras.StorageWeeks)
	b.AssemblyCost = t.AssemblyCost(extras.Assembly)

	for _, line := range []Line{
		{Code: LinePacking, Amount: b.PackingCost},
		{Code: LineCleaning, Amount: b.CleaningCost},
		{Code: LineStorage, Amount: b.StorageCost},
		{Code: LineAssembly, Amount: b.AssemblyCost},
	} {
		if line.Amount > 0 {
			b.Lines = append(b.Lines, line)
		}
	}
}

// ComplicationMultiplier compounds the uplift once per percentage
// complication. Plants change resourcing instead and do not count here.
func (t Table) ComplicationMultiplier(complications []Complication) float64 {
	multiplier := 1.0
	for _, c := range NormalizeComplications(complications) {
		if isPercentComplication(c) {
			multiplier *= 1 + t.ComplicationUplift
		}
	}
	return multiplier
}

// PackingCost looks up the packing price for tier and size. Flat tiers ignore size.
func (t Table) PackingCost(tier PackingTier, size PackingSize) float64 {
	if tier == "" {
		return 0
	}
	if flat, ok := t.PackingFlat[tier]; ok {
		return flat
	}
	return t.Packing[tier][size]
}

// CleaningCost charges the per-room rate with rooms clamped to the allowed
// range. Zero rooms means cleaning was not selected.
func (t Table) CleaningCost(rooms int) float64 {
	if rooms == 0 {
		return 0
	}
	rooms = max(t.CleaningMinRooms, min(rooms, t.CleaningMaxRooms))
	return float64(rooms) * t.CleaningPerRoom
}

// StorageCost charges the discounted rate for the first weeks and the full
// weekly rate for the remainder.
func (t Table) StorageCost(size StorageSize, weeks int) float64 {
	if size == "" || weeks <= 0 {
		return 0
	}
	rate := t.StorageWeekly[size]
	discounted := min(weeks, t.StorageDiscountWeeks)
	full := max(0, weeks-t.StorageDiscountWeeks)
	return float64(discounted)*rate*t.StorageDiscountRate + float64(full)*rate
}

// AssemblyCost sums the per-item complexity rate times quantity.
func (t Table) AssemblyCost(items []AssemblyItem) float64 {
	total := 0.0
	for _, item := range items {
		complexity, ok := t.AssemblyCatalog[item.Type]
		if !ok {
			continue
		}
		total += t.AssemblyRates[complexity] * float64(item.Quantity)
	}
	return total
}
