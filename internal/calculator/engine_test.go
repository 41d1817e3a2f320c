package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/movequote/internal/pricing"
)

func ptr[T any](v T) *T { return &v }

func newEngine() *Engine {
	return New(pricing.DefaultTable())
}

func advance(t *testing.T, e *Engine, s State, a Answer) State {
	t.Helper()
	next, err := e.Advance(s, a)
	require.NoError(t, err)
	return next
}

func testAddress(line1 string) *Address {
	return &Address{Line1: line1, City: "Leeds", Postcode: "ls1 4ap"}
}

func testContact() *Contact {
	return &Contact{
		FirstName:     "Sam",
		LastName:      "Hill",
		Phone:         "07700 900123",
		Email:         "Sam@Example.com",
		TermsAccepted: true,
	}
}

// walkHome drives a home move up to the step after the recommendation.
func walkHome(t *testing.T, e *Engine, size pricing.PropertySize, slider int) State {
	t.Helper()
	s := e.Start()
	s = advance(t, e, s, Answer{ServiceType: ptr(ServiceHome)})
	s = advance(t, e, s, Answer{PropertySize: ptr(size)})
	if slider > 0 {
		require.Equal(t, StepSlider, s.CurrentStep)
		s = advance(t, e, s, Answer{SliderPosition: ptr(slider)})
	}
	require.Equal(t, StepRecommendation, s.CurrentStep)
	return advance(t, e, s, Answer{AcceptRecommendation: ptr(true)})
}

// walkToContact continues from the date flexibility step up to contact.
func walkToContact(t *testing.T, e *Engine, s State, complications ...pricing.Complication) State {
	t.Helper()
	require.Equal(t, StepDateFlexibility, s.CurrentStep)
	s = advance(t, e, s, Answer{DateFlexibility: ptr(DateFixed)})
	s = advance(t, e, s, Answer{SelectedDate: ptr("2026-11-20")})
	if len(complications) == 0 {
		complications = []pricing.Complication{pricing.ComplicationNone}
	}
	s = advance(t, e, s, Answer{Complications: complications})
	s = advance(t, e, s, Answer{PropertyChain: ptr(false)})
	s = advance(t, e, s, Answer{Address: testAddress("1 High Street")})
	s = advance(t, e, s, Answer{Address: testAddress("2 Low Road")})
	s = advance(t, e, s, Answer{Extras: &pricing.Extras{}})
	require.Equal(t, StepContact, s.CurrentStep)
	return s
}

func TestAdvance_StudioSkipsSlider(t *testing.T) {
	e := newEngine()
	s := e.Start()
	s = advance(t, e, s, Answer{ServiceType: ptr(ServiceHome)})
	s = advance(t, e, s, Answer{PropertySize: ptr(pricing.PropertyStudio)})

	assert.Equal(t, StepRecommendation, s.CurrentStep)
	assert.Zero(t, s.SliderPosition)
	assert.NotContains(t, e.Path(s), StepSlider)
}

func TestAdvance_LargerHomeShowsSlider(t *testing.T) {
	e := newEngine()
	s := e.Start()
	s = advance(t, e, s, Answer{ServiceType: ptr(ServiceHome)})
	s = advance(t, e, s, Answer{PropertySize: ptr(pricing.Property2Bed)})

	assert.Equal(t, StepSlider, s.CurrentStep)
}

func TestAdvance_OfficeAndFurnitureSkipSlider(t *testing.T) {
	e := newEngine()

	office := advance(t, e, e.Start(), Answer{ServiceType: ptr(ServiceOffice)})
	office = advance(t, e, office, Answer{OfficeSize: ptr(pricing.OfficeSmall)})
	assert.Equal(t, StepRecommendation, office.CurrentStep)

	furniture := advance(t, e, e.Start(), Answer{ServiceType: ptr(ServiceFurniture)})
	furniture = advance(t, e, furniture, Answer{Furniture: &FurnitureDetails{ItemCount: 4}})
	assert.Equal(t, StepRecommendation, furniture.CurrentStep)
}

func TestRetreat_FromRecommendationForStudioReturnsToSize(t *testing.T) {
	e := newEngine()
	s := e.Start()
	s = advance(t, e, s, Answer{ServiceType: ptr(ServiceHome)})
	s = advance(t, e, s, Answer{PropertySize: ptr(pricing.PropertyStudio)})
	require.Equal(t, StepRecommendation, s.CurrentStep)

	back := e.Retreat(s)
	assert.Equal(t, StepSize, back.CurrentStep)
	assert.Equal(t, pricing.PropertyStudio, back.PropertySize)
}

func TestRetreat_OnFirstStepIsNoop(t *testing.T) {
	e := newEngine()
	s := e.Start()
	assert.Equal(t, s, e.Retreat(s))
}

func TestAdvance_UnknownFlexibilitySkipsDate(t *testing.T) {
	e := newEngine()
	s := walkHome(t, e, pricing.PropertyStudio, 0)
	require.Equal(t, StepDateFlexibility, s.CurrentStep)

	s = advance(t, e, s, Answer{DateFlexibility: ptr(DateUnknown)})
	assert.Equal(t, StepComplications, s.CurrentStep)

	back := e.Retreat(s)
	assert.Equal(t, StepDateFlexibility, back.CurrentStep)
}

func TestAdvance_UnknownFlexibilityClearsSelectedDate(t *testing.T) {
	e := newEngine()
	s := walkHome(t, e, pricing.PropertyStudio, 0)
	s = advance(t, e, s, Answer{DateFlexibility: ptr(DateFlexible)})
	s = advance(t, e, s, Answer{SelectedDate: ptr("2026-12-01")})
	require.Equal(t, StepComplications, s.CurrentStep)

	s = e.Retreat(e.Retreat(s))
	require.Equal(t, StepDateFlexibility, s.CurrentStep)
	s = advance(t, e, s, Answer{DateFlexibility: ptr(DateUnknown)})

	assert.Empty(t, s.SelectedDate)
	assert.False(t, s.HasCompleted(StepDate))
	assert.Equal(t, StepComplications, s.CurrentStep)
}

func TestAdvance_SpecialistItemCollapsesToContact(t *testing.T) {
	e := newEngine()
	s := advance(t, e, e.Start(), Answer{ServiceType: ptr(ServiceFurniture)})
	s = advance(t, e, s, Answer{Furniture: &FurnitureDetails{
		ItemCount:       1,
		SpecialistItems: []pricing.SpecialistItem{pricing.SpecialistPiano},
	}})

	assert.Equal(t, StepContact, s.CurrentStep)
	assert.Equal(t, []StepID{StepService, StepSize, StepContact, StepCallback}, e.Path(s))

	s = advance(t, e, s, Answer{Contact: testContact()})
	assert.Equal(t, StepCallback, s.CurrentStep)

	back := e.Retreat(s)
	assert.Equal(t, StepContact, back.CurrentStep)
	back = e.Retreat(back)
	assert.Equal(t, StepSize, back.CurrentStep)
}

func TestAdvance_ComplicationsNoneClearsTags(t *testing.T) {
	e := newEngine()
	s := walkHome(t, e, pricing.PropertyStudio, 0)
	s = advance(t, e, s, Answer{DateFlexibility: ptr(DateUnknown)})
	require.Equal(t, StepComplications, s.CurrentStep)

	s = advance(t, e, s, Answer{Complications: []pricing.Complication{
		pricing.ComplicationPlants, pricing.ComplicationStairs,
	}})
	assert.Equal(t, []pricing.Complication{pricing.ComplicationStairs, pricing.ComplicationPlants}, s.Complications)

	s = e.Retreat(s)
	require.Equal(t, StepComplications, s.CurrentStep)
	s = advance(t, e, s, Answer{Complications: []pricing.Complication{
		pricing.ComplicationStairs, pricing.ComplicationNone,
	}})
	assert.Empty(t, s.Complications)
	assert.True(t, s.HasCompleted(StepComplications))
}

func TestAdvance_ValidationErrorLeavesStateUnchanged(t *testing.T) {
	e := newEngine()
	s := advance(t, e, e.Start(), Answer{ServiceType: ptr(ServiceHome)})

	next, err := e.Advance(s, Answer{PropertySize: ptr(pricing.PropertySize("castle"))})

	var verr *StepValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepSize, verr.Step)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "property_size", verr.Fields[0].Field)
	assert.Equal(t, s, next)
}

func TestAdvance_MissingAnswerIsReported(t *testing.T) {
	e := newEngine()

	_, err := e.Advance(e.Start(), Answer{})

	var verr *StepValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "service_type", verr.Fields[0].Field)
}

func TestAdvance_DoesNotMutateInput(t *testing.T) {
	e := newEngine()
	s := walkHome(t, e, pricing.Property3Bed, 3)
	s = advance(t, e, s, Answer{DateFlexibility: ptr(DateFixed)})
	before := s.clone()

	_, err := e.Advance(s, Answer{SelectedDate: ptr("2026-10-30")})
	require.NoError(t, err)
	assert.Equal(t, before, s)
}

func TestAdvance_RejectsAnswerForAnotherStep(t *testing.T) {
	e := newEngine()

	_, err := e.Advance(e.Start(), Answer{Step: StepContact, Contact: testContact()})

	var ierr *InapplicableStepError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, StepContact, ierr.Step)
	assert.Equal(t, StepService, ierr.Current)
}

func TestAdvance_RejectsSkippedCurrentStep(t *testing.T) {
	e := newEngine()
	s := advance(t, e, e.Start(), Answer{ServiceType: ptr(ServiceOffice)})
	s.CurrentStep = StepSlider

	_, err := e.Advance(s, Answer{SliderPosition: ptr(3)})

	var ierr *InapplicableStepError
	require.ErrorAs(t, err, &ierr)
}

func TestAdvance_ManualOverrideBounds(t *testing.T) {
	e := newEngine()
	s := e.Start()
	s = advance(t, e, s, Answer{ServiceType: ptr(ServiceHome)})
	s = advance(t, e, s, Answer{PropertySize: ptr(pricing.Property1Bed)})
	s = advance(t, e, s, Answer{SliderPosition: ptr(2)})
	require.Equal(t, StepRecommendation, s.CurrentStep)

	_, err := e.Advance(s, Answer{ManualOverride: &pricing.Resources{Vans: 3, Movers: 2}})
	var berr *ManualOverrideBoundsError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, pricing.OverrideBelowMinimum, berr.Kind)
	assert.Equal(t, 3, berr.Bound)
	assert.Equal(t, "need at least 3 movers for 3 vans", berr.Error())

	_, err = e.Advance(s, Answer{ManualOverride: &pricing.Resources{Vans: 1, Movers: 5}})
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, pricing.OverrideAboveMaximum, berr.Kind)
	assert.Equal(t, "Maximum 3 movers for 1 vans", berr.Error())

	next, err := e.Advance(s, Answer{ManualOverride: &pricing.Resources{Vans: 2, Movers: 4}})
	require.NoError(t, err)
	assert.Equal(t, &pricing.Resources{Vans: 2, Movers: 4}, next.ManualOverride)
	assert.Equal(t, StepDateFlexibility, next.CurrentStep)
}

func TestAdvance_RejectingRecommendationNeedsOverride(t *testing.T) {
	e := newEngine()
	s := advance(t, e, e.Start(), Answer{ServiceType: ptr(ServiceOffice)})
	s = advance(t, e, s, Answer{OfficeSize: ptr(pricing.OfficeSmall)})

	_, err := e.Advance(s, Answer{AcceptRecommendation: ptr(false)})

	var verr *StepValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "manual_override", verr.Fields[0].Field)
}

func TestAdvance_VolumeChangeClearsOverride(t *testing.T) {
	e := newEngine()
	s := advance(t, e, e.Start(), Answer{ServiceType: ptr(ServiceOffice)})
	s = advance(t, e, s, Answer{OfficeSize: ptr(pricing.OfficeSmall)})
	s = advance(t, e, s, Answer{ManualOverride: &pricing.Resources{Vans: 1, Movers: 3}})
	require.NotNil(t, s.ManualOverride)

	s = e.Retreat(e.Retreat(s))
	require.Equal(t, StepSize, s.CurrentStep)

	same := advance(t, e, s, Answer{OfficeSize: ptr(pricing.OfficeSmall)})
	assert.NotNil(t, same.ManualOverride)

	changed := advance(t, e, s, Answer{OfficeSize: ptr(pricing.OfficeMedium)})
	assert.Nil(t, changed.ManualOverride)
	assert.False(t, changed.HasCompleted(StepRecommendation))
	assert.Equal(t, StepRecommendation, changed.CurrentStep)
}

func TestAdvance_RevisitedStepKeepsAnswers(t *testing.T) {
	e := newEngine()
	s := walkHome(t, e, pricing.Property2Bed, 4)
	s = e.Retreat(e.Retreat(s))
	require.Equal(t, StepSlider, s.CurrentStep)

	s = advance(t, e, s, Answer{})
	assert.Equal(t, 4, s.SliderPosition)
	assert.Equal(t, StepRecommendation, s.CurrentStep)

	s = advance(t, e, s, Answer{})
	assert.Equal(t, StepDateFlexibility, s.CurrentStep)
}

func TestAdvance_ChangingServiceResetsSize(t *testing.T) {
	e := newEngine()
	s := walkHome(t, e, pricing.Property2Bed, 4)
	for s.CurrentStep != StepService {
		s = e.Retreat(s)
	}

	s = advance(t, e, s, Answer{ServiceType: ptr(ServiceOffice)})

	assert.Equal(t, StepSize, s.CurrentStep)
	assert.Empty(t, s.PropertySize)
	assert.Zero(t, s.SliderPosition)
	assert.False(t, s.HasCompleted(StepSize))
}

func TestAdvance_AddressIsNormalized(t *testing.T) {
	e := newEngine()
	s := walkHome(t, e, pricing.PropertyStudio, 0)
	s = advance(t, e, s, Answer{DateFlexibility: ptr(DateUnknown)})
	s = advance(t, e, s, Answer{Complications: []pricing.Complication{pricing.ComplicationNone}})
	s = advance(t, e, s, Answer{PropertyChain: ptr(true)})
	require.Equal(t, StepFromAddress, s.CurrentStep)

	_, err := e.Advance(s, Answer{Address: &Address{Line1: "  ", City: "Leeds"}})
	var verr *StepValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"address.line1", "address.postcode"}, fields)

	s = advance(t, e, s, Answer{Address: &Address{Line1: " 1 High St ", City: "Leeds", Postcode: " ls1   4ap "}})
	assert.Equal(t, &Address{Line1: "1 High St", City: "Leeds", Postcode: "LS1 4AP"}, s.FromAddress)
	assert.Equal(t, StepToAddress, s.CurrentStep)
}

func TestAdvance_ExtrasValidation(t *testing.T) {
	e := newEngine()
	s := walkHome(t, e, pricing.PropertyStudio, 0)
	s = walkToContact(t, e, s)
	s = e.Retreat(s)
	require.Equal(t, StepExtras, s.CurrentStep)

	_, err := e.Advance(s, Answer{Extras: &pricing.Extras{
		PackingTier:   "gold",
		CleaningRooms: 7,
		StorageSize:   pricing.StorageSmall,
		Assembly:      []pricing.AssemblyItem{{Type: "sofa", Quantity: 10}},
	}})

	var verr *StepValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{
		"extras.packing_tier",
		"extras.cleaning_rooms",
		"extras.storage_weeks",
		"extras.assembly[0].type",
		"extras.assembly[0].quantity",
	}, fields)
}

func TestAdvance_ContactValidation(t *testing.T) {
	e := newEngine()
	s := walkToContact(t, e, walkHome(t, e, pricing.PropertyStudio, 0))

	bad := testContact()
	bad.Email = "not-an-email"
	bad.TermsAccepted = false
	_, err := e.Advance(s, Answer{Contact: bad})

	var verr *StepValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"contact.email", "contact.terms_accepted"}, fields)

	s = advance(t, e, s, Answer{Contact: testContact()})
	assert.Equal(t, "sam@example.com", s.Contact.Email)
	assert.Equal(t, StepQuote, s.CurrentStep)
}

func TestAdvance_TerminalStepCannotAdvance(t *testing.T) {
	e := newEngine()
	s := walkToContact(t, e, walkHome(t, e, pricing.PropertyStudio, 0))
	s = advance(t, e, s, Answer{Contact: testContact()})

	_, err := e.Advance(s, Answer{})

	var ierr *InapplicableStepError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, StepQuote, ierr.Step)
}

func TestDerive_RecomputesFromAnswers(t *testing.T) {
	e := newEngine()
	s := State{ServiceType: ServiceHome, PropertySize: pricing.Property3Bed, SliderPosition: 5}

	d := e.Derive(s)
	assert.True(t, d.Ready)
	assert.InDelta(t, 1320, d.EstimatedCubes, 1e-9)
	assert.Equal(t, pricing.Resources{Vans: 2, Movers: 4}, d.Recommendation)
	assert.Equal(t, pricing.PackingSizeLarge, d.PackingSize)
	assert.False(t, d.CallbackRequired)

	d = e.Derive(State{ServiceType: ServiceHome})
	assert.False(t, d.Ready)
}

func TestValidateManualOverride(t *testing.T) {
	rec := pricing.Resources{Vans: 1, Movers: 2}

	assert.NoError(t, ValidateManualOverride(pricing.Resources{Vans: 2, Movers: 4}, rec))

	err := ValidateManualOverride(pricing.Resources{Vans: 0, Movers: 2}, rec)
	var berr *ManualOverrideBoundsError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, pricing.OverrideNoVans, berr.Kind)
	assert.Equal(t, rec, berr.Recommended)
}

func TestAdvance_FurnitureItemCountBounds(t *testing.T) {
	e := newEngine()
	s := advance(t, e, e.Start(), Answer{ServiceType: ptr(ServiceFurniture)})

	_, err := e.Advance(s, Answer{Furniture: &FurnitureDetails{ItemCount: maxFurnitureItems + 1}})
	var verr *StepValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []FieldError{{Field: "furniture.item_count", Message: "must be at most 200"}}, verr.Fields)

	s = advance(t, e, s, Answer{Furniture: &FurnitureDetails{ItemCount: maxFurnitureItems}})
	assert.Equal(t, StepRecommendation, s.CurrentStep)
}
