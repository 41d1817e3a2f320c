package calculator

import (
	"slices"

	"github.com/Simplici0/movequote/internal/pricing"
)

// StepID identifies a step of the calculator.
type StepID string

const (
	StepService         StepID = "service"
	StepSize            StepID = "size"
	StepSlider          StepID = "slider"
	StepRecommendation  StepID = "recommendation"
	StepDateFlexibility StepID = "dateFlexibility"
	StepDate            StepID = "date"
	StepComplications   StepID = "complications"
	StepPropertyChain   StepID = "propertyChain"
	StepFromAddress     StepID = "fromAddress"
	StepToAddress       StepID = "toAddress"
	StepExtras          StepID = "extras"
	StepContact         StepID = "contact"
	StepQuote           StepID = "quote"
	StepCallback        StepID = "callback"
)

// stepOrder is the full ordered list of steps. Which of them a session sees
// is decided by skipRules.
var stepOrder = []StepID{
	StepService,
	StepSize,
	StepSlider,
	StepRecommendation,
	StepDateFlexibility,
	StepDate,
	StepComplications,
	StepPropertyChain,
	StepFromAddress,
	StepToAddress,
	StepExtras,
	StepContact,
	StepQuote,
	StepCallback,
}

// Steps returns the full ordered list of step identifiers.
func Steps() []StepID {
	out := make([]StepID, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// IsTerminal reports whether step ends a session.
func IsTerminal(step StepID) bool {
	return step == StepQuote || step == StepCallback
}

func stepIndex(step StepID) int {
	for i, id := range stepOrder {
		if id == step {
			return i
		}
	}
	return -1
}

// Derived holds the values computed from a state's answers.
type Derived struct {
	// Ready is false while the volume inputs are missing or invalid; the
	// numeric fields are then zero.
	Ready            bool                     `json:"ready"`
	EstimatedCubes   float64                  `json:"estimated_cubes"`
	Recommendation   pricing.Resources        `json:"recommendation"`
	PackingSize      pricing.PackingSize      `json:"packing_size,omitempty"`
	CallbackReasons  []pricing.CallbackReason `json:"callback_reasons,omitempty"`
	CallbackRequired bool                     `json:"callback_required"`
}

type skipRule func(s State, d Derived) bool

func sliderHidden(s State, _ Derived) bool {
	return s.ServiceType == ServiceOffice ||
		s.ServiceType == ServiceFurniture ||
		(s.ServiceType == ServiceHome && s.PropertySize == pricing.PropertyStudio)
}

func dateUnknown(s State, _ Derived) bool {
	return s.DateFlexibility == DateUnknown
}

// specialistCollapse sends furniture moves with a specialist item straight
// from the size step to the contact step.
func specialistCollapse(_ State, d Derived) bool {
	return slices.Contains(d.CallbackReasons, pricing.CallbackSpecialistItem)
}

func either(rules ...skipRule) skipRule {
	return func(s State, d Derived) bool {
		for _, rule := range rules {
			if rule(s, d) {
				return true
			}
		}
		return false
	}
}

// skipRules is the single predicate table consulted for forward and backward
// navigation and for the completeness check at quote time. Steps without an
// entry are always applicable.
var skipRules = map[StepID]skipRule{
	StepSlider:          sliderHidden,
	StepRecommendation:  specialistCollapse,
	StepDateFlexibility: specialistCollapse,
	StepDate:            either(specialistCollapse, dateUnknown),
	StepComplications:   specialistCollapse,
	StepPropertyChain:   specialistCollapse,
	StepFromAddress:     specialistCollapse,
	StepToAddress:       specialistCollapse,
	StepExtras:          specialistCollapse,
	StepQuote:           func(_ State, d Derived) bool { return d.CallbackRequired },
	StepCallback:        func(_ State, d Derived) bool { return !d.CallbackRequired },
}

// normalize drops answers the data model forbids for the current answers:
// no slider position where the slider is hidden and no date when the
// flexibility is unknown. A dropped answer un-completes its step. Answers
// hidden only by the specialist collapse are kept so they reappear if the
// specialist item is removed.
func normalize(s *State) {
	if sliderHidden(*s, Derived{}) && s.SliderPosition != 0 {
		s.SliderPosition = 0
		s.uncomplete(StepSlider)
	}
	if dateUnknown(*s, Derived{}) && s.SelectedDate != "" {
		s.SelectedDate = ""
		s.uncomplete(StepDate)
	}
}
