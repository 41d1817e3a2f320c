package calculator

import (
	"errors"
	"fmt"

	"github.com/Simplici0/movequote/internal/pricing"
)

var ErrNegativeMileage = errors.New("mileage must not be negative")

// QuoteInputs are the figures supplied at quote time. The mileage is part of
// the state; see Engine.WithMileage.
type QuoteInputs struct {
	Rates pricing.Rates
}

// Quote is the outcome of a finished questionnaire. Price is nil when the
// case is escalated to a callback.
type Quote struct {
	Step             StepID                   `json:"step"`
	CallbackRequired bool                     `json:"callback_required"`
	CallbackReasons  []pricing.CallbackReason `json:"callback_reasons,omitempty"`
	EstimatedCubes   float64                  `json:"estimated_cubes"`
	PackingSize      pricing.PackingSize      `json:"packing_size"`
	Recommendation   pricing.Resources        `json:"recommendation"`
	// Resources is the manual override when one was accepted, otherwise the
	// recommendation. Complication adjustments are in Price.Breakdown.
	Resources pricing.Resources `json:"resources"`
	Price     *pricing.Result   `json:"price,omitempty"`
}

// ComputeQuote assembles the quote for a state sitting on a terminal step.
// Every applicable step before it must have been completed, and a priced
// quote needs the mileage. The result is a pure function of s and in.
func (e *Engine) ComputeQuote(s State, in QuoteInputs) (Quote, error) {
	current := currentStep(s)
	if !IsTerminal(current) {
		return Quote{}, &InapplicableStepError{Step: current, Current: current, Reason: "quote requested before the final step"}
	}

	d := e.Derive(s)
	if !applicable(s, d, current) {
		return Quote{}, &InapplicableStepError{Step: current, Current: current, Reason: "skipped for these answers"}
	}

	var fe fieldErrors
	for _, step := range stepOrder {
		if IsTerminal(step) || !applicable(s, d, step) {
			continue
		}
		if !s.HasCompleted(step) {
			fe.add(string(step), "step not completed")
		}
	}
	if !d.CallbackRequired && s.Mileage == nil {
		fe.add("mileage", "distance between the addresses has not been resolved")
	}
	if err := fe.err(current); err != nil {
		return Quote{}, err
	}

	q := Quote{
		Step:             current,
		CallbackRequired: d.CallbackRequired,
		CallbackReasons:  d.CallbackReasons,
		EstimatedCubes:   d.EstimatedCubes,
		PackingSize:      d.PackingSize,
		Recommendation:   d.Recommendation,
		Resources:        d.Recommendation,
	}
	if s.ManualOverride != nil {
		q.Resources = *s.ManualOverride
	}
	if q.CallbackRequired {
		return q, nil
	}
	if *s.Mileage < 0 {
		return Quote{}, fmt.Errorf("compute quote: %w", ErrNegativeMileage)
	}

	price := e.table.Calculate(pricing.Input{
		Resources:     q.Resources,
		Cubes:         d.EstimatedCubes,
		Mileage:       *s.Mileage,
		Complications: s.Complications,
		Extras:        s.Extras,
	}, in.Rates)
	q.Price = &price
	return q, nil
}
