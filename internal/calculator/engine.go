// Package calculator sequences the quote questionnaire and assembles quotes
// from the answers collected along the way.
package calculator

import (
	"fmt"
	"math"

	"github.com/Simplici0/movequote/internal/pricing"
)

type stepHandler struct {
	apply    func(*State, Answer)
	validate func(*Engine, State, Answer) error
}

var handlers = map[StepID]stepHandler{
	StepService:         {applyService, validateService},
	StepSize:            {applySize, validateSize},
	StepSlider:          {applySlider, validateSlider},
	StepRecommendation:  {applyRecommendation, validateRecommendation},
	StepDateFlexibility: {applyDateFlexibility, validateDateFlexibility},
	StepDate:            {applyDate, validateDate},
	StepComplications:   {applyComplications, validateComplications},
	StepPropertyChain:   {applyPropertyChain, validatePropertyChain},
	StepFromAddress:     {applyFromAddress, validateFromAddress},
	StepToAddress:       {applyToAddress, validateToAddress},
	StepExtras:          {applyExtras, validateExtras},
	StepContact:         {applyContact, validateContact},
}

// Engine runs the step sequencer against a pricing table. It holds no
// per-session data and is safe for concurrent use.
type Engine struct {
	table pricing.Table
}

func New(table pricing.Table) *Engine {
	return &Engine{table: table}
}

func (e *Engine) Table() pricing.Table {
	return e.table
}

// Start returns the empty state of a new session.
func (e *Engine) Start() State {
	return State{CurrentStep: StepService}
}

// Derive recomputes every value that depends on the answers in s.
func (e *Engine) Derive(s State) Derived {
	var d Derived
	cubes, rec, err := e.table.RecommendFor(s.volumeInput())
	if err == nil {
		d.Ready = true
		d.EstimatedCubes = cubes
		d.Recommendation = rec
		d.PackingSize = e.table.PackingSize(cubes)
	}

	unresolved := false
	if s.ManualOverride != nil {
		unresolved = pricing.ValidateOverride(*s.ManualOverride, d.Recommendation) != nil
	}
	d.CallbackReasons = e.table.CallbackReasons(pricing.CallbackInput{
		Cubes:              d.EstimatedCubes,
		SpecialistItems:    s.specialistItems(),
		OverrideUnresolved: unresolved,
	})
	d.CallbackRequired = len(d.CallbackReasons) > 0
	return d
}

// Applicable reports whether step is shown for the answers in s.
func (e *Engine) Applicable(s State, step StepID) bool {
	return applicable(s, e.Derive(s), step)
}

func applicable(s State, d Derived, step StepID) bool {
	if stepIndex(step) < 0 {
		return false
	}
	rule, ok := skipRules[step]
	return !ok || !rule(s, d)
}

// Path lists the steps a session with answers s walks through, in order.
func (e *Engine) Path(s State) []StepID {
	d := e.Derive(s)
	path := make([]StepID, 0, len(stepOrder))
	for _, step := range stepOrder {
		if applicable(s, d, step) {
			path = append(path, step)
		}
	}
	return path
}

func currentStep(s State) StepID {
	if s.CurrentStep == "" {
		return StepService
	}
	return s.CurrentStep
}

// Advance completes the current step with answer a and moves to the next
// applicable step. On error the returned state is s unchanged; s itself is
// never modified.
func (e *Engine) Advance(s State, a Answer) (State, error) {
	current := currentStep(s)
	if a.Step != "" && a.Step != current {
		return s, &InapplicableStepError{Step: a.Step, Current: current, Reason: "not the current step"}
	}
	if IsTerminal(current) {
		return s, &InapplicableStepError{Step: current, Current: current, Reason: "terminal step"}
	}
	h, ok := handlers[current]
	if !ok {
		return s, &InapplicableStepError{Step: current, Current: current, Reason: "unknown step"}
	}
	if !e.Applicable(s, current) {
		return s, &InapplicableStepError{Step: current, Current: current, Reason: "skipped for these answers"}
	}

	next := s.clone()
	next.CurrentStep = current
	h.apply(&next, a)
	normalize(&next)
	if err := h.validate(e, next, a); err != nil {
		return s, err
	}

	next.markCompleted(current)
	next.CurrentStep = e.nextStep(next, current)
	return next, nil
}

func (e *Engine) nextStep(s State, from StepID) StepID {
	d := e.Derive(s)
	for i := stepIndex(from) + 1; i < len(stepOrder); i++ {
		if applicable(s, d, stepOrder[i]) {
			return stepOrder[i]
		}
	}
	return from
}

// Retreat moves to the closest preceding applicable step. Terminal steps are
// never a destination; on the first step the state is returned unchanged.
func (e *Engine) Retreat(s State) State {
	current := currentStep(s)
	d := e.Derive(s)
	for i := stepIndex(current) - 1; i >= 0; i-- {
		step := stepOrder[i]
		if IsTerminal(step) || !applicable(s, d, step) {
			continue
		}
		prev := s.clone()
		prev.CurrentStep = step
		return prev
	}
	return s
}

// ValidateManualOverride checks a van/mover allocation against the
// resourcing bounds. A violation is returned as *ManualOverrideBoundsError.
func ValidateManualOverride(candidate, recommendation pricing.Resources) error {
	return pricing.ValidateOverride(candidate, recommendation)
}

// NeedsMileage reports whether both addresses are known but the distance
// between them has not been resolved yet.
func (e *Engine) NeedsMileage(s State) bool {
	return s.FromAddress != nil && s.ToAddress != nil && s.Mileage == nil
}

// WithMileage returns a copy of s carrying the driving distance between its
// addresses. s itself is never modified.
func (e *Engine) WithMileage(s State, miles float64) (State, error) {
	if miles < 0 || math.IsNaN(miles) {
		return s, fmt.Errorf("set mileage: %w", ErrNegativeMileage)
	}
	next := s.clone()
	next.Mileage = &miles
	return next, nil
}
