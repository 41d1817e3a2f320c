package pricing

// CallbackReason explains why a case was escalated to a human.
type CallbackReason string

const (
	CallbackHighVolume         CallbackReason = "highVolume"
	CallbackSpecialistItem     CallbackReason = "specialistItem"
	CallbackUnresolvedOverride CallbackReason = "unresolvedOverride"
)

// CallbackInput carries the facts the escalation decision depends on.
type CallbackInput struct {
	Cubes           float64
	SpecialistItems []SpecialistItem
	// OverrideUnresolved is set when a manual override is present but does
	// not pass ValidateOverride.
	OverrideUnresolved bool
}

// CallbackReasons returns every escalation reason that applies, in a fixed
// order. An empty result means the case can be auto-quoted.
func (t Table) CallbackReasons(in CallbackInput) []CallbackReason {
	var reasons []CallbackReason
	if in.Cubes > t.CallbackCubes {
		reasons = append(reasons, CallbackHighVolume)
	}
	for _, item := range in.SpecialistItems {
		if t.IsSpecialist(item) {
			reasons = append(reasons, CallbackSpecialistItem)
			break
		}
	}
	if in.OverrideUnresolved {
		reasons = append(reasons, CallbackUnresolvedOverride)
	}
	return reasons
}

// NeedsCallback reports whether any escalation reason applies.
func (t Table) NeedsCallback(in CallbackInput) bool {
	return len(t.CallbackReasons(in)) > 0
}
