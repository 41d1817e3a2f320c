package calculator

import (
	"slices"
	"strings"

	"github.com/Simplici0/movequote/internal/pricing"
)

// Answer is what the presentation layer submits for one step. Only the
// fields belonging to Step are read; a nil field keeps the value already in
// the state, so re-submitting a revisited step without changes is a no-op.
type Answer struct {
	Step StepID `json:"step,omitempty"`

	ServiceType    *ServiceType          `json:"service_type,omitempty"`
	PropertySize   *pricing.PropertySize `json:"property_size,omitempty"`
	OfficeSize     *pricing.OfficeSize   `json:"office_size,omitempty"`
	Furniture      *FurnitureDetails     `json:"furniture,omitempty"`
	SliderPosition *int                  `json:"slider_position,omitempty"`

	AcceptRecommendation *bool              `json:"accept_recommendation,omitempty"`
	ManualOverride       *pricing.Resources `json:"manual_override,omitempty"`

	DateFlexibility *DateFlexibility `json:"date_flexibility,omitempty"`
	SelectedDate    *string          `json:"selected_date,omitempty"`

	Complications []pricing.Complication `json:"complications,omitempty"`
	PropertyChain *bool                  `json:"property_chain,omitempty"`

	// Address is used by both the from-address and to-address steps.
	Address *Address        `json:"address,omitempty"`
	Extras  *pricing.Extras `json:"extras,omitempty"`
	Contact *Contact        `json:"contact,omitempty"`
}

// volumeChanged invalidates everything that depends on the volume inputs.
func volumeChanged(s *State) {
	s.ManualOverride = nil
	s.uncomplete(StepRecommendation)
}

func applyService(s *State, a Answer) {
	if a.ServiceType == nil || *a.ServiceType == s.ServiceType {
		return
	}
	s.ServiceType = *a.ServiceType
	s.PropertySize = ""
	s.OfficeSize = ""
	s.Furniture = nil
	s.SliderPosition = 0
	s.uncomplete(StepSize, StepSlider)
	volumeChanged(s)
}

func applySize(s *State, a Answer) {
	switch s.ServiceType {
	case ServiceHome:
		if a.PropertySize != nil && *a.PropertySize != s.PropertySize {
			s.PropertySize = *a.PropertySize
			volumeChanged(s)
		}
	case ServiceOffice:
		if a.OfficeSize != nil && *a.OfficeSize != s.OfficeSize {
			s.OfficeSize = *a.OfficeSize
			volumeChanged(s)
		}
	case ServiceFurniture:
		if a.Furniture != nil {
			f := *a.Furniture
			f.SpecialistItems = normalizeSpecialists(a.Furniture.SpecialistItems)
			if s.Furniture == nil || !sameFurniture(*s.Furniture, f) {
				s.Furniture = &f
				volumeChanged(s)
			}
		}
	}
}

func sameFurniture(a, b FurnitureDetails) bool {
	return a.ItemCount == b.ItemCount &&
		a.NeedsTwoPerson == b.NeedsTwoPerson &&
		a.HasHeavyItems == b.HasHeavyItems &&
		slices.Equal(a.SpecialistItems, b.SpecialistItems)
}

func normalizeSpecialists(items []pricing.SpecialistItem) []pricing.SpecialistItem {
	if len(items) == 0 {
		return nil
	}
	out := slices.Clone(items)
	slices.Sort(out)
	return slices.Compact(out)
}

func applySlider(s *State, a Answer) {
	if a.SliderPosition != nil && *a.SliderPosition != s.SliderPosition {
		s.SliderPosition = *a.SliderPosition
		volumeChanged(s)
	}
}

func applyRecommendation(s *State, a Answer) {
	switch {
	case a.ManualOverride != nil:
		o := *a.ManualOverride
		s.ManualOverride = &o
	case a.AcceptRecommendation != nil && *a.AcceptRecommendation:
		s.ManualOverride = nil
	}
}

func applyDateFlexibility(s *State, a Answer) {
	if a.DateFlexibility != nil {
		s.DateFlexibility = *a.DateFlexibility
	}
}

func applyDate(s *State, a Answer) {
	if a.SelectedDate != nil {
		s.SelectedDate = strings.TrimSpace(*a.SelectedDate)
	}
}

func applyComplications(s *State, a Answer) {
	if len(a.Complications) > 0 {
		s.Complications = pricing.NormalizeComplications(a.Complications)
	}
}

func applyPropertyChain(s *State, a Answer) {
	if a.PropertyChain != nil {
		v := *a.PropertyChain
		s.PropertyChain = &v
	}
}

func normalizeAddress(a Address) Address {
	return Address{
		Line1:    strings.TrimSpace(a.Line1),
		Line2:    strings.TrimSpace(a.Line2),
		City:     strings.TrimSpace(a.City),
		Postcode: strings.ToUpper(strings.Join(strings.Fields(a.Postcode), " ")),
	}
}

func setAddress(s *State, dst **Address, a Answer) {
	if a.Address == nil {
		return
	}
	addr := normalizeAddress(*a.Address)
	if *dst == nil || **dst != addr {
		s.Mileage = nil
	}
	*dst = &addr
}

func applyFromAddress(s *State, a Answer) {
	setAddress(s, &s.FromAddress, a)
}

func applyToAddress(s *State, a Answer) {
	setAddress(s, &s.ToAddress, a)
}

func applyExtras(s *State, a Answer) {
	if a.Extras != nil {
		e := *a.Extras
		e.Assembly = slices.Clone(a.Extras.Assembly)
		s.Extras = e
	}
}

func applyContact(s *State, a Answer) {
	if a.Contact != nil {
		c := Contact{
			FirstName:        strings.TrimSpace(a.Contact.FirstName),
			LastName:         strings.TrimSpace(a.Contact.LastName),
			Phone:            strings.TrimSpace(a.Contact.Phone),
			Email:            strings.ToLower(strings.TrimSpace(a.Contact.Email)),
			MarketingConsent: a.Contact.MarketingConsent,
			TermsAccepted:    a.Contact.TermsAccepted,
		}
		s.Contact = &c
	}
}
