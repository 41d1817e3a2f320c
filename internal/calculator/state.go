package calculator

import (
	"slices"

	"github.com/Simplici0/movequote/internal/pricing"
)

// ServiceType selects which flow of steps a session follows.
type ServiceType string

const (
	ServiceHome      ServiceType = "home"
	ServiceOffice    ServiceType = "office"
	ServiceFurniture ServiceType = "furniture"
)

func (s ServiceType) valid() bool {
	switch s {
	case ServiceHome, ServiceOffice, ServiceFurniture:
		return true
	}
	return false
}

// DateFlexibility records how firm the move date is.
type DateFlexibility string

const (
	DateFixed    DateFlexibility = "fixed"
	DateFlexible DateFlexibility = "flexible"
	DateUnknown  DateFlexibility = "unknown"
)

func (d DateFlexibility) valid() bool {
	switch d {
	case DateFixed, DateFlexible, DateUnknown:
		return true
	}
	return false
}

// maxFurnitureItems is the largest item count a furniture-only job accepts.
// It must match the lte tag on FurnitureDetails.ItemCount.
const maxFurnitureItems = 200

// FurnitureDetails describes a furniture-only move.
type FurnitureDetails struct {
	ItemCount       int                      `json:"item_count" validate:"gte=0,lte=200"`
	NeedsTwoPerson  bool                     `json:"needs_two_person"`
	HasHeavyItems   bool                     `json:"has_heavy_items"`
	SpecialistItems []pricing.SpecialistItem `json:"specialist_items,omitempty"`
}

// Address is a structured postal address.
type Address struct {
	Line1    string `json:"line1" validate:"required,max=200"`
	Line2    string `json:"line2,omitempty" validate:"max=200"`
	City     string `json:"city" validate:"required,max=100"`
	Postcode string `json:"postcode" validate:"required,max=10"`
}

// Contact holds the customer's details.
type Contact struct {
	FirstName        string `json:"first_name" validate:"required,max=100"`
	LastName         string `json:"last_name" validate:"required,max=100"`
	Phone            string `json:"phone" validate:"required,min=7,max=20"`
	Email            string `json:"email" validate:"required,email"`
	MarketingConsent bool   `json:"marketing_consent"`
	TermsAccepted    bool   `json:"terms_accepted" validate:"required"`
}

// State is the answer set of one quote session. Derived values (cubes,
// recommendation, callback flag, price) are never stored here; see
// Engine.Derive and Engine.ComputeQuote.
type State struct {
	CurrentStep StepID   `json:"current_step"`
	Completed   []StepID `json:"completed,omitempty"`

	ServiceType    ServiceType          `json:"service_type,omitempty"`
	PropertySize   pricing.PropertySize `json:"property_size,omitempty"`
	OfficeSize     pricing.OfficeSize   `json:"office_size,omitempty"`
	Furniture      *FurnitureDetails    `json:"furniture,omitempty"`
	SliderPosition int                  `json:"slider_position,omitempty"`
	ManualOverride *pricing.Resources   `json:"manual_override,omitempty"`

	DateFlexibility DateFlexibility `json:"date_flexibility,omitempty"`
	SelectedDate    string          `json:"selected_date,omitempty"`

	Complications []pricing.Complication `json:"complications,omitempty"`
	PropertyChain *bool                  `json:"property_chain,omitempty"`

	FromAddress *Address       `json:"from_address,omitempty"`
	ToAddress   *Address       `json:"to_address,omitempty"`
	// Mileage is the driving distance between the two addresses, resolved
	// once per address pair. Changing either address clears it.
	Mileage *float64 `json:"mileage,omitempty"`
	Extras      pricing.Extras `json:"extras"`
	Contact     *Contact       `json:"contact,omitempty"`
}

// HasCompleted reports whether step has been completed at least once since
// its inputs last changed.
func (s State) HasCompleted(step StepID) bool {
	return slices.Contains(s.Completed, step)
}

func (s *State) markCompleted(step StepID) {
	if !s.HasCompleted(step) {
		s.Completed = append(s.Completed, step)
	}
}

func (s *State) uncomplete(steps ...StepID) {
	s.Completed = slices.DeleteFunc(s.Completed, func(id StepID) bool {
		return slices.Contains(steps, id)
	})
}

// specialistItems returns the specialist items of the furniture flow, or nil.
func (s State) specialistItems() []pricing.SpecialistItem {
	if s.ServiceType != ServiceFurniture || s.Furniture == nil {
		return nil
	}
	return s.Furniture.SpecialistItems
}

func (s State) volumeInput() pricing.VolumeInput {
	in := pricing.VolumeInput{Slider: s.SliderPosition}
	switch s.ServiceType {
	case ServiceHome:
		in.Property = s.PropertySize
	case ServiceOffice:
		in.Office = s.OfficeSize
	case ServiceFurniture:
		if s.Furniture != nil {
			in.Furniture = &pricing.FurnitureInput{
				ItemCount:      s.Furniture.ItemCount,
				NeedsTwoPerson: s.Furniture.NeedsTwoPerson,
				HasHeavyItems:  s.Furniture.HasHeavyItems,
			}
		}
	}
	return in
}

// clone returns a deep copy so that Advance never mutates its input.
func (s State) clone() State {
	c := s
	c.Completed = slices.Clone(s.Completed)
	if s.Furniture != nil {
		f := *s.Furniture
		f.SpecialistItems = slices.Clone(s.Furniture.SpecialistItems)
		c.Furniture = &f
	}
	if s.ManualOverride != nil {
		o := *s.ManualOverride
		c.ManualOverride = &o
	}
	c.Complications = slices.Clone(s.Complications)
	if s.PropertyChain != nil {
		v := *s.PropertyChain
		c.PropertyChain = &v
	}
	if s.FromAddress != nil {
		a := *s.FromAddress
		c.FromAddress = &a
	}
	if s.ToAddress != nil {
		a := *s.ToAddress
		c.ToAddress = &a
	}
	if s.Mileage != nil {
		m := *s.Mileage
		c.Mileage = &m
	}
	c.Extras.Assembly = slices.Clone(s.Extras.Assembly)
	if s.Contact != nil {
		ct := *s.Contact
		c.Contact = &ct
	}
	return c
}
