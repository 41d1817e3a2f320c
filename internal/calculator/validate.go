package calculator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Simplici0/movequote/internal/pricing"
)

const (
	maxAssemblyQuantity = 9
	dateLayout          = "2006-01-02"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// structErrors runs struct validation and flattens the result under prefix.
func structErrors(fe *fieldErrors, prefix string, value any) {
	err := validate.Struct(value)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.add(prefix, "%v", err)
		return
	}
	for _, v := range verrs {
		fe.add(prefix+"."+v.Field(), "%s", describe(v))
	}
}

func describe(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		if v.Kind() == reflect.Bool {
			return "must be accepted"
		}
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", v.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", v.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", v.Param())
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	default:
		return fmt.Sprintf("failed %s validation", v.Tag())
	}
}

func validateService(_ *Engine, s State, _ Answer) error {
	var fe fieldErrors
	if !s.ServiceType.valid() {
		fe.add("service_type", "must be one of home, office, furniture")
	}
	return fe.err(StepService)
}

func validateSize(e *Engine, s State, _ Answer) error {
	var fe fieldErrors
	switch s.ServiceType {
	case ServiceHome:
		if !e.table.ValidPropertySize(s.PropertySize) {
			fe.add("property_size", "is required")
		}
	case ServiceOffice:
		if !e.table.ValidOfficeSize(s.OfficeSize) {
			fe.add("office_size", "is required")
		}
	case ServiceFurniture:
		if s.Furniture == nil {
			fe.add("furniture", "is required")
			break
		}
		structErrors(&fe, "furniture", s.Furniture)
		if s.Furniture.ItemCount == 0 && len(s.Furniture.SpecialistItems) == 0 {
			fe.add("furniture.item_count", "must be at least 1 when no specialist item is selected")
		}
		for _, item := range s.Furniture.SpecialistItems {
			if !e.table.IsSpecialist(item) {
				fe.add("furniture.specialist_items", "unknown item %q", item)
			}
		}
	default:
		fe.add("service_type", "must be chosen before the size")
	}
	return fe.err(StepSize)
}

func validateSlider(e *Engine, s State, _ Answer) error {
	var fe fieldErrors
	if _, ok := e.table.SliderMultipliers[s.SliderPosition]; !ok {
		fe.add("slider_position", "must be between 1 and 5")
	}
	return fe.err(StepSlider)
}

func validateRecommendation(e *Engine, s State, a Answer) error {
	var fe fieldErrors
	chose := a.ManualOverride != nil || (a.AcceptRecommendation != nil && *a.AcceptRecommendation)
	if a.AcceptRecommendation != nil && !*a.AcceptRecommendation && a.ManualOverride == nil {
		fe.add("manual_override", "is required when the recommendation is rejected")
	} else if !chose && !s.HasCompleted(StepRecommendation) {
		fe.add("accept_recommendation", "accept the recommendation or enter vans and movers")
	}
	if err := fe.err(StepRecommendation); err != nil {
		return err
	}

	if s.ManualOverride != nil {
		d := e.Derive(s)
		if err := pricing.ValidateOverride(*s.ManualOverride, d.Recommendation); err != nil {
			return err
		}
	}
	return nil
}

func validateDateFlexibility(_ *Engine, s State, _ Answer) error {
	var fe fieldErrors
	if !s.DateFlexibility.valid() {
		fe.add("date_flexibility", "must be one of fixed, flexible, unknown")
	}
	return fe.err(StepDateFlexibility)
}

func validateDate(_ *Engine, s State, _ Answer) error {
	var fe fieldErrors
	if err := validate.Var(s.SelectedDate, "required,datetime="+dateLayout); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe.add("selected_date", "%s", describe(verrs[0]))
		} else {
			fe.add("selected_date", "%v", err)
		}
	}
	return fe.err(StepDate)
}

func validateComplications(_ *Engine, s State, a Answer) error {
	var fe fieldErrors
	for _, tag := range a.Complications {
		if !pricing.ValidComplication(tag) {
			fe.add("complications", "unknown complication %q", tag)
		}
	}
	if len(a.Complications) == 0 && !s.HasCompleted(StepComplications) {
		fe.add("complications", "select at least one option, or none")
	}
	return fe.err(StepComplications)
}

func validatePropertyChain(_ *Engine, s State, _ Answer) error {
	var fe fieldErrors
	if s.PropertyChain == nil {
		fe.add("property_chain", "is required")
	}
	return fe.err(StepPropertyChain)
}

func validateAddress(step StepID, addr *Address) error {
	var fe fieldErrors
	if addr == nil {
		fe.add("address", "is required")
	} else {
		structErrors(&fe, "address", addr)
	}
	return fe.err(step)
}

func validateFromAddress(_ *Engine, s State, _ Answer) error {
	return validateAddress(StepFromAddress, s.FromAddress)
}

func validateToAddress(_ *Engine, s State, _ Answer) error {
	return validateAddress(StepToAddress, s.ToAddress)
}

func validateExtras(e *Engine, s State, _ Answer) error {
	var fe fieldErrors
	x := s.Extras

	if x.PackingTier != "" && !e.table.ValidPackingTier(x.PackingTier) {
		fe.add("extras.packing_tier", "unknown packing tier %q", x.PackingTier)
	}
	if x.CleaningRooms != 0 && (x.CleaningRooms < e.table.CleaningMinRooms || x.CleaningRooms > e.table.CleaningMaxRooms) {
		fe.add("extras.cleaning_rooms", "must be between %d and %d", e.table.CleaningMinRooms, e.table.CleaningMaxRooms)
	}

	switch {
	case x.StorageSize == "" && x.StorageWeeks != 0:
		fe.add("extras.storage_size", "is required when storage weeks are given")
	case x.StorageSize != "" && !e.table.ValidStorageSize(x.StorageSize):
		fe.add("extras.storage_size", "unknown storage size %q", x.StorageSize)
	case x.StorageSize != "" && x.StorageWeeks < 1:
		fe.add("extras.storage_weeks", "must be at least 1")
	}

	for i, item := range x.Assembly {
		if _, ok := e.table.AssemblyCatalog[item.Type]; !ok {
			fe.add(fmt.Sprintf("extras.assembly[%d].type", i), "unknown item %q", item.Type)
		}
		if item.Quantity < 1 || item.Quantity > maxAssemblyQuantity {
			fe.add(fmt.Sprintf("extras.assembly[%d].quantity", i), "must be between 1 and %d", maxAssemblyQuantity)
		}
	}
	return fe.err(StepExtras)
}

func validateContact(_ *Engine, s State, _ Answer) error {
	var fe fieldErrors
	if s.Contact == nil {
		fe.add("contact", "is required")
	} else {
		structErrors(&fe, "contact", s.Contact)
	}
	return fe.err(StepContact)
}
