package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Simplici0/movequote/internal/pricing"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ratesForm is the admin payload for the base-rate singleton.
type ratesForm struct {
	VanRate     *float64 `json:"van_rate" validate:"required,gte=0"`
	MoverRate   *float64 `json:"mover_rate" validate:"required,gte=0"`
	PerMileRate *float64 `json:"per_mile_rate" validate:"required,gte=0"`
	Currency    string   `json:"currency" validate:"omitempty,oneof=GBP EUR USD"`
}

func (f ratesForm) rates(current pricing.Rates) pricing.Rates {
	out := pricing.Rates{
		VanRate:     *f.VanRate,
		MoverRate:   *f.MoverRate,
		PerMileRate: *f.PerMileRate,
		Currency:    current.Currency,
	}
	if f.Currency != "" {
		out.Currency = f.Currency
	}
	return out
}

func (s *server) handleRatesGet(w http.ResponseWriter, r *http.Request) {
	rates, err := s.getRateConfig(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

func (s *server) handleRatesUpdate(w http.ResponseWriter, r *http.Request) {
	var form ratesForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if err := validate.Struct(form); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:   "validation",
			Message: rateFormMessage(err),
		})
		return
	}

	current, err := s.getRateConfig(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rates := form.rates(current)
	if err := s.updateRateConfig(r.Context(), rates); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

func rateFormMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to 0", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func (s *server) getRateConfig(ctx context.Context) (pricing.Rates, error) {
	var rc pricing.Rates
	err := s.db.QueryRowContext(ctx, `
		SELECT van_rate, mover_rate, per_mile_rate, currency
		FROM rate_config
		WHERE id = 1
	`).Scan(&rc.VanRate, &rc.MoverRate, &rc.PerMileRate, &rc.Currency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.Rates{}, fmt.Errorf("rate_config singleton not found")
		}
		return pricing.Rates{}, fmt.Errorf("query rate_config: %w", err)
	}
	return rc, nil
}

func (s *server) updateRateConfig(ctx context.Context, rc pricing.Rates) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE rate_config
		SET
			van_rate = ?,
			mover_rate = ?,
			per_mile_rate = ?,
			currency = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		rc.VanRate,
		rc.MoverRate,
		rc.PerMileRate,
		rc.Currency,
	)
	if err != nil {
		return fmt.Errorf("update rate_config: %w", err)
	}
	return nil
}
