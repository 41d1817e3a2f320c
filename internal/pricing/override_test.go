package pricing

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateOverride_Examples(t *testing.T) {
	rec := Resources{Vans: 2, Movers: 4}

	err := ValidateOverride(Resources{Vans: 3, Movers: 2}, rec)
	var oe *OverrideError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OverrideError, got %v", err)
	}
	if oe.Kind != OverrideBelowMinimum || oe.Bound != 3 {
		t.Fatalf("unexpected violation: %+v", oe)
	}
	if !strings.Contains(err.Error(), "at least") || err.Error() != "need at least 3 movers for 3 vans" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = ValidateOverride(Resources{Vans: 1, Movers: 5}, rec)
	if !errors.As(err, &oe) {
		t.Fatalf("expected OverrideError, got %v", err)
	}
	if oe.Kind != OverrideAboveMaximum || oe.Bound != 3 {
		t.Fatalf("unexpected violation: %+v", oe)
	}
	if err.Error() != "Maximum 3 movers for 1 vans" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if oe.Recommended != rec {
		t.Fatalf("recommendation not carried: %+v", oe.Recommended)
	}

	if err := ValidateOverride(Resources{Vans: 2, Movers: 4}, rec); err != nil {
		t.Fatalf("expected 2 vans / 4 movers to pass, got %v", err)
	}
}

func TestValidateOverride_Bounds(t *testing.T) {
	for vans := 1; vans <= 5; vans++ {
		for movers := 0; movers <= 20; movers++ {
			err := ValidateOverride(Resources{Vans: vans, Movers: movers}, Resources{})
			want := vans <= movers && movers <= 3*vans
			if (err == nil) != want {
				t.Fatalf("vans=%d movers=%d: err=%v, want pass=%v", vans, movers, err, want)
			}
		}
	}
}

func TestValidateOverride_NeedsAVan(t *testing.T) {
	err := ValidateOverride(Resources{Vans: 0, Movers: 2}, Resources{Vans: 1, Movers: 2})
	var oe *OverrideError
	if !errors.As(err, &oe) || oe.Kind != OverrideNoVans {
		t.Fatalf("expected noVans violation, got %v", err)
	}
}
