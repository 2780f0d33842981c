package simulation

import (
	"errors"
	"testing"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"
)

func TestNewZone(t *testing.T) {
	if _, err := NewZone(geometry.Vector2D{X: 1, Y: 1}, 0, ZoneCrisis); !IsConfigurationError(err) {
		t.Errorf("radius 0: err = %v; want ConfigurationError", err)
	}
	z, err := NewZone(geometry.Vector2D{X: 1, Y: 1}, 2, ZoneSafe)
	if err != nil {
		t.Fatal(err)
	}
	if z.Kind != ZoneSafe || z.Radius != 2 {
		t.Errorf("zone = %+v", z)
	}
}

func TestZone_Contains(t *testing.T) {
	z := crisisAt(50, 50, 2)
	tests := []struct {
		name string
		p    geometry.Vector2D
		want bool
	}{
		{"Center", geometry.Vector2D{X: 50, Y: 50}, true},
		{"Inside", geometry.Vector2D{X: 51, Y: 51}, true},
		{"On boundary", geometry.Vector2D{X: 52, Y: 50}, true},
		{"Outside", geometry.Vector2D{X: 52, Y: 51}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := z.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v; want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestConfigurationError_Matching(t *testing.T) {
	wrapped := errors.Join(errors.New("setup"), ErrNoSafeZones)
	if !errors.Is(wrapped, ErrNoSafeZones) {
		t.Error("wrapped ErrNoSafeZones not matched")
	}
	tests := []struct {
		name string
		err  *ConfigurationError
		want bool
	}{
		{"Copy", &ConfigurationError{Field: ErrNoSafeZones.Field, Reason: ErrNoSafeZones.Reason}, true},
		{"Same field other reason", &ConfigurationError{Field: ErrNoSafeZones.Field, Reason: "must be sorted"}, false},
		{"Other field", &ConfigurationError{Field: "radius", Reason: ErrNoSafeZones.Reason}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, ErrNoSafeZones); got != tt.want {
				t.Errorf("errors.Is(%v, ErrNoSafeZones) = %v; want %v", tt.err, got, tt.want)
			}
		})
	}
	other := &ConfigurationError{Field: "radius", Reason: "bad"}
	if got := other.Error(); got != "configuration error: radius: bad" {
		t.Errorf("Error() = %q", got)
	}
}
