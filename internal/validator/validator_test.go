package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type request struct {
	Frequency string `validate:"omitempty,frequency"`
	Category  string `validate:"omitempty,category_key"`
	Goal      string `validate:"omitempty,goal_category"`
	Direction string `validate:"omitempty,goal_direction"`
	Color     string `validate:"omitempty,hex_color"`
	Currency  string `validate:"omitempty,iso4217"`
}

func TestCustomValidators(t *testing.T) {
	v := validator.New()
	RegisterWith(v)

	tests := []struct {
		name  string
		req   request
		valid bool
	}{
		{"all valid", request{"bi-weekly", "custom:pets", "emergency-fund", "up", "#1a2b3c", "USD"}, true},
		{"empty is allowed", request{}, true},
		{"bad frequency", request{Frequency: "daily"}, false},
		{"typo category", request{Category: "grocceries"}, false},
		{"blank custom category", request{Category: "custom:"}, false},
		{"bad goal", request{Goal: "yacht"}, false},
		{"bad direction", request{Direction: "sideways"}, false},
		{"bad color", request{Color: "red"}, false},
		{"bad currency", request{Currency: "XXX"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
